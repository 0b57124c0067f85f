package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/FBK-Manuel/wearehfg/pkg/httpclient"
)

// envelope is the wrapper the backend puts around every JSON answer.
type envelope struct {
	Success    *bool           `json:"success"`
	Error      flexBool        `json:"error"`
	Status     flexInt         `json:"status"`
	Message    json.RawMessage `json:"message"`
	SubMessage string          `json:"sub_message"`
	UserInfo   json.RawMessage `json:"userinfo"`
	Link       string          `json:"youtube_link"`
}

var errNotEnvelope = errors.New("response is not a JSON envelope")

// parseEnvelope decodes body. A bare top-level array, which the search
// endpoint sends, is read as {"success":true,"message":<array>}.
func parseEnvelope(body []byte) (envelope, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return envelope{}, errNotEnvelope
	}
	if trimmed[0] == '[' {
		if !json.Valid(trimmed) {
			return envelope{}, errNotEnvelope
		}
		ok := true
		return envelope{Success: &ok, Message: json.RawMessage(trimmed)}, nil
	}
	if trimmed[0] != '{' {
		return envelope{}, errNotEnvelope
	}
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return envelope{}, fmt.Errorf("%w: %v", errNotEnvelope, err)
	}
	return env, nil
}

func (e envelope) refused() bool {
	return bool(e.Error) || (e.Success != nil && !*e.Success)
}

// text is the message as a human string, or "" when message is not a string.
func (e envelope) text() string {
	var s string
	if err := json.Unmarshal(e.Message, &s); err != nil {
		return ""
	}
	return s
}

func (e envelope) appError(endpoint string, status int) *AppError {
	return &AppError{
		Endpoint:   endpoint,
		Status:     status,
		Message:    e.text(),
		SubMessage: e.SubMessage,
	}
}

// classify turns a raw HTTP answer into an envelope or a typed error.
func classify(endpoint string, status int, body []byte) (envelope, error) {
	env, err := parseEnvelope(body)
	if !httpclient.IsSuccess(status) {
		if err == nil && (env.refused() || len(env.Message) > 0) {
			return envelope{}, env.appError(endpoint, status)
		}
		return envelope{}, &TransportError{
			Endpoint: endpoint,
			Status:   status,
			Err:      &httpclient.StatusError{StatusCode: status, Body: body},
		}
	}
	if err != nil {
		return envelope{}, &TransportError{Endpoint: endpoint, Status: status, Err: err}
	}
	if env.refused() {
		return envelope{}, env.appError(endpoint, status)
	}
	return env, nil
}

// decodeMessage reads the envelope message into a T.
func decodeMessage[T any](endpoint string, env envelope) (T, error) {
	var v T
	if len(env.Message) == 0 || string(env.Message) == "null" {
		return v, nil
	}
	if err := json.Unmarshal(env.Message, &v); err != nil {
		return v, &TransportError{Endpoint: endpoint, Err: fmt.Errorf("decode message: %w", err)}
	}
	return v, nil
}

// flexBool accepts true/false, 1/0 and "true"/"false".
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	switch strings.Trim(string(data), `"`) {
	case "true", "1":
		*b = true
	default:
		*b = false
	}
	return nil
}

// flexInt accepts a JSON number or a numeric string. Anything else reads as 0.
type flexInt int64

func (n *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = flexInt(v)
	return nil
}

// flexString accepts a string or a number and keeps its text.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	if string(data) == "null" {
		*s = ""
		return nil
	}
	*s = flexString(data)
	return nil
}
