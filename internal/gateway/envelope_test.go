package gateway

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FBK-Manuel/wearehfg/pkg/httpclient"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		kind    Kind
		message string
	}{
		{"success envelope", http.StatusOK, `{"success":true,"message":"Saved"}`, KindOK, ""},
		{"message only", http.StatusOK, `{"message":[{"id":1}]}`, KindOK, ""},
		{"error flag", http.StatusOK, `{"error":true,"message":"Email taken"}`, KindAppError, "Email taken"},
		{"success false", http.StatusOK, `{"success":false,"message":"Try again"}`, KindAppError, "Try again"},
		{"error flag as string", http.StatusOK, `{"error":"true","message":"Bad"}`, KindAppError, "Bad"},
		{"4xx with envelope", http.StatusUnauthorized, `{"error":true,"message":"Invalid credentials"}`, KindAppError, "Invalid credentials"},
		{"5xx without envelope", http.StatusInternalServerError, `<html>oops</html>`, KindTransportError, GenericTransportMessage},
		{"5xx empty", http.StatusBadGateway, ``, KindTransportError, GenericTransportMessage},
		{"2xx garbage", http.StatusOK, `not json`, KindTransportError, GenericTransportMessage},
		{"refusal without text", http.StatusOK, `{"error":true}`, KindAppError, GenericAppMessage},
		{"bare array", http.StatusOK, `[{"id":3}]`, KindOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := classify("test", tt.status, []byte(tt.body))
			var r Result[envelope]
			if err != nil {
				r = Fail[envelope](err)
			} else {
				r = OK(env)
			}
			assert.Equal(t, tt.kind, r.Kind())
			assert.Equal(t, tt.message, r.Message())
		})
	}
}

func TestClassify_NonEnvelopeKeepsStatus(t *testing.T) {
	_, err := classify("products", http.StatusServiceUnavailable, []byte("down"))
	var tErr *TransportError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, http.StatusServiceUnavailable, tErr.Status)
	var sErr *httpclient.StatusError
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, []byte("down"), sErr.Body)
}

func TestParseEnvelope_BareArrayIsSuccess(t *testing.T) {
	env, err := parseEnvelope([]byte("  [1,2]\n"))
	require.NoError(t, err)
	require.NotNil(t, env.Success)
	assert.True(t, *env.Success)
	assert.JSONEq(t, `[1,2]`, string(env.Message))
}

func TestParseEnvelope_SubMessage(t *testing.T) {
	env, err := parseEnvelope([]byte(`{"success":true,"message":"Thanks","sub_message":"We will pray with you"}`))
	require.NoError(t, err)
	res := submitResult(env)
	assert.Equal(t, "Thanks", res.Message)
	assert.Equal(t, "We will pray with you", res.SubMessage)
}

func TestFlexTypes(t *testing.T) {
	var row struct {
		ID    flexInt    `json:"id"`
		Price flexString `json:"price"`
		Bad   flexInt    `json:"bad"`
		List  flexList   `json:"list"`
		Null  flexList   `json:"null"`
		Str   flexList   `json:"str"`
	}
	err := json.Unmarshal([]byte(`{"id":"12","price":19.5,"bad":"x","list":["S",2],"null":null,"str":"S,M"}`), &row)
	require.NoError(t, err)
	assert.Equal(t, flexInt(12), row.ID)
	assert.Equal(t, flexString("19.5"), row.Price)
	assert.Equal(t, flexInt(0), row.Bad)
	assert.Equal(t, flexList{"S", "2"}, row.List)
	assert.Nil(t, row.Null)
	assert.Nil(t, row.Str)
}
