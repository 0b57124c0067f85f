package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FBK-Manuel/wearehfg/pkg/httpclient"
	"github.com/FBK-Manuel/wearehfg/pkg/tracing"
)

// Config is the backend connection shared by both clients.
type Config struct {
	BaseURL        string
	HTTP           httpclient.Config
	QueryRetries   int
	BreakerEnabled bool
	Breaker        httpclient.CircuitBreakerConfig
}

func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:      baseURL,
		HTTP:         httpclient.DefaultConfig(),
		QueryRetries: 3,
		Breaker:      httpclient.DefaultCircuitBreakerConfig("storefront-backend"),
	}
}

// TokenSource yields the bearer token for the session bound to ctx, or ""
// when the session is not signed in.
type TokenSource interface {
	Token(ctx context.Context) string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) string

func (f TokenFunc) Token(ctx context.Context) string { return f(ctx) }

// policy selects how often a request may be retried.
type policy int

const (
	// policyQuery is the default for catalog reads.
	policyQuery policy = iota
	// policyCatalog retries once: the full catalog and the deals list.
	policyCatalog
	// policyOnce never retries: the home grids and every POST.
	policyOnce
)

// Client sends requests to the backend. Public and Authenticated differ only
// in whether a bearer token is attached.
type Client struct {
	name    string
	baseURL string
	doers   map[policy]httpclient.Doer
	tokens  TokenSource
	tracer  trace.Tracer
	logger  *slog.Logger
}

// doers builds one Doer per retry policy over a single transport. When the
// breaker is enabled all policies report into the same breaker.
func buildDoers(base *httpclient.Client, cfg Config, logger *slog.Logger) map[policy]httpclient.Doer {
	retries := map[policy]int{
		policyQuery:   cfg.QueryRetries,
		policyCatalog: 1,
		policyOnce:    0,
	}
	out := make(map[policy]httpclient.Doer, len(retries))
	var breaker *httpclient.CircuitBreakerClient
	for p, n := range retries {
		var d httpclient.Doer = base.WithRetries(n)
		if cfg.BreakerEnabled {
			if breaker == nil {
				breaker = httpclient.NewCircuitBreakerClient(d, cfg.Breaker, logger)
				d = breaker
			} else {
				d = breaker.Wrap(d)
			}
		}
		out[p] = d
	}
	return out
}

func (c *Client) url(path string, q url.Values) string {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (c *Client) get(ctx context.Context, p policy, endpoint, path string, q url.Values) (envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path, q), http.NoBody)
	if err != nil {
		return envelope{}, &TransportError{Endpoint: endpoint, Err: fmt.Errorf("create request: %w", err)}
	}
	return c.send(ctx, p, endpoint, req)
}

func (c *Client) postJSON(ctx context.Context, endpoint, path string, body any) (envelope, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return envelope{}, &TransportError{Endpoint: endpoint, Err: fmt.Errorf("encode body: %w", err)}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path, nil), bytes.NewReader(payload))
	if err != nil {
		return envelope{}, &TransportError{Endpoint: endpoint, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	return c.send(ctx, policyOnce, endpoint, req)
}

func (c *Client) postMultipart(ctx context.Context, endpoint, path string, fields [][2]string) (envelope, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return envelope{}, &TransportError{Endpoint: endpoint, Err: fmt.Errorf("write field %s: %w", f[0], err)}
		}
	}
	if err := mw.Close(); err != nil {
		return envelope{}, &TransportError{Endpoint: endpoint, Err: fmt.Errorf("close multipart body: %w", err)}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path, nil), bytes.NewReader(buf.Bytes()))
	if err != nil {
		return envelope{}, &TransportError{Endpoint: endpoint, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.send(ctx, policyOnce, endpoint, req)
}

func (c *Client) send(ctx context.Context, p policy, endpoint string, req *http.Request) (env envelope, err error) {
	ctx, span := c.tracer.Start(ctx, "gateway."+endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("gateway.client", c.name),
			attribute.String("gateway.endpoint", endpoint),
		),
	)
	start := time.Now()
	defer func() {
		outcome := outcomeOf(err)
		requestsTotal.WithLabelValues(endpoint, outcome).Inc()
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		span.End()
	}()

	req.Header.Set("Accept", "application/json")
	if c.tokens != nil {
		if tok := c.tokens.Token(ctx); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.doers[p].Do(ctx, req)
	if err != nil {
		return envelope{}, &TransportError{Endpoint: endpoint, Err: err}
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	body, err := httpclient.ReadBody(resp)
	if err != nil {
		return envelope{}, &TransportError{Endpoint: endpoint, Status: resp.StatusCode, Err: err}
	}

	env, err = classify(endpoint, resp.StatusCode, body)
	if err != nil {
		c.logger.DebugContext(ctx, "backend call failed",
			slog.String("endpoint", endpoint),
			slog.Int("status", resp.StatusCode),
			slog.String("error", err.Error()),
		)
	}
	return env, err
}

// Gateway holds the two configured clients.
type Gateway struct {
	Public        *Client
	Authenticated *Client
}

// New builds both clients over one pooled transport.
func New(cfg Config, tokens TokenSource, logger *slog.Logger) *Gateway {
	return newGateway(cfg, httpclient.New(cfg.HTTP), tokens, logger)
}

// NewWithHTTPClient is New over an existing http.Client.
func NewWithHTTPClient(cfg Config, hc *http.Client, tokens TokenSource, logger *slog.Logger) *Gateway {
	return newGateway(cfg, httpclient.NewWithHTTPClient(hc, cfg.HTTP), tokens, logger)
}

func newGateway(cfg Config, base *httpclient.Client, tokens TokenSource, logger *slog.Logger) *Gateway {
	doers := buildDoers(base, cfg, logger)
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	tracer := tracing.Tracer("storefront/gateway")
	return &Gateway{
		Public: &Client{
			name: "public", baseURL: baseURL, doers: doers,
			tracer: tracer, logger: logger,
		},
		Authenticated: &Client{
			name: "authenticated", baseURL: baseURL, doers: doers,
			tokens: tokens, tracer: tracer, logger: logger,
		},
	}
}
