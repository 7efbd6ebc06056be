package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/tablepos/internal/config"
	"github.com/spec-kit/tablepos/internal/observability"
	"github.com/spec-kit/tablepos/pkg/apperrors"
)

// Client performs JSON requests against the POS backend and normalizes failures
// into the apperrors taxonomy.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
	metrics *observability.Metrics
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithMetrics records every request into m.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient builds a client for the resolved API configuration.
func NewClient(api config.APIConfig, opts ...Option) *Client {
	c := &Client{
		baseURL: api.BaseURL(),
		http:    &http.Client{Timeout: api.Timeout()},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request describes one call to the backend.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	// Token is sent as a bearer credential when non-empty.
	Token string
	// KeepEnvelope decodes the whole body instead of its "data" member.
	KeepEnvelope bool
}

// Do sends req and decodes a 2xx body into out, which may be nil.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	start := time.Now()

	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.metrics.RecordError(req.Path, req.Method, apperrors.KindNetwork.String())
		c.logger.Debug("request failed", zap.String("method", req.Method), zap.String("path", req.Path),
			zap.String("request_id", requestID), zap.Error(err))
		return apperrors.NewNetworkError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.RecordError(req.Path, req.Method, apperrors.KindNetwork.String())
		return apperrors.NewNetworkError(err)
	}

	c.metrics.RecordRequest(req.Path, req.Method, resp.StatusCode, time.Since(start))
	c.logger.Debug("request completed",
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.RecordError(req.Path, req.Method, apperrors.KindRemote.String())
		return apperrors.NewRemoteError(resp.StatusCode, extractMessage(raw))
	}

	if out == nil {
		return nil
	}
	payload := raw
	if !req.KeepEnvelope {
		payload = unwrapData(raw)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		c.metrics.RecordError(req.Path, req.Method, apperrors.KindMalformedResponse.String())
		return apperrors.NewMalformedResponse(err)
	}
	return nil
}

// unwrapData returns the "data" member of an object body, or the body itself.
func unwrapData(raw []byte) []byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return raw
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return raw
	}
	if data, ok := envelope["data"]; ok {
		return data
	}
	return raw
}

// extractMessage pulls a human message out of an error body. It understands
// {"message": "..."}, {"message": ["...", "..."]}, {"error": "..."} and
// {"error": {"message": "..."}}.
func extractMessage(raw []byte) string {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if msg := messageFrom(body["message"]); msg != "" {
		return msg
	}
	errField := body["error"]
	if msg := messageFrom(errField); msg != "" {
		return msg
	}
	var nested map[string]json.RawMessage
	if err := json.Unmarshal(errField, &nested); err == nil {
		return messageFrom(nested["message"])
	}
	return ""
}

func messageFrom(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, "; ")
	}
	return ""
}
