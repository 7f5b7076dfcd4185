package zyte

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/bizvet/bizvet/internal/domain"
	"github.com/bizvet/bizvet/internal/metrics"
)

// Client calls the extraction proxy, which relays HTTP requests to protected
// upstreams and returns the raw response body.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// Config holds the extraction proxy settings.
type Config struct {
	APIKey     string
	Endpoint   string
	RatePerSec float64
	Logger     *zap.Logger
}

// NewClient creates an extraction proxy client.
func NewClient(cfg *Config) *Client {
	burst := int(cfg.RatePerSec)
	if burst < 1 {
		burst = 1
	}

	return &Client{
		httpClient: &http.Client{},
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RatePerSec), burst),
		logger:     cfg.Logger,
	}
}

// header is a relayed request header.
type header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// extractRequest is the proxy envelope for a relayed request.
type extractRequest struct {
	URL                      string   `json:"url"`
	HTTPResponseBody         bool     `json:"httpResponseBody"`
	HTTPRequestMethod        string   `json:"httpRequestMethod,omitempty"`
	HTTPRequestText          string   `json:"httpRequestText,omitempty"`
	CustomHTTPRequestHeaders []header `json:"customHttpRequestHeaders,omitempty"`
}

// extractResponse is the proxy reply. The relayed body comes back base64-encoded.
type extractResponse struct {
	HTTPResponseBody string `json:"httpResponseBody"`
}

// relayedUserAgent is sent to the upstream on every relayed request. The
// registry rejects requests without a browser user agent.
const relayedUserAgent = "Mozilla/5.0"

// Post relays a JSON POST to the target URL through the proxy and returns the
// relayed response body.
func (c *Client) Post(ctx context.Context, targetURL string, body []byte) ([]byte, error) {
	return c.extract(ctx, "post", extractRequest{
		URL:               targetURL,
		HTTPResponseBody:  true,
		HTTPRequestMethod: http.MethodPost,
		HTTPRequestText:   string(body),
		CustomHTTPRequestHeaders: []header{
			{Name: "Content-Type", Value: "application/json"},
			{Name: "User-Agent", Value: relayedUserAgent},
		},
	})
}

// Get relays a GET to the target URL through the proxy and returns the relayed
// response body.
func (c *Client) Get(ctx context.Context, targetURL string) ([]byte, error) {
	return c.extract(ctx, "get", extractRequest{
		URL:              targetURL,
		HTTPResponseBody: true,
		CustomHTTPRequestHeaders: []header{
			{Name: "User-Agent", Value: relayedUserAgent},
		},
	})
}

func (c *Client) extract(ctx context.Context, call string, req extractRequest) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("proxy rate limit: %w", err)
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal extract request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build extract request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.apiKey, "")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	duration := time.Since(start)

	if err != nil {
		metrics.ProxyRequestsTotal.WithLabelValues(call, "error").Inc()
		return nil, fmt.Errorf("proxy request: %v: %w", err, domain.ErrRequestFailed)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ProxyRequestsTotal.WithLabelValues(call, "error").Inc()
		return nil, fmt.Errorf("read proxy response: %v: %w", err, domain.ErrRequestFailed)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.ProxyRequestsTotal.WithLabelValues(call, "error").Inc()
		return nil, fmt.Errorf("proxy status %d for %s: %w", resp.StatusCode, req.URL, domain.ErrRequestFailed)
	}

	var envelope extractResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		metrics.ProxyRequestsTotal.WithLabelValues(call, "error").Inc()
		return nil, fmt.Errorf("decode proxy response: %v: %w", err, domain.ErrRequestFailed)
	}

	decoded, err := base64.StdEncoding.DecodeString(envelope.HTTPResponseBody)
	if err != nil {
		metrics.ProxyRequestsTotal.WithLabelValues(call, "error").Inc()
		return nil, fmt.Errorf("decode relayed body: %v: %w", err, domain.ErrRequestFailed)
	}

	metrics.ProxyRequestsTotal.WithLabelValues(call, "success").Inc()
	metrics.ProxyRequestDuration.WithLabelValues(call).Observe(duration.Seconds())

	c.logger.Debug("proxy extract",
		zap.String("call", call),
		zap.String("url", req.URL),
		zap.Duration("duration", duration),
	)

	return decoded, nil
}

// Close releases idle connections held by the underlying HTTP client.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
