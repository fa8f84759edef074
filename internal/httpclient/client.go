// Package httpclient provides an instrumented HTTP client with OTEL
// tracing and metrics.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/httptrace/otelhttptrace"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	defaultDialKeepAlive   = 10 * time.Second
	defaultRequestTimeout  = 10 * time.Second
	defaultMaxConnsPerHost = 5
	defaultIdleConnTimeout = 2 * time.Minute

	metricRequestCounter = "http_client_requests_total"
)

// Client is the interface for making HTTP requests.
type Client interface {
	// Do executes a request and returns the response.
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
	// PostJSON marshals body and POSTs it to url.
	PostJSON(ctx context.Context, url string, body any) (*http.Response, error)
}

// Option configures the instrumented client.
type Option func(*options)

type options struct {
	timeout      time.Duration
	providerName string
	headers      map[string]string
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithProviderName labels the client's metrics.
func WithProviderName(name string) Option {
	return func(o *options) { o.providerName = name }
}

// WithHeader adds a default header to every request.
func WithHeader(key, value string) Option {
	return func(o *options) {
		if o.headers == nil {
			o.headers = make(map[string]string)
		}
		o.headers[key] = value
	}
}

// InstrumentedClient wraps http.Client with OTEL instrumentation.
type InstrumentedClient struct {
	client         *http.Client
	requestCounter metric.Int64Counter
	providerName   string
	headers        map[string]string
}

var _ Client = (*InstrumentedClient)(nil)

// New creates a new instrumented HTTP client.
func New(opts ...Option) (*InstrumentedClient, error) {
	o := &options{
		timeout:      defaultRequestTimeout,
		providerName: "default",
	}
	for _, opt := range opts {
		opt(o)
	}

	transport := otelhttp.NewTransport(
		&http.Transport{
			DialContext: (&net.Dialer{
				KeepAlive: defaultDialKeepAlive,
			}).DialContext,
			MaxConnsPerHost: defaultMaxConnsPerHost,
			IdleConnTimeout: defaultIdleConnTimeout,
		},
		otelhttp.WithClientTrace(func(ctx context.Context) *httptrace.ClientTrace {
			return otelhttptrace.NewClientTrace(ctx)
		}),
	)

	meter := otel.Meter(
		"instrumented_http_client",
		metric.WithInstrumentationAttributes(attribute.String("provider", o.providerName)),
	)

	requestCounter, err := meter.Int64Counter(
		metricRequestCounter,
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	return &InstrumentedClient{
		client: &http.Client{
			Timeout:   o.timeout,
			Transport: transport,
		},
		requestCounter: requestCounter,
		providerName:   o.providerName,
		headers:        o.headers,
	}, nil
}

// Do executes an http.Request.
func (c *InstrumentedClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	c.requestCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", c.providerName),
		attribute.String("method", req.Method),
	))

	return c.client.Do(req.WithContext(ctx))
}

// PostJSON marshals body and POSTs it to url.
func (c *InstrumentedClient) PostJSON(ctx context.Context, url string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.Do(ctx, req)
}

// ReadBody reads and closes the response body.
func ReadBody(resp *http.Response) ([]byte, error) {
	if resp == nil || resp.Body == nil {
		return nil, nil
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
