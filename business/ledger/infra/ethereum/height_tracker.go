// Package ethereum provides the chain-backed height source.
package ethereum

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arb-engine/business/ledger/domain"
	"github.com/fd1az/arb-engine/internal/apperror"
	"github.com/fd1az/arb-engine/internal/circuitbreaker"
	"github.com/fd1az/arb-engine/internal/logger"
)

const (
	tracerName = "github.com/fd1az/arb-engine/business/ledger/infra/ethereum"
	meterName  = "github.com/fd1az/arb-engine/business/ledger/infra/ethereum"
)

// TrackerConfig holds configuration for the height tracker.
type TrackerConfig struct {
	HTTPURL      string
	PollInterval time.Duration
	// MaxStale bounds how old a cached height may be before Height
	// refuses to serve it.
	MaxStale time.Duration
}

// DefaultTrackerConfig returns sensible defaults.
func DefaultTrackerConfig(httpURL string) TrackerConfig {
	return TrackerConfig{
		HTTPURL:      httpURL,
		PollInterval: 12 * time.Second, // ~1 block time
		MaxStale:     2 * time.Minute,
	}
}

type trackerMetrics struct {
	headsReceived   metric.Int64Counter
	pollErrors      metric.Int64Counter
	connectionState metric.Int64Gauge
}

// HeightTracker polls the chain head over HTTP and serves the latest
// height to the engine. It implements app.HeightSource.
type HeightTracker struct {
	config TrackerConfig
	logger logger.LoggerInterface

	client   *ethclient.Client
	clientMu sync.RWMutex

	state      domain.ConnectionState
	stateMu    sync.RWMutex
	lastHeight atomic.Uint64
	lastSeen   atomic.Int64 // unix nanos of last successful poll

	done   chan struct{}
	closed atomic.Bool

	cb *circuitbreaker.CircuitBreaker[*types.Header]

	tracer  trace.Tracer
	metrics *trackerMetrics
}

// NewHeightTracker creates a height tracker. Call Connect before use.
func NewHeightTracker(cfg TrackerConfig, log logger.LoggerInterface) (*HeightTracker, error) {
	t := &HeightTracker{
		config: cfg,
		logger: log,
		state:  domain.StateDisconnected,
		done:   make(chan struct{}),
		tracer: otel.Tracer(tracerName),
	}

	if err := t.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	t.cb = circuitbreaker.New[*types.Header](circuitbreaker.DefaultConfig("eth-head-poll"))

	return t, nil
}

func (t *HeightTracker) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	t.metrics = &trackerMetrics{}

	t.metrics.headsReceived, err = meter.Int64Counter(
		"ledger_heads_received_total",
		metric.WithDescription("Total chain heads observed"),
		metric.WithUnit("{block}"),
	)
	if err != nil {
		return err
	}

	t.metrics.pollErrors, err = meter.Int64Counter(
		"ledger_poll_errors_total",
		metric.WithDescription("Total head poll errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return err
	}

	t.metrics.connectionState, err = meter.Int64Gauge(
		"ledger_connection_state",
		metric.WithDescription("Height tracker connection state (0=disconnected, 1=connecting, 2=connected, 3=reconnecting)"),
		metric.WithUnit("{state}"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Connect dials the node, primes the height, and starts the poll loop.
func (t *HeightTracker) Connect(ctx context.Context) error {
	t.setState(ctx, domain.StateConnecting)

	client, err := ethclient.DialContext(ctx, t.config.HTTPURL)
	if err != nil {
		t.setState(ctx, domain.StateDisconnected)
		return apperror.External(apperror.CodeEthereumConnectionFailed, t.config.HTTPURL, err)
	}

	t.clientMu.Lock()
	t.client = client
	t.clientMu.Unlock()

	if err := t.poll(ctx); err != nil {
		t.setState(ctx, domain.StateDisconnected)
		return err
	}

	t.setState(ctx, domain.StateConnected)
	go t.run()

	return nil
}

// Height implements app.HeightSource. It serves the cached head height
// and rejects stale caches rather than silently serving old data.
func (t *HeightTracker) Height(ctx context.Context) (uint64, error) {
	h := t.lastHeight.Load()
	if h == 0 {
		return 0, apperror.New(apperror.CodeEthereumRPCError,
			apperror.WithContext("no head observed yet"))
	}

	if t.config.MaxStale > 0 {
		age := time.Since(time.Unix(0, t.lastSeen.Load()))
		if age > t.config.MaxStale {
			return 0, apperror.New(apperror.CodeServiceUnavailable,
				apperror.WithContextf("head is stale by %s", age))
		}
	}

	return h, nil
}

// State returns the current connection state.
func (t *HeightTracker) State() domain.ConnectionState {
	t.stateMu.RLock()
	defer t.stateMu.RUnlock()
	return t.state
}

// Close stops the poll loop and releases the client.
func (t *HeightTracker) Close() {
	if t.closed.CompareAndSwap(false, true) {
		close(t.done)
		t.clientMu.Lock()
		if t.client != nil {
			t.client.Close()
		}
		t.clientMu.Unlock()
	}
}

func (t *HeightTracker) run() {
	ticker := time.NewTicker(t.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.done:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), t.config.PollInterval)
			if err := t.poll(ctx); err != nil {
				t.logger.Warn(ctx, "head poll failed", "error", err)
				t.setState(ctx, domain.StateReconnecting)
			} else {
				t.setState(ctx, domain.StateConnected)
			}
			cancel()
		}
	}
}

func (t *HeightTracker) poll(ctx context.Context) error {
	ctx, span := t.tracer.Start(ctx, "ledger.poll_head")
	defer span.End()

	t.clientMu.RLock()
	client := t.client
	t.clientMu.RUnlock()

	if client == nil {
		return apperror.New(apperror.CodeEthereumConnectionFailed,
			apperror.WithContext("not connected"))
	}

	header, err := t.cb.Execute(func() (*types.Header, error) {
		return client.HeaderByNumber(ctx, nil)
	})
	if err != nil {
		t.metrics.pollErrors.Add(ctx, 1)
		return apperror.External(apperror.CodeEthereumRPCError, "HeaderByNumber", err)
	}

	height := header.Number.Uint64()
	t.lastHeight.Store(height)
	t.lastSeen.Store(time.Now().UnixNano())
	t.metrics.headsReceived.Add(ctx, 1, metric.WithAttributes(
		attribute.Int64("height", int64(height)),
	))

	span.SetAttributes(attribute.Int64("height", int64(height)))
	t.logger.Debug(ctx, "head observed", "height", height)

	return nil
}

func (t *HeightTracker) setState(ctx context.Context, s domain.ConnectionState) {
	t.stateMu.Lock()
	changed := t.state != s
	t.state = s
	t.stateMu.Unlock()

	if changed {
		t.metrics.connectionState.Record(ctx, int64(s))
		t.logger.Info(ctx, "connection state changed", "state", s.String())
	}
}
