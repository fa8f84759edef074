// Package webhook delivers reveal outcomes to an external HTTP endpoint.
package webhook

import (
	"context"
	"net/http"
	"time"

	"github.com/fd1az/arb-engine/business/commitreveal/domain"
	"github.com/fd1az/arb-engine/internal/apperror"
	"github.com/fd1az/arb-engine/internal/circuitbreaker"
	"github.com/fd1az/arb-engine/internal/httpclient"
	"github.com/fd1az/arb-engine/internal/logger"
)

// payload is the webhook wire format.
type payload struct {
	Event     string    `json:"event"` // "commit", "cancel", "reveal"
	Hash      string    `json:"hash"`
	Committer string    `json:"committer,omitempty"`
	Revealer  string    `json:"revealer,omitempty"`
	Height    uint64    `json:"height,omitempty"`
	Hops      int       `json:"hops,omitempty"`
	Success   bool      `json:"success"`
	Profit    string    `json:"profit,omitempty"`
	Failure   string    `json:"failure,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Notifier implements app.Reporter over an HTTP webhook. Delivery is
// fire-and-forget; a broken endpoint trips the breaker instead of
// blocking the engine.
type Notifier struct {
	url    string
	client httpclient.Client
	cb     *circuitbreaker.CircuitBreaker[struct{}]
	logger logger.LoggerInterface
}

// NewNotifier creates a Notifier posting to url.
func NewNotifier(url string, timeout time.Duration, log logger.LoggerInterface) (*Notifier, error) {
	client, err := httpclient.New(
		httpclient.WithTimeout(timeout),
		httpclient.WithProviderName("webhook"),
	)
	if err != nil {
		return nil, err
	}

	return &Notifier{
		url:    url,
		client: client,
		cb:     circuitbreaker.New[struct{}](circuitbreaker.DefaultConfig("webhook")),
		logger: log,
	}, nil
}

// ReportCommit implements app.Reporter.
func (n *Notifier) ReportCommit(ctx context.Context, ev domain.CommitEvent) {
	event := "commit"
	if ev.Cancelled {
		event = "cancel"
	}
	go n.deliver(payload{
		Event:     event,
		Hash:      ev.Hash.Hex(),
		Committer: ev.Committer.Hex(),
		Height:    ev.Height,
		Timestamp: ev.Timestamp,
	})
}

// ReportReveal implements app.Reporter.
func (n *Notifier) ReportReveal(ctx context.Context, ev domain.RevealEvent) {
	p := payload{
		Event:     "reveal",
		Hash:      ev.Hash.Hex(),
		Revealer:  ev.Revealer.Hex(),
		Hops:      ev.Hops,
		Success:   ev.Success,
		Failure:   ev.FailureCode,
		Timestamp: ev.Timestamp,
	}
	if ev.Profit != nil {
		p.Profit = ev.Profit.String()
	}
	go n.deliver(p)
}

func (n *Notifier) deliver(p payload) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := n.cb.Execute(func() (struct{}, error) {
		resp, err := n.client.PostJSON(ctx, n.url, p)
		if err != nil {
			return struct{}{}, err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusBadRequest {
			return struct{}{}, apperror.New(apperror.CodeWebhookDeliveryFailed,
				apperror.WithContextf("endpoint returned %d", resp.StatusCode))
		}
		return struct{}{}, nil
	})
	if err != nil {
		n.logger.Warn(ctx, "webhook delivery failed",
			"event", p.Event,
			"hash", p.Hash,
			"error", err,
		)
	}
}
