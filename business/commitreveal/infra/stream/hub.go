// Package stream serves engine events to websocket subscribers.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/fd1az/arb-engine/business/commitreveal/domain"
	"github.com/fd1az/arb-engine/internal/logger"
)

const (
	// subscriberBuffer bounds the per-client queue; slow consumers are
	// dropped rather than backing up the engine.
	subscriberBuffer = 64
	writeTimeout     = 5 * time.Second
)

// Event is the wire format for stream events.
type Event struct {
	Type      string    `json:"type"` // "commit", "cancel", "reveal"
	Hash      string    `json:"hash"`
	Committer string    `json:"committer,omitempty"`
	Revealer  string    `json:"revealer,omitempty"`
	Height    uint64    `json:"height,omitempty"`
	Hops      int       `json:"hops,omitempty"`
	Success   *bool     `json:"success,omitempty"`
	Profit    string    `json:"profit,omitempty"`
	Failure   string    `json:"failure,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub broadcasts engine events to websocket subscribers. It implements
// app.Reporter.
type Hub struct {
	logger logger.LoggerInterface

	mu          sync.Mutex
	subscribers map[chan []byte]struct{}

	server *http.Server
}

// NewHub creates a hub.
func NewHub(log logger.LoggerInterface) *Hub {
	return &Hub{
		logger:      log,
		subscribers: make(map[chan []byte]struct{}),
	}
}

// Start serves the /events websocket endpoint on the given port.
func (h *Hub) Start(port int) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/events", h.handleSubscribe)

	h.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			h.logger.Error(context.Background(), "event stream server failed", "error", err)
		}
	}()

	h.logger.Info(context.Background(), "event stream listening", "port", port)
	return nil
}

// Stop shuts the server down and disconnects subscribers.
func (h *Hub) Stop(ctx context.Context) error {
	if h.server == nil {
		return nil
	}
	return h.server.Shutdown(ctx)
}

// ReportCommit implements app.Reporter.
func (h *Hub) ReportCommit(ctx context.Context, ev domain.CommitEvent) {
	typ := "commit"
	if ev.Cancelled {
		typ = "cancel"
	}
	h.broadcast(ctx, Event{
		Type:      typ,
		Hash:      ev.Hash.Hex(),
		Committer: ev.Committer.Hex(),
		Height:    ev.Height,
		Timestamp: ev.Timestamp,
	})
}

// ReportReveal implements app.Reporter.
func (h *Hub) ReportReveal(ctx context.Context, ev domain.RevealEvent) {
	out := Event{
		Type:      "reveal",
		Hash:      ev.Hash.Hex(),
		Revealer:  ev.Revealer.Hex(),
		Hops:      ev.Hops,
		Success:   &ev.Success,
		Failure:   ev.FailureCode,
		Timestamp: ev.Timestamp,
	}
	if ev.Profit != nil {
		out.Profit = ev.Profit.String()
	}
	h.broadcast(ctx, out)
}

func (h *Hub) broadcast(ctx context.Context, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error(ctx, "failed to encode stream event", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		select {
		case ch <- payload:
		default:
			// Slow consumer: close its queue and let the writer exit.
			delete(h.subscribers, ch)
			close(ch)
		}
	}
}

// Subscribers returns the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

func (h *Hub) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Warn(r.Context(), "websocket accept failed", "error", err)
		return
	}

	ch := make(chan []byte, subscriberBuffer)
	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
		h.mu.Unlock()
		conn.Close(websocket.StatusNormalClosure, "bye")
	}()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-ch:
			if !ok {
				conn.Close(websocket.StatusPolicyViolation, "too slow")
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Write(writeCtx, websocket.MessageText, payload)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
