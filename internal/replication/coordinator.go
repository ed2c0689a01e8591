package replication

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/profaxno/admin-management/internal"
	"github.com/profaxno/admin-management/internal/core/events"
)

// EventTypeResend is published for best-effort message sends: compensating
// rollback signals that must never fail the request that spawned them.
const EventTypeResend = "replication.resend"

// Coordinator serializes committed mutations into outbound messages and
// pushes them through the configured sink. Delivery is at-least-once.
type Coordinator struct {
	sink   Sink
	bus    *events.EventBus
	source string
	logger *slog.Logger
}

func NewCoordinator(sink Sink, bus *events.EventBus, source string, logger *slog.Logger) *Coordinator {
	c := &Coordinator{
		sink:   sink,
		bus:    bus,
		source: source,
		logger: logger,
	}
	bus.Subscribe(EventTypeResend, c.handleResend)
	return c
}

// Send delivers one message synchronously. The caller decides what a failure
// means (compensating delete, snapshot re-send, sweep halt).
func (c *Coordinator) Send(ctx context.Context, process Process, payload string) error {
	msg := NewMessage(c.source, process, payload)

	ack, err := c.sink.Send(ctx, msg)
	if err != nil {
		c.logger.Error("replication send failed", "process", process, "error", err)
		return internal.NewReplicationError(fmt.Sprintf("replication send failed, process=%s", process), err)
	}

	c.logger.Info("replication message sent", "process", process, "ack", ack)
	return nil
}

// SendAsync delivers one message off the request path. Failures are logged by
// the event bus handler and never reach the caller.
func (c *Coordinator) SendAsync(ctx context.Context, process Process, payload string) {
	c.bus.Publish(ctx, events.BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventTypeResend,
		Timestamp: time.Now(),
		Data:      NewMessage(c.source, process, payload),
	})
}

func (c *Coordinator) handleResend(ctx context.Context, event events.Event) error {
	msg, ok := event.Payload().(Message)
	if !ok {
		return fmt.Errorf("unexpected payload type for event %s", event.EventType())
	}

	ack, err := c.sink.Send(ctx, msg)
	if err != nil {
		// best-effort path: surfaced to the bus logger only
		return fmt.Errorf("resend failed, process=%s: %w", msg.Process, err)
	}

	c.logger.Info("replication message re-sent", "process", msg.Process, "ack", ack)
	return nil
}

// SweepPageFunc loads one page of rows (active and inactive) and returns the
// update payload items, the delete payload items and the raw row count.
type SweepPageFunc func(ctx context.Context, page, limit int) (updates interface{}, deletes interface{}, n int, err error)

// Sweep drives the paginated full-resync protocol: for every non-empty page
// it sends one update-batch message and one delete-batch message, then moves
// to the next page. The first failure logs and halts the sweep; it is
// idempotent and safe to re-run from page 1.
func (c *Coordinator) Sweep(ctx context.Context, updateProcess, deleteProcess Process, limit int, fetch SweepPageFunc) string {
	for page := 1; ; page++ {
		updates, deletes, n, err := fetch(ctx, page, limit)
		if err != nil {
			c.logger.Error("synchronize: not executed (unexpected error)", "page", page, "error", err)
			return "not executed (unexpected error)"
		}

		if n == 0 {
			c.logger.Info("synchronize: executed", "pages", page-1)
			return "executed"
		}

		updatePayload, err := json.Marshal(updates)
		if err != nil {
			c.logger.Error("synchronize: payload encoding failed", "page", page, "error", err)
			return "not executed (unexpected error)"
		}
		deletePayload, err := json.Marshal(deletes)
		if err != nil {
			c.logger.Error("synchronize: payload encoding failed", "page", page, "error", err)
			return "not executed (unexpected error)"
		}

		if err := c.Send(ctx, updateProcess, string(updatePayload)); err != nil {
			c.logger.Error("synchronize: halted", "page", page, "process", updateProcess, "error", err)
			return "not executed (unexpected error)"
		}
		if err := c.Send(ctx, deleteProcess, string(deletePayload)); err != nil {
			c.logger.Error("synchronize: halted", "page", page, "process", deleteProcess, "error", err)
			return "not executed (unexpected error)"
		}
	}
}
