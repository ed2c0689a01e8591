package replication

import "context"

// NopSink drops every message. Wired when the provider is "none" so local
// environments run without a broker.
type NopSink struct{}

func (NopSink) Send(ctx context.Context, msg Message) (string, error) {
	return "message dropped (no provider)", nil
}
