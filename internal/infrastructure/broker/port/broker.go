package port

import "context"

// Handler processes one payload delivered by a subscription. Returning nil
// acknowledges the payload; returning an error negatively acknowledges it and
// the adapter redelivers per its own policy. Handlers must be idempotent:
// delivery is at-least-once.
type Handler func(ctx context.Context, payload []byte) error

// Broker is the transport indirection between the ingestion API and the
// fan-out worker. Payloads published to one channel reach the subscriber in
// publish order; there is no ordering across channels.
//
// Two adapters exist: a Redis-backed task queue with consumer semantics, and
// a plain Redis list polled at a fixed interval for deployments without a
// queue server. Callers must depend on this interface only.
type Broker interface {
	// Publish enqueues payload on the named channel. Publish-and-forget:
	// failures are surfaced to the caller, never retried internally.
	Publish(ctx context.Context, channel string, payload []byte) error

	// Subscribe consumes the channel with h until ctx is canceled. At most
	// one subscriber per channel per process; payloads are handed to h
	// sequentially. Transport-level errors are retried internally; Subscribe
	// returns only on ctx cancellation or an unrecoverable setup error.
	Subscribe(ctx context.Context, channel string, h Handler) error

	// Close releases transport resources.
	Close() error
}
