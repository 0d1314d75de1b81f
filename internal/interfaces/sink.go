package interfaces

import "context"

// Sink is one outbound message endpoint (Discord webhook, Telegram chat).
// Delivery is best-effort: failures are logged by the caller, never
// retried, and a failed image upload must not abort text delivery.
type Sink interface {
	Send(ctx context.Context, text string) error
	SendImage(ctx context.Context, caption string, png []byte) error
}
