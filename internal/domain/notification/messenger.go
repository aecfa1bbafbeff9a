package notification

import "context"

// Messenger pushes a message to a user's devices. The Firebase client is the
// production implementation; tokens it reports as unregistered are
// deactivated by the caller-supplied hook, not by the service.
type Messenger interface {
	SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) error
}
