// Package notify delivers result payloads to caller-supplied callback URLs.
package notify

import "context"

// Notifier is the interface for delivering a result payload
type Notifier interface {
	Notify(ctx context.Context, url string, payload any) error
}

// Noop does nothing (for testing or disabled notifications)
type Noop struct{}

func (Noop) Notify(ctx context.Context, url string, payload any) error { return nil }
