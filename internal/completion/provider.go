package completion

import "context"

// Provider is a remote chat-completion service.
type Provider interface {
	Complete(ctx context.Context, p Params) (*Result, error)
}

// KeySource returns the provider secret at call time.
type KeySource func() string
