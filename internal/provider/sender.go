// internal/provider/sender.go
package provider

import "context"

// Sender delivers a single message through the provider and returns the
// provider-assigned message identifier. Implementations must respect ctx so
// dispatch never blocks past its send timeout.
type Sender interface {
	Send(ctx context.Context, from, to, body string) (string, error)
}

// SignatureValidator checks the authenticity of an inbound provider
// callback.
type SignatureValidator interface {
	Validate(url string, params map[string]string, signature string) bool
}
