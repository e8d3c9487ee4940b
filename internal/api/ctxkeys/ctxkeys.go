// Package ctxkeys holds the typed context keys shared by the transports and the dispatcher.
// Kept as a leaf package so domain code can read them without importing the api layer.
package ctxkeys

import "context"

// Key is the named type for all request context keys.
// Using a named type avoids collisions with string keys from other packages
// at runtime (context.Value compares both type and value).
type Key string

const (
	// Transport names the front end that received the call: "stdio" or "http".
	Transport Key = "transport"

	// Subject is the JWT subject of the HTTP caller when bearer auth is enabled.
	Subject Key = "subject"
)

// WithValue adds a ctxkeys.Key value to the context.
func WithValue(ctx context.Context, key Key, value string) context.Context {
	return context.WithValue(ctx, key, value)
}

// String reads key from ctx, returning "" when it is absent.
func String(ctx context.Context, key Key) string {
	v, _ := ctx.Value(key).(string)
	return v
}
