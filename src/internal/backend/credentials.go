// FILE: asynclog/src/internal/backend/credentials.go
package backend

import "context"

// Credentials supplies bearer tokens for cloud backends. Token
// acquisition, refresh and caching are entirely the collaborator's
// concern; only the token string crosses into the backend.
type Credentials interface {
	Token(ctx context.Context) (string, error)
}

// TokenFunc adapts a function to the Credentials interface.
type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

// StaticToken returns credentials that always yield the given token.
func StaticToken(token string) Credentials {
	return TokenFunc(func(context.Context) (string, error) {
		return token, nil
	})
}
