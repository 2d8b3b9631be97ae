package session

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// TokenSource resolves the current bearer token for the notification channel.
//
// The token is read fresh on every connection attempt, never cached by the
// channel, so a token rotated between attempts is picked up automatically.
// An empty token with a nil error means the user is logged out.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticSource is a fixed token, mainly for tests and one-shot tools.
type StaticSource string

func (s StaticSource) Token(context.Context) (string, error) {
	return string(s), nil
}

// FileSource reads the bearer token from a file on every call.
// A missing file means logged out, not an error.
type FileSource struct {
	Path string
}

func (f FileSource) Token(context.Context) (string, error) {
	data, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
