package channel

import (
	"fmt"
	"net/url"
)

// BuildWSURL turns the API base address into the realtime endpoint URL.
// The scheme mirrors the base address's security (https -> wss, http -> ws),
// the path is /ws, and the credential travels as a query parameter.
func BuildWSURL(baseURL, token string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}

	switch u.Scheme {
	case "https", "wss":
		u.Scheme = "wss"
	case "http", "ws":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("unsupported base url scheme %q", u.Scheme)
	}

	u.Path = "/ws"
	u.RawQuery = url.Values{"token": {token}}.Encode()

	return u.String(), nil
}
