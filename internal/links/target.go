package links

import (
	"fmt"
	"net/url"
	"strings"
)

// NormalizeTarget validates a target URL and returns it in canonical form.
// - Requires an absolute URL with a scheme
// - Requires a host for http and https
// - Lowercases the scheme and host
// - Removes default ports (80 for http, 443 for https)
func NormalizeTarget(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidTarget, err)
	}

	if u.Scheme == "" {
		return "", fmt.Errorf("%w: missing scheme in %q", ErrInvalidTarget, rawURL)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return "", fmt.Errorf("%w: missing host in %q", ErrInvalidTarget, rawURL)
		}
	}

	host := u.Host
	if strings.HasSuffix(host, ":80") && u.Scheme == "http" {
		u.Host = strings.TrimSuffix(host, ":80")
	} else if strings.HasSuffix(host, ":443") && u.Scheme == "https" {
		u.Host = strings.TrimSuffix(host, ":443")
	}

	return u.String(), nil
}
