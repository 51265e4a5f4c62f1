package domain

import (
	"fmt"
	"net/url"
	"strings"
)

const soundCloudHost = "soundcloud.com"

// ValidateSourceURL checks that raw is an http(s) link to SoundCloud, the only
// supported source.
func ValidateSourceURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", ErrUnsupportedURL
	}
	host := strings.ToLower(u.Hostname())
	if host != soundCloudHost && !strings.HasSuffix(host, "."+soundCloudHost) {
		return "", ErrUnsupportedURL
	}
	return raw, nil
}
