package common

import (
	"fmt"
	"net/url"
	"strings"
)

// NormalizeListingURL canonicalizes a listing URL for use as a storage key.
// Fragments are stripped so that the same posting reached via different
// anchors dedupes to one record. Only absolute http/https URLs are accepted.
func NormalizeListingURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("empty URL")
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", trimmed, err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("unsupported URL scheme %q in %q", parsed.Scheme, trimmed)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("URL %q has no host", trimmed)
	}

	parsed.Fragment = ""
	parsed.RawFragment = ""

	return parsed.String(), nil
}

// ResolveListingURL resolves a possibly-relative href against the page it was
// found on, then normalizes the result.
func ResolveListingURL(pageURL, href string) (string, error) {
	trimmed := strings.TrimSpace(href)
	if trimmed == "" {
		return "", fmt.Errorf("empty href")
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid page URL %q: %w", pageURL, err)
	}

	ref, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid href %q: %w", trimmed, err)
	}

	return NormalizeListingURL(base.ResolveReference(ref).String())
}
