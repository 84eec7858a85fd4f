package enrichment

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrUnconfigured indicates no AI provider API key was present at startup
var ErrUnconfigured = errors.New("no AI provider configured")

// FailureCause classifies a provider error for the degraded-result reasoning
type FailureCause string

const (
	CauseUnconfigured FailureCause = "unconfigured"
	CauseAuth         FailureCause = "auth"
	CauseRateLimit    FailureCause = "rate_limit"
	CauseBadOutput    FailureCause = "bad_output"
	CauseUnknown      FailureCause = "unknown"
)

// IsRateLimitError checks if an error is a provider rate limit error.
// Matches 429 status codes and RESOURCE_EXHAUSTED/quota errors.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "RESOURCE_EXHAUSTED") ||
		strings.Contains(errStr, "quota")
}

// IsAuthError checks if an error indicates a bad or rejected API key
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "401") ||
		strings.Contains(errStr, "403") ||
		strings.Contains(errStr, "invalid_api_key") ||
		strings.Contains(errStr, "invalid x-api-key") ||
		strings.Contains(errStr, "permission_denied") ||
		strings.Contains(errStr, "unauthenticated")
}

// ClassifyError maps a provider error to its failure cause
func ClassifyError(err error) FailureCause {
	switch {
	case err == nil:
		return CauseUnknown
	case errors.Is(err, ErrUnconfigured):
		return CauseUnconfigured
	case IsAuthError(err):
		return CauseAuth
	case IsRateLimitError(err):
		return CauseRateLimit
	default:
		return CauseUnknown
	}
}

// FailureReasoning renders a human-readable explanation for a degraded
// analysis result. This string ends up on the persisted listing, so it
// tells the operator what to fix rather than dumping the raw error.
func FailureReasoning(provider string, err error) string {
	switch ClassifyError(err) {
	case CauseUnconfigured:
		return "AI analysis skipped: no provider API key configured. Set ANTHROPIC_API_KEY or GEMINI_API_KEY to enable enrichment."
	case CauseAuth:
		return "AI analysis failed: " + provider + " rejected the API key. Check the configured credentials."
	case CauseRateLimit:
		return "AI analysis failed: " + provider + " rate limit exceeded. The listing was stored without enrichment."
	default:
		return "AI analysis failed (" + provider + "): " + err.Error()
	}
}

// retryDelayRegex matches "Please retry in Xs" or "retryDelay:Xs" patterns
var retryDelayRegex = regexp.MustCompile(`(?i)(?:Please retry in |retryDelay[:\s]+)(\d+(?:\.\d+)?)\s*s`)

// ExtractRetryDelay parses the API-suggested retry delay from a rate limit
// error. Returns 0 if no delay is present. Analysis is single-attempt per
// listing, so the delay is surfaced in logs rather than slept on.
func ExtractRetryDelay(err error) time.Duration {
	if err == nil {
		return 0
	}

	matches := retryDelayRegex.FindStringSubmatch(err.Error())
	if len(matches) < 2 {
		return 0
	}

	seconds, parseErr := strconv.ParseFloat(matches[1], 64)
	if parseErr != nil {
		return 0
	}

	return time.Duration(seconds * float64(time.Second))
}
