package checker

import (
	"errors"
)

var (
	// ErrInvalidURL indicates the input could not be parsed into a URL with a host
	ErrInvalidURL = errors.New("invalid URL")

	// ErrUnsupportedScheme indicates a URL outside http/https, which is never analyzed
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")
)

// Error type constants reported to hosts
const (
	ErrorNone              = "none"
	ErrorInvalidURL        = "invalid_url"
	ErrorUnsupportedScheme = "unsupported_scheme"
	ErrorMissingTarget     = "missing_target"
	ErrorUnknownTarget     = "unknown_target"
	ErrorStaleGeneration   = "stale_generation"
	ErrorInternal          = "internal_error"
)

// codedError lets other packages register their sentinel errors with ClassifyError
type codedError interface {
	ErrorCode() string
}

// ClassifyError determines the error type from a Go error
// Returns the error type constant and a human-readable message
func ClassifyError(err error) (string, string) {
	if err == nil {
		return ErrorNone, ""
	}

	if errors.Is(err, ErrInvalidURL) {
		return ErrorInvalidURL, "URL could not be parsed"
	}
	if errors.Is(err, ErrUnsupportedScheme) {
		return ErrorUnsupportedScheme, "only http and https URLs are analyzed"
	}

	var coded codedError
	if errors.As(err, &coded) {
		return coded.ErrorCode(), err.Error()
	}

	return ErrorInternal, err.Error()
}
