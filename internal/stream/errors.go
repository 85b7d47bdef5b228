package stream

import "errors"

// Custom streaming errors
var (
	// ErrVideoNotFound indicates the requested video does not exist
	ErrVideoNotFound = errors.New("video not found")

	// ErrUpstreamUnavailable indicates the upstream URL could not be
	// resolved or the upstream probe/fetch failed
	ErrUpstreamUnavailable = errors.New("upstream file unavailable")

	// ErrBadRange indicates a malformed or unsatisfiable range header
	ErrBadRange = errors.New("invalid range request")
)

// IsVideoNotFound checks if the error is a video not found error
func IsVideoNotFound(err error) bool {
	return errors.Is(err, ErrVideoNotFound)
}

// IsUpstreamUnavailable checks if the error is an upstream unavailable error
func IsUpstreamUnavailable(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable)
}

// IsBadRange checks if the error is a bad range error
func IsBadRange(err error) bool {
	return errors.Is(err, ErrBadRange)
}
