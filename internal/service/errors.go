package service

import "fmt"

// ConfigError reports a missing or unusable provider credential.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return e.Msg }

// ConflictError reports an attempt to import a TMDB id that is already in
// the library.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

// NotFoundError reports a failed existence pre-check.  No mutation has been
// attempted when it is returned.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("movie entry %q not found", e.ID)
}

// UpstreamError wraps a failed or malformed TMDB call.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return "Failed to fetch data from TMDB: " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ValidationError reports malformed caller input.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Msg
}
