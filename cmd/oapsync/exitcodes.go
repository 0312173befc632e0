package main

import (
	"errors"

	"oap_import/internal/elements"
	"oap_import/internal/ezid"
	"oap_import/internal/feed"
)

const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (store failure, invalid arguments)
	ExitConfigError = 2 // Missing or invalid configuration
	ExitDataError   = 3 // Unreadable input file
	ExitRemoteError = 4 // The identifier service or the research-information system refused a request
)

// exitError pins the exit code of an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	var apiErr *elements.APIError
	switch {
	case ezid.IsMintError(err), errors.As(err, &apiErr),
		errors.Is(err, ezid.ErrInvalidResponse), errors.Is(err, elements.ErrInvalidResponse):
		return ExitRemoteError
	case feed.IsDataError(err):
		return ExitDataError
	}
	return ExitError
}
