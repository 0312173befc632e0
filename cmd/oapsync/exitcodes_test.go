package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"oap_import/internal/elements"
	"oap_import/internal/ezid"
	"oap_import/internal/feed"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain", errors.New("boom"), ExitError},
		{"pinned", withCode(ExitConfigError, errors.New("bad yaml")), ExitConfigError},
		{"mint", fmt.Errorf("resolve: %w", &ezid.MintError{StatusCode: 400, Message: "bad shoulder"}), ExitRemoteError},
		{"elements", fmt.Errorf("import: %w", &elements.APIError{StatusCode: 400}), ExitRemoteError},
		{"bad response", fmt.Errorf("put: %w", elements.ErrInvalidResponse), ExitRemoteError},
		{"data", &feed.DataError{Record: 3, Err: errors.New("no native")}, ExitDataError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestWithCode_Nil(t *testing.T) {
	assert.NoError(t, withCode(ExitConfigError, nil))
}
