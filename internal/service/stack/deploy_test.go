package stack

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
)

func TestIsValidationError(t *testing.T) {
	notExist := &smithy.GenericAPIError{
		Code:    "ValidationError",
		Message: "Stack with id my-stack does not exist",
	}
	noUpdates := &smithy.GenericAPIError{
		Code:    "ValidationError",
		Message: "No updates are to be performed.",
	}
	throttled := &smithy.GenericAPIError{
		Code:    "Throttling",
		Message: "Rate exceeded",
	}

	tests := []struct {
		name    string
		err     error
		message string
		want    bool
	}{
		{name: "stack does not exist", err: notExist, message: "does not exist", want: true},
		{name: "no updates", err: noUpdates, message: "No updates are to be performed", want: true},
		{name: "wrapped error is unwrapped", err: fmt.Errorf("operation error: %w", notExist), message: "does not exist", want: true},
		{name: "message mismatch", err: notExist, message: "No updates are to be performed", want: false},
		{name: "different error code", err: throttled, message: "does not exist", want: false},
		{name: "plain error", err: errors.New("does not exist"), message: "does not exist", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isValidationError(tt.err, tt.message))
		})
	}
}
