package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "message only",
			err:  New(KindInvalidInput, "YAML file is empty or invalid"),
			want: "YAML file is empty or invalid",
		},
		{
			name: "with path",
			err:  MissingField("tables[0].name"),
			want: "tables[0].name: required field is missing or empty",
		},
		{
			name: "with cause",
			err:  Wrap(KindIO, "Failed to write output file", errors.New("permission denied")),
			want: "Failed to write output file: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestPredicatesFollowWrapChain(t *testing.T) {
	err := fmt.Errorf("failed to convert: %w", Malformed("tables", "expected a sequence"))

	assert.True(t, IsMalformedInput(err))
	assert.False(t, IsMissingField(err))
	assert.False(t, IsIO(err))
	assert.False(t, IsMalformedInput(errors.New("plain")))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "missing_field", KindMissingField.String())
	assert.Equal(t, "malformed_input", KindMalformedInput.String())
	assert.Equal(t, "unknown", ErrKind(99).String())
}
