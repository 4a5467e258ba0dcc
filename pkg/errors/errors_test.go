package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aecstation/costmap/pkg/errors"
)

func TestNotFoundError(t *testing.T) {
	err := errors.NewNotFoundError("phase", "deep")
	assert.Equal(t, "phase deep not found", err.Error())
	assert.True(t, stderrors.Is(err, errors.ErrNotFound))
	assert.True(t, errors.IsNotFound(err))
	assert.False(t, errors.IsNotFound(stderrors.New("other")))
}

func TestValidationError(t *testing.T) {
	err := errors.NewValidationError("code", "", "budget item code must not be empty")
	assert.Contains(t, err.Error(), "code")
	assert.True(t, stderrors.Is(err, errors.ErrInvalidInput))
	assert.True(t, errors.IsValidationError(err))
}

func TestParseErrorUnwrap(t *testing.T) {
	cause := stderrors.New("unexpected token")
	err := errors.WrapParse("yaml", "types.yaml", cause)

	var parseErr *errors.ParseError
	assert.True(t, stderrors.As(err, &parseErr))
	assert.Equal(t, cause, stderrors.Unwrap(parseErr))
	assert.Contains(t, err.Error(), "types.yaml")
}

func TestWrapHelpersPassNil(t *testing.T) {
	assert.NoError(t, errors.WrapIO("read", "x", nil))
	assert.NoError(t, errors.WrapParse("bc3", "x", nil))
}
