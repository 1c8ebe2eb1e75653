package internal_test

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todotrack/internal"
)

func TestError_wrapping(t *testing.T) {
	t.Parallel()

	err := internal.WrapErrorf(io.EOF, internal.ErrorCodeNotFound, "repo.Find")

	var ierr *internal.Error
	require.ErrorAs(t, err, &ierr)

	assert.Equal(t, internal.ErrorCodeNotFound, ierr.Code())
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "repo.Find: EOF", err.Error())
}

func TestNewErrorf(t *testing.T) {
	t.Parallel()

	err := internal.NewErrorf(internal.ErrorCodeInvalidArgument, "title %q is blank", " ")

	var ierr *internal.Error
	require.ErrorAs(t, err, &ierr)

	assert.Equal(t, internal.ErrorCodeInvalidArgument, ierr.Code())
	assert.Nil(t, errors.Unwrap(err))
	assert.Equal(t, `title " " is blank`, err.Error())
}
