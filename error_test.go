package pagesnap_test

import (
	"errors"
	"testing"

	"github.com/fwojciec/pagesnap"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := pagesnap.Errorf(pagesnap.ENOTFOUND, "entry %q not found", "abc")

	assert.Equal(t, pagesnap.ENOTFOUND, pagesnap.ErrorCode(err))
	assert.Equal(t, "entry \"abc\" not found", pagesnap.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, pagesnap.ErrorCode(nil))
}

func TestErrorCode_NonApplicationError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, pagesnap.EINTERNAL, pagesnap.ErrorCode(errors.New("boom")))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, pagesnap.ErrorMessage(nil))
}

func TestErrorMessage_NonApplicationError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Internal error.", pagesnap.ErrorMessage(errors.New("boom")))
}
