package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidator(t *testing.T) {
	v := NewValidator().
		Field("--pdf", "", Required).
		Field("--start", 0, Positive).
		Field("--end", 3, Positive).
		Check(false, "--end", 3, "must not be before --start")

	assert.True(t, v.HasErrors())
	assert.Len(t, v.Errors(), 3)
	assert.True(t, errors.Is(v.Error(), ErrValidation))
	assert.Contains(t, v.ErrorMessage(), "'--pdf'")

	assert.NoError(t, NewValidator().Field("--xlsx", "codes.xlsx", Required).Error())
}

func TestAppError(t *testing.T) {
	err := NewAppError("DATABASE_ERROR", "update description", ErrDatabase)
	assert.ErrorIs(t, err, ErrDatabase)
	assert.Equal(t, "DATABASE_ERROR", ErrorCode(WrapError(err, "describe")))
	assert.Equal(t, "", ErrorCode(errors.New("plain")))
	assert.Nil(t, WrapError(nil, "x"))
}
