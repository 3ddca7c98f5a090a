package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsMatchSentinels(t *testing.T) {
	assert.True(t, errors.Is(NotFound("user", "abc"), ErrNotFound))
	assert.True(t, errors.Is(Validation("name", "name is required"), ErrValidation))
	assert.True(t, errors.Is(Conflict("duplicate email"), ErrConflict))
	assert.True(t, errors.Is(Transient("create user", errors.New("timeout")), ErrTransient))
	assert.True(t, errors.Is(Upstream("bad output"), ErrUpstream))
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "user abc not found", NotFound("user", "abc").Error())
	assert.Equal(t, "forum 42 not found", NotFound("forum", 42).Error())

	v := Validation("skill", "skill is required")
	assert.Equal(t, "skill is required", v.Error())
	assert.Equal(t, "skill", v.Field)
}

func TestWrappedErrorsStillClassify(t *testing.T) {
	wrapped := fmt.Errorf("replace experiences: %w", Validation("skill", "skill is required"))
	assert.True(t, errors.Is(wrapped, ErrValidation))

	var appErr *AppError
	assert.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, "skill is required", appErr.Message)
}

func TestKindsAreDisjoint(t *testing.T) {
	err := NotFound("post", 1)
	assert.False(t, errors.Is(err, ErrValidation))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrTransient))
	assert.False(t, errors.Is(err, ErrUpstream))
}
