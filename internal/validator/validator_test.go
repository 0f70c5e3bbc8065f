package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,strong-password"`
	Role     string `json:"role" validate:"omitempty,is-user-role"`
	Level    string `json:"level" validate:"omitempty,is-course-level"`
	Progress int    `json:"progress" validate:"gte=0,lte=100"`
}

func TestValidate_OK(t *testing.T) {
	v := New()
	assert.NoError(t, v.Validate(&signup{Email: "a@b.co", Password: "abcdefg1", Role: "student", Level: "advanced", Progress: 100}))
}

func TestValidate_FieldMapUsesJSONNames(t *testing.T) {
	v := New()
	err := v.Validate(&signup{Email: "nope", Password: "short", Role: "wizard", Level: "expert", Progress: 101})

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "Must be a valid email address", vErr.Errors["email"])
	assert.Contains(t, vErr.Errors["password"], "letters and digits")
	assert.Equal(t, "Must be a valid role", vErr.Errors["role"])
	assert.Contains(t, vErr.Errors, "level")
	assert.Equal(t, "Must be less than or equal to 100", vErr.Errors["progress"])
	assert.Contains(t, err.Error(), "field 'email'")
}

func TestValidate_Required(t *testing.T) {
	v := New()
	err := v.Validate(&signup{})

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "This field is required", vErr.Errors["email"])
	assert.Equal(t, "This field is required", vErr.Errors["password"])
	assert.NotContains(t, vErr.Errors, "role")
}

func TestValidate_PasswordByteLimit(t *testing.T) {
	v := New()
	err := v.Validate(&signup{Email: "a@b.co", Password: strings.Repeat("пароль", 6) + "1234"})

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, vErr.Errors["password"], "72 bytes")
}
