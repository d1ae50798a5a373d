package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name     string  `json:"name" validate:"required,max=5"`
	Password string  `json:"password" validate:"required,min=6"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Seats    *int    `json:"seats,omitempty" validate:"omitempty,min=1,max=100"`
}

func TestStruct_Valid(t *testing.T) {
	email := "driver@example.com"
	seats := 4
	assert.NoError(t, Struct(sample{Name: "Ali", Password: "secret1", Email: &email, Seats: &seats}))
}

func TestStruct_FieldErrors(t *testing.T) {
	email := "not-an-email"
	seats := 0
	err := Struct(sample{Name: "Too long", Password: "123", Email: &email, Seats: &seats})
	require.Error(t, err)

	fields, ok := err.(FieldErrors)
	require.True(t, ok, "expected FieldErrors, got %T", err)
	assert.Equal(t, "must be at most 5 characters", fields["name"])
	assert.Equal(t, "must be at least 6 characters", fields["password"])
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Equal(t, "must be at least 1", fields["seats"])
}

func TestStruct_RequiredMessage(t *testing.T) {
	err := Struct(sample{})
	require.Error(t, err)
	assert.Equal(t, "name is required; password is required", err.Error())
}

func TestStruct_NonStruct(t *testing.T) {
	err := Struct("plain string")
	require.Error(t, err)
	_, ok := err.(FieldErrors)
	assert.False(t, ok)
}

func TestVar(t *testing.T) {
	assert.True(t, Var("ops@example.com", "email"))
	assert.False(t, Var("ops", "email"))
}
