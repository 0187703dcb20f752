package global

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string   `validate:"required,no_xss"`
	Roles []string `validate:"required,min=1,dive,role_name"`
}

func TestValidator_CustomRules(t *testing.T) {
	InitValidator()

	require.NoError(t, Validate.Struct(sample{Name: "Lan", Roles: []string{"staff", "super_admin"}}))

	err := Validate.Struct(sample{Name: "<script>alert(1)</script>", Roles: []string{"Staff!"}})
	require.Error(t, err)
	msgs := ValidationMessages(err)
	assert.Contains(t, msgs, "Name: no_xss")
	assert.Contains(t, msgs, "Roles[0]: role_name")

	err = Validate.Struct(sample{Name: "a"})
	assert.Contains(t, ValidationMessages(err), "Roles: required")
	assert.Nil(t, ValidationMessages(nil))
}
