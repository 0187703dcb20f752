package utility

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGoProtect_RecoversPanic(t *testing.T) {
	ran := false
	assert.NotPanics(t, func() {
		GoProtect("test", func() {
			ran = true
			panic("boom")
		})
	})
	assert.True(t, ran)
}

func TestContains(t *testing.T) {
	assert.True(t, Contains([]string{"admin", "staff"}, "staff"))
	assert.False(t, Contains([]string{"admin"}, "student"))
	assert.False(t, Contains(nil, 1))
}
