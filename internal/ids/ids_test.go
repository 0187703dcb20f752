package ids

import (
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
)

func TestNew_UniqueAndSorted(t *testing.T) {
	prev := ""
	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		id := New()
		_, err := ulid.ParseStrict(id)
		assert.NoError(t, err)
		assert.False(t, seen[id])
		assert.Greater(t, id, prev)
		seen[id] = true
		prev = id
	}
}
