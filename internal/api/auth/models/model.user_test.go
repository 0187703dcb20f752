package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallerIdentity_HasAnyRole(t *testing.T) {
	c := &CallerIdentity{Roles: []string{"staff"}}
	assert.True(t, c.HasAnyRole([]string{"admin", "staff"}))
	assert.False(t, c.HasAnyRole([]string{"admin"}))

	var nilCaller *CallerIdentity
	assert.False(t, nilCaller.HasAnyRole([]string{"admin"}))
}

func TestProfileFromMap(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	p := ProfileFromMap(map[string]interface{}{
		"uid":           "u1",
		"branchId":      "B1",
		"roles":         []interface{}{"staff", 7},
		"provisionedAt": at,
		"provisioningHistory": []interface{}{
			ProvisioningEntry{BranchID: "B1", Roles: []string{"staff"}, InviteID: "i1", At: at}.ToMap(),
			"garbage",
		},
	})
	require.NotNil(t, p)
	assert.Equal(t, "u1", p.UID)
	assert.Equal(t, []string{"staff"}, p.Roles)
	assert.Equal(t, at, p.ProvisionedAt)
	require.Len(t, p.ProvisioningHistory, 1)
	assert.Equal(t, "i1", p.ProvisioningHistory[0].InviteID)
	assert.Nil(t, ProfileFromMap(nil))
}
