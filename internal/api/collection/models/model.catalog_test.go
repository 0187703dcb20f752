package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_Consistency(t *testing.T) {
	reg := NewCatalogRegistry()
	assert.True(t, reg.Frozen())
	assert.Equal(t, 14, reg.Len())

	for _, name := range reg.Names() {
		def, ok := reg.Get(name)
		require.True(t, ok)
		assert.Equal(t, name, def.Name)
		assert.NotEmpty(t, def.RequiredFields, name)
		assert.NotEmpty(t, def.CreateRoles, name)
		assert.NotEmpty(t, def.ReadRoles, name)

		for _, rule := range def.RelationshipRules {
			if rule.AnyCollection {
				continue
			}
			require.NotEmpty(t, rule.Targets, "%s.%s", name, rule.FieldPath)
			for _, target := range rule.Targets {
				_, exists := reg.Get(target)
				assert.True(t, exists, "%s.%s -> %s", name, rule.FieldPath, target)
			}
		}
		if def.BranchScoped() {
			assert.Contains(t, def.RequiredFields, def.BranchScopeField)
		}
	}
}

func TestNewCatalogRegistry_Custom(t *testing.T) {
	reg := NewCatalogRegistry(CollectionDefinition{Name: "widgets", RequiredFields: []string{"a"}})
	assert.Equal(t, []string{"widgets"}, reg.Names())
}
