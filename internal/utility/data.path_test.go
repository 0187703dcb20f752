package utility

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPath(t *testing.T) {
	payload := map[string]interface{}{
		"branchId": "B1",
		"empty":    nil,
		"guardianLinks": []interface{}{
			map[string]interface{}{"guardianId": "g1"},
			map[string]interface{}{"guardianId": "g2"},
			map[string]interface{}{"relation": "aunt"},
			"not-an-object",
		},
		"studentIds": []interface{}{"s1", "s2"},
		"recipient":  map[string]interface{}{"id": "r1"},
		"branchRoles": []interface{}{
			map[string]interface{}{"scopes": []interface{}{"a", "b"}},
			map[string]interface{}{"scopes": []interface{}{"c"}},
		},
		"scalarList": "x",
	}

	cases := []struct {
		name string
		path string
		want []interface{}
	}{
		{"scalar", "branchId", []interface{}{"B1"}},
		{"null leaf kept", "empty", []interface{}{nil}},
		{"missing leaf", "nope", []interface{}{}},
		{"nested object", "recipient.id", []interface{}{"r1"}},
		{"missing intermediate", "contact.id", []interface{}{}},
		{"null intermediate", "empty.id", []interface{}{}},
		{"scalar intermediate", "branchId.id", []interface{}{}},
		{"list of objects", "guardianLinks[].guardianId", []interface{}{"g1", "g2"}},
		{"list leaf", "studentIds[]", []interface{}{"s1", "s2"}},
		{"nested lists flatten", "branchRoles[].scopes[]", []interface{}{"a", "b", "c"}},
		{"list marker on scalar", "scalarList[]", []interface{}{}},
		{"list marker on object", "recipient[].id", []interface{}{}},
		{"object read as list element", "recipient.id[]", []interface{}{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractPath(payload, tc.path))
		})
	}
}

func TestExtractPath_NonObjectRoot(t *testing.T) {
	assert.Empty(t, ExtractPath(nil, "a"))
	assert.Empty(t, ExtractPath([]interface{}{"a"}, "a"))
	assert.Empty(t, ExtractPath("scalar", "a"))
}

func TestValueOf(t *testing.T) {
	assert.Equal(t, ValueObject, ValueOf(map[string]interface{}{}).Kind)
	assert.Equal(t, ValueList, ValueOf([]interface{}{}).Kind)
	assert.True(t, ValueOf(nil).IsNull())
	assert.Equal(t, ValueAbsent, ValueOf("x").Field("k").Kind)
}
