// Package models - định nghĩa collection (field bắt buộc, quan hệ, phạm vi chi nhánh, role).
package models

// RelationshipRule ràng buộc kiểu khóa ngoại cho một field path.
// Giá trị tại FieldPath phải là id tồn tại trong ít nhất một collection của Targets.
type RelationshipRule struct {
	FieldPath     string   `json:"fieldPath" yaml:"fieldPath"`
	Targets       []string `json:"targets,omitempty" yaml:"targets,omitempty"`
	Optional      bool     `json:"optional" yaml:"optional"`
	AnyCollection bool     `json:"anyCollection,omitempty" yaml:"anyCollection,omitempty"` // Trỏ tới collection bất kỳ, không kiểm tra
}

// CollectionDefinition mô tả cách validate và phân quyền một collection
type CollectionDefinition struct {
	Name              string             `json:"name" yaml:"name"`
	RequiredFields    []string           `json:"requiredFields" yaml:"requiredFields"`
	RelationshipRules []RelationshipRule `json:"relationshipRules,omitempty" yaml:"relationshipRules,omitempty"`
	BranchScopeField  string             `json:"branchScopeField,omitempty" yaml:"branchScopeField,omitempty"` // rỗng = không phân chi nhánh
	CreateRoles       []string           `json:"createRoles" yaml:"createRoles"`
	ReadRoles         []string           `json:"readRoles" yaml:"readRoles"`
}

// BranchScoped true khi collection có field phạm vi chi nhánh
func (d CollectionDefinition) BranchScoped() bool {
	return d.BranchScopeField != ""
}

// Ref quan hệ bắt buộc tới một hoặc nhiều collection
func Ref(path string, targets ...string) RelationshipRule {
	return RelationshipRule{FieldPath: path, Targets: targets}
}

// OptionalRef quan hệ cho phép thiếu hoặc rỗng
func OptionalRef(path string, targets ...string) RelationshipRule {
	return RelationshipRule{FieldPath: path, Targets: targets, Optional: true}
}

// AnyRef quan hệ tới collection bất kỳ, engine bỏ qua khi validate
func AnyRef(path string) RelationshipRule {
	return RelationshipRule{FieldPath: path, Optional: true, AnyCollection: true}
}
