// Package collectionsvc - engine dùng chung cho mọi collection nghiệp vụ:
// kiểm tra role, field bắt buộc, phạm vi chi nhánh, quan hệ khóa ngoại rồi ghi/đọc document.
package collectionsvc

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	authmodels "github.com/papichoolo/shds-admin/internal/api/auth/models"
	"github.com/papichoolo/shds-admin/internal/api/collection/models"
	"github.com/papichoolo/shds-admin/internal/common"
	"github.com/papichoolo/shds-admin/internal/database"
	"github.com/papichoolo/shds-admin/internal/logger"
	"github.com/papichoolo/shds-admin/internal/metrics"
	"github.com/papichoolo/shds-admin/internal/registry"
	"github.com/papichoolo/shds-admin/internal/utility"
)

// Các field metadata luôn do engine tính, ghi đè payload
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
	FieldCreatedBy = "createdBy"
	FieldUpdatedAt = "updatedAt"
	FieldUpdatedBy = "updatedBy"
)

const (
	opCreate = "create"
	opList   = "list"
)

// CollectionService engine collection. Không cache document giữa các lần gọi.
type CollectionService struct {
	defs  *registry.Registry[models.CollectionDefinition]
	store database.Store
	now   func() time.Time
}

// NewCollectionService tạo engine với danh mục đã đóng băng
func NewCollectionService(store database.Store, defs *registry.Registry[models.CollectionDefinition]) *CollectionService {
	if defs == nil {
		defs = models.NewCatalogRegistry()
	}
	return &CollectionService{
		defs:  defs,
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Definitions trả về danh mục theo thứ tự tên
func (s *CollectionService) Definitions() []models.CollectionDefinition {
	names := s.defs.Names()
	out := make([]models.CollectionDefinition, 0, len(names))
	for _, name := range names {
		def, _ := s.defs.Get(name)
		out = append(out, def)
	}
	return out
}

func (s *CollectionService) definition(name string) (models.CollectionDefinition, error) {
	def, ok := s.defs.Get(name)
	if !ok {
		return models.CollectionDefinition{}, common.ErrUnknownCollection(name)
	}
	return def, nil
}

// Create validate payload rồi ghi document mới.
// Thứ tự: role -> field bắt buộc -> phạm vi chi nhánh -> quan hệ -> metadata.
func (s *CollectionService) Create(ctx context.Context, name string, payload map[string]interface{}, caller *authmodels.CallerIdentity) (result map[string]interface{}, err error) {
	defer func() { observe(name, opCreate, err) }()

	def, err := s.definition(name)
	if err != nil {
		return nil, err
	}
	if !caller.HasAnyRole(def.CreateRoles) {
		return nil, common.ErrForbidden("forbidden")
	}
	if payload == nil {
		payload = map[string]interface{}{}
	}
	if err := validateRequired(def, payload); err != nil {
		return nil, err
	}
	if err := enforceBranchScope(def, payload, caller); err != nil {
		return nil, err
	}
	if err := s.validateRelationships(ctx, def, payload); err != nil {
		return nil, err
	}

	docID, err := payloadID(payload)
	if err != nil {
		return nil, err
	}
	if docID == "" {
		docID = s.store.NewID(name)
	}

	now := s.now()
	data := make(map[string]interface{}, len(payload)+4)
	for k, v := range payload {
		data[k] = v
	}
	data[FieldCreatedAt] = now
	data[FieldCreatedBy] = caller.UID
	data[FieldUpdatedAt] = now
	data[FieldUpdatedBy] = caller.UID

	if err := s.store.Set(ctx, name, docID, data, database.WriteReplace); err != nil {
		logger.WithModuleAndCollection("collection", name).WithError(err).Error("Ghi document thất bại")
		return nil, common.ConvertStoreError(err)
	}

	logger.LogAction(logger.AuditAction{
		Action:       logger.ActionDocumentCreate,
		SubjectID:    caller.UID,
		ResourceID:   docID,
		ResourceType: name,
		BranchID:     caller.BranchID,
	})

	return database.Document{ID: docID, Data: data}.Flatten(), nil
}

// List đọc document theo filter bằng, có áp phạm vi chi nhánh.
// Filter "id" là tra cứu theo id, trả về rỗng hoặc một phần tử.
func (s *CollectionService) List(ctx context.Context, name string, caller *authmodels.CallerIdentity, filters map[string]string) (result []map[string]interface{}, err error) {
	defer func() { observe(name, opList, err) }()

	def, err := s.definition(name)
	if err != nil {
		return nil, err
	}
	if !caller.HasAnyRole(def.ReadRoles) {
		return nil, common.ErrForbidden("forbidden")
	}

	remaining := make(map[string]string, len(filters))
	for k, v := range filters {
		// Key dạng "$where" sẽ thành toán tử trong filter của MongoDB
		if k == "" || strings.HasPrefix(k, "$") {
			return nil, common.ErrValidationFailed(fmt.Sprintf("invalid filter field '%s'", k), nil)
		}
		remaining[k] = v
	}

	var query []database.Filter
	scopeValue := ""
	if def.BranchScoped() {
		scopeValue = remaining[def.BranchScopeField]
		delete(remaining, def.BranchScopeField)
		if scopeValue != "" {
			if caller.BranchID != "" && scopeValue != caller.BranchID {
				return nil, common.ErrForbidden("branch scope violation")
			}
		} else {
			scopeValue = caller.BranchID
			if scopeValue == "" {
				return nil, common.ErrValidationFailed(
					fmt.Sprintf("missing '%s' filter for branch-scoped collection", def.BranchScopeField), nil)
			}
		}
		query = append(query, database.Filter{Field: def.BranchScopeField, Value: scopeValue})
	}

	if id := remaining[FieldID]; id != "" {
		doc, found, err := s.store.Get(ctx, name, id)
		if err != nil {
			return nil, common.ConvertStoreError(err)
		}
		if !found {
			return []map[string]interface{}{}, nil
		}
		if def.BranchScoped() {
			if v, _ := doc.Data[def.BranchScopeField].(string); v != scopeValue {
				return []map[string]interface{}{}, nil
			}
		}
		return []map[string]interface{}{doc.Flatten()}, nil
	}
	delete(remaining, FieldID)

	fields := make([]string, 0, len(remaining))
	for f := range remaining {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		query = append(query, database.Filter{Field: f, Value: remaining[f]})
	}

	docs, err := s.store.QueryEqual(ctx, name, query...)
	if err != nil {
		logger.WithModuleAndCollection("collection", name).WithError(err).Error("Truy vấn thất bại")
		return nil, common.ConvertStoreError(err)
	}
	result = make([]map[string]interface{}, 0, len(docs))
	for _, d := range docs {
		result = append(result, d.Flatten())
	}
	return result, nil
}

// validateRequired báo mọi field còn thiếu trong một lần. Field có mặt với giá trị null vẫn hợp lệ.
func validateRequired(def models.CollectionDefinition, payload map[string]interface{}) error {
	var missing []string
	for _, f := range def.RequiredFields {
		if _, ok := payload[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return common.ErrValidationFailed(
			fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")),
			map[string]interface{}{"missing": missing},
		)
	}
	return nil
}

// enforceBranchScope người gọi chưa gán chi nhánh được ghi vào mọi chi nhánh
func enforceBranchScope(def models.CollectionDefinition, payload map[string]interface{}, caller *authmodels.CallerIdentity) error {
	if !def.BranchScoped() {
		return nil
	}
	value := payload[def.BranchScopeField]
	if !truthy(value) {
		return common.ErrValidationFailed(
			fmt.Sprintf("field '%s' is required for branch scoping", def.BranchScopeField), nil)
	}
	if caller.BranchID == "" {
		return nil
	}
	if s, ok := value.(string); !ok || s != caller.BranchID {
		return common.ErrForbidden("branch scope violation")
	}
	return nil
}

func (s *CollectionService) validateRelationships(ctx context.Context, def models.CollectionDefinition, payload map[string]interface{}) error {
	for _, rule := range def.RelationshipRules {
		if rule.AnyCollection {
			continue
		}

		values := utility.ExtractPath(payload, rule.FieldPath)
		if len(values) == 0 {
			if rule.Optional {
				continue
			}
			return common.ErrValidationFailed(fmt.Sprintf("missing relationship field '%s'", rule.FieldPath), nil)
		}

		for _, v := range values {
			if v == nil || v == "" {
				if rule.Optional {
					continue
				}
				return common.ErrValidationFailed(fmt.Sprintf("relationship '%s' cannot be empty", rule.FieldPath), nil)
			}
			id, ok := v.(string)
			if !ok {
				return common.ErrValidationFailed(
					fmt.Sprintf("relationship '%s' values must be strings (document ids)", rule.FieldPath), nil)
			}
			found, err := s.existsInAny(ctx, rule.Targets, id)
			if err != nil {
				return err
			}
			if found {
				continue
			}
			if len(rule.Targets) == 1 {
				return common.ErrValidationFailed(
					fmt.Sprintf("related document '%s' not found in '%s'", id, rule.Targets[0]), nil)
			}
			return common.ErrValidationFailed(
				fmt.Sprintf("related document '%s' not found in any of: %s", id, strings.Join(rule.Targets, ", ")), nil)
		}
	}
	return nil
}

func (s *CollectionService) existsInAny(ctx context.Context, targets []string, id string) (bool, error) {
	for _, target := range targets {
		_, found, err := s.store.Get(ctx, target, id)
		if err != nil {
			return false, common.ConvertStoreError(err)
		}
		if found {
			return true, nil
		}
	}
	return false, nil
}

// payloadID id do người gọi cung cấp; rỗng nghĩa là để store cấp
func payloadID(payload map[string]interface{}) (string, error) {
	raw, ok := payload[FieldID]
	if !ok || raw == nil {
		return "", nil
	}
	id, ok := raw.(string)
	if !ok {
		return "", common.ErrValidationFailed("field 'id' must be a string", nil)
	}
	return id, nil
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case []interface{}:
		return len(t) > 0
	case map[string]interface{}:
		return len(t) > 0
	default:
		return true
	}
}

func observe(collection, op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = string(common.KindOf(err))
	}
	// Tên collection lạ đến từ URL, không đưa vào label
	if common.KindOf(err) == common.KindUnknownCollection {
		collection = "_unknown"
	}
	metrics.ObserveCollectionOp(collection, op, outcome)
	if err != nil && common.KindOf(err) == common.KindStore {
		logger.WithModuleAndCollection("collection", collection).WithFields(logrus.Fields{
			"operation": op,
		}).WithError(err).Warn("Lỗi document store")
	}
}
