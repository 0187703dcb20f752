package authsvc

import (
	"context"
	"time"

	"github.com/papichoolo/shds-admin/internal/api/auth/models"
	"github.com/papichoolo/shds-admin/internal/common"
	"github.com/papichoolo/shds-admin/internal/database"
	"github.com/papichoolo/shds-admin/internal/global"
	"github.com/papichoolo/shds-admin/internal/logger"
)

// SetupInput tham số cấp quyền. Field chuỗi rỗng không được ghi (không đè giá trị cũ).
type SetupInput struct {
	UID         string
	BranchID    string
	Roles       []string
	DisplayName string
	StudentID   string
	GuardianID  string
	TargetType  string
	InviteID    string
	Email       string
}

// ProfileService đọc/ghi hồ sơ trong collection users
type ProfileService struct {
	store database.Store
	now   func() time.Time
}

// NewProfileService tạo service hồ sơ
func NewProfileService(store database.Store) *ProfileService {
	return &ProfileService{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// Get trả về nil, nil nếu chưa có hồ sơ
func (s *ProfileService) Get(ctx context.Context, uid string) (*models.UserProfile, error) {
	doc, found, err := s.store.Get(ctx, global.CollectionUsers, uid)
	if err != nil {
		return nil, common.ConvertStoreError(err)
	}
	if !found {
		return nil, nil
	}
	return models.ProfileFromMap(doc.Data), nil
}

// Setup ghi merge hồ sơ và nối thêm một dòng provisioningHistory.
// Hồ sơ cũ chỉ được đọc để nối history.
func (s *ProfileService) Setup(ctx context.Context, in SetupInput) (*models.UserProfile, error) {
	existing, found, err := s.store.Get(ctx, global.CollectionUsers, in.UID)
	if err != nil {
		return nil, common.ConvertStoreError(err)
	}

	var history []interface{}
	if found {
		if items, ok := existing.Data["provisioningHistory"].([]interface{}); ok {
			history = append(history, items...)
		}
	}

	now := s.now()
	history = append(history, models.ProvisioningEntry{
		BranchID:   in.BranchID,
		Roles:      in.Roles,
		InviteID:   in.InviteID,
		TargetType: in.TargetType,
		At:         now,
	}.ToMap())

	fields := map[string]interface{}{
		"uid":                 in.UID,
		"branchId":            in.BranchID,
		"roles":               models.StringsToAny(in.Roles),
		"provisionedAt":       now,
		"provisioningHistory": history,
	}
	optional := map[string]string{
		"displayName": in.DisplayName,
		"studentId":   in.StudentID,
		"guardianId":  in.GuardianID,
		"targetType":  in.TargetType,
		"inviteId":    in.InviteID,
		"email":       in.Email,
	}
	for k, v := range optional {
		if v != "" {
			fields[k] = v
		}
	}

	if err := s.store.Set(ctx, global.CollectionUsers, in.UID, fields, database.WriteMerge); err != nil {
		return nil, common.ConvertStoreError(err)
	}

	logger.LogAction(logger.AuditAction{
		Action:       logger.ActionProfileSetup,
		SubjectID:    in.UID,
		ResourceID:   in.UID,
		ResourceType: global.CollectionUsers,
		BranchID:     in.BranchID,
		Details:      map[string]interface{}{"roles": in.Roles, "inviteId": in.InviteID},
	})

	merged := map[string]interface{}{}
	if found {
		for k, v := range existing.Data {
			merged[k] = v
		}
	}
	for k, v := range fields {
		merged[k] = v
	}
	return models.ProfileFromMap(merged), nil
}
