// Package models - danh tính người gọi và hồ sơ người dùng thuộc domain auth.
package models

import (
	"time"

	"github.com/papichoolo/shds-admin/internal/utility"
)

// Các role dùng trong hệ thống
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleStaff      = "staff"
	RoleStudent    = "student"
)

// DefaultRole role khi token và hồ sơ đều không có role
const DefaultRole = RoleStudent

// CallerIdentity danh tính đã xác thực của request hiện tại.
// Không được engine lưu lại, chỉ sống trong một request.
type CallerIdentity struct {
	UID      string       `json:"uid"`
	Roles    []string     `json:"roles"`
	BranchID string       `json:"branchId,omitempty"` // rỗng = chưa gán chi nhánh
	Email    string       `json:"email,omitempty"`
	Profile  *UserProfile `json:"profile,omitempty"`
}

// HasAnyRole true khi người gọi có ít nhất một role trong allowed
func (c *CallerIdentity) HasAnyRole(allowed []string) bool {
	if c == nil {
		return false
	}
	for _, r := range c.Roles {
		if utility.Contains(allowed, r) {
			return true
		}
	}
	return false
}

// ProvisioningEntry một lần cấp quyền (manual hoặc nhận lời mời)
type ProvisioningEntry struct {
	BranchID   string    `json:"branchId"`
	Roles      []string  `json:"roles"`
	InviteID   string    `json:"inviteId,omitempty"`
	TargetType string    `json:"targetType,omitempty"`
	At         time.Time `json:"at"`
}

// UserProfile hồ sơ lưu trong collection users, key = uid
type UserProfile struct {
	UID                 string              `json:"uid"`
	BranchID            string              `json:"branchId"`
	Roles               []string            `json:"roles"`
	DisplayName         string              `json:"displayName,omitempty"`
	StudentID           string              `json:"studentId,omitempty"`
	GuardianID          string              `json:"guardianId,omitempty"`
	TargetType          string              `json:"targetType,omitempty"`
	InviteID            string              `json:"inviteId,omitempty"`
	Email               string              `json:"email,omitempty"`
	ProvisionedAt       time.Time           `json:"provisionedAt"`
	ProvisioningHistory []ProvisioningEntry `json:"provisioningHistory"`
}

// ToMap chuyển entry sang map để ghi vào document store
func (e ProvisioningEntry) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"branchId": e.BranchID,
		"roles":    StringsToAny(e.Roles),
		"at":       e.At,
	}
	if e.InviteID != "" {
		m["inviteId"] = e.InviteID
	}
	if e.TargetType != "" {
		m["targetType"] = e.TargetType
	}
	return m
}

// ProfileFromMap đọc hồ sơ từ document đã chuẩn hóa của store
func ProfileFromMap(data map[string]interface{}) *UserProfile {
	if data == nil {
		return nil
	}
	p := &UserProfile{
		UID:         stringField(data, "uid"),
		BranchID:    stringField(data, "branchId"),
		Roles:       StringSlice(data["roles"]),
		DisplayName: stringField(data, "displayName"),
		StudentID:   stringField(data, "studentId"),
		GuardianID:  stringField(data, "guardianId"),
		TargetType:  stringField(data, "targetType"),
		InviteID:    stringField(data, "inviteId"),
		Email:       stringField(data, "email"),
	}
	if t, ok := data["provisionedAt"].(time.Time); ok {
		p.ProvisionedAt = t
	}
	if items, ok := data["provisioningHistory"].([]interface{}); ok {
		for _, item := range items {
			m, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			entry := ProvisioningEntry{
				BranchID:   stringField(m, "branchId"),
				Roles:      StringSlice(m["roles"]),
				InviteID:   stringField(m, "inviteId"),
				TargetType: stringField(m, "targetType"),
			}
			if t, ok := m["at"].(time.Time); ok {
				entry.At = t
			}
			p.ProvisioningHistory = append(p.ProvisioningHistory, entry)
		}
	}
	return p
}

// StringSlice lấy các phần tử string của một list, bỏ qua phần tử khác kiểu
func StringSlice(v interface{}) []string {
	switch t := v.(type) {
	case []string:
		return append([]string(nil), t...)
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// StringsToAny chuyển []string sang []interface{} cho document store
func StringsToAny(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

func stringField(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}
