// Package models - bản ghi lời mời trong collection userInvites.
package models

import (
	"time"

	authmodels "github.com/papichoolo/shds-admin/internal/api/auth/models"
	"github.com/papichoolo/shds-admin/internal/database"
)

// Trạng thái lời mời. Chỉ đi một chiều pending -> accepted.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
)

// ManualSetupToken token đặc biệt cho phép tự cấp quyền không cần lời mời
const ManualSetupToken = "-1"

// Các loại đối tượng được mời
const (
	TargetAdmin    = "admin"
	TargetStaff    = "staff"
	TargetStudent  = "student"
	TargetGuardian = "guardian"
)

// DefaultTargetType khi payload không chỉ định
const DefaultTargetType = TargetStaff

// HistoryEntry một lần chuyển trạng thái, chỉ được nối thêm
type HistoryEntry struct {
	Status string    `json:"status"`
	At     time.Time `json:"at"`
	By     string    `json:"by"`
}

// ToMap dạng lưu trong document store
func (h HistoryEntry) ToMap() map[string]interface{} {
	return map[string]interface{}{"status": h.Status, "at": h.At, "by": h.By}
}

// InviteRecord lời mời đã lưu. TokenHash không bao giờ trả ra ngoài.
type InviteRecord struct {
	ID          string         `json:"id"`
	TokenHash   string         `json:"-"`
	Email       string         `json:"email"`
	BranchID    string         `json:"branchId"`
	Roles       []string       `json:"roles"`
	TargetType  string         `json:"targetType"`
	TargetID    string         `json:"targetId,omitempty"`
	StudentName string         `json:"studentName,omitempty"`
	BatchName   string         `json:"batchName,omitempty"`
	Status      string         `json:"status"`
	CreatedAt   time.Time      `json:"createdAt"`
	CreatedBy   string         `json:"createdBy"`
	AcceptedAt  *time.Time     `json:"acceptedAt,omitempty"`
	AcceptedBy  string         `json:"acceptedBy,omitempty"`
	History     []HistoryEntry `json:"history"`
}

// IssuedInvite kết quả phát hành: bản ghi + link + token gốc (chỉ trả về đúng một lần)
type IssuedInvite struct {
	InviteRecord
	InviteLink string `json:"inviteLink"`
	Token      string `json:"token"`
}

// HistoryMaps history dạng lưu trong store
func (r *InviteRecord) HistoryMaps() []interface{} {
	out := make([]interface{}, 0, len(r.History))
	for _, h := range r.History {
		out = append(out, h.ToMap())
	}
	return out
}

// ToMap dạng lưu trong store, có tokenHash
func (r *InviteRecord) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"tokenHash":  r.TokenHash,
		"email":      r.Email,
		"branchId":   r.BranchID,
		"roles":      authmodels.StringsToAny(r.Roles),
		"targetType": r.TargetType,
		"status":     r.Status,
		"createdAt":  r.CreatedAt,
		"createdBy":  r.CreatedBy,
		"history":    r.HistoryMaps(),
	}
	if r.TargetID != "" {
		m["targetId"] = r.TargetID
	}
	if r.StudentName != "" {
		m["studentName"] = r.StudentName
	}
	if r.BatchName != "" {
		m["batchName"] = r.BatchName
	}
	return m
}

// InviteFromDocument đọc bản ghi từ document của store
func InviteFromDocument(doc database.Document) *InviteRecord {
	d := doc.Data
	str := func(k string) string {
		s, _ := d[k].(string)
		return s
	}
	r := &InviteRecord{
		ID:          doc.ID,
		TokenHash:   str("tokenHash"),
		Email:       str("email"),
		BranchID:    str("branchId"),
		Roles:       authmodels.StringSlice(d["roles"]),
		TargetType:  str("targetType"),
		TargetID:    str("targetId"),
		StudentName: str("studentName"),
		BatchName:   str("batchName"),
		Status:      str("status"),
		CreatedBy:   str("createdBy"),
		AcceptedBy:  str("acceptedBy"),
	}
	if t, ok := d["createdAt"].(time.Time); ok {
		r.CreatedAt = t
	}
	if t, ok := d["acceptedAt"].(time.Time); ok {
		r.AcceptedAt = &t
	}
	if items, ok := d["history"].([]interface{}); ok {
		for _, item := range items {
			m, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			h := HistoryEntry{}
			h.Status, _ = m["status"].(string)
			h.By, _ = m["by"].(string)
			if t, ok := m["at"].(time.Time); ok {
				h.At = t
			}
			r.History = append(r.History, h)
		}
	}
	return r
}
