package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Các action audit
const (
	ActionDocumentCreate = "document_create"
	ActionInviteIssue    = "invite_issue"
	ActionInviteAccept   = "invite_accept"
	ActionProfileSetup   = "profile_setup"
)

// AuditAction một dòng audit
type AuditAction struct {
	Action       string                 `json:"action"`
	SubjectID    string                 `json:"subject_id"`    // uid người thực hiện
	ResourceID   string                 `json:"resource_id"`   // id document / invite / profile
	ResourceType string                 `json:"resource_type"` // tên collection
	BranchID     string                 `json:"branch_id"`
	Details      map[string]interface{} `json:"details"`
	Timestamp    time.Time              `json:"timestamp"`
}

// LogAction ghi một hành động audit. Không phụ thuộc fiber.Ctx để service gọi trực tiếp được.
func LogAction(a AuditAction) {
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now().UTC()
	}
	GetAuditLogger().WithFields(logrus.Fields{
		"action":        a.Action,
		"uid":           a.SubjectID,
		"resource_id":   a.ResourceID,
		"resource_type": a.ResourceType,
		"branch_id":     a.BranchID,
		"details":       a.Details,
		"timestamp":     a.Timestamp,
	}).Info("Audit log")
}
