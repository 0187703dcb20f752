package models

import (
	"github.com/papichoolo/shds-admin/internal/registry"
)

var (
	adminOnly    = []string{"admin"}
	adminOrStaff = []string{"admin", "staff"}
)

// Catalog danh mục collection nghiệp vụ
func Catalog() []CollectionDefinition {
	return []CollectionDefinition{
		{
			Name:              "branches",
			RequiredFields:    []string{"name", "code", "timezone", "isActive", "address", "contact"},
			RelationshipRules: []RelationshipRule{OptionalRef("managerStaffId", "staff")},
			CreateRoles:       adminOnly,
			ReadRoles:         adminOrStaff,
		},
		{
			Name:              "staff",
			RequiredFields:    []string{"firebaseUid", "name", "email", "phone", "branchRoles"},
			RelationshipRules: []RelationshipRule{OptionalRef("branchRoles[].branchId", "branches")},
			CreateRoles:       adminOnly,
			ReadRoles:         adminOnly,
		},
		{
			Name:              "guardians",
			RequiredFields:    []string{"name", "phone", "email", "relationship", "studentIds"},
			RelationshipRules: []RelationshipRule{OptionalRef("studentIds[]", "students")},
			CreateRoles:       adminOrStaff,
			ReadRoles:         adminOrStaff,
		},
		{
			Name:           "students",
			RequiredFields: []string{"firstName", "lastName", "branchId", "status"},
			RelationshipRules: []RelationshipRule{
				Ref("branchId", "branches"),
				OptionalRef("guardianLinks[].guardianId", "guardians"),
			},
			BranchScopeField: "branchId",
			CreateRoles:      adminOrStaff,
			ReadRoles:        adminOrStaff,
		},
		{
			Name:           "batches",
			RequiredFields: []string{"name", "branchId", "startDate", "endDate", "schedule", "isActive", "leadInstructorId"},
			RelationshipRules: []RelationshipRule{
				Ref("branchId", "branches"),
				OptionalRef("leadInstructorId", "staff"),
			},
			BranchScopeField: "branchId",
			CreateRoles:      adminOrStaff,
			ReadRoles:        adminOrStaff,
		},
		{
			Name:           "enrollments",
			RequiredFields: []string{"studentId", "batchId", "branchId", "status", "joinedAt", "tuitionPlan"},
			RelationshipRules: []RelationshipRule{
				Ref("studentId", "students"),
				Ref("batchId", "batches"),
				Ref("branchId", "branches"),
			},
			BranchScopeField: "branchId",
			CreateRoles:      adminOrStaff,
			ReadRoles:        adminOrStaff,
		},
		{
			Name:           "attendanceRecords",
			RequiredFields: []string{"studentId", "batchId", "sessionDate", "status", "recordedBy", "recordedAt"},
			RelationshipRules: []RelationshipRule{
				Ref("studentId", "students"),
				Ref("batchId", "batches"),
				Ref("recordedBy", "staff"),
			},
			CreateRoles: adminOrStaff,
			ReadRoles:   adminOrStaff,
		},
		{
			Name:           "attendanceSummaries",
			RequiredFields: []string{"studentId", "batchId", "month", "year", "presentCount", "absentCount", "lateCount"},
			RelationshipRules: []RelationshipRule{
				Ref("studentId", "students"),
				Ref("batchId", "batches"),
			},
			CreateRoles: adminOrStaff,
			ReadRoles:   adminOrStaff,
		},
		{
			Name:              "invoices",
			RequiredFields:    []string{"enrollmentId", "billingPeriod", "issueDate", "dueDate", "status", "totalAmount"},
			RelationshipRules: []RelationshipRule{Ref("enrollmentId", "enrollments")},
			CreateRoles:       adminOnly,
			ReadRoles:         adminOrStaff,
		},
		{
			Name:              "payments",
			RequiredFields:    []string{"invoiceId", "amount", "method", "receivedAt", "reference"},
			RelationshipRules: []RelationshipRule{Ref("invoiceId", "invoices")},
			CreateRoles:       adminOnly,
			ReadRoles:         adminOrStaff,
		},
		{
			Name:           "roleAssignments",
			RequiredFields: []string{"staffId", "permissions", "branchScope"},
			RelationshipRules: []RelationshipRule{
				Ref("staffId", "staff"),
				OptionalRef("branchScope[]", "branches"),
			},
			CreateRoles: adminOnly,
			ReadRoles:   adminOnly,
		},
		{
			Name:           "auditLogs",
			RequiredFields: []string{"actorId", "action", "entityType", "entityId", "timestamp", "metadata"},
			RelationshipRules: []RelationshipRule{
				OptionalRef("actorId", "staff"),
				AnyRef("entityId"),
			},
			CreateRoles: adminOnly,
			ReadRoles:   adminOnly,
		},
		{
			Name:              "notifications",
			RequiredFields:    []string{"recipient", "channel", "message", "status", "scheduledAt"},
			RelationshipRules: []RelationshipRule{OptionalRef("recipient.id", "guardians", "staff")},
			CreateRoles:       adminOrStaff,
			ReadRoles:         adminOrStaff,
		},
		{
			Name:           "config",
			RequiredFields: []string{"key", "value", "environment", "updatedAt"},
			CreateRoles:    adminOnly,
			ReadRoles:      adminOrStaff,
		},
	}
}

// NewCatalogRegistry nạp danh mục vào registry và đóng băng
func NewCatalogRegistry(defs ...CollectionDefinition) *registry.Registry[CollectionDefinition] {
	if len(defs) == 0 {
		defs = Catalog()
	}
	r := registry.NewRegistry[CollectionDefinition]()
	for _, def := range defs {
		r.MustRegister(def.Name, def)
	}
	r.Freeze()
	return r
}
