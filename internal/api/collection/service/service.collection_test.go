package collectionsvc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authmodels "github.com/papichoolo/shds-admin/internal/api/auth/models"
	"github.com/papichoolo/shds-admin/internal/api/collection/models"
	"github.com/papichoolo/shds-admin/internal/common"
	"github.com/papichoolo/shds-admin/internal/database"
)

var fixedNow = time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, defs ...models.CollectionDefinition) (*CollectionService, *database.MemoryStore) {
	t.Helper()
	store := database.NewMemoryStore()
	svc := NewCollectionService(store, models.NewCatalogRegistry(defs...))
	svc.now = func() time.Time { return fixedNow }
	return svc, store
}

func admin(branch string) *authmodels.CallerIdentity {
	return &authmodels.CallerIdentity{UID: "admin-1", Roles: []string{"admin"}, BranchID: branch}
}

func staff(branch string) *authmodels.CallerIdentity {
	return &authmodels.CallerIdentity{UID: "staff-1", Roles: []string{"staff"}, BranchID: branch}
}

func branchPayload(id string) map[string]interface{} {
	return map[string]interface{}{
		"id": id, "name": "Branch " + id, "code": id, "timezone": "Asia/Kolkata",
		"isActive": true, "address": "street", "contact": "000",
	}
}

func studentPayload(id, branch string) map[string]interface{} {
	return map[string]interface{}{
		"id": id, "firstName": "Asha", "lastName": "K", "branchId": branch, "status": "active",
	}
}

func seedBranch(t *testing.T, svc *CollectionService, id string) {
	t.Helper()
	_, err := svc.Create(context.Background(), "branches", branchPayload(id), admin(""))
	require.NoError(t, err)
}

func TestCreate_UnknownCollection(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Create(context.Background(), "widgets", map[string]interface{}{}, admin("B1"))
	assert.Equal(t, common.KindUnknownCollection, common.KindOf(err))
	assert.EqualError(t, err, "unknown collection 'widgets'")

	_, err = svc.List(context.Background(), "widgets", admin("B1"), nil)
	assert.Equal(t, common.KindUnknownCollection, common.KindOf(err))
}

func TestCreate_StudentRoleForbidden(t *testing.T) {
	svc, _ := newTestService(t)
	student := &authmodels.CallerIdentity{UID: "s", Roles: []string{"student"}, BranchID: "B1"}

	_, err := svc.Create(context.Background(), "students", studentPayload("s1", "B1"), student)
	assert.Equal(t, common.KindForbidden, common.KindOf(err))
	assert.EqualError(t, err, "forbidden")
}

func TestCreate_MissingRequiredListsEveryField(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Create(context.Background(), "students", map[string]interface{}{"branchId": "B1"}, admin("B1"))
	require.Error(t, err)
	assert.Equal(t, common.KindValidationFailed, common.KindOf(err))
	assert.EqualError(t, err, "missing required fields: firstName, lastName, status")

	for _, def := range models.Catalog() {
		_, err := svc.Create(context.Background(), def.Name, map[string]interface{}{}, admin(""))
		if err == nil || common.KindOf(err) == common.KindForbidden {
			continue
		}
		for _, field := range def.RequiredFields {
			assert.Contains(t, err.Error(), field, def.Name)
		}
	}
}

func TestCreate_NullSatisfiesRequiredPresence(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Create(context.Background(), "config", map[string]interface{}{
		"key": "k", "value": nil, "environment": "dev", "updatedAt": nil,
	}, admin(""))
	require.NoError(t, err)
}

func TestCreate_BranchScope(t *testing.T) {
	svc, _ := newTestService(t)
	seedBranch(t, svc, "B1")
	seedBranch(t, svc, "B2")
	ctx := context.Background()

	_, err := svc.Create(ctx, "students", studentPayload("s1", "B2"), staff("B1"))
	assert.Equal(t, common.KindForbidden, common.KindOf(err))
	assert.EqualError(t, err, "branch scope violation")

	_, err = svc.Create(ctx, "students", studentPayload("s1", ""), staff("B1"))
	assert.Equal(t, common.KindValidationFailed, common.KindOf(err))
	assert.EqualError(t, err, "field 'branchId' is required for branch scoping")

	// Chưa gán chi nhánh thì ghi được vào chi nhánh bất kỳ
	_, err = svc.Create(ctx, "students", studentPayload("s2", "B2"), staff(""))
	assert.NoError(t, err)
}

func TestCreate_RelationshipTargetMustExist(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "students", studentPayload("s1", "B1"), admin("B1"))
	assert.Equal(t, common.KindValidationFailed, common.KindOf(err))
	assert.EqualError(t, err, "related document 'B1' not found in 'branches'")

	seedBranch(t, svc, "B1")
	_, err = svc.Create(ctx, "students", studentPayload("s1", "B1"), admin("B1"))
	assert.NoError(t, err)
}

func TestCreate_RelationshipValueShapes(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	seedBranch(t, svc, "B1")

	p := studentPayload("s1", "B1")
	p["guardianLinks"] = []interface{}{map[string]interface{}{"guardianId": 42.0}}
	_, err := svc.Create(ctx, "students", p, admin("B1"))
	assert.EqualError(t, err, "relationship 'guardianLinks[].guardianId' values must be strings (document ids)")

	// Optional: phần tử null hoặc rỗng được bỏ qua
	p["guardianLinks"] = []interface{}{map[string]interface{}{"guardianId": nil}, map[string]interface{}{"guardianId": ""}}
	_, err = svc.Create(ctx, "students", p, admin("B1"))
	assert.NoError(t, err)

	_, err = svc.Create(ctx, "attendanceRecords", map[string]interface{}{
		"studentId": "s1", "batchId": nil, "sessionDate": "2024-09-01", "status": "present",
		"recordedBy": "x", "recordedAt": "now",
	}, admin("B1"))
	assert.EqualError(t, err, "relationship 'batchId' cannot be empty")
}

func TestCreate_MissingRelationshipField(t *testing.T) {
	svc, _ := newTestService(t, models.CollectionDefinition{
		Name:              "notes",
		RequiredFields:    []string{"recipient"},
		RelationshipRules: []models.RelationshipRule{models.Ref("recipient.id", "notes")},
		CreateRoles:       []string{"admin"},
		ReadRoles:         []string{"admin"},
	})
	_, err := svc.Create(context.Background(), "notes", map[string]interface{}{"recipient": map[string]interface{}{}}, admin(""))
	assert.EqualError(t, err, "missing relationship field 'recipient.id'")
}

func TestCreate_MultiTargetAndWildcard(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	notification := map[string]interface{}{
		"recipient": map[string]interface{}{"id": "p1"}, "channel": "email",
		"message": "hi", "status": "queued", "scheduledAt": "2024-09-02",
	}
	_, err := svc.Create(ctx, "notifications", notification, admin(""))
	assert.EqualError(t, err, "related document 'p1' not found in any of: guardians, staff")

	require.NoError(t, store.Set(ctx, "staff", "p1", map[string]interface{}{"name": "T"}, database.WriteReplace))
	_, err = svc.Create(ctx, "notifications", notification, admin(""))
	assert.NoError(t, err)

	_, err = svc.Create(ctx, "auditLogs", map[string]interface{}{
		"actorId": nil, "action": "login", "entityType": "anything",
		"entityId": "does-not-exist", "timestamp": "t", "metadata": map[string]interface{}{},
	}, admin(""))
	assert.NoError(t, err)
}

func TestCreate_MetadataOverridesPayloadAndRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	p := branchPayload("B1")
	p["createdBy"] = "spoofed"
	p["updatedAt"] = "yesterday"
	created, err := svc.Create(ctx, "branches", p, admin("B1"))
	require.NoError(t, err)
	assert.Equal(t, "B1", created["id"])
	assert.Equal(t, "admin-1", created["createdBy"])
	assert.Equal(t, fixedNow, created["updatedAt"])
	assert.Equal(t, "spoofed", p["createdBy"], "payload của người gọi không bị sửa")

	got, err := svc.List(ctx, "branches", admin("B1"), map[string]string{"id": "B1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, created, got[0])

	none, err := svc.List(ctx, "branches", admin("B1"), map[string]string{"id": "nope"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCreate_StoreAssignsIDAndRejectsNonStringID(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	p := branchPayload("")
	delete(p, "id")
	created, err := svc.Create(ctx, "branches", p, admin(""))
	require.NoError(t, err)
	assert.NotEmpty(t, created["id"])

	p["id"] = 12.0
	_, err = svc.Create(ctx, "branches", p, admin(""))
	assert.Equal(t, common.KindValidationFailed, common.KindOf(err))
}

func TestList_BranchIsolation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	seedBranch(t, svc, "B1")
	seedBranch(t, svc, "B2")
	_, err := svc.Create(ctx, "students", studentPayload("s1", "B1"), admin(""))
	require.NoError(t, err)
	_, err = svc.Create(ctx, "students", studentPayload("s2", "B2"), admin(""))
	require.NoError(t, err)

	got, err := svc.List(ctx, "students", staff("B1"), nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "s1", got[0]["id"])

	_, err = svc.List(ctx, "students", staff("B1"), map[string]string{"branchId": "B2"})
	assert.EqualError(t, err, "branch scope violation")

	_, err = svc.List(ctx, "students", staff(""), nil)
	assert.Equal(t, common.KindValidationFailed, common.KindOf(err))
	assert.EqualError(t, err, "missing 'branchId' filter for branch-scoped collection")

	got, err = svc.List(ctx, "students", staff(""), map[string]string{"branchId": "B2"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "s2", got[0]["id"])

	// Tra cứu theo id không vượt qua phạm vi chi nhánh
	got, err = svc.List(ctx, "students", staff("B1"), map[string]string{"id": "s2"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestList_EqualityFiltersAndReadRoles(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	seedBranch(t, svc, "B1")
	for id, status := range map[string]string{"s1": "active", "s2": "inactive", "s3": "active"} {
		p := studentPayload(id, "B1")
		p["status"] = status
		_, err := svc.Create(ctx, "students", p, admin("B1"))
		require.NoError(t, err)
	}

	got, err := svc.List(ctx, "students", staff("B1"), map[string]string{"status": "active"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = svc.List(ctx, "staff", staff("B1"), nil)
	assert.Equal(t, common.KindForbidden, common.KindOf(err))
}

func TestScenarioB_BranchGuardianStudent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	caller := admin("B1")

	seedBranch(t, svc, "B1")
	guardian, err := svc.Create(ctx, "guardians", map[string]interface{}{
		"name": "Ravi", "phone": "1", "email": "ravi@example.com", "relationship": "father",
		"studentIds": []interface{}{},
	}, caller)
	require.NoError(t, err)

	p := studentPayload("s1", "B1")
	p["guardianLinks"] = []interface{}{map[string]interface{}{"guardianId": guardian["id"]}}
	_, err = svc.Create(ctx, "students", p, caller)
	require.NoError(t, err)

	got, err := svc.List(ctx, "students", caller, map[string]string{"branchId": "B1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "s1", got[0]["id"])
}

func TestDefinitions_Sorted(t *testing.T) {
	svc, _ := newTestService(t)
	defs := svc.Definitions()
	require.Len(t, defs, 14)
	assert.Equal(t, "attendanceRecords", defs[0].Name)
}

type queryRecordingStore struct {
	*database.MemoryStore
	queries [][]database.Filter
}

func (s *queryRecordingStore) QueryEqual(ctx context.Context, collection string, filters ...database.Filter) ([]database.Document, error) {
	s.queries = append(s.queries, filters)
	return s.MemoryStore.QueryEqual(ctx, collection, filters...)
}

func TestList_RejectsOperatorFilterKeys(t *testing.T) {
	store := &queryRecordingStore{MemoryStore: database.NewMemoryStore()}
	svc := NewCollectionService(store, nil)
	ctx := context.Background()

	for _, key := range []string{"$where", "$ne", ""} {
		_, err := svc.List(ctx, "students", admin("B1"), map[string]string{key: "sleep(5000) || true"})
		require.Error(t, err, key)
		assert.Equal(t, common.KindValidationFailed, common.KindOf(err), key)
	}
	assert.Empty(t, store.queries)

	_, err := svc.List(ctx, "students", admin("B1"), map[string]string{"status": "active"})
	require.NoError(t, err)
	require.Len(t, store.queries, 1)
	assert.Equal(t, []database.Filter{{Field: "branchId", Value: "B1"}, {Field: "status", Value: "active"}}, store.queries[0])
}
