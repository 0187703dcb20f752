package invitesvc

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authmodels "github.com/papichoolo/shds-admin/internal/api/auth/models"
	authsvc "github.com/papichoolo/shds-admin/internal/api/auth/service"
	invitedto "github.com/papichoolo/shds-admin/internal/api/invite/dto"
	"github.com/papichoolo/shds-admin/internal/api/invite/models"
	"github.com/papichoolo/shds-admin/internal/common"
	"github.com/papichoolo/shds-admin/internal/database"
	"github.com/papichoolo/shds-admin/internal/delivery/channels"
	"github.com/papichoolo/shds-admin/internal/global"
	"github.com/papichoolo/shds-admin/internal/utility"
)

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []channels.InviteMessage
	err  error
}

func (n *recordingNotifier) SendInvite(_ context.Context, msg channels.InviteMessage) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
	return channels.InviteLink("https://app.example.com", msg.Token), n.err
}

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *recordingPublisher) Publish(_ context.Context, key string, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	return nil
}

func (p *recordingPublisher) has(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, k := range p.keys {
		if k == key {
			return true
		}
	}
	return false
}

// usersFailStore lỗi khi ghi hồ sơ, dùng để kiểm tra trả lời mời về pending
type usersFailStore struct {
	database.Store
}

func (s usersFailStore) Set(ctx context.Context, coll, id string, fields map[string]interface{}, mode database.WriteMode) error {
	if coll == global.CollectionUsers {
		return errors.New("write failed")
	}
	return s.Store.Set(ctx, coll, id, fields, mode)
}

type fixture struct {
	store     database.Store
	svc       *InviteService
	notifier  *recordingNotifier
	publisher *recordingPublisher
}

func newFixture(t *testing.T, store database.Store, allowList ...string) *fixture {
	t.Helper()
	if store == nil {
		store = database.NewMemoryStore()
	}
	f := &fixture{store: store, notifier: &recordingNotifier{}, publisher: &recordingPublisher{}}
	f.svc = NewInviteService(store, authsvc.NewProfileService(store), f.notifier, f.publisher, allowList)
	f.svc.now = func() time.Time { return time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC) }
	return f
}

func superAdmin() *authmodels.CallerIdentity {
	return &authmodels.CallerIdentity{UID: "root", Roles: []string{authmodels.RoleSuperAdmin}, Email: "root@x.com"}
}

func invitee(email string) *authmodels.CallerIdentity {
	return &authmodels.CallerIdentity{UID: "u-" + email, Roles: []string{authmodels.RoleStudent}, Email: email}
}

func studentInvite() invitedto.InviteCreateInput {
	return invitedto.InviteCreateInput{
		Email:       "Parent@X.com",
		BranchID:    "b1",
		Roles:       []string{"student"},
		TargetType:  models.TargetStudent,
		TargetID:    "s1",
		StudentName: "Ana",
	}
}

func TestIssue_RequiresSuperAdmin(t *testing.T) {
	f := newFixture(t, nil, "Boss@X.com")

	_, err := f.svc.Issue(context.Background(), studentInvite(), &authmodels.CallerIdentity{UID: "a", Roles: []string{"admin"}})
	require.Error(t, err)
	assert.Equal(t, common.KindPermissionDenied, common.KindOf(err))
	assert.Equal(t, "only super admins can manage invites", err.Error())

	_, err = f.svc.Issue(context.Background(), studentInvite(), nil)
	assert.Equal(t, common.KindPermissionDenied, common.KindOf(err))

	issued, err := f.svc.Issue(context.Background(), studentInvite(), &authmodels.CallerIdentity{UID: "b", Roles: []string{"admin"}, Email: "boss@x.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, issued.Token)
}

func TestIssue_PersistsHashOnly(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	issued, err := f.svc.Issue(ctx, studentInvite(), superAdmin())
	require.NoError(t, err)
	assert.Equal(t, "parent@x.com", issued.Email)
	assert.Equal(t, models.StatusPending, issued.Status)
	assert.Equal(t, "https://app.example.com/setup?token="+issued.Token, issued.InviteLink)
	require.Len(t, issued.History, 1)
	assert.Equal(t, "root", issued.History[0].By)

	doc, found, err := f.store.Get(ctx, global.CollectionUserInvites, issued.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, utility.HashToken(issued.Token), doc.Data["tokenHash"])
	for _, v := range doc.Data {
		assert.NotEqual(t, issued.Token, v)
	}

	require.Len(t, f.notifier.msgs, 1)
	assert.Equal(t, "parent@x.com", f.notifier.msgs[0].Email)
	assert.Eventually(t, func() bool { return f.publisher.has("invite.issued") }, time.Second, 10*time.Millisecond)

	defaulted := studentInvite()
	defaulted.TargetType = ""
	other, err := f.svc.Issue(ctx, defaulted, superAdmin())
	require.NoError(t, err)
	assert.Equal(t, models.TargetStaff, other.TargetType)
	assert.NotEqual(t, issued.Token, other.Token)
	assert.NotEqual(t, issued.ID, other.ID)

	// Nhận một lời mời không ảnh hưởng lời mời còn lại
	_, err = f.svc.Accept(ctx, invitedto.InviteAcceptInput{InviteToken: issued.Token}, invitee("parent@x.com"))
	require.NoError(t, err)

	doc, found, err = f.store.Get(ctx, global.CollectionUserInvites, other.ID)
	require.NoError(t, err)
	require.True(t, found)
	untouched := models.InviteFromDocument(doc)
	assert.Equal(t, models.StatusPending, untouched.Status)
	assert.Nil(t, untouched.AcceptedAt)
	assert.Len(t, untouched.History, 1)

	profile, err := f.svc.Accept(ctx, invitedto.InviteAcceptInput{InviteToken: other.Token}, invitee("parent@x.com"))
	require.NoError(t, err)
	assert.Equal(t, other.ID, profile.InviteID)
	assert.Len(t, profile.ProvisioningHistory, 2)
}

func TestIssue_NotifierFailureStillReturnsInvite(t *testing.T) {
	f := newFixture(t, nil)
	f.notifier.err = errors.New("smtp down")

	issued, err := f.svc.Issue(context.Background(), studentInvite(), superAdmin())
	require.NoError(t, err)
	assert.Contains(t, issued.InviteLink, issued.Token)
}

func TestAccept_InviteFlow(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	issued, err := f.svc.Issue(ctx, studentInvite(), superAdmin())
	require.NoError(t, err)

	profile, err := f.svc.Accept(ctx, invitedto.InviteAcceptInput{InviteToken: issued.Token, ConfirmedName: "Maria"}, invitee("PARENT@x.com"))
	require.NoError(t, err)
	assert.Equal(t, "b1", profile.BranchID)
	assert.Equal(t, []string{"student"}, profile.Roles)
	assert.Equal(t, "s1", profile.StudentID)
	assert.Equal(t, "Maria", profile.DisplayName)
	assert.Equal(t, issued.ID, profile.InviteID)
	require.Len(t, profile.ProvisioningHistory, 1)

	doc, _, err := f.store.Get(ctx, global.CollectionUserInvites, issued.ID)
	require.NoError(t, err)
	stored := models.InviteFromDocument(doc)
	assert.Equal(t, models.StatusAccepted, stored.Status)
	assert.Equal(t, "u-PARENT@x.com", stored.AcceptedBy)
	require.Len(t, stored.History, 2)
	assert.Equal(t, models.StatusPending, stored.History[0].Status)
	assert.Equal(t, models.StatusAccepted, stored.History[1].Status)

	_, err = f.svc.Accept(ctx, invitedto.InviteAcceptInput{InviteToken: issued.Token}, invitee("parent@x.com"))
	require.Error(t, err)
	assert.Equal(t, common.KindInviteAlreadyUsed, common.KindOf(err))
	assert.Eventually(t, func() bool { return f.publisher.has("invite.accepted") }, time.Second, 10*time.Millisecond)
}

func TestAccept_Rejections(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	issued, err := f.svc.Issue(ctx, studentInvite(), superAdmin())
	require.NoError(t, err)

	_, err = f.svc.Accept(ctx, invitedto.InviteAcceptInput{InviteToken: "no-such-token"}, invitee("parent@x.com"))
	assert.Equal(t, common.KindTokenInvalid, common.KindOf(err))
	assert.Equal(t, "invalid or expired invite token", err.Error())

	_, err = f.svc.Accept(ctx, invitedto.InviteAcceptInput{InviteToken: issued.Token}, invitee("someone@x.com"))
	assert.Equal(t, common.KindPermissionDenied, common.KindOf(err))
	assert.Equal(t, "invite email mismatch", err.Error())

	_, err = f.svc.Accept(ctx, invitedto.InviteAcceptInput{InviteToken: issued.Token}, &authmodels.CallerIdentity{UID: "x"})
	assert.Equal(t, common.KindPermissionDenied, common.KindOf(err))

	doc, _, err := f.store.Get(ctx, global.CollectionUserInvites, issued.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, doc.Data["status"])
}

func TestAccept_ExactlyOnceUnderConcurrency(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	issued, err := f.svc.Issue(ctx, studentInvite(), superAdmin())
	require.NoError(t, err)

	var wins, used int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Accept(ctx, invitedto.InviteAcceptInput{InviteToken: issued.Token}, invitee("parent@x.com"))
			switch {
			case err == nil:
				atomic.AddInt32(&wins, 1)
			case common.KindOf(err) == common.KindInviteAlreadyUsed:
				atomic.AddInt32(&used, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins)
	assert.Equal(t, int32(9), used)
}

func TestAccept_ProfileFailureReleasesInvite(t *testing.T) {
	mem := database.NewMemoryStore()
	f := newFixture(t, usersFailStore{Store: mem})
	ctx := context.Background()
	issued, err := f.svc.Issue(ctx, studentInvite(), superAdmin())
	require.NoError(t, err)

	_, err = f.svc.Accept(ctx, invitedto.InviteAcceptInput{InviteToken: issued.Token}, invitee("parent@x.com"))
	require.Error(t, err)

	doc, _, err := mem.Get(ctx, global.CollectionUserInvites, issued.ID)
	require.NoError(t, err)
	stored := models.InviteFromDocument(doc)
	assert.Equal(t, models.StatusPending, stored.Status)
	assert.Len(t, stored.History, 1)
	assert.Nil(t, stored.AcceptedAt)
}

func TestAccept_ManualSetup(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	profile, err := f.svc.Accept(ctx, invitedto.InviteAcceptInput{InviteToken: "-1", BranchID: "b7", ConfirmedName: "Solo"}, invitee("solo@x.com"))
	require.NoError(t, err)
	assert.Equal(t, "b7", profile.BranchID)
	assert.Equal(t, []string{authmodels.RoleStudent}, profile.Roles)
	assert.Empty(t, profile.InviteID)
	assert.Equal(t, "solo@x.com", profile.Email)

	actor := invitee("staffer@x.com")
	actor.BranchID = "b2"
	profile, err = f.svc.Accept(ctx, invitedto.InviteAcceptInput{InviteToken: "-1", Roles: []string{"staff"}}, actor)
	require.NoError(t, err)
	assert.Equal(t, "b2", profile.BranchID)
	assert.Equal(t, []string{"staff"}, profile.Roles)

	_, err = f.svc.Accept(ctx, invitedto.InviteAcceptInput{InviteToken: "-1"}, invitee("nobranch@x.com"))
	require.Error(t, err)
	assert.Equal(t, common.KindInviteError, common.KindOf(err))
	assert.Equal(t, "branchId is required for manual setup", err.Error())
}
