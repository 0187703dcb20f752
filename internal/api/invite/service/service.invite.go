// Package invitesvc - phát hành lời mời và cấp quyền người dùng khi nhận lời mời.
package invitesvc

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	authmodels "github.com/papichoolo/shds-admin/internal/api/auth/models"
	authsvc "github.com/papichoolo/shds-admin/internal/api/auth/service"
	invitedto "github.com/papichoolo/shds-admin/internal/api/invite/dto"
	"github.com/papichoolo/shds-admin/internal/api/invite/models"
	"github.com/papichoolo/shds-admin/internal/common"
	"github.com/papichoolo/shds-admin/internal/database"
	"github.com/papichoolo/shds-admin/internal/delivery"
	"github.com/papichoolo/shds-admin/internal/delivery/channels"
	"github.com/papichoolo/shds-admin/internal/global"
	"github.com/papichoolo/shds-admin/internal/logger"
	"github.com/papichoolo/shds-admin/internal/metrics"
	"github.com/papichoolo/shds-admin/internal/utility"
)

// Nhãn metric cho vòng đời lời mời
const (
	eventIssued   = "issued"
	eventAccepted = "accepted"
	eventManual   = "manual"
	eventRejected = "rejected"
)

const publishTimeout = 5 * time.Second

// Notifier gửi lời mời tới người nhận, trả về link lời mời
type Notifier interface {
	SendInvite(ctx context.Context, msg channels.InviteMessage) (string, error)
}

// InviteService phát hành và nhận lời mời
type InviteService struct {
	store       database.Store
	profiles    *authsvc.ProfileService
	notifier    Notifier
	events      delivery.Publisher
	superAdmins map[string]bool
	now         func() time.Time
	newToken    func() (string, error)
}

// NewInviteService superAdminEmails là allow-list email được phép phát hành ngoài role super_admin
func NewInviteService(store database.Store, profiles *authsvc.ProfileService, notifier Notifier, events delivery.Publisher, superAdminEmails []string) *InviteService {
	if events == nil {
		events = delivery.NopPublisher{}
	}
	allow := make(map[string]bool, len(superAdminEmails))
	for _, e := range superAdminEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			allow[e] = true
		}
	}
	return &InviteService{
		store:       store,
		profiles:    profiles,
		notifier:    notifier,
		events:      events,
		superAdmins: allow,
		now:         func() time.Time { return time.Now().UTC() },
		newToken:    func() (string, error) { return utility.NewOpaqueToken(utility.InviteTokenBytes) },
	}
}

func (s *InviteService) ensureSuperAdmin(actor *authmodels.CallerIdentity) error {
	if actor.HasAnyRole([]string{authmodels.RoleSuperAdmin}) {
		return nil
	}
	if actor != nil {
		if email := strings.ToLower(actor.Email); email != "" && s.superAdmins[email] {
			return nil
		}
	}
	return common.ErrPermissionDenied("only super admins can manage invites")
}

// Issue tạo lời mời pending, gửi thông báo và trả về token gốc đúng một lần
func (s *InviteService) Issue(ctx context.Context, in invitedto.InviteCreateInput, actor *authmodels.CallerIdentity) (*models.IssuedInvite, error) {
	if err := s.ensureSuperAdmin(actor); err != nil {
		metrics.ObserveInvite(eventRejected)
		return nil, err
	}

	token, err := s.newToken()
	if err != nil {
		return nil, common.NewError(common.ErrCodeInternalServer, common.MsgInternalError, common.StatusInternalServerError, nil)
	}

	targetType := in.TargetType
	if targetType == "" {
		targetType = models.DefaultTargetType
	}
	now := s.now()
	record := models.InviteRecord{
		ID:          s.store.NewID(global.CollectionUserInvites),
		TokenHash:   utility.HashToken(token),
		Email:       strings.ToLower(strings.TrimSpace(in.Email)),
		BranchID:    in.BranchID,
		Roles:       append([]string(nil), in.Roles...),
		TargetType:  targetType,
		TargetID:    in.TargetID,
		StudentName: in.StudentName,
		BatchName:   in.BatchName,
		Status:      models.StatusPending,
		CreatedAt:   now,
		CreatedBy:   actor.UID,
		History:     []models.HistoryEntry{{Status: models.StatusPending, At: now, By: actor.UID}},
	}

	if err := s.store.Set(ctx, global.CollectionUserInvites, record.ID, record.ToMap(), database.WriteReplace); err != nil {
		return nil, common.ConvertStoreError(err)
	}

	link := channels.InviteLink("", token)
	if s.notifier != nil {
		sent, err := s.notifier.SendInvite(ctx, channels.InviteMessage{
			Email:       record.Email,
			BranchID:    record.BranchID,
			Roles:       record.Roles,
			StudentName: record.StudentName,
			BatchName:   record.BatchName,
			Message:     in.Message,
			Token:       token,
		})
		if sent != "" {
			link = sent
		}
		if err != nil {
			// Lời mời đã lưu, người phát hành vẫn có thể gửi link thủ công
			logger.WithModule("invite").WithError(err).WithField("invite_id", record.ID).Warn("Không gửi được email lời mời")
		}
	}

	metrics.ObserveInvite(eventIssued)
	logger.LogAction(logger.AuditAction{
		Action:       logger.ActionInviteIssue,
		SubjectID:    actor.UID,
		ResourceID:   record.ID,
		ResourceType: global.CollectionUserInvites,
		BranchID:     record.BranchID,
		Details:      map[string]interface{}{"email": record.Email, "roles": record.Roles},
	})
	s.publish(delivery.EventInviteIssued, &record, actor.UID)

	return &models.IssuedInvite{InviteRecord: record, InviteLink: link, Token: token}, nil
}

// Accept nhận lời mời (hoặc tự cấp quyền khi token là "-1") và trả về hồ sơ sau khi cấp
func (s *InviteService) Accept(ctx context.Context, in invitedto.InviteAcceptInput, actor *authmodels.CallerIdentity) (*authmodels.UserProfile, error) {
	if in.InviteToken == models.ManualSetupToken {
		return s.manualSetup(ctx, in, actor)
	}

	docs, err := s.store.QueryEqual(ctx, global.CollectionUserInvites,
		database.Filter{Field: "tokenHash", Value: utility.HashToken(in.InviteToken)})
	if err != nil {
		return nil, common.ConvertStoreError(err)
	}
	if len(docs) == 0 {
		metrics.ObserveInvite(eventRejected)
		return nil, common.ErrTokenInvalid("invalid or expired invite token")
	}
	invite := models.InviteFromDocument(docs[0])

	if invite.Status != models.StatusPending {
		metrics.ObserveInvite(eventRejected)
		return nil, common.ErrInviteAlreadyUsed("invite already used")
	}
	actorEmail := strings.ToLower(actor.Email)
	if actorEmail == "" || actorEmail != strings.ToLower(invite.Email) {
		metrics.ObserveInvite(eventRejected)
		return nil, common.ErrPermissionDenied("invite email mismatch")
	}

	// Giành lời mời trước bằng ghi có điều kiện, hai request đồng thời chỉ một bên thắng
	now := s.now()
	original := invite.HistoryMaps()
	claimed := append(append([]interface{}(nil), original...),
		models.HistoryEntry{Status: models.StatusAccepted, At: now, By: actor.UID}.ToMap())
	ok, err := s.store.UpdateIf(ctx, global.CollectionUserInvites, invite.ID,
		database.Filter{Field: "status", Value: models.StatusPending},
		map[string]interface{}{
			"status":     models.StatusAccepted,
			"acceptedAt": now,
			"acceptedBy": actor.UID,
			"history":    claimed,
		})
	if err != nil {
		return nil, common.ConvertStoreError(err)
	}
	if !ok {
		metrics.ObserveInvite(eventRejected)
		return nil, common.ErrInviteAlreadyUsed("invite already used")
	}

	studentID := ""
	if invite.TargetType == models.TargetStudent {
		studentID = invite.TargetID
	}
	profile, err := s.profiles.Setup(ctx, authsvc.SetupInput{
		UID:         actor.UID,
		BranchID:    invite.BranchID,
		Roles:       invite.Roles,
		DisplayName: in.ConfirmedName,
		StudentID:   studentID,
		TargetType:  invite.TargetType,
		InviteID:    invite.ID,
		Email:       actor.Email,
	})
	if err != nil {
		s.release(ctx, invite.ID, original)
		return nil, err
	}

	metrics.ObserveInvite(eventAccepted)
	logger.LogAction(logger.AuditAction{
		Action:       logger.ActionInviteAccept,
		SubjectID:    actor.UID,
		ResourceID:   invite.ID,
		ResourceType: global.CollectionUserInvites,
		BranchID:     invite.BranchID,
	})
	s.publish(delivery.EventInviteAccepted, invite, actor.UID)
	return profile, nil
}

func (s *InviteService) manualSetup(ctx context.Context, in invitedto.InviteAcceptInput, actor *authmodels.CallerIdentity) (*authmodels.UserProfile, error) {
	branchID := in.BranchID
	if branchID == "" {
		branchID = actor.BranchID
	}
	if branchID == "" {
		return nil, common.ErrInvite("branchId is required for manual setup", nil)
	}
	roles := in.Roles
	if len(roles) == 0 {
		roles = []string{authmodels.DefaultRole}
	}

	profile, err := s.profiles.Setup(ctx, authsvc.SetupInput{
		UID:         actor.UID,
		BranchID:    branchID,
		Roles:       roles,
		DisplayName: in.ConfirmedName,
		TargetType:  in.TargetType,
		Email:       actor.Email,
	})
	if err != nil {
		return nil, err
	}

	metrics.ObserveInvite(eventManual)
	logger.WithModule("invite").WithFields(logrus.Fields{
		"uid":      actor.UID,
		"branchId": branchID,
		"roles":    roles,
	}).Info("manual setup completed")
	return profile, nil
}

// release trả lời mời về pending khi cấp quyền thất bại sau khi đã giành được
func (s *InviteService) release(ctx context.Context, inviteID string, history []interface{}) {
	ok, err := s.store.UpdateIf(ctx, global.CollectionUserInvites, inviteID,
		database.Filter{Field: "status", Value: models.StatusAccepted},
		map[string]interface{}{
			"status":     models.StatusPending,
			"acceptedAt": nil,
			"acceptedBy": nil,
			"history":    history,
		})
	if err != nil || !ok {
		logger.WithModule("invite").WithError(err).WithField("invite_id", inviteID).Error("Không trả được lời mời về pending")
	}
}

// publish gửi sự kiện ở goroutine nền, lỗi broker không ảnh hưởng request
func (s *InviteService) publish(routingKey string, invite *models.InviteRecord, actorUID string) {
	event := delivery.InviteEvent{
		Type:     routingKey,
		InviteID: invite.ID,
		Email:    invite.Email,
		BranchID: invite.BranchID,
		Roles:    invite.Roles,
		ActorUID: actorUID,
		At:       s.now(),
	}
	go utility.GoProtect("invite-publish", func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		_ = s.events.Publish(ctx, routingKey, event)
	})
}
