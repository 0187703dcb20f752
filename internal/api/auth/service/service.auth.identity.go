package authsvc

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/papichoolo/shds-admin/internal/api/auth/models"
	"github.com/papichoolo/shds-admin/internal/common"
	"github.com/papichoolo/shds-admin/internal/logger"
)

// DevIdentity danh tính cố định khi bật DEV_AUTH_BYPASS
func DevIdentity() *models.CallerIdentity {
	return &models.CallerIdentity{
		UID:      "dev",
		Roles:    []string{models.RoleAdmin, models.RoleSuperAdmin},
		BranchID: "1",
		Email:    "dev@example.com",
	}
}

// IdentityService dựng CallerIdentity từ token đã xác thực và hồ sơ đã lưu
type IdentityService struct {
	verifier  TokenVerifier
	profiles  *ProfileService
	devBypass bool
}

// NewIdentityService devBypass = true thì bỏ qua xác thực, KHÔNG bật trên production
func NewIdentityService(verifier TokenVerifier, profiles *ProfileService, devBypass bool) *IdentityService {
	return &IdentityService{verifier: verifier, profiles: profiles, devBypass: devBypass}
}

// Resolve xác thực token rồi bổ sung role/chi nhánh/email.
// Ưu tiên claims, sau đó hồ sơ, cuối cùng là role mặc định.
func (s *IdentityService) Resolve(ctx context.Context, rawToken string) (*models.CallerIdentity, error) {
	if s.devBypass {
		return DevIdentity(), nil
	}
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return nil, common.ErrTokenMissing
	}
	if s.verifier == nil {
		return nil, common.ErrAuthentication(common.MsgTokenInvalid)
	}

	verified, err := s.verifier.Verify(ctx, rawToken)
	if err != nil {
		logger.WithModule("auth").WithError(err).Warn("invalid token")
		return nil, common.ErrAuthentication(common.MsgTokenInvalid)
	}

	var profile *models.UserProfile
	if s.profiles != nil {
		profile, err = s.profiles.Get(ctx, verified.UID)
		if err != nil {
			return nil, err
		}
	}

	caller := &models.CallerIdentity{UID: verified.UID, Profile: profile}

	caller.Roles = models.StringSlice(verified.Claims["roles"])
	if len(caller.Roles) == 0 && profile != nil {
		caller.Roles = append([]string(nil), profile.Roles...)
	}
	if len(caller.Roles) == 0 {
		caller.Roles = []string{models.DefaultRole}
	}

	caller.BranchID, _ = verified.Claims["branchId"].(string)
	if caller.BranchID == "" && profile != nil {
		caller.BranchID = profile.BranchID
	}

	caller.Email, _ = verified.Claims["email"].(string)
	if caller.Email == "" && profile != nil {
		caller.Email = profile.Email
	}

	logger.WithModule("auth").WithFields(logrus.Fields{
		"uid":      caller.UID,
		"roles":    caller.Roles,
		"branchId": caller.BranchID,
	}).Debug("Đã xác thực người gọi")
	return caller, nil
}
