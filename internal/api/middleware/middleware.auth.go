// Package middleware - middleware HTTP dùng chung: xác thực người gọi và đo request.
package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	authmodels "github.com/papichoolo/shds-admin/internal/api/auth/models"
	authsvc "github.com/papichoolo/shds-admin/internal/api/auth/service"
	basehdl "github.com/papichoolo/shds-admin/internal/api/base/handler"
	"github.com/papichoolo/shds-admin/internal/logger"
)

// Header mang identity token
const (
	HeaderFirebaseToken = "X-Firebase-Token"
	HeaderAuthorization = "Authorization"
)

// LocalCaller key của *CallerIdentity trong fiber.Ctx
const LocalCaller = "caller"

const resolveTimeout = 5 * time.Second

// ExtractToken ưu tiên X-Firebase-Token, sau đó Authorization: Bearer
func ExtractToken(c fiber.Ctx) string {
	if token := strings.TrimSpace(c.Get(HeaderFirebaseToken)); token != "" {
		return token
	}
	auth := strings.TrimSpace(c.Get(HeaderAuthorization))
	if len(auth) > 7 && strings.EqualFold(auth[:7], "Bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

// AuthMiddleware xác thực người gọi và gắn CallerIdentity vào context.
// Request đã được xác thực ở group khác thì bỏ qua.
func AuthMiddleware(identity *authsvc.IdentityService) fiber.Handler {
	return func(c fiber.Ctx) error {
		if GetCaller(c) != nil {
			return c.Next()
		}

		ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
		defer cancel()

		caller, err := identity.Resolve(ctx, ExtractToken(c))
		if err != nil {
			logger.WithRequest(c).WithError(err).Warn("[AUTH] Từ chối request")
			return basehdl.HandleErrorResponse(c, err)
		}

		c.Locals(LocalCaller, caller)
		c.Locals(logger.LocalSubjectID, caller.UID)
		c.Locals(logger.LocalBranchID, caller.BranchID)
		logger.WithRequest(c).WithFields(logrus.Fields{
			"roles":    caller.Roles,
			"branchId": caller.BranchID,
		}).Debug("[AUTH] Đã xác thực")
		return c.Next()
	}
}

// GetCaller lấy CallerIdentity đã gắn bởi AuthMiddleware, nil nếu chưa xác thực
func GetCaller(c fiber.Ctx) *authmodels.CallerIdentity {
	caller, _ := c.Locals(LocalCaller).(*authmodels.CallerIdentity)
	return caller
}
