// Package router đăng ký các route thuộc domain invite.
package router

import (
	"github.com/gofiber/fiber/v3"

	authsvc "github.com/papichoolo/shds-admin/internal/api/auth/service"
	invitehdl "github.com/papichoolo/shds-admin/internal/api/invite/handler"
	invitesvc "github.com/papichoolo/shds-admin/internal/api/invite/service"
	"github.com/papichoolo/shds-admin/internal/api/middleware"
	apirouter "github.com/papichoolo/shds-admin/internal/api/router"
)

// Register trả về hàm đăng ký POST /users/invites và POST /users/setup
func Register(svc *invitesvc.InviteService, identity *authsvc.IdentityService) apirouter.RegisterFunc {
	return func(root fiber.Router) error {
		h := invitehdl.NewInviteHandler(svc)
		mws := []fiber.Handler{middleware.AuthMiddleware(identity)}
		apirouter.RegisterRouteWithMiddleware(root, "/users", fiber.MethodPost, "/invites", mws, h.HandleIssue)
		apirouter.RegisterRouteWithMiddleware(root, "/users", fiber.MethodPost, "/setup", mws, h.HandleSetup)
		return nil
	}
}
