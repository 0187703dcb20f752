// Package router đăng ký các route thuộc domain auth: System, Users.
package router

import (
	"github.com/gofiber/fiber/v3"

	authhdl "github.com/papichoolo/shds-admin/internal/api/auth/handler"
	authsvc "github.com/papichoolo/shds-admin/internal/api/auth/service"
	basehdl "github.com/papichoolo/shds-admin/internal/api/base/handler"
	"github.com/papichoolo/shds-admin/internal/api/middleware"
	apirouter "github.com/papichoolo/shds-admin/internal/api/router"
	"github.com/papichoolo/shds-admin/internal/database"
)

// Register trả về hàm đăng ký route system và /users/me
func Register(identity *authsvc.IdentityService, store database.Store, driver string) apirouter.RegisterFunc {
	return func(root fiber.Router) error {
		systemHandler := basehdl.NewSystemHandler(store, driver)
		root.Get("/system/health", systemHandler.HandleHealth)

		userHandler := authhdl.NewUserHandler()
		authMiddleware := middleware.AuthMiddleware(identity)
		apirouter.RegisterRouteWithMiddleware(root, "/users", fiber.MethodGet, "/me", []fiber.Handler{authMiddleware}, userHandler.HandleGetMe)
		return nil
	}
}
