// Package router đăng ký các route thuộc domain collection.
package router

import (
	"github.com/gofiber/fiber/v3"

	authsvc "github.com/papichoolo/shds-admin/internal/api/auth/service"
	collectionhdl "github.com/papichoolo/shds-admin/internal/api/collection/handler"
	collectionsvc "github.com/papichoolo/shds-admin/internal/api/collection/service"
	"github.com/papichoolo/shds-admin/internal/api/middleware"
	apirouter "github.com/papichoolo/shds-admin/internal/api/router"
)

// Register trả về hàm đăng ký route collection cho SetupRoutes
func Register(svc *collectionsvc.CollectionService, identity *authsvc.IdentityService) apirouter.RegisterFunc {
	return func(root fiber.Router) error {
		h := collectionhdl.NewCollectionHandler(svc)
		authMiddleware := middleware.AuthMiddleware(identity)
		mws := []fiber.Handler{authMiddleware}
		apirouter.RegisterRouteWithMiddleware(root, "/collections", fiber.MethodGet, "/", mws, h.HandleDefinitions)
		apirouter.RegisterRouteWithMiddleware(root, "/collections", fiber.MethodPost, "/:name", mws, h.HandleCreate)
		apirouter.RegisterRouteWithMiddleware(root, "/collections", fiber.MethodGet, "/:name", mws, h.HandleList)
		return nil
	}
}
