// Package authhdl - HTTP handler cho danh tính người gọi.
package authhdl

import (
	"github.com/gofiber/fiber/v3"

	basehdl "github.com/papichoolo/shds-admin/internal/api/base/handler"
	"github.com/papichoolo/shds-admin/internal/api/middleware"
	"github.com/papichoolo/shds-admin/internal/common"
)

// UserHandler xử lý /users/me
type UserHandler struct{}

// NewUserHandler tạo handler
func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// HandleGetMe trả về danh tính người gọi kèm hồ sơ đã lưu (nếu có)
// @Router /users/me [get]
func (h *UserHandler) HandleGetMe(c fiber.Ctx) error {
	caller := middleware.GetCaller(c)
	if caller == nil {
		return basehdl.HandleErrorResponse(c, common.ErrTokenMissing)
	}
	return basehdl.HandleResponse(c, caller, nil)
}
