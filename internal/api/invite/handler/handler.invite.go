// Package invitehdl - HTTP handler phát hành và nhận lời mời.
package invitehdl

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	basehdl "github.com/papichoolo/shds-admin/internal/api/base/handler"
	invitedto "github.com/papichoolo/shds-admin/internal/api/invite/dto"
	invitesvc "github.com/papichoolo/shds-admin/internal/api/invite/service"
	"github.com/papichoolo/shds-admin/internal/api/middleware"
	"github.com/papichoolo/shds-admin/internal/common"
)

const (
	requestTimeout   = 30 * time.Second // gồm cả thời gian gửi SMTP
	setupDoneMessage = "User setup complete"
)

// InviteHandler xử lý /users/invites và /users/setup
type InviteHandler struct {
	svc *invitesvc.InviteService
}

// NewInviteHandler tạo handler
func NewInviteHandler(svc *invitesvc.InviteService) *InviteHandler {
	return &InviteHandler{svc: svc}
}

// HandleIssue phát hành lời mời, trả về 201 kèm token (chỉ một lần)
// @Router /users/invites [post]
func (h *InviteHandler) HandleIssue(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var input invitedto.InviteCreateInput
		if err := basehdl.ParseRequestBody(c, &input, common.ErrInvite); err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		issued, err := h.svc.Issue(ctx, input, middleware.GetCaller(c))
		return basehdl.HandleResponseStatus(c, common.StatusCreated, issued, err)
	})
}

// HandleSetup nhận lời mời hoặc tự cấp quyền (inviteToken = "-1")
// @Router /users/setup [post]
func (h *InviteHandler) HandleSetup(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var input invitedto.InviteAcceptInput
		if err := basehdl.ParseRequestBody(c, &input, common.ErrInvite); err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		profile, err := h.svc.Accept(ctx, input, middleware.GetCaller(c))
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		return basehdl.HandleResponse(c, fiber.Map{
			"uid":      profile.UID,
			"branchId": profile.BranchID,
			"roles":    profile.Roles,
			"profile":  profile,
			"message":  setupDoneMessage,
		}, nil)
	})
}
