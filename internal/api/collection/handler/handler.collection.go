// Package collectionhdl - HTTP handler cho engine collection.
package collectionhdl

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	basehdl "github.com/papichoolo/shds-admin/internal/api/base/handler"
	collectionsvc "github.com/papichoolo/shds-admin/internal/api/collection/service"
	"github.com/papichoolo/shds-admin/internal/api/middleware"
	"github.com/papichoolo/shds-admin/internal/common"
	"github.com/papichoolo/shds-admin/internal/logger"
)

const requestTimeout = 10 * time.Second

// CollectionHandler xử lý POST/GET /collections/:name
type CollectionHandler struct {
	svc *collectionsvc.CollectionService
}

// NewCollectionHandler tạo handler
func NewCollectionHandler(svc *collectionsvc.CollectionService) *CollectionHandler {
	return &CollectionHandler{svc: svc}
}

// HandleCreate tạo document trong collection
// @Router /collections/{name} [post]
func (h *CollectionHandler) HandleCreate(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var payload map[string]interface{}
		if len(c.Body()) > 0 {
			// Giữ nguyên kiểu JSON (object, list, null) để engine tự kiểm tra
			if err := json.Unmarshal(c.Body(), &payload); err != nil {
				return basehdl.HandleErrorResponse(c, common.ErrValidationFailed("request body must be a JSON object", nil))
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		name := strings.Clone(c.Params("name"))
		doc, err := h.svc.Create(ctx, name, payload, middleware.GetCaller(c))
		if err != nil {
			logRejected(c, name, err)
		}
		return basehdl.HandleResponse(c, doc, err)
	})
}

// HandleList liệt kê document theo filter bằng lấy từ query string
// @Router /collections/{name} [get]
func (h *CollectionHandler) HandleList(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		filters := make(map[string]string)
		for k, v := range c.Queries() {
			filters[strings.Clone(k)] = strings.Clone(v)
		}

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		name := strings.Clone(c.Params("name"))
		docs, err := h.svc.List(ctx, name, middleware.GetCaller(c), filters)
		if err != nil {
			logRejected(c, name, err)
		}
		return basehdl.HandleResponse(c, docs, err)
	})
}

// HandleDefinitions trả về danh mục collection (tên, field bắt buộc, quan hệ, role)
// @Router /collections [get]
func (h *CollectionHandler) HandleDefinitions(c fiber.Ctx) error {
	return basehdl.HandleResponse(c, h.svc.Definitions(), nil)
}

// logRejected lỗi 5xx đã được HandleErrorResponse ghi vào error log
func logRejected(c fiber.Ctx, name string, err error) {
	kind := common.KindOf(err)
	if kind == common.KindStore || kind == common.KindInternal {
		return
	}
	logger.WithRequestInfo(c, "collection", name).WithField("kind", kind).Debug("Collection request bị từ chối")
}
