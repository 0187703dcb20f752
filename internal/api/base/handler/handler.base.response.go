// Package basehdl - helper chung cho các handler: chuẩn hóa response, parse và validate body.
package basehdl

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v3"

	"github.com/papichoolo/shds-admin/internal/common"
	"github.com/papichoolo/shds-admin/internal/global"
	"github.com/papichoolo/shds-admin/internal/logger"
)

// JSONResponse trả về JSON response với Content-Type: application/json; charset=utf-8
func JSONResponse(c fiber.Ctx, statusCode int, data interface{}) error {
	c.Set("Content-Type", "application/json; charset=utf-8")
	return c.Status(statusCode).JSON(data)
}

// SafeHandler bọc handler với recover để luôn trả về response cho client kể cả khi panic
func SafeHandler(c fiber.Ctx, handler func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorWithRequest(c).WithField("stack", string(debug.Stack())).Errorf("panic: %v", r)
			err = HandleErrorResponse(c, common.NewError(
				common.ErrCodeInternalServer,
				common.MsgInternalError,
				common.StatusInternalServerError,
				nil,
			))
		}
	}()
	return handler()
}

// HandleErrorResponse trả về error envelope. Lỗi không phải *common.Error bị ẩn chi tiết.
func HandleErrorResponse(c fiber.Ctx, err error) error {
	var customErr *common.Error
	if errors.As(err, &customErr) {
		if customErr.StatusCode >= common.StatusInternalServerError {
			logger.ErrorWithRequest(c).WithError(err).Error("Request thất bại")
			// Lỗi store/hệ thống: không lộ message của driver
			return JSONResponse(c, customErr.StatusCode, fiber.Map{
				"code":    customErr.Code.Code,
				"message": customErr.Message,
				"status":  "error",
			})
		}
		return JSONResponse(c, customErr.StatusCode, fiber.Map{
			"code":    customErr.Code.Code,
			"message": customErr.Message,
			"details": customErr.Details,
			"status":  "error",
		})
	}
	logger.ErrorWithRequest(c).WithError(err).Error("Lỗi không xác định")
	return JSONResponse(c, common.StatusInternalServerError, fiber.Map{
		"code":    common.ErrCodeInternalServer.Code,
		"message": common.MsgInternalError,
		"status":  "error",
	})
}

// HandleResponse trả về envelope thành công (200) hoặc lỗi
func HandleResponse(c fiber.Ctx, data interface{}, err error) error {
	return HandleResponseStatus(c, common.StatusOK, data, err)
}

// HandleResponseStatus giống HandleResponse với status code thành công tùy chọn
func HandleResponseStatus(c fiber.Ctx, status int, data interface{}, err error) error {
	if err != nil {
		return HandleErrorResponse(c, err)
	}
	message := common.MsgSuccess
	if status == common.StatusCreated {
		message = common.MsgCreated
	}
	return JSONResponse(c, status, fiber.Map{
		"code":    status,
		"message": message,
		"data":    data,
		"status":  "success",
	})
}

// ParseRequestBody parse JSON body vào dst và chạy validator toàn cục.
// Lỗi trả về đã được build sẵn bởi invalid.
func ParseRequestBody(c fiber.Ctx, dst interface{}, invalid func(message string, details any) error) error {
	if len(c.Body()) == 0 {
		return invalid("request body is required", nil)
	}
	if err := c.Bind().Body(dst); err != nil {
		return invalid(fmt.Sprintf("invalid JSON body: %v", err), nil)
	}
	if global.Validate == nil {
		global.InitValidator()
	}
	if err := global.Validate.Struct(dst); err != nil {
		return invalid("invalid request payload", global.ValidationMessages(err))
	}
	return nil
}
