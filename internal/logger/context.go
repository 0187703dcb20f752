package logger

import (
	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// Locals keys do middleware gắn vào fiber.Ctx
const (
	LocalRequestID = "requestid"
	LocalSubjectID = "subject_id"
	LocalBranchID  = "branch_id"
)

// WithRequest trả về logger entry với request context từ Fiber
func WithRequest(c fiber.Ctx) *logrus.Entry {
	return withRequest(GetAppLogger(), c)
}

// ErrorWithRequest giống WithRequest nhưng ghi vào error logger
func ErrorWithRequest(c fiber.Ctx) *logrus.Entry {
	return withRequest(GetErrorLogger(), c)
}

func withRequest(base *logrus.Logger, c fiber.Ctx) *logrus.Entry {
	entry := base.WithFields(logrus.Fields{
		"method": c.Method(),
		"path":   c.Path(),
		"ip":     c.IP(),
	})

	requestID, _ := c.Locals(LocalRequestID).(string)
	if requestID == "" {
		requestID = c.Get("X-Request-ID")
	}
	if requestID == "" {
		requestID = c.GetRespHeader("X-Request-ID")
	}
	if requestID != "" {
		entry = entry.WithField("request_id", requestID)
	}

	if uid, ok := c.Locals(LocalSubjectID).(string); ok && uid != "" {
		entry = entry.WithField("uid", uid)
	}
	return entry
}

// WithModule trả về logger entry với module name (collection, invite, auth, store...)
func WithModule(module string) *logrus.Entry {
	return GetAppLogger().WithField("module", module)
}

// WithModuleAndCollection trả về logger entry với module và collection
func WithModuleAndCollection(module, collection string) *logrus.Entry {
	return GetAppLogger().WithFields(logrus.Fields{
		"module":     module,
		"collection": collection,
	})
}

// WithRequestInfo = WithRequest + module + collection
func WithRequestInfo(c fiber.Ctx, module, collection string) *logrus.Entry {
	entry := WithRequest(c)
	if module != "" {
		entry = entry.WithField("module", module)
	}
	if collection != "" {
		entry = entry.WithField("collection", collection)
	}
	return entry
}
