package main

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/google/uuid"

	"github.com/papichoolo/shds-admin/config"
	authrouter "github.com/papichoolo/shds-admin/internal/api/auth/router"
	collectionrouter "github.com/papichoolo/shds-admin/internal/api/collection/router"
	inviterouter "github.com/papichoolo/shds-admin/internal/api/invite/router"
	"github.com/papichoolo/shds-admin/internal/api/middleware"
	"github.com/papichoolo/shds-admin/internal/api/router"
	"github.com/papichoolo/shds-admin/internal/common"
	"github.com/papichoolo/shds-admin/internal/database"
	"github.com/papichoolo/shds-admin/internal/logger"
	"github.com/papichoolo/shds-admin/internal/metrics"
)

const healthPath = "/system/health"

// errorCodeForStatus map HTTP status của fiber.Error sang mã lỗi hệ thống
func errorCodeForStatus(code int) string {
	switch code {
	case fiber.StatusBadRequest:
		return common.ErrCodeValidationInput.Code
	case fiber.StatusUnauthorized:
		return common.ErrCodeAuthToken.Code
	case fiber.StatusForbidden:
		return common.ErrCodeAuthRole.Code
	case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
		return common.ErrCodeCollectionUnknown.Code
	default:
		return common.ErrCodeInternalServer.Code
	}
}

// InitFiberApp khởi tạo ứng dụng Fiber với các middleware cần thiết
func InitFiberApp(cfg *config.Configuration, store database.Store, svc *Services) *fiber.App {
	app := fiber.New(fiber.Config{
		// =========================================
		// 1. CẤU HÌNH CƠ BẢN
		// =========================================
		AppName:       "SHDS Admin API",
		ServerHeader:  "SHDS Admin API",
		CaseSensitive: true,
		UnescapePath:  true,
		// Params/Queries được giữ lại sau request (key của store, label metrics, audit)
		Immutable: true,

		// =========================================
		// 2. CẤU HÌNH PERFORMANCE
		// =========================================
		BodyLimit:       4 * 1024 * 1024, // Document lớn nhất chấp nhận (4MB)
		Concurrency:     256 * 1024,
		ReadBufferSize:  8192, // Đủ cho header X-Firebase-Token dài
		WriteBufferSize: 4096,

		// =========================================
		// 3. CẤU HÌNH TIMEOUT
		// =========================================
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second, // Phát hành lời mời có thể chờ SMTP
		IdleTimeout:  120 * time.Second,

		// =========================================
		// 4. CẤU HÌNH ERROR HANDLING
		// =========================================
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := common.MsgInternalError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				message = e.Message
			}
			if code >= fiber.StatusInternalServerError {
				logger.WithRequest(c).WithError(err).Error("Request error")
			}
			return c.Status(code).JSON(fiber.Map{
				"code":    errorCodeForStatus(code),
				"message": message,
				"status":  "error",
			})
		},
	})

	// =========================================
	// MIDDLEWARE STACK
	// =========================================

	// 1. Request ID để trace
	app.Use(requestid.New(requestid.Config{
		Header:    "X-Request-ID",
		Generator: uuid.NewString,
	}))

	// 2. Metrics theo route template
	if cfg.MetricsEnabled {
		app.Use(middleware.MetricsMiddleware())
	}

	// 3. CORS, đặt sớm để xử lý preflight
	allowOrigins := []string{"*"}
	if cfg.CORS_Origins != "*" {
		allowOrigins = strings.Split(cfg.CORS_Origins, ",")
		for i, origin := range allowOrigins {
			allowOrigins[i] = strings.TrimSpace(origin)
		}
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"X-Request-ID",
			"X-Requested-With",
			middleware.HeaderFirebaseToken,
		},
		AllowCredentials: cfg.CORS_AllowCredentials,
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		MaxAge:           24 * 60 * 60,
	}))

	// 4. Security headers
	app.Use(func(c fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if cfg.EnableTLS {
			c.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		return c.Next()
	})

	// 5. Rate limit theo IP
	log := logger.GetAppLogger()
	if cfg.RateLimit_Enabled && cfg.RateLimit_Max > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit_Max,
			Expiration: time.Duration(cfg.RateLimit_Window) * time.Second,
			KeyGenerator: func(c fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"code":    common.StatusTooManyRequests,
					"message": "Quá nhiều yêu cầu, vui lòng thử lại sau",
					"status":  "error",
				})
			},
			Next: func(c fiber.Ctx) bool {
				return c.Path() == healthPath || c.Method() == fiber.MethodOptions
			},
		}))
		log.Infof("Rate limiting enabled: %d requests per %d seconds", cfg.RateLimit_Max, cfg.RateLimit_Window)
	} else {
		log.Info("Rate limiting disabled")
	}

	// 6. Recover
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			logger.WithRequest(c).WithField("panic", e).Error("Panic recovered")
		},
	}))

	if cfg.MetricsEnabled {
		app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	}

	if err := router.SetupRoutes(app,
		authrouter.Register(svc.Identity, store, cfg.StoreDriver),
		collectionrouter.Register(svc.Collections, svc.Identity),
		inviterouter.Register(svc.Invites, svc.Identity),
	); err != nil {
		log.Fatalf("Failed to setup routes: %v", err)
	}

	return app
}
