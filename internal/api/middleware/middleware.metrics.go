package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/papichoolo/shds-admin/internal/logger"
	"github.com/papichoolo/shds-admin/internal/metrics"
)

// SlowRequestThreshold request chậm hơn ngưỡng này được ghi vào performance log
const SlowRequestThreshold = time.Second

// MetricsMiddleware đo số request và latency theo route template (không theo path thật)
func MetricsMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		done := metrics.TrackRequest(c.Method())
		err := c.Next()

		route := "unmatched"
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		done(route, status)

		if elapsed := time.Since(start); elapsed >= SlowRequestThreshold {
			logger.GetPerformanceLogger().WithFields(logrus.Fields{
				"method":      c.Method(),
				"route":       route,
				"status":      status,
				"duration_ms": elapsed.Milliseconds(),
			}).Warn("Request chậm")
		}
		return err
	}
}
