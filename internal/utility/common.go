package utility

import (
	"runtime/debug"

	"github.com/papichoolo/shds-admin/internal/logger"
)

// GoProtect chạy f và bắt panic nếu có, log lại thay vì làm dừng process.
// Dùng cho các goroutine chạy nền không có caller chờ kết quả.
func GoProtect(name string, f func()) {
	defer func() {
		if err := recover(); err != nil {
			logger.WithModule("worker").WithFields(map[string]interface{}{
				"task":  name,
				"stack": string(debug.Stack()),
			}).Errorf("Đã bắt lỗi panic: %v", err)
		}
	}()
	f()
}
