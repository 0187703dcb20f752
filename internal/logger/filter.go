package logger

import (
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// FilterHook đánh dấu entry cần bỏ qua theo module, collection, method và level.
// AsyncHook kiểm tra field "_filtered" và không ghi các entry đó.
type FilterHook struct {
	modules     map[string]bool
	collections map[string]bool
	methods     map[string]bool
	levels      map[string]bool
	mu          sync.RWMutex
}

// NewFilterHook tạo một filter hook mới với cấu hình
func NewFilterHook(cfg *LogConfig) *FilterHook {
	h := &FilterHook{}
	h.UpdateFilters(cfg)
	return h
}

// UpdateFilters cập nhật filters từ config mới (có thể gọi runtime)
func (h *FilterHook) UpdateFilters(cfg *LogConfig) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.modules = parseFilter(cfg.FilterModules)
	h.collections = parseFilter(cfg.FilterCollections)
	h.methods = parseFilter(cfg.FilterMethods)
	h.levels = parseFilter(cfg.FilterLogTypes)
}

// parseFilter: "a,b,c" -> set lowercase; trống hoặc "*" -> nil (cho phép tất cả)
func parseFilter(filterStr string) map[string]bool {
	filterStr = strings.TrimSpace(filterStr)
	if filterStr == "" || filterStr == "*" {
		return nil
	}
	result := make(map[string]bool)
	for _, v := range strings.Split(filterStr, ",") {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			result[v] = true
		}
	}
	if result["*"] {
		return nil
	}
	return result
}

// Levels trả về các log levels mà hook này xử lý
func (h *FilterHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire đánh dấu entry; entry không có field tương ứng thì không bị lọc theo field đó
func (h *FilterHook) Fire(entry *logrus.Entry) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.levels != nil && !h.levels[strings.ToLower(entry.Level.String())] {
		entry.Data[filteredKey] = true
		return nil
	}
	if !allowed(h.modules, entry.Data["module"]) ||
		!allowed(h.collections, entry.Data["collection"]) ||
		!allowed(h.methods, entry.Data["method"]) {
		entry.Data[filteredKey] = true
	}
	return nil
}

func allowed(set map[string]bool, value interface{}) bool {
	if set == nil {
		return true
	}
	s, ok := value.(string)
	if !ok || s == "" {
		return true
	}
	return set[strings.ToLower(s)]
}
