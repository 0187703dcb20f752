// Package registry cung cấp registry generic, thread-safe, dùng để giữ các định nghĩa
// tĩnh (ví dụ danh mục collection) được nạp một lần khi khởi động.
// Sau khi Freeze, registry chỉ còn đọc.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrFrozen trả về khi đăng ký vào registry đã đóng băng
var ErrFrozen = errors.New("registry is frozen")

// ErrEmptyName trả về khi tên item rỗng
var ErrEmptyName = errors.New("name cannot be empty")

// Registry là registry generic thread-safe.
// Type parameter T cho phép registry quản lý bất kỳ loại object nào.
//
// Example:
//
//	defs := NewRegistry[CollectionDefinition]()
//	_, _ = defs.Register("branches", branchesDef)
//	defs.Freeze()
//
//	if def, ok := defs.Get("branches"); ok {
//	    fmt.Println(def.Name)
//	}
type Registry[T any] struct {
	items  map[string]T // Map lưu trữ các items theo key
	frozen bool         // true sau Freeze, không nhận thêm item
	mu     sync.RWMutex
}

// NewRegistry tạo và trả về một registry mới.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		items: make(map[string]T),
	}
}

// Register đăng ký một item mới vào registry.
// Nếu item với name đã tồn tại, nó sẽ bị ghi đè.
//
// Returns:
//   - isNew: true nếu là item mới, false nếu ghi đè item cũ
//   - err: ErrEmptyName nếu name rỗng, ErrFrozen nếu registry đã đóng băng
func (r *Registry[T]) Register(name string, item T) (isNew bool, err error) {
	if name == "" {
		return false, ErrEmptyName
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return false, fmt.Errorf("register %s: %w", name, ErrFrozen)
	}
	_, exists := r.items[name]
	r.items[name] = item
	return !exists, nil
}

// MustRegister giống Register nhưng panic khi lỗi, dùng cho dữ liệu tĩnh lúc init
func (r *Registry[T]) MustRegister(name string, item T) {
	if _, err := r.Register(name, item); err != nil {
		panic(err)
	}
}

// Get lấy item theo tên.
// Trả về item và một boolean cho biết item có tồn tại hay không.
func (r *Registry[T]) Get(name string) (item T, exists bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, exists = r.items[name]
	return item, exists
}

// Names trả về danh sách tên đã sắp xếp
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.items))
	for name := range r.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len số lượng item
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Freeze đóng băng registry. Gọi nhiều lần không có tác dụng phụ.
func (r *Registry[T]) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Frozen cho biết registry đã đóng băng chưa
func (r *Registry[T]) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}
