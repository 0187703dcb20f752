package database

import (
	"context"
	"sort"
	"sync"

	"github.com/papichoolo/shds-admin/internal/ids"
)

// MemoryStore lưu document trong bộ nhớ process. Dùng cho development và test.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]interface{}
}

// NewMemoryStore tạo store rỗng
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]map[string]interface{})}
}

// Get trả về bản copy của document
func (s *MemoryStore) Get(_ context.Context, collection, id string) (Document, bool, error) {
	if err := requireID(collection, id); err != nil {
		return Document{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.collections[collection][id]
	if !ok {
		return Document{}, false, nil
	}
	return Document{ID: id, Data: normalizeMap(data)}, true, nil
}

// Set ghi document theo mode
func (s *MemoryStore) Set(_ context.Context, collection, id string, fields map[string]interface{}, mode WriteMode) error {
	if err := requireID(collection, id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(collection, id, fields, mode)
	return nil
}

func (s *MemoryStore) setLocked(collection, id string, fields map[string]interface{}, mode WriteMode) {
	docs, ok := s.collections[collection]
	if !ok {
		docs = make(map[string]map[string]interface{})
		s.collections[collection] = docs
	}
	existing, ok := docs[id]
	if mode == WriteReplace || !ok {
		docs[id] = normalizeMap(fields)
		return
	}
	for k, v := range fields {
		existing[k] = normalizeValue(v)
	}
}

// NewID sinh ULID
func (s *MemoryStore) NewID(string) string {
	return ids.New()
}

// QueryEqual quét toàn collection, thứ tự theo id
func (s *MemoryStore) QueryEqual(_ context.Context, collection string, filters ...Filter) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := s.collections[collection]
	keys := make([]string, 0, len(docs))
	for id := range docs {
		keys = append(keys, id)
	}
	sort.Strings(keys)

	results := make([]Document, 0)
	for _, id := range keys {
		data := docs[id]
		if matchesAll(data, filters) {
			results = append(results, Document{ID: id, Data: normalizeMap(data)})
		}
	}
	return results, nil
}

// StreamAll trả về toàn bộ document của collection
func (s *MemoryStore) StreamAll(ctx context.Context, collection string) ([]Document, error) {
	return s.QueryEqual(ctx, collection)
}

// UpdateIf check-and-set dưới cùng một lock
func (s *MemoryStore) UpdateIf(_ context.Context, collection, id string, cond Filter, fields map[string]interface{}) (bool, error) {
	if err := requireID(collection, id); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.collections[collection][id]
	if !ok || !matchesAll(data, []Filter{cond}) {
		return false, nil
	}
	s.setLocked(collection, id, fields, WriteMerge)
	return true, nil
}

// Ping luôn thành công
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Close không làm gì
func (s *MemoryStore) Close(context.Context) error { return nil }

func matchesAll(data map[string]interface{}, filters []Filter) bool {
	for _, f := range filters {
		v, ok := data[f.Field]
		if !ok || !valuesEqual(v, f.Value) {
			return false
		}
	}
	return true
}
