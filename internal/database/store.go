package database

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WriteMode chế độ ghi document
type WriteMode int

const (
	// WriteReplace thay toàn bộ document
	WriteReplace WriteMode = iota
	// WriteMerge chỉ ghi đè các field top-level có trong fields
	WriteMerge
)

// Document một bản ghi đọc ra từ store
type Document struct {
	ID   string
	Data map[string]interface{}
}

// Flatten trả về {id, ...data}; id của store thắng field "id" trong data
func (d Document) Flatten() map[string]interface{} {
	out := make(map[string]interface{}, len(d.Data)+1)
	for k, v := range d.Data {
		out[k] = v
	}
	out["id"] = d.ID
	return out
}

// Filter điều kiện so sánh bằng trên một field
type Filter struct {
	Field string
	Value interface{}
}

// Store là capability interface của document store.
// Mọi implementation phải an toàn khi dùng đồng thời.
type Store interface {
	// Get trả về (document, true) hoặc (_, false) nếu không tồn tại
	Get(ctx context.Context, collection, id string) (Document, bool, error)
	Set(ctx context.Context, collection, id string, fields map[string]interface{}, mode WriteMode) error
	NewID(collection string) string
	// QueryEqual AND các điều kiện bằng; không có filter thì tương đương StreamAll
	QueryEqual(ctx context.Context, collection string, filters ...Filter) ([]Document, error)
	StreamAll(ctx context.Context, collection string) ([]Document, error)
	// UpdateIf merge fields chỉ khi field cond.Field đang bằng cond.Value.
	// Trả về false (không lỗi) nếu điều kiện không còn đúng hoặc document không tồn tại.
	UpdateIf(ctx context.Context, collection, id string, cond Filter, fields map[string]interface{}) (bool, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// normalizeValue đưa giá trị đọc từ driver về kiểu Go thuần
// (map[string]interface{}, []interface{}, time.Time, string, số, bool)
func normalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case bson.M:
		return normalizeMap(val)
	case map[string]interface{}:
		return normalizeMap(val)
	case bson.D:
		m := make(map[string]interface{}, len(val))
		for _, e := range val {
			m[e.Key] = normalizeValue(e.Value)
		}
		return m
	case bson.A:
		return normalizeSlice(val)
	case []interface{}:
		return normalizeSlice(val)
	case []string:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = item
		}
		return out
	case []map[string]interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = normalizeMap(item)
		}
		return out
	case primitive.DateTime:
		return val.Time().UTC()
	case primitive.ObjectID:
		return val.Hex()
	case primitive.Timestamp:
		return time.Unix(int64(val.T), 0).UTC()
	case int32:
		return int64(val)
	case time.Time:
		return val.UTC()
	default:
		return v
	}
}

func normalizeMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeSlice(s []interface{}) []interface{} {
	out := make([]interface{}, len(s))
	for i, v := range s {
		out[i] = normalizeValue(v)
	}
	return out
}

// valuesEqual so sánh bằng kiểu store: số so theo giá trị, còn lại so sâu
func valuesEqual(a, b interface{}) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
		return false
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Equal(tb)
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func requireID(collection, id string) error {
	if collection == "" {
		return fmt.Errorf("collection name is empty")
	}
	if id == "" {
		return fmt.Errorf("document id is empty (collection %s)", collection)
	}
	return nil
}
