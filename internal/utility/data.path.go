package utility

import "strings"

// ValueKind phân loại một giá trị trong payload JSON đã decode
type ValueKind int

const (
	ValueAbsent ValueKind = iota // Key không tồn tại
	ValueObject                  // map[string]interface{}
	ValueList                    // []interface{}
	ValueScalar                  // Mọi giá trị còn lại, kể cả null
)

// Value là tagged value bọc một phần tử của payload
type Value struct {
	Kind   ValueKind
	Object map[string]interface{}
	List   []interface{}
	Scalar interface{}
}

// Absent giá trị không tồn tại
func Absent() Value {
	return Value{Kind: ValueAbsent}
}

// ValueOf phân loại v theo kiểu động
func ValueOf(v interface{}) Value {
	switch t := v.(type) {
	case map[string]interface{}:
		return Value{Kind: ValueObject, Object: t}
	case []interface{}:
		return Value{Kind: ValueList, List: t}
	default:
		return Value{Kind: ValueScalar, Scalar: v}
	}
}

// Field lấy key từ Object. Không phải Object hoặc thiếu key thì Absent.
func (v Value) Field(key string) Value {
	if v.Kind != ValueObject {
		return Absent()
	}
	raw, ok := v.Object[key]
	if !ok {
		return Absent()
	}
	return ValueOf(raw)
}

// IsNull true khi là Scalar nil
func (v Value) IsNull() bool {
	return v.Kind == ValueScalar && v.Scalar == nil
}

// pathSegment một đoạn của field path, "guardianLinks[]" => {key: guardianLinks, each: true}
type pathSegment struct {
	key  string
	each bool
}

func parseFieldPath(path string) []pathSegment {
	parts := strings.Split(path, ".")
	segs := make([]pathSegment, 0, len(parts))
	for _, p := range parts {
		if strings.HasSuffix(p, "[]") {
			segs = append(segs, pathSegment{key: strings.TrimSuffix(p, "[]"), each: true})
			continue
		}
		segs = append(segs, pathSegment{key: p})
	}
	return segs
}

// ExtractPath lấy mọi giá trị tại field path trong payload.
//
// Path phân tách bằng dấu chấm. Đoạn có hậu tố [] nghĩa là key chứa một list:
// nếu còn đoạn phía sau thì đi tiếp vào từng phần tử, nếu là đoạn cuối thì lấy
// thẳng các phần tử. Container trung gian thiếu, null hoặc sai kiểu đều cho kết quả
// rỗng, không phải lỗi. Đoạn cuối không có [] trả về đúng một giá trị, kể cả null.
//
//	ExtractPath(p, "guardianLinks[].guardianId") // ["g1", "g2"]
//	ExtractPath(p, "studentIds[]")               // ["s1", "s2"]
func ExtractPath(payload interface{}, path string) []interface{} {
	segs := parseFieldPath(path)
	if len(segs) == 0 {
		return []interface{}{}
	}
	out := walkPath(ValueOf(payload), segs)
	if out == nil {
		return []interface{}{}
	}
	return out
}

func walkPath(current Value, segs []pathSegment) []interface{} {
	seg := segs[0]
	last := len(segs) == 1

	value := current.Field(seg.key)
	if value.Kind == ValueAbsent {
		return nil
	}

	if seg.each {
		if value.Kind != ValueList {
			return nil
		}
		if last {
			return append([]interface{}(nil), value.List...)
		}
		var out []interface{}
		for _, item := range value.List {
			out = append(out, walkPath(ValueOf(item), segs[1:])...)
		}
		return out
	}

	if last {
		return []interface{}{rawOf(value)}
	}
	return walkPath(value, segs[1:])
}

func rawOf(v Value) interface{} {
	switch v.Kind {
	case ValueObject:
		return v.Object
	case ValueList:
		return v.List
	case ValueScalar:
		return v.Scalar
	default:
		return nil
	}
}
