package common

import (
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// HTTP Status Code Constants
const (
	StatusOK      = 200 // Thành công
	StatusCreated = 201 // Tạo mới thành công

	StatusBadRequest          = 400 // Yêu cầu không hợp lệ
	StatusUnauthorized        = 401 // Chưa xác thực
	StatusForbidden           = 403 // Không có quyền truy cập
	StatusNotFound            = 404 // Không tìm thấy tài nguyên
	StatusConflict            = 409 // Xung đột dữ liệu
	StatusUnprocessableEntity = 422 // Dữ liệu không qua được kiểm tra nghiệp vụ
	StatusTooManyRequests     = 429 // Quá nhiều yêu cầu

	StatusInternalServerError = 500 // Lỗi server
	StatusServiceUnavailable  = 503 // Dịch vụ không khả dụng
)

// Response Messages
const (
	MsgSuccess = "Thao tác thành công"
	MsgCreated = "Tạo mới thành công"

	MsgTokenMissing  = "missing firebase token"
	MsgTokenInvalid  = "invalid token"
	MsgInternalError = "Lỗi hệ thống"
	MsgDatabaseError = "Lỗi tương tác với cơ sở dữ liệu"
)

// ErrorCode định nghĩa mã lỗi chi tiết
type ErrorCode struct {
	Code        string // Mã lỗi (ví dụ: AUTH_001)
	Category    string // Phân loại lỗi (ví dụ: Authentication)
	SubCategory string // Phân loại con (ví dụ: Token)
	Description string // Mô tả chi tiết
}

// Định nghĩa các mã lỗi theo hệ thống phân cấp
var (
	// System Errors (SYS_xxx)
	ErrCodeInternalServer = ErrorCode{Code: "SYS_001", Category: "System", SubCategory: "Internal", Description: "Lỗi hệ thống nội bộ"}

	// Authentication Errors (AUTH_xxx)
	ErrCodeAuthToken = ErrorCode{Code: "AUTH_001", Category: "Authentication", SubCategory: "Token", Description: "Token thiếu hoặc không xác thực được"}
	ErrCodeAuthRole  = ErrorCode{Code: "AUTH_003", Category: "Authentication", SubCategory: "Role", Description: "Vai trò không đủ quyền hoặc sai phạm vi chi nhánh"}

	// Validation Errors (VAL_xxx)
	ErrCodeValidationInput = ErrorCode{Code: "VAL_001", Category: "Validation", SubCategory: "Input", Description: "Lỗi dữ liệu đầu vào"}
	ErrCodeValidationRule  = ErrorCode{Code: "VAL_003", Category: "Validation", SubCategory: "Rule", Description: "Vi phạm ràng buộc của collection (field bắt buộc, quan hệ, chi nhánh)"}

	// Database Errors (DB_xxx)
	ErrCodeDatabase           = ErrorCode{Code: "DB", Category: "Database", SubCategory: "General", Description: "Lỗi cơ sở dữ liệu chung"}
	ErrCodeDatabaseConnection = ErrorCode{Code: "DB_001", Category: "Database", SubCategory: "Connection", Description: "Lỗi kết nối cơ sở dữ liệu"}
	ErrCodeDatabaseQuery      = ErrorCode{Code: "DB_002", Category: "Database", SubCategory: "Query", Description: "Lỗi truy vấn dữ liệu"}

	// Collection Errors (COL_xxx)
	ErrCodeCollectionUnknown = ErrorCode{Code: "COL_001", Category: "Collection", SubCategory: "Registry", Description: "Collection không có trong registry"}

	// Invite Errors (INV_xxx)
	ErrCodeInvite           = ErrorCode{Code: "INV", Category: "Invite", SubCategory: "General", Description: "Lỗi lời mời chung"}
	ErrCodeInvitePermission = ErrorCode{Code: "INV_001", Category: "Invite", SubCategory: "Permission", Description: "Không được phép phát hành hoặc nhận lời mời"}
	ErrCodeInviteToken      = ErrorCode{Code: "INV_002", Category: "Invite", SubCategory: "Token", Description: "Token lời mời không tồn tại"}
	ErrCodeInviteState      = ErrorCode{Code: "INV_003", Category: "Invite", SubCategory: "State", Description: "Lời mời đã được sử dụng"}
)

// Kind phân loại lỗi nghiệp vụ, dùng để map sang HTTP status ở tầng handler
type Kind string

const (
	KindUnknownCollection    Kind = "UnknownCollection"
	KindForbidden            Kind = "Forbidden"
	KindValidationFailed     Kind = "ValidationFailed"
	KindPermissionDenied     Kind = "PermissionDenied"
	KindTokenInvalid         Kind = "TokenInvalid"
	KindInviteAlreadyUsed    Kind = "InviteAlreadyUsed"
	KindInviteError          Kind = "InviteError"
	KindAuthenticationFailed Kind = "AuthenticationFailed"
	KindStore                Kind = "Store"
	KindInternal             Kind = "Internal"
)

// Error định nghĩa cấu trúc lỗi chi tiết
type Error struct {
	Kind       Kind      // Loại lỗi nghiệp vụ
	Code       ErrorCode // Mã lỗi chi tiết
	Message    string    // Thông báo lỗi
	StatusCode int       // HTTP status code
	Details    any       // Thông tin chi tiết thêm về lỗi
	cause      error
}

// Error trả về message của lỗi
func (e *Error) Error() string {
	return e.Message
}

// Unwrap trả về lỗi gốc (nếu có) để errors.Is / errors.As đi tiếp
func (e *Error) Unwrap() error {
	return e.cause
}

// Is so khớp theo Kind + Code + StatusCode, không so message
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code.Code == t.Code.Code && e.StatusCode == t.StatusCode
}

// NewError tạo một error mới với đầy đủ thông tin
func NewError(code ErrorCode, message string, statusCode int, details any) error {
	return &Error{
		Kind:       KindInternal,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
	}
}

func newKindError(kind Kind, code ErrorCode, message string, statusCode int, details any) error {
	return &Error{
		Kind:       kind,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
	}
}

// ErrUnknownCollection collection không tồn tại trong registry
func ErrUnknownCollection(name string) error {
	return newKindError(KindUnknownCollection, ErrCodeCollectionUnknown,
		fmt.Sprintf("unknown collection '%s'", name), StatusNotFound, nil)
}

// ErrForbidden thiếu role hoặc vi phạm phạm vi chi nhánh
func ErrForbidden(message string) error {
	return newKindError(KindForbidden, ErrCodeAuthRole, message, StatusForbidden, nil)
}

// ErrValidationFailed vi phạm field bắt buộc, quan hệ hoặc kiểu dữ liệu
func ErrValidationFailed(message string, details any) error {
	return newKindError(KindValidationFailed, ErrCodeValidationRule, message, StatusUnprocessableEntity, details)
}

// ErrPermissionDenied lỗi quyền trong luồng lời mời
func ErrPermissionDenied(message string) error {
	return newKindError(KindPermissionDenied, ErrCodeInvitePermission, message, StatusForbidden, nil)
}

// ErrTokenInvalid không tìm thấy lời mời khớp token
func ErrTokenInvalid(message string) error {
	return newKindError(KindTokenInvalid, ErrCodeInviteToken, message, StatusNotFound, nil)
}

// ErrInviteAlreadyUsed lời mời không còn ở trạng thái pending
func ErrInviteAlreadyUsed(message string) error {
	return newKindError(KindInviteAlreadyUsed, ErrCodeInviteState, message, StatusConflict, nil)
}

// ErrInvite lỗi lời mời còn lại (thiếu branch, payload sai...)
func ErrInvite(message string, details any) error {
	return newKindError(KindInviteError, ErrCodeInvite, message, StatusBadRequest, details)
}

// ErrAuthentication token thiếu hoặc bị identity provider từ chối
func ErrAuthentication(message string) error {
	return newKindError(KindAuthenticationFailed, ErrCodeAuthToken, message, StatusUnauthorized, nil)
}

// Custom errors
var (
	ErrTokenMissing = ErrAuthentication(MsgTokenMissing)
	ErrNotFound     = newKindError(KindStore, ErrCodeDatabaseQuery, "Không tìm thấy dữ liệu", StatusNotFound, nil)
	ErrConflict     = newKindError(KindStore, ErrCodeDatabaseQuery, "Xung đột khi ghi dữ liệu", StatusConflict, nil)
	ErrConnection   = newKindError(KindStore, ErrCodeDatabaseConnection, "Lỗi kết nối cơ sở dữ liệu", StatusServiceUnavailable, nil)
)

// KindOf trả về Kind của lỗi, KindInternal nếu không phải *Error
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// ConvertStoreError chuyển đổi lỗi của driver (MongoDB, Firestore/gRPC) sang lỗi hệ thống.
// Lỗi đã là *Error thì giữ nguyên.
func ConvertStoreError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return wrapStore(ErrCodeDatabaseQuery, "Dữ liệu trùng lặp", StatusConflict, err)
	}
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return wrapStore(ErrCodeDatabaseConnection, "Kết nối MongoDB bị gián đoạn", StatusServiceUnavailable, err)
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return wrapStore(ErrCodeDatabaseQuery, "Lỗi truy vấn MongoDB", StatusInternalServerError, err)
	}

	if st, ok := status.FromError(err); ok && st.Code() != codes.Unknown {
		switch st.Code() {
		case codes.NotFound:
			return ErrNotFound
		case codes.Aborted, codes.AlreadyExists, codes.FailedPrecondition:
			return wrapStore(ErrCodeDatabaseQuery, "Xung đột khi ghi Firestore", StatusConflict, err)
		case codes.Unavailable, codes.DeadlineExceeded:
			return wrapStore(ErrCodeDatabaseConnection, "Firestore không khả dụng", StatusServiceUnavailable, err)
		case codes.PermissionDenied, codes.Unauthenticated:
			return wrapStore(ErrCodeDatabaseConnection, "Firestore từ chối thông tin xác thực", StatusServiceUnavailable, err)
		}
	}

	if strings.Contains(err.Error(), "context deadline exceeded") {
		return wrapStore(ErrCodeDatabaseConnection, "Truy vấn cơ sở dữ liệu bị timeout", StatusServiceUnavailable, err)
	}
	return wrapStore(ErrCodeDatabase, MsgDatabaseError, StatusInternalServerError, err)
}

func wrapStore(code ErrorCode, message string, statusCode int, cause error) error {
	return &Error{
		Kind:       KindStore,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		cause:      cause,
	}
}
