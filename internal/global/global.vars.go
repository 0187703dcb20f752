package global

import (
	"github.com/go-playground/validator/v10"
	"github.com/papichoolo/shds-admin/config"
	"github.com/papichoolo/shds-admin/internal/database"
)

// Tên các collection hệ thống (ngoài danh mục collection nghiệp vụ)
const (
	CollectionUsers       = "users"       // Hồ sơ người dùng, key = uid
	CollectionUserInvites = "userInvites" // Lời mời
)

// Các biến toàn cục
var Validate *validator.Validate       // Biến để xác thực dữ liệu
var ServerConfig *config.Configuration // Cấu hình của server
var Store database.Store               // Document store dùng chung cho cả process
