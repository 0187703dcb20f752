package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Các driver lưu trữ được hỗ trợ
const (
	StoreDriverMemory    = "memory"
	StoreDriverMongo     = "mongo"
	StoreDriverFirestore = "firestore"
)

// Các identity provider được hỗ trợ
const (
	AuthProviderFirebase = "firebase"
	AuthProviderJWT      = "jwt"
)

// Configuration chứa thông tin tĩnh cần thiết để chạy ứng dụng
type Configuration struct {
	Address               string `env:"ADDRESS" envDefault:"8080"`                 // Cổng server
	CORS_Origins          string `env:"CORS_ORIGINS" envDefault:"*"`               // Các origins được phép (phân cách bởi dấu phẩy, * = tất cả)
	CORS_AllowCredentials bool   `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"` // Cho phép gửi credentials
	RateLimit_Max         int    `env:"RATE_LIMIT_MAX" envDefault:"100"`           // Số request tối đa trong window (0 = disable rate limit)
	RateLimit_Window      int    `env:"RATE_LIMIT_WINDOW" envDefault:"60"`         // Thời gian window (giây)
	RateLimit_Enabled     bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`      // Bật/tắt rate limiting
	MetricsEnabled        bool   `env:"METRICS_ENABLED" envDefault:"true"`         // Expose /metrics
	EnableTLS             bool   `env:"ENABLE_TLS" envDefault:"false"`             // Bật HTTPS
	TLSCertFile           string `env:"TLS_CERT_FILE"`                             // Đường dẫn certificate (tương đối với thư mục gốc service)
	TLSKeyFile            string `env:"TLS_KEY_FILE"`                              // Đường dẫn private key

	// Document store
	StoreDriver              string `env:"STORE_DRIVER" envDefault:"memory"`     // firestore | mongo | memory
	MongoDB_ConnectionURI    string `env:"MONGODB_CONNECTION_URI"`               // URL kết nối MongoDB
	MongoDB_DBName           string `env:"MONGODB_DBNAME" envDefault:"shds"`     // Tên database MongoDB
	FirestoreProjectID       string `env:"FIRESTORE_PROJECT_ID"`                 // Project chứa Firestore
	FirestoreDatabaseID      string `env:"FIRESTORE_DATABASE_ID" envDefault:"shdsdb"`
	FirestoreCredentialsFile string `env:"FIRESTORE_CREDENTIALS_FILE"` // Service account cho Firestore (trống = dùng ADC)

	// Identity
	AuthProvider            string `env:"AUTH_PROVIDER" envDefault:"firebase"` // firebase | jwt
	FirebaseProjectID       string `env:"FIREBASE_PROJECT_ID"`                 // Firebase Project ID
	FirebaseCredentialsFile string `env:"FIREBASE_CREDENTIALS_FILE"`           // Đường dẫn đến service account JSON
	JwtSecret               string `env:"JWT_SECRET"`                          // Khóa HS256 khi AUTH_PROVIDER=jwt
	JwtIssuer               string `env:"JWT_ISSUER" envDefault:"shds-admin"`
	DevAuthBypass           bool   `env:"DEV_AUTH_BYPASS" envDefault:"false"` // KHÔNG bật trên production

	// Invite
	SuperAdminEmails      string  `env:"SUPER_ADMIN_EMAILS"` // Danh sách email phân cách bằng dấu phẩy
	InviteSenderEmail     string  `env:"INVITE_SENDER_EMAIL"`
	InviteReplyToEmail    string  `env:"INVITE_REPLY_TO_EMAIL"`
	InviteCallbackBaseURL string  `env:"INVITE_CALLBACK_BASE_URL"`
	SMTPHost              string  `env:"SMTP_HOST"`
	SMTPPort              int     `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername          string  `env:"SMTP_USERNAME"`
	SMTPPassword          string  `env:"SMTP_PASSWORD"`
	InviteEmailRate       float64 `env:"INVITE_EMAIL_RATE" envDefault:"2"` // Số email tối đa mỗi giây
	RabbitMQ_URL          string  `env:"RABBITMQ_URL"`                     // Trống = không publish event
}

// SuperAdminEmailList tách SUPER_ADMIN_EMAILS thành danh sách email đã lowercase
func (c *Configuration) SuperAdminEmailList() []string {
	if c == nil || strings.TrimSpace(c.SuperAdminEmails) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(c.SuperAdminEmails, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// SMTPConfigured true khi đủ thông tin để gửi email thật
func (c *Configuration) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.InviteSenderEmail != ""
}

// Validate kiểm tra các tổ hợp cấu hình phụ thuộc nhau
func (c *Configuration) Validate() error {
	switch c.StoreDriver {
	case StoreDriverMemory:
	case StoreDriverMongo:
		if c.MongoDB_ConnectionURI == "" {
			return fmt.Errorf("MONGODB_CONNECTION_URI is required when STORE_DRIVER=mongo")
		}
	case StoreDriverFirestore:
		if c.FirestoreProjectID == "" {
			return fmt.Errorf("FIRESTORE_PROJECT_ID is required when STORE_DRIVER=firestore")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}

	if c.DevAuthBypass {
		return nil
	}
	switch c.AuthProvider {
	case AuthProviderFirebase:
	case AuthProviderJWT:
		if c.JwtSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when AUTH_PROVIDER=jwt")
		}
	default:
		return fmt.Errorf("unsupported AUTH_PROVIDER %q", c.AuthProvider)
	}
	return nil
}

// getEnvPath trả về đường dẫn đến file env dựa trên môi trường
func getEnvPath() string {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	currentDir, err := os.Getwd()
	if err != nil {
		// Sử dụng fmt.Printf vì logger có thể chưa được init ở đây
		fmt.Printf("Không thể lấy được thư mục hiện tại: %v\n", err)
		return ""
	}

	// Tìm thư mục config/env
	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			return filepath.Join(envDir, fmt.Sprintf("%s.env", env))
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// NewConfig đọc cấu hình từ file env (nếu có) rồi từ biến môi trường.
// Truyền files để chỉ định file env cụ thể thay cho config/env/<GO_ENV>.env.
func NewConfig(files ...string) (*Configuration, error) {
	if len(files) == 0 {
		if envPath := getEnvPath(); envPath != "" {
			files = []string{envPath}
		}
	}

	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			// Không có file env thì dựa hoàn toàn vào biến môi trường
			fmt.Printf("Bỏ qua file env %s: %v\n", f, err)
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", f, err)
		}
	}

	cfg := Configuration{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Address = strings.TrimPrefix(cfg.Address, ":")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
