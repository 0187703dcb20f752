// Package channels - các kênh gửi thông báo ra ngoài (hiện tại: email lời mời qua SMTP).
package channels

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"gopkg.in/gomail.v2"

	"github.com/papichoolo/shds-admin/internal/logger"
)

// InviteMessage nội dung cần để dựng email lời mời
type InviteMessage struct {
	Email       string
	BranchID    string
	Roles       []string
	StudentName string
	BatchName   string
	Message     string
	Token       string
}

// EmailConfig cấu hình SMTP. Host hoặc Sender trống thì chỉ log, không gửi.
type EmailConfig struct {
	Host            string
	Port            int
	Username        string
	Password        string
	Sender          string
	ReplyTo         string
	CallbackBaseURL string
	RatePerSecond   float64
}

// InviteMailer gửi email lời mời, có giới hạn tốc độ gửi
type InviteMailer struct {
	cfg     EmailConfig
	limiter *rate.Limiter
	send    func(*gomail.Message) error
}

// NewInviteMailer tạo mailer. RatePerSecond <= 0 thì không giới hạn.
func NewInviteMailer(cfg EmailConfig) *InviteMailer {
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	m := &InviteMailer{cfg: cfg, limiter: rate.NewLimiter(limit, 1)}
	m.send = func(msg *gomail.Message) error {
		// gomail tự STARTTLS khi server hỗ trợ, chỉ login khi có Username
		dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
		return dialer.DialAndSend(msg)
	}
	return m
}

// Configured true khi đủ Host và Sender
func (m *InviteMailer) Configured() bool {
	return m.cfg.Host != "" && m.cfg.Sender != ""
}

// InviteLink <base>/setup?token=<token>; base rỗng thì trả đường dẫn tương đối
func InviteLink(baseURL, token string) string {
	base := strings.TrimRight(baseURL, "/")
	return base + "/setup?token=" + token
}

// BuildInviteEmail dựng subject và nội dung text/plain của email lời mời
func BuildInviteEmail(msg InviteMessage, link string) (subject, body string) {
	subject = fmt.Sprintf("You're invited to SHDS - %s", msg.BranchID)
	lines := []string{
		"Hello,",
		"",
		fmt.Sprintf("You've been invited to access the SHDS dashboard for branch %s.", msg.BranchID),
	}
	if msg.StudentName != "" {
		lines = append(lines, "Student: "+msg.StudentName)
	}
	if msg.BatchName != "" {
		lines = append(lines, "Batch: "+msg.BatchName)
	}
	lines = append(lines,
		"",
		"Roles: "+strings.Join(msg.Roles, ", "),
		"",
		"Finish setup here: "+link,
		"",
		"If you were not expecting this email you can ignore it.",
	)
	if msg.Message != "" {
		// Lời nhắn nằm ngay sau câu giới thiệu
		lines = append(lines[:3], append([]string{msg.Message}, lines[3:]...)...)
	}
	return subject, strings.Join(lines, "\n")
}

// SendInvite gửi email và trả về link lời mời.
// Link luôn được trả về kể cả khi gửi lỗi để người phát hành có thể chia sẻ thủ công.
func (m *InviteMailer) SendInvite(ctx context.Context, msg InviteMessage) (string, error) {
	link := InviteLink(m.cfg.CallbackBaseURL, msg.Token)
	log := logger.WithModule("delivery").WithFields(logrus.Fields{
		"to":     msg.Email,
		"branch": msg.BranchID,
	})

	if !m.Configured() {
		log.WithField("invite_url", link).Warn("Invite email not sent (SMTP incomplete)")
		return link, nil
	}

	if err := m.limiter.Wait(ctx); err != nil {
		return link, fmt.Errorf("invite email throttled: %w", err)
	}

	subject, body := BuildInviteEmail(msg, link)
	mail := gomail.NewMessage()
	mail.SetHeader("To", msg.Email)
	mail.SetHeader("From", m.cfg.Sender)
	if m.cfg.ReplyTo != "" {
		mail.SetHeader("Reply-To", m.cfg.ReplyTo)
	}
	mail.SetHeader("Subject", subject)
	mail.SetBody("text/plain", body)

	if err := m.send(mail); err != nil {
		log.WithError(err).Error("Gửi email lời mời thất bại")
		return link, err
	}
	log.Info("Invite email dispatched")
	return link, nil
}
