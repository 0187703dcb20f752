package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/papichoolo/shds-admin/config"
	authsvc "github.com/papichoolo/shds-admin/internal/api/auth/service"
	"github.com/papichoolo/shds-admin/internal/api/collection/models"
	collectionsvc "github.com/papichoolo/shds-admin/internal/api/collection/service"
	invitesvc "github.com/papichoolo/shds-admin/internal/api/invite/service"
	"github.com/papichoolo/shds-admin/internal/delivery"
	"github.com/papichoolo/shds-admin/internal/delivery/channels"
	"github.com/papichoolo/shds-admin/internal/global"
	"github.com/papichoolo/shds-admin/internal/utility"
)

// Services các service đã wiring, dùng để đăng ký route
type Services struct {
	Collections *collectionsvc.CollectionService
	Identity    *authsvc.IdentityService
	Invites     *invitesvc.InviteService
}

// InitRegistry nạp danh mục collection (đóng băng) và dựng các service
func InitRegistry() *Services {
	defs := models.NewCatalogRegistry()
	logrus.WithField("collections", defs.Names()).Info("Initialized collection registry")

	cfg := global.ServerConfig
	profiles := authsvc.NewProfileService(global.Store)

	verifier, err := newVerifier(cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize identity provider: %v", err)
	}
	if cfg.DevAuthBypass {
		logrus.Warn("DEV_AUTH_BYPASS is enabled, every request runs as the dev user")
	}

	mailer := channels.NewInviteMailer(channels.EmailConfig{
		Host:            cfg.SMTPHost,
		Port:            cfg.SMTPPort,
		Username:        cfg.SMTPUsername,
		Password:        cfg.SMTPPassword,
		Sender:          cfg.InviteSenderEmail,
		ReplyTo:         cfg.InviteReplyToEmail,
		CallbackBaseURL: cfg.InviteCallbackBaseURL,
		RatePerSecond:   cfg.InviteEmailRate,
	})
	if !mailer.Configured() {
		logrus.Warn("SMTP is not configured, invite emails will only be logged")
	}

	return &Services{
		Collections: collectionsvc.NewCollectionService(global.Store, defs),
		Identity:    authsvc.NewIdentityService(verifier, profiles, cfg.DevAuthBypass),
		Invites: invitesvc.NewInviteService(global.Store, profiles, mailer,
			delivery.NewPublisher(cfg.RabbitMQ_URL), cfg.SuperAdminEmailList()),
	}
}

func newVerifier(cfg *config.Configuration) (authsvc.TokenVerifier, error) {
	if cfg.DevAuthBypass {
		return nil, nil
	}
	if cfg.AuthProvider == config.AuthProviderJWT {
		return authsvc.NewJWTVerifier(cfg.JwtSecret, cfg.JwtIssuer), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := utility.InitFirebase(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsFile)
	if err != nil {
		return nil, err
	}
	return authsvc.NewFirebaseVerifier(client), nil
}
