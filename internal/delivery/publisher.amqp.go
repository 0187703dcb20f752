// Package delivery - phát sự kiện nghiệp vụ ra message broker.
package delivery

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/papichoolo/shds-admin/internal/logger"
)

// Routing key của các sự kiện lời mời (cũng là tên queue)
const (
	EventInviteIssued   = "invite.issued"
	EventInviteAccepted = "invite.accepted"
)

// InviteEvent payload JSON của sự kiện lời mời. Không chứa token.
type InviteEvent struct {
	Type     string    `json:"type"`
	InviteID string    `json:"inviteId"`
	Email    string    `json:"email"`
	BranchID string    `json:"branchId"`
	Roles    []string  `json:"roles"`
	ActorUID string    `json:"actorUid"`
	At       time.Time `json:"at"`
}

// Publisher nơi nhận sự kiện
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event interface{}) error
}

// NopPublisher bỏ qua mọi sự kiện, dùng khi không cấu hình broker
type NopPublisher struct{}

// Publish không làm gì
func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }

// AMQPPublisher publish JSON persistent vào queue durable cùng tên routing key.
// Mỗi lần publish mở một kết nối, đủ cho tần suất phát hành lời mời.
type AMQPPublisher struct {
	url string
}

// NewPublisher url rỗng trả về NopPublisher
func NewPublisher(url string) Publisher {
	if url == "" {
		return NopPublisher{}
	}
	return &AMQPPublisher{url: url}
}

// Publish lỗi được log và trả về, caller quyết định có bỏ qua hay không
func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, event interface{}) error {
	log := logger.WithModule("delivery").WithFields(logrus.Fields{"routing_key": routingKey})

	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.WithError(err).Warn("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.WithError(err).Warn("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(routingKey, true, false, false, false, nil); err != nil {
		log.WithError(err).Warn("rabbitmq: queue declare failed")
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := ch.PublishWithContext(ctx, "", routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}); err != nil {
		log.WithError(err).Warn("rabbitmq: publish failed")
		return err
	}
	return nil
}
