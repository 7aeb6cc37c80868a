package mailer

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"column/internal/core/config"
	"column/internal/core/mq"
)

// OpenSender 按配置创建投递后端；closer 可能为 nil
func OpenSender(ctx context.Context, cfg config.Mail, l *zap.Logger) (Sender, func() error, error) {
	switch cfg.Backend {
	case "", "log":
		return LogSender{L: l}, nil, nil
	case "brevo":
		s, err := NewBrevo(BrevoConfig{
			APIURL:      cfg.APIURL,
			APIKey:      cfg.APIKey,
			SenderName:  cfg.SenderName,
			SenderEmail: cfg.SenderEmail,
		}, &http.Client{})
		return s, nil, err
	case "amqp", "pubsub":
		b, err := OpenQueue(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		s := NewQueueSender(b, cfg.Queue)
		return s, s.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown mail backend %q", cfg.Backend)
}

func OpenQueue(ctx context.Context, cfg config.Mail) (mq.Backend, error) {
	switch cfg.Backend {
	case "amqp":
		return mq.NewRabbitMQ(mq.RabbitMQConfig{URL: cfg.AMQPURL, PrefetchCount: 8})
	case "pubsub":
		return mq.NewPubSub(ctx, mq.PubSubConfig{ProjectID: cfg.ProjectID, CredentialsFile: cfg.Credentials})
	}
	return nil, fmt.Errorf("mail backend %q has no queue", cfg.Backend)
}
