package mailer

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"column/internal/core/logger"
	"column/internal/core/mq"
)

// QueueSender 把邮件投递到消息队列，由 mail-worker 消费后真正发送
type QueueSender struct {
	backend mq.Backend
	queue   string
}

func NewQueueSender(backend mq.Backend, queue string) *QueueSender {
	if queue == "" {
		queue = "column.mail"
	}
	return &QueueSender{backend: backend, queue: queue}
}

func (q *QueueSender) Send(ctx context.Context, msg Message) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	_, err = q.backend.Publish(ctx, q.queue, b, map[string]string{"kind": msg.Kind})
	return err
}

func (q *QueueSender) Close() error { return q.backend.Close() }

// Relay 消费队列并交给下游 Sender；坏消息直接丢弃，投递失败重投
func Relay(ctx context.Context, backend mq.Backend, queue string, sender Sender, l *zap.Logger) error {
	if queue == "" {
		queue = "column.mail"
	}
	return backend.Subscribe(ctx, queue, func(ctx context.Context, m mq.Message) error {
		var msg Message
		if err := json.Unmarshal(m.Data, &msg); err != nil {
			l.Warn("mail relay: drop malformed message", zap.String("id", m.ID), zap.Error(err))
			return nil
		}
		if err := sender.Send(ctx, msg); err != nil {
			l.Error("mail relay: send failed", zap.String("id", m.ID), zap.String("kind", msg.Kind), zap.Error(err))
			return err
		}
		l.Info("mail relayed", zap.String("id", m.ID), zap.String("kind", msg.Kind))
		return nil
	})
}

// LogSender 本地开发用：只打印邮件，不发送。正文里的令牌会打码
type LogSender struct{ L *zap.Logger }

func (s LogSender) Send(_ context.Context, msg Message) error {
	s.L.Info("mail (log backend)",
		zap.String("to", msg.To),
		zap.String("kind", msg.Kind),
		zap.String("subject", msg.Subject),
		zap.String("text", logger.RedactSecrets(msg.Text)),
	)
	return nil
}
