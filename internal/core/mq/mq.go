package mq

import "context"

// Message 与具体消息中间件无关的消息体
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler 返回 error 表示需要重投
type Handler func(ctx context.Context, msg Message) error

type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}
