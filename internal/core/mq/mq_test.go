package mq

import (
	"context"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
)

func TestHeadersToAttributes(t *testing.T) {
	assert.Nil(t, headersToAttributes(nil))
	got := headersToAttributes(amqp.Table{"kind": "verify", "raw": []byte("x"), "n": int32(3)})
	assert.Equal(t, map[string]string{"kind": "verify", "raw": "x", "n": "3"}, got)
}

func TestNewMessageID(t *testing.T) {
	a, b := newMessageID(), newMessageID()
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

func TestConfigValidation(t *testing.T) {
	_, err := NewRabbitMQ(RabbitMQConfig{})
	assert.Error(t, err)
	_, err = NewPubSub(context.Background(), PubSubConfig{})
	assert.Error(t, err)
}
