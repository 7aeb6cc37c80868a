package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"column/internal/core/config"
	"column/internal/core/mq"
)

type captureSender struct {
	mu       sync.Mutex
	msgs     []Message
	deadline bool
	err      error
}

func (c *captureSender) Send(ctx context.Context, m Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, c.deadline = ctx.Deadline()
	if c.err != nil {
		return c.err
	}
	c.msgs = append(c.msgs, m)
	return nil
}

func TestSendVerification(t *testing.T) {
	cs := &captureSender{}
	m := New(cs, Options{ClientURL: "http://localhost:5173/", SenderEmail: "no-reply@column.dev"})

	require.NoError(t, m.SendVerification(context.Background(), "ann@example.com", "Ann", "abc123"))
	require.Len(t, cs.msgs, 1)
	msg := cs.msgs[0]
	assert.Equal(t, "ann@example.com", msg.To)
	assert.Equal(t, "verification", msg.Kind)
	assert.Equal(t, "Verify your email address", msg.Subject)
	assert.Contains(t, msg.Text, "http://localhost:5173/verify-email?token=abc123")
	assert.Contains(t, msg.Text, "1 hour")
	assert.Contains(t, msg.HTML, `href="http://localhost:5173/verify-email?token=abc123"`)
	assert.Contains(t, msg.HTML, "Hi Ann")
	assert.True(t, cs.deadline)
}

func TestSendPasswordResetEscapesName(t *testing.T) {
	cs := &captureSender{}
	m := New(cs, Options{ClientURL: "http://app"})

	require.NoError(t, m.SendPasswordReset(context.Background(), "x@example.com", "<b>x</b>", "tok"))
	msg := cs.msgs[0]
	assert.Equal(t, "password_reset", msg.Kind)
	assert.Contains(t, msg.Text, "http://app/reset-password/tok")
	assert.Contains(t, msg.Text, "15 minutes")
	assert.NotContains(t, msg.HTML, "<b>x</b>")
}

func TestLogSenderMasksLinks(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := New(LogSender{L: zap.New(core)}, Options{ClientURL: "http://localhost:5173"})

	require.NoError(t, m.SendVerification(context.Background(), "ann@example.com", "Ann", "verifysecret"))
	require.NoError(t, m.SendPasswordReset(context.Background(), "ann@example.com", "Ann", "resetsecret"))

	entries := logs.All()
	require.Len(t, entries, 2)
	for _, e := range entries {
		text := e.ContextMap()["text"].(string)
		assert.NotContains(t, text, "verifysecret")
		assert.NotContains(t, text, "resetsecret")
		assert.Contains(t, text, "[REDACTED]")
		assert.Equal(t, "ann@example.com", e.ContextMap()["to"])
	}
}

func TestSendError(t *testing.T) {
	cs := &captureSender{err: errors.New("down")}
	err := New(cs, Options{}).SendVerification(context.Background(), "a@b.c", "a", "t")
	assert.Error(t, err)
}

func TestBrevoSender(t *testing.T) {
	var got brevoRequest
	var key string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key = r.Header.Get("api-key")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"messageId":"<1@brevo>"}`))
	}))
	defer srv.Close()

	b, err := NewBrevo(BrevoConfig{APIURL: srv.URL, APIKey: "k", SenderName: "Column", SenderEmail: "from@column.dev"}, srv.Client())
	require.NoError(t, err)
	require.NoError(t, b.Send(context.Background(), Message{To: "to@example.com", Subject: "s", HTML: "<p>h</p>", Text: "t"}))

	assert.Equal(t, "k", key)
	assert.Equal(t, "from@column.dev", got.Sender.Email)
	assert.Equal(t, "to@example.com", got.To[0].Email)
	assert.Equal(t, "<p>h</p>", got.HTMLContent)
}

func TestBrevoSenderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"unauthorized"}`))
	}))
	defer srv.Close()

	b, err := NewBrevo(BrevoConfig{APIURL: srv.URL, APIKey: "bad", SenderEmail: "f@c.d"}, srv.Client())
	require.NoError(t, err)
	err = b.Send(context.Background(), Message{To: "a@b.c"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")

	_, err = NewBrevo(BrevoConfig{}, nil)
	assert.Error(t, err)
}

type memQueue struct {
	mu   sync.Mutex
	sent map[string][][]byte
}

func (q *memQueue) Publish(_ context.Context, ch string, data []byte, _ map[string]string) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.sent == nil {
		q.sent = map[string][][]byte{}
	}
	q.sent[ch] = append(q.sent[ch], data)
	return "id", nil
}

func (q *memQueue) Subscribe(ctx context.Context, ch string, h mq.Handler) error {
	q.mu.Lock()
	pending := q.sent[ch]
	q.mu.Unlock()
	for i, d := range pending {
		_ = h(ctx, mq.Message{ID: string(rune('a' + i)), Data: d})
	}
	return nil
}

func (q *memQueue) Close() error { return nil }

func TestQueueSenderAndRelay(t *testing.T) {
	q := &memQueue{}
	m := New(NewQueueSender(q, ""), Options{ClientURL: "http://app"})
	require.NoError(t, m.SendVerification(context.Background(), "a@b.c", "A", "tok"))
	_, _ = q.Publish(context.Background(), "column.mail", []byte("not json"), nil)
	require.Len(t, q.sent["column.mail"], 2)

	cs := &captureSender{}
	require.NoError(t, Relay(context.Background(), q, "", cs, zap.NewNop()))
	require.Len(t, cs.msgs, 1)
	assert.Equal(t, "a@b.c", cs.msgs[0].To)
	assert.True(t, strings.Contains(cs.msgs[0].Text, "token=tok"))
}

func TestOpenSender(t *testing.T) {
	s, closer, err := OpenSender(context.Background(), config.Mail{Backend: "log"}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, closer)
	assert.NoError(t, s.Send(context.Background(), Message{To: "a@b.c"}))

	_, _, err = OpenSender(context.Background(), config.Mail{Backend: "brevo"}, zap.NewNop())
	assert.Error(t, err)
	_, _, err = OpenSender(context.Background(), config.Mail{Backend: "carrier-pigeon"}, zap.NewNop())
	assert.Error(t, err)
}

func TestDefaultTimeout(t *testing.T) {
	m := New(&captureSender{}, Options{})
	assert.Equal(t, 10*time.Second, m.opts.Timeout)
	assert.Equal(t, "Column", m.opts.Product)
}
