package mailer

import (
	"context"
	"net/url"
	"strings"
	"time"
)

type Message struct {
	To      string `json:"to"`
	ToName  string `json:"toName,omitempty"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
	// Kind 仅用于日志与队列属性
	Kind string `json:"kind,omitempty"`
}

// Sender 投递后端：brevo / amqp / pubsub / log
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type Options struct {
	ClientURL   string
	Product     string
	SenderEmail string
	Timeout     time.Duration
}

// Mailer 渲染模板并通过 Sender 发送，每次发送有独立超时
type Mailer struct {
	sender Sender
	opts   Options
}

func New(sender Sender, o Options) *Mailer {
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.Product == "" {
		o.Product = "Column"
	}
	o.ClientURL = strings.TrimRight(o.ClientURL, "/")
	return &Mailer{sender: sender, opts: o}
}

func (m *Mailer) SendVerification(ctx context.Context, to, name, rawToken string) error {
	link := m.opts.ClientURL + "/verify-email?token=" + url.QueryEscape(rawToken)
	msg, err := render(verificationMail, mailData{
		Product:   m.opts.Product,
		Name:      name,
		Link:      link,
		ExpiresIn: "1 hour",
		From:      m.opts.SenderEmail,
	})
	if err != nil {
		return err
	}
	msg.To, msg.ToName = to, name
	return m.send(ctx, msg)
}

func (m *Mailer) SendPasswordReset(ctx context.Context, to, name, rawToken string) error {
	link := m.opts.ClientURL + "/reset-password/" + url.PathEscape(rawToken)
	msg, err := render(resetMail, mailData{
		Product:   m.opts.Product,
		Name:      name,
		Link:      link,
		ExpiresIn: "15 minutes",
		From:      m.opts.SenderEmail,
	})
	if err != nil {
		return err
	}
	msg.To, msg.ToName = to, name
	return m.send(ctx, msg)
}

func (m *Mailer) send(ctx context.Context, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, m.opts.Timeout)
	defer cancel()
	return m.sender.Send(ctx, msg)
}
