package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const DefaultBrevoURL = "https://api.brevo.com/v3/smtp/email"

type BrevoConfig struct {
	APIURL      string
	APIKey      string
	SenderName  string
	SenderEmail string
}

// BrevoSender 走 Brevo 事务邮件 HTTP 接口
type BrevoSender struct {
	cfg    BrevoConfig
	client *http.Client
}

func NewBrevo(cfg BrevoConfig, client *http.Client) (*BrevoSender, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("brevo api key is required")
	}
	if strings.TrimSpace(cfg.SenderEmail) == "" {
		return nil, errors.New("mail sender email is required")
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultBrevoURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &BrevoSender{cfg: cfg, client: client}, nil
}

type brevoContact struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoRequest struct {
	Sender      brevoContact   `json:"sender"`
	To          []brevoContact `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
	TextContent string         `json:"textContent,omitempty"`
}

func (b *BrevoSender) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(brevoRequest{
		Sender:      brevoContact{Email: b.cfg.SenderEmail, Name: b.cfg.SenderName},
		To:          []brevoContact{{Email: msg.To, Name: msg.ToName}},
		Subject:     msg.Subject,
		HTMLContent: msg.HTML,
		TextContent: msg.Text,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", b.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("brevo: status %d: %s", res.StatusCode, strings.TrimSpace(string(snippet)))
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}
