package mailer

import (
	"bytes"
	htmltpl "html/template"
	texttpl "text/template"
)

type mailData struct {
	Product   string
	Name      string
	Link      string
	ExpiresIn string
	From      string
}

type mailTemplate struct {
	kind    string
	subject string
	html    *htmltpl.Template
	text    *texttpl.Template
}

const layoutHTML = `<!doctype html>
<html><body style="font-family:Arial,sans-serif;background:#f4f4f7;padding:24px">
<table width="100%" cellpadding="0" cellspacing="0" style="max-width:570px;margin:0 auto;background:#fff;padding:32px">
<tr><td>
<h2 style="margin-top:0">{{.Product}}</h2>
<p>Hi {{.Name}},</p>
{{template "body" .}}
<p style="color:#6b6e76;font-size:13px">{{.Product}} {{.From}}</p>
</td></tr></table>
</body></html>`

var verificationMail = mustTemplate("verification", "Verify your email address",
	`{{define "body"}}<p>Welcome to {{.Product}}! Thank you for signing up. To complete your registration and start sharing your stories, please verify your email address.</p>
<p><a href="{{.Link}}" style="background:#22C55E;color:#fff;padding:10px 18px;text-decoration:none;border-radius:4px">Verify Email Address</a></p>
<p>This link expires in {{.ExpiresIn}}.</p>
<p>If you did not create this account, please ignore this email.</p>{{end}}`,
	`Welcome to {{.Product}}!

Hi {{.Name}},

Thank you for signing up! To complete your registration and start sharing your stories, please verify your email address by opening the link below.

Verification Link: {{.Link}}

Verification Link Expires In: {{.ExpiresIn}}

If you did not create this account, please ignore this email.

---
{{.Product}} {{.From}}`)

var resetMail = mustTemplate("password_reset", "Reset your password",
	`{{define "body"}}<p>We received a request to reset the password for your {{.Product}} account. Click the button below to set a new password.</p>
<p><a href="{{.Link}}" style="background:#DC2626;color:#fff;padding:10px 18px;text-decoration:none;border-radius:4px">Reset Password</a></p>
<p>This link expires in {{.ExpiresIn}}.</p>
<p>If you did not request a password reset, please ignore this email and your password will remain unchanged.</p>{{end}}`,
	`Password Reset Request

Hi {{.Name}},

We received a request to reset the password for your {{.Product}} account. Open the link below to set a new password.

Reset Link: {{.Link}}

Reset Link Expires In: {{.ExpiresIn}}

If you did not request a password reset, please ignore this email and your password will remain unchanged.

---
{{.Product}} {{.From}}`)

func mustTemplate(kind, subject, body, text string) mailTemplate {
	h := htmltpl.Must(htmltpl.New(kind).Parse(layoutHTML))
	htmltpl.Must(h.Parse(body))
	return mailTemplate{
		kind:    kind,
		subject: subject,
		html:    h,
		text:    texttpl.Must(texttpl.New(kind).Parse(text)),
	}
}

func render(t mailTemplate, d mailData) (Message, error) {
	var hb, tb bytes.Buffer
	if err := t.html.Execute(&hb, d); err != nil {
		return Message{}, err
	}
	if err := t.text.Execute(&tb, d); err != nil {
		return Message{}, err
	}
	return Message{Subject: t.subject, HTML: hb.String(), Text: tb.String(), Kind: t.kind}, nil
}
