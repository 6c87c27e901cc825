package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jimlawless/whereami"
	"github.com/stockwatch-tech/go-backend/internal/cfg"
	"github.com/stockwatch-tech/go-backend/internal/usecase"
	"github.com/stockwatch-tech/go-backend/pkg/e"
)

var _ usecase.Mailer = (*SMTPMailer)(nil)

// SMTPMailer отправляет письма через обычный SMTP с PLAIN-аутентификацией.
type SMTPMailer struct {
	cfg *cfg.AlertsCfg
}

func NewSMTPMailer(cfg *cfg.AlertsCfg) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(ctx context.Context, to string, cc []string, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", m.cfg.FromAddress))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	if len(cc) > 0 {
		msg.WriteString(fmt.Sprintf("Cc: %s\r\n", strings.Join(cc, ", ")))
	}
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	msg.WriteString(body)

	recipients := append([]string{to}, cc...)

	var auth smtp.Auth
	if m.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPassword, m.cfg.SMTPHost)
	}

	addr := fmt.Sprintf("%s:%s", m.cfg.SMTPHost, m.cfg.SMTPPort)
	if err := smtp.SendMail(addr, auth, m.cfg.FromAddress, recipients, []byte(msg.String())); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
