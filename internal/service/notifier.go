package service

import (
	"context"
	"fmt"
	"net/smtp"

	"storefront-backend/internal/config"
)

// Notifier delivers outbound mail. Sends are fire-and-forget from the
// caller's point of view: a failure is logged, never propagated into the
// order/stock state that triggered it.
type Notifier interface {
	Send(ctx context.Context, recipient, subject, htmlBody string) error
}

type smtpNotifier struct {
	addr string
	auth smtp.Auth
	from string
}

func NewSMTPNotifier(smtpCfg *config.SMTP) Notifier {
	return &smtpNotifier{
		addr: smtpCfg.Host + ":" + smtpCfg.Port,
		auth: smtp.PlainAuth("", smtpCfg.Username, smtpCfg.Password, smtpCfg.Host),
		from: smtpCfg.From,
	}
}

func (n *smtpNotifier) Send(ctx context.Context, recipient, subject, htmlBody string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n"+
		"MIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		n.from, recipient, subject, htmlBody)

	if err := smtp.SendMail(n.addr, n.auth, n.from, []string{recipient}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", recipient, err)
	}

	return nil
}
