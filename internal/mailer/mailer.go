package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"

	"rifa-service/internal/config"
)

// Mailer sends the issuance notification to a buyer.
type Mailer interface {
	SendCodes(ctx context.Context, to, buyerName string, codes []string) error
}

type SMTPMailer struct {
	host string
	port string
	user string
	pass string
	from string
}

func NewSMTPMailer(cfg config.EmailConfig) *SMTPMailer {
	return &SMTPMailer{
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
		user: cfg.SMTPUsername,
		pass: cfg.SMTPPassword,
		from: cfg.From,
	}
}

func (m *SMTPMailer) SendCodes(ctx context.Context, to, buyerName string, codes []string) error {
	addr := fmt.Sprintf("%s:%s", m.host, m.port)
	auth := smtp.PlainAuth("", m.user, m.pass, m.host)

	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Your raffle numbers (%d)", len(codes))
	e.Text = []byte(CodesBody(buyerName, codes))

	return e.Send(addr, auth)
}

// CodesBody renders the plain-text message listing the issued numbers.
func CodesBody(buyerName string, codes []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", buyerName)
	fmt.Fprintf(&b, "Your payment has been confirmed. These are your raffle numbers:\n\n")
	fmt.Fprintf(&b, "  %s\n\n", strings.Join(codes, ", "))
	b.WriteString("Keep this email; the numbers above are your entries in the draw.\n")
	return b.String()
}
