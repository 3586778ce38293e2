package notification

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
)

// Mailer delivers verification mail. Production wires an SMTP or provider
// implementation; LogMailer stands in everywhere else.
type Mailer interface {
	SendVerificationMail(ctx context.Context, m VerificationMail) error
}

// VerificationMail is everything the template needs.
type VerificationMail struct {
	To       string
	Username string
	Token    string
}

// LogMailer writes the verification link to the log instead of sending
// mail. Only suitable for dev: the token ends up in log output.
type LogMailer struct {
	Logger *slog.Logger

	// VerifyURLBase is the public verification endpoint, e.g.
	// "http://localhost:8080/api/auth/verify".
	VerifyURLBase string
}

var _ Mailer = (*LogMailer)(nil)

func (m *LogMailer) SendVerificationMail(_ context.Context, mail VerificationMail) error {
	link := fmt.Sprintf("%s?token=%s", m.VerifyURLBase, url.QueryEscape(mail.Token))
	m.Logger.Info("verification mail",
		slog.String("to", mail.To),
		slog.String("username", mail.Username),
		slog.String("link", link))
	return nil
}
