package mail

import (
	"fmt"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/falco-social/falco/pkg/config"
	"github.com/falco-social/falco/pkg/logging"
)

// Mailer delivers transactional mail
type Mailer interface {
	SendPasswordRecovery(to, uuid string) error
	SendEmailConfirm(to, uuid string) error
}

// New returns an SMTP mailer, or a log-only mailer when SMTP is not
// configured (local development)
func New(cfg *config.MailConfig) Mailer {
	if cfg.SMTPHost == "" {
		logging.GetLogger().Warn("SMTP not configured, mail will only be logged")
		return &logMailer{cfg: cfg, logger: logging.WithComponent("mailer")}
	}
	return &smtpMailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		logger: logging.WithComponent("mailer"),
	}
}

type smtpMailer struct {
	cfg    *config.MailConfig
	dialer *gomail.Dialer
	logger *zap.Logger
}

func (m *smtpMailer) send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	m.logger.Info("Mail sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

func (m *smtpMailer) SendPasswordRecovery(to, uuid string) error {
	link := RecoveryLink(m.cfg.ClientHost, uuid)
	return m.send(to, "[Falco] Password recovery",
		fmt.Sprintf(`<p>To choose a new password, follow <a href="%s">this link</a>.</p>`, link))
}

func (m *smtpMailer) SendEmailConfirm(to, uuid string) error {
	link := EmailConfirmLink(m.cfg.ExternalHost, uuid)
	return m.send(to, "[Falco] Email address confirmation",
		fmt.Sprintf(`<p>To confirm this email address, follow <a href="%s">this link</a>.</p>`, link))
}

// RecoveryLink builds the frontend password-change URL sent to the user
func RecoveryLink(clientHost, uuid string) string {
	return fmt.Sprintf("%s/recover/password_change/?uuid=%s", clientHost, uuid)
}

// EmailConfirmLink builds the API confirmation URL sent to the candidate
// address
func EmailConfirmLink(externalHost, uuid string) string {
	return fmt.Sprintf("%s/api/user/email_confirm/?uuid=%s", externalHost, uuid)
}

type logMailer struct {
	cfg    *config.MailConfig
	logger *zap.Logger
}

func (m *logMailer) SendPasswordRecovery(to, uuid string) error {
	m.logger.Info("Password recovery mail (not sent)",
		zap.String("to", to), zap.String("link", RecoveryLink(m.cfg.ClientHost, uuid)))
	return nil
}

func (m *logMailer) SendEmailConfirm(to, uuid string) error {
	m.logger.Info("Email confirm mail (not sent)",
		zap.String("to", to), zap.String("link", EmailConfirmLink(m.cfg.ExternalHost, uuid)))
	return nil
}
