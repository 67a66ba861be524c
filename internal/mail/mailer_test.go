package mail

import (
	"testing"

	"github.com/falco-social/falco/pkg/config"
)

func TestRecoveryLink(t *testing.T) {
	got := RecoveryLink("https://falco.example", "abc-123")
	want := "https://falco.example/recover/password_change/?uuid=abc-123"
	if got != want {
		t.Errorf("RecoveryLink() = %q, want %q", got, want)
	}
}

func TestEmailConfirmLink(t *testing.T) {
	got := EmailConfirmLink("https://api.falco.example", "abc-123")
	want := "https://api.falco.example/api/user/email_confirm/?uuid=abc-123"
	if got != want {
		t.Errorf("EmailConfirmLink() = %q, want %q", got, want)
	}
}

func TestNewFallsBackToLogMailer(t *testing.T) {
	m := New(&config.MailConfig{ClientHost: "http://localhost:3000"})
	if _, ok := m.(*logMailer); !ok {
		t.Errorf("New() without SMTP host = %T, want *logMailer", m)
	}
}
