package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/falco-social/falco/internal/auth"
	"github.com/falco-social/falco/internal/db"
	"github.com/falco-social/falco/internal/mail"
	"github.com/falco-social/falco/pkg/config"
)

// newUserService builds a UserService over a mocked connection
func newUserService(t *testing.T) (*UserService, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("gorm.Open() error = %v", err)
	}

	repo := db.NewRepository(gdb)
	mailer := mail.New(&config.MailConfig{})
	return NewUserService(repo, NewNotificationService(repo), auth.NewHasher(4), mailer), mock
}

func TestSubscriptionsUnknownAccount(t *testing.T) {
	svc, mock := newUserService(t)
	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.Subscriptions(context.Background(), 99, 0)
	e, ok := AsError(err)
	if !ok || e.Status != http.StatusNotFound {
		t.Fatalf("Subscriptions(unknown account) error = %v, want 404", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected queries: %v", err)
	}
}

func TestSubscribersUnknownAccount(t *testing.T) {
	svc, mock := newUserService(t)
	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.Subscribers(context.Background(), 99, 0)
	e, ok := AsError(err)
	if !ok || e.Status != http.StatusNotFound {
		t.Fatalf("Subscribers(unknown account) error = %v, want 404", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected queries: %v", err)
	}
}

func TestSubscriptionsListsRelatedAccounts(t *testing.T) {
	svc, mock := newUserService(t)
	mock.ExpectQuery("SELECT").WillReturnRows(
		sqlmock.NewRows([]string{"id", "nickname"}).AddRow(5, "kestrel"))
	mock.ExpectQuery("SELECT").WillReturnRows(
		sqlmock.NewRows([]string{"id", "nickname", "avatar_url", "subscribed"}).
			AddRow(8, "merlin", nil, false))

	rows, err := svc.Subscriptions(context.Background(), 5, 0)
	if err != nil {
		t.Fatalf("Subscriptions() error = %v", err)
	}
	if len(rows) != 1 || rows[0].ID != 8 || rows[0].Nickname != "merlin" {
		t.Errorf("rows = %+v", rows)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected queries: %v", err)
	}
}
