package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/falco-social/falco/internal/auth"
	"github.com/falco-social/falco/internal/db"
	"github.com/falco-social/falco/internal/mail"
	"github.com/falco-social/falco/internal/models"
	"github.com/falco-social/falco/internal/roles"
	"github.com/falco-social/falco/pkg/logging"
)

// UserService implements profile management, the subscription graph and
// moderation
type UserService struct {
	accounts      *db.AccountRepository
	tokens        *db.TokenRepository
	bans          *db.BanRepository
	engagement    *db.EngagementRepository
	notifications *NotificationService
	hasher        *auth.Hasher
	mailer        mail.Mailer
	logger        *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(repo *db.Repository, notifications *NotificationService, hasher *auth.Hasher, mailer mail.Mailer) *UserService {
	return &UserService{
		accounts:      db.NewAccountRepository(repo),
		tokens:        db.NewTokenRepository(repo),
		bans:          db.NewBanRepository(repo),
		engagement:    db.NewEngagementRepository(repo),
		notifications: notifications,
		hasher:        hasher,
		mailer:        mailer,
		logger:        logging.WithComponent("user-service"),
	}
}

// Profile is a public profile annotated for the viewer
type Profile struct {
	models.PublicProfile
	Subscribed bool `json:"subscribed"`
}

// GetByID returns the public profile of an account. When viewerID is
// non-zero the profile reports whether the viewer subscribes to it.
func (s *UserService) GetByID(ctx context.Context, accountID, viewerID int64) (*Profile, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("account lookup: %w", err)
	}
	if account == nil {
		return nil, NotFound("user not found")
	}

	profile := &Profile{PublicProfile: account.Public()}
	if viewerID != 0 && viewerID != accountID {
		subscribed, err := s.accounts.Subscribed(ctx, viewerID, accountID)
		if err != nil {
			return nil, fmt.Errorf("subscription lookup: %w", err)
		}
		profile.Subscribed = subscribed
	}
	return profile, nil
}

// Subscriptions lists the accounts the given account subscribes to
func (s *UserService) Subscriptions(ctx context.Context, accountID, viewerID int64) ([]db.RelatedAccount, error) {
	if err := s.requireAccount(ctx, accountID); err != nil {
		return nil, err
	}
	rows, err := s.accounts.Subscriptions(ctx, accountID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return rows, nil
}

// Subscribers lists the accounts subscribed to the given account
func (s *UserService) Subscribers(ctx context.Context, accountID, viewerID int64) ([]db.RelatedAccount, error) {
	if err := s.requireAccount(ctx, accountID); err != nil {
		return nil, err
	}
	rows, err := s.accounts.Subscribers(ctx, accountID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	return rows, nil
}

// requireAccount fails with NotFound when the account does not exist
func (s *UserService) requireAccount(ctx context.Context, accountID int64) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("account lookup: %w", err)
	}
	if account == nil {
		return NotFound("user not found")
	}
	return nil
}

// UpdateProfileInput carries the editable profile fields. Nil pointers mean
// "leave unchanged".
type UpdateProfileInput struct {
	Nickname  *string `json:"nickname" binding:"omitempty,min=5,max=32,excludes= "`
	Name      *string `json:"name" binding:"omitempty,min=2,max=32"`
	Surname   *string `json:"surname" binding:"omitempty,min=2,max=32"`
	AvatarURL *string `json:"avatar_url" binding:"omitempty,url"`
	Sex       *int16  `json:"sex"`
	Country   *string `json:"country"`
	About     *string `json:"about" binding:"omitempty,max=1024"`
}

// UpdateProfile applies a partial update to the account's profile
func (s *UserService) UpdateProfile(ctx context.Context, accountID int64, in UpdateProfileInput) (*Profile, error) {
	fields := map[string]interface{}{}
	if in.Nickname != nil {
		taken, err := s.accounts.GetByNickname(ctx, *in.Nickname)
		if err != nil {
			return nil, fmt.Errorf("nickname lookup: %w", err)
		}
		if taken != nil && taken.ID != accountID {
			return nil, Conflict("an account with this nickname already exists")
		}
		fields["nickname"] = *in.Nickname
	}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Surname != nil {
		fields["surname"] = *in.Surname
	}
	if in.AvatarURL != nil {
		fields["avatar_url"] = *in.AvatarURL
	}
	if in.Sex != nil {
		fields["sex"] = *in.Sex
	}
	if in.Country != nil {
		fields["country"] = *in.Country
	}
	if in.About != nil {
		fields["about"] = *in.About
	}

	if len(fields) > 0 {
		if err := s.accounts.UpdateFields(ctx, accountID, fields); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, Conflict("an account with this nickname already exists")
			}
			return nil, fmt.Errorf("update profile: %w", err)
		}
	}
	return s.GetByID(ctx, accountID, 0)
}

// UpdatePassword verifies the old password, stores the new hash and revokes
// every refresh token, forcing re-login on all devices
func (s *UserService) UpdatePassword(ctx context.Context, accountID int64, oldPassword, newPassword string) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("account lookup: %w", err)
	}
	if account == nil {
		return NotFound("user not found")
	}
	if !s.hasher.Verify(account.PasswordHash, oldPassword) {
		return BadRequest("wrong old password")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.accounts.UpdateFields(ctx, accountID, map[string]interface{}{"password_hash": hash}); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if err := s.tokens.RemoveAll(ctx, accountID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	s.logger.Info("Password updated", zap.Int64("account_id", accountID))
	return nil
}

// RequestEmailUpdate records the candidate address and mails it a
// confirmation link. The stored email changes only after confirmation.
func (s *UserService) RequestEmailUpdate(ctx context.Context, accountID int64, email string) error {
	email = strings.TrimSpace(email)
	taken, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("email lookup: %w", err)
	}
	if taken != nil {
		return Conflict("an account with this email already exists")
	}

	token := uuid.NewString()
	if err := s.tokens.CreateEmailChange(ctx, accountID, token, email); err != nil {
		return fmt.Errorf("create email change: %w", err)
	}
	if err := s.mailer.SendEmailConfirm(email, token); err != nil {
		return fmt.Errorf("send confirmation mail: %w", err)
	}
	return nil
}

// ConfirmEmailUpdate applies the pending email change referenced by the
// confirmation token
func (s *UserService) ConfirmEmailUpdate(ctx context.Context, token string) error {
	rec, err := s.tokens.GetEmailChange(ctx, token)
	if err != nil {
		return fmt.Errorf("email change lookup: %w", err)
	}
	if rec == nil {
		return NotFound("unknown confirmation token")
	}

	if err := s.accounts.UpdateFields(ctx, rec.AccountID, map[string]interface{}{"email": rec.Candidate}); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return Conflict("an account with this email already exists")
		}
		return fmt.Errorf("update email: %w", err)
	}
	if err := s.tokens.RemoveEmailChange(ctx, token); err != nil {
		return fmt.Errorf("remove email change: %w", err)
	}
	s.logger.Info("Email updated", zap.Int64("account_id", rec.AccountID))
	return nil
}

// Delete removes the account and its sessions
func (s *UserService) Delete(ctx context.Context, accountID int64) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("account lookup: %w", err)
	}
	if account == nil {
		return NotFound("user not found")
	}
	if err := s.tokens.RemoveAll(ctx, accountID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	if err := s.accounts.Delete(ctx, accountID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	s.logger.Info("Account deleted", zap.Int64("account_id", accountID))
	return nil
}

// ToggleSubscribe flips the subscription edge (sender -> target) and mirrors
// the change in notifications
func (s *UserService) ToggleSubscribe(ctx context.Context, senderID, targetID int64) error {
	if senderID == 0 {
		return Unauthorized("authentication required")
	}
	if senderID == targetID {
		return BadRequest("cannot subscribe to yourself")
	}
	target, err := s.accounts.GetByID(ctx, targetID)
	if err != nil {
		return fmt.Errorf("account lookup: %w", err)
	}
	if target == nil {
		return NotFound("user not found")
	}

	subscribed, err := s.engagement.SubscriptionExists(ctx, senderID, targetID)
	if err != nil {
		return fmt.Errorf("subscription lookup: %w", err)
	}
	if subscribed {
		if err := s.engagement.DeleteSubscription(ctx, senderID, targetID); err != nil {
			return fmt.Errorf("delete subscription: %w", err)
		}
		return s.notifications.SendSubscribe(ctx, senderID, targetID, false)
	}
	if err := s.engagement.InsertSubscription(ctx, senderID, targetID); err != nil {
		if errors.Is(err, db.ErrEdgeExists) {
			return nil
		}
		return fmt.Errorf("insert subscription: %w", err)
	}
	return s.notifications.SendSubscribe(ctx, senderID, targetID, true)
}

// BanInput carries the expiry and optional reason of a ban
type BanInput struct {
	ExpiresAt time.Time `json:"expires_at" binding:"required"`
	Message   string    `json:"message" binding:"max=1024"`
}

// Ban blocks an account until the given expiry. The sender's role must
// grant the user:ban:user permission.
func (s *UserService) Ban(ctx context.Context, senderRole string, targetID int64, in BanInput) error {
	if !roles.HasPermission(senderRole, "user:ban:user") {
		return Forbidden("insufficient permissions")
	}
	target, err := s.accounts.GetByID(ctx, targetID)
	if err != nil {
		return fmt.Errorf("account lookup: %w", err)
	}
	if target == nil {
		return NotFound("user not found")
	}

	ban := &models.Ban{
		AccountID: targetID,
		ExpiresAt: in.ExpiresAt,
	}
	if in.Message != "" {
		ban.Message = sql.NullString{String: in.Message, Valid: true}
	}
	if err := s.bans.Create(ctx, ban); err != nil {
		return fmt.Errorf("create ban: %w", err)
	}
	if err := s.tokens.RemoveAll(ctx, targetID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	s.logger.Info("Account banned",
		zap.Int64("account_id", targetID),
		zap.Time("expires_at", in.ExpiresAt))
	return nil
}

// BanState is the public view of an account's ban status
type BanState struct {
	Banned    bool       `json:"banned"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Message   string     `json:"message,omitempty"`
}

// BanStatus reports whether an account is currently banned
func (s *UserService) BanStatus(ctx context.Context, accountID int64) (*BanState, error) {
	ban, err := s.bans.Active(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("ban lookup: %w", err)
	}
	if ban == nil {
		return &BanState{}, nil
	}
	state := &BanState{Banned: true, ExpiresAt: &ban.ExpiresAt}
	if ban.Message.Valid {
		state.Message = ban.Message.String
	}
	return state, nil
}
