package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/falco-social/falco/internal/auth"
	"github.com/falco-social/falco/internal/db"
	"github.com/falco-social/falco/internal/mail"
	"github.com/falco-social/falco/internal/models"
	"github.com/falco-social/falco/pkg/logging"
)

// AuthService implements registration, login, token rotation and password
// recovery
type AuthService struct {
	accounts *db.AccountRepository
	tokens   *db.TokenRepository
	bans     *db.BanRepository
	tm       *auth.TokenManager
	hasher   *auth.Hasher
	mailer   mail.Mailer
	logger   *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(repo *db.Repository, tm *auth.TokenManager, hasher *auth.Hasher, mailer mail.Mailer) *AuthService {
	return &AuthService{
		accounts: db.NewAccountRepository(repo),
		tokens:   db.NewTokenRepository(repo),
		bans:     db.NewBanRepository(repo),
		tm:       tm,
		hasher:   hasher,
		mailer:   mailer,
		logger:   logging.WithComponent("auth-service"),
	}
}

// RegisterInput is the data required to create an account
type RegisterInput struct {
	Nickname string `json:"nickname" binding:"required,min=5,max=32,excludes= "`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=64"`
	Name     string `json:"name" binding:"required,min=2,max=32"`
	Surname  string `json:"surname" binding:"required,min=2,max=32"`
}

// AuthResult is returned by register, login and refresh
type AuthResult struct {
	User         models.PublicProfile `json:"user"`
	AccessToken  string               `json:"accessToken"`
	RefreshToken string               `json:"refreshToken"`
}

// Register creates an account and issues its first token pair
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if taken, err := s.accounts.GetByNickname(ctx, in.Nickname); err != nil {
		return nil, fmt.Errorf("nickname lookup: %w", err)
	} else if taken != nil {
		return nil, BadRequest("an account with this nickname already exists")
	}
	if taken, err := s.accounts.GetByEmail(ctx, in.Email); err != nil {
		return nil, fmt.Errorf("email lookup: %w", err)
	} else if taken != nil {
		return nil, BadRequest("an account with this email already exists")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &models.Account{
		Nickname:     in.Nickname,
		Email:        in.Email,
		PasswordHash: hash,
		Name:         in.Name,
		Surname:      in.Surname,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		// The unique indexes are the authoritative conflict signal; the
		// lookups above only produce the friendly message.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Conflict("nickname or email already taken")
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	pair, err := s.issue(ctx, account)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Account registered", zap.Int64("account_id", account.ID))
	return &AuthResult{User: account.Public(), AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

// Login verifies credentials and the ban state, then issues a token pair.
// A previous refresh token supplied by the caller is invalidated.
func (s *AuthService) Login(ctx context.Context, login, password, prevRefreshToken string) (*AuthResult, error) {
	account, err := s.accounts.GetByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		return nil, fmt.Errorf("account lookup: %w", err)
	}
	// Identical message for unknown identifier and wrong password, so
	// responses do not reveal which accounts exist.
	if account == nil {
		return nil, BadRequest("invalid login or password")
	}
	if !s.hasher.Verify(account.PasswordHash, strings.TrimSpace(password)) {
		return nil, BadRequest("invalid login or password")
	}

	ban, err := s.bans.Active(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("ban lookup: %w", err)
	}
	if ban != nil {
		return nil, Forbidden(BanMessage(ban))
	}

	if prevRefreshToken != "" {
		if err := s.tokens.Remove(ctx, prevRefreshToken); err != nil {
			return nil, fmt.Errorf("remove previous token: %w", err)
		}
	}

	pair, err := s.issue(ctx, account)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: account.Public(), AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

// Logout removes the supplied refresh-token record
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return BadRequest("token required")
	}
	if err := s.tokens.Remove(ctx, refreshToken); err != nil {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

// Refresh rotates a refresh token: the old record is removed and a new pair
// issued. Revoked tokens are rejected even while their signature is valid.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, BadRequest("token required")
	}
	claims, err := s.tm.Parse(refreshToken)
	if err != nil {
		return nil, Unauthorized("invalid token")
	}
	persisted, err := s.tokens.Exists(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("token lookup: %w", err)
	}
	if !persisted {
		return nil, Unauthorized("invalid token")
	}

	account, err := s.accounts.GetByID(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("account lookup: %w", err)
	}
	if account == nil {
		return nil, NotFound("user not found")
	}

	if err := s.tokens.Remove(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("remove token: %w", err)
	}
	pair, err := s.issue(ctx, account)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: account.Public(), AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

// RequestPasswordRecover creates a one-time recovery token and mails the
// recovery link
func (s *AuthService) RequestPasswordRecover(ctx context.Context, login string) error {
	account, err := s.accounts.GetByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		return fmt.Errorf("account lookup: %w", err)
	}
	if account == nil {
		return NotFound("user not found")
	}

	token := uuid.NewString()
	if err := s.tokens.CreateRecovery(ctx, account.ID, token); err != nil {
		return fmt.Errorf("create recovery token: %w", err)
	}
	if err := s.mailer.SendPasswordRecovery(account.Email, token); err != nil {
		return fmt.Errorf("send recovery mail: %w", err)
	}
	return nil
}

// ConfirmPasswordRecover sets a new password for the account referenced by
// the recovery token and revokes every refresh token, forcing re-login on
// all devices
func (s *AuthService) ConfirmPasswordRecover(ctx context.Context, token, password string) error {
	rec, err := s.tokens.GetRecovery(ctx, token)
	if err != nil {
		return fmt.Errorf("recovery lookup: %w", err)
	}
	if rec == nil {
		return BadRequest("unknown recovery token")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.accounts.UpdateFields(ctx, rec.AccountID, map[string]interface{}{"password_hash": hash}); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if err := s.tokens.RemoveRecoveries(ctx, rec.AccountID); err != nil {
		return fmt.Errorf("remove recovery tokens: %w", err)
	}
	if err := s.tokens.RemoveAll(ctx, rec.AccountID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	s.logger.Info("Password recovered", zap.Int64("account_id", rec.AccountID))
	return nil
}

func (s *AuthService) issue(ctx context.Context, account *models.Account) (*auth.TokenPair, error) {
	pair, err := s.tm.GeneratePair(account.ID, account.Nickname)
	if err != nil {
		return nil, fmt.Errorf("sign tokens: %w", err)
	}
	if err := s.tokens.Save(ctx, account.ID, pair.RefreshToken); err != nil {
		return nil, fmt.Errorf("persist refresh token: %w", err)
	}
	return pair, nil
}

// BanMessage renders the human-readable rejection for an active ban
func BanMessage(ban *models.Ban) string {
	msg := fmt.Sprintf("You are temporarily banned until %s for violating the rules.",
		ban.ExpiresAt.Format("02.01.2006 15:04"))
	if ban.Message.Valid && ban.Message.String != "" {
		msg += " Reason: " + ban.Message.String
	}
	return msg
}
