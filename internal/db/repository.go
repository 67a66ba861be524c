package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/falco-social/falco/internal/models"
)

// Repository provides database access methods
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AccountRepository provides account-related database operations
type AccountRepository struct {
	*Repository
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(repo *Repository) *AccountRepository {
	return &AccountRepository{Repository: repo}
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// GetByNickname retrieves an account by nickname
func (r *AccountRepository) GetByNickname(ctx context.Context, nickname string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("nickname = ?", nickname).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// GetByEmail retrieves an account by email
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// GetByLogin retrieves an account whose nickname or email matches the
// identifier
func (r *AccountRepository) GetByLogin(ctx context.Context, login string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).
		Where("nickname = ?", login).
		Or("email = ?", login).
		First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// Create creates a new account
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

// UpdateFields applies a partial update to an account
func (r *AccountRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Account{}).Where("id = ?", id).Updates(fields).Error
}

// Delete removes an account row
func (r *AccountRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Account{}, id).Error
}

// Subscribed reports whether subject is subscribed to object
func (r *AccountRepository) Subscribed(ctx context.Context, subjectID, objectID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("subject_id = ? AND object_id = ?", subjectID, objectID).
		Count(&count).Error
	return count > 0, err
}

// RelatedAccount is a subscription-list row with a viewer annotation
type RelatedAccount struct {
	ID         int64          `json:"id"`
	Nickname   string         `json:"nickname"`
	AvatarURL  sql.NullString `json:"avatar_url"`
	Subscribed bool           `json:"subscribed"`
}

// Subscriptions lists the accounts the given account subscribes to. When
// viewerID is non-zero each row reports whether the viewer subscribes to it.
func (r *AccountRepository) Subscriptions(ctx context.Context, accountID, viewerID int64) ([]RelatedAccount, error) {
	return r.related(ctx, accountID, viewerID, "subject_id", "object_id")
}

// Subscribers lists the accounts subscribed to the given account.
func (r *AccountRepository) Subscribers(ctx context.Context, accountID, viewerID int64) ([]RelatedAccount, error) {
	return r.related(ctx, accountID, viewerID, "object_id", "subject_id")
}

func (r *AccountRepository) related(ctx context.Context, accountID, viewerID int64, anchor, other string) ([]RelatedAccount, error) {
	query := r.db.WithContext(ctx).Table("subscriptions AS sub").
		Select("accounts.id, accounts.nickname, accounts.avatar_url, "+
			"EXISTS(SELECT 1 FROM subscriptions WHERE subject_id = ? AND object_id = sub."+other+") AS subscribed",
			viewerID).
		Joins("JOIN accounts ON accounts.id = sub." + other).
		Where("sub."+anchor+" = ?", accountID)

	var rows []RelatedAccount
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// TokenRepository provides refresh-token persistence
type TokenRepository struct {
	*Repository
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(repo *Repository) *TokenRepository {
	return &TokenRepository{Repository: repo}
}

// Save persists a refresh token for an account
func (r *TokenRepository) Save(ctx context.Context, accountID int64, token string) error {
	return r.db.WithContext(ctx).Create(&models.SessionToken{
		AccountID:    accountID,
		RefreshToken: token,
	}).Error
}

// Remove deletes a specific refresh-token record
func (r *TokenRepository) Remove(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Where("refresh_token = ?", token).Delete(&models.SessionToken{}).Error
}

// RemoveAll deletes every refresh token for an account, forcing re-login
// on all devices
func (r *TokenRepository) RemoveAll(ctx context.Context, accountID int64) error {
	return r.db.WithContext(ctx).Where("account_id = ?", accountID).Delete(&models.SessionToken{}).Error
}

// Exists reports whether a refresh-token record is persisted
func (r *TokenRepository) Exists(ctx context.Context, token string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SessionToken{}).
		Where("refresh_token = ?", token).Count(&count).Error
	return count > 0, err
}

// CreateRecovery persists a one-time password recovery token
func (r *TokenRepository) CreateRecovery(ctx context.Context, accountID int64, uuid string) error {
	return r.db.WithContext(ctx).Create(&models.RecoveryToken{
		UUID:      uuid,
		AccountID: accountID,
	}).Error
}

// GetRecovery retrieves a recovery token by its UUID
func (r *TokenRepository) GetRecovery(ctx context.Context, uuid string) (*models.RecoveryToken, error) {
	var rec models.RecoveryToken
	if err := r.db.WithContext(ctx).Where("uuid = ?", uuid).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// RemoveRecoveries deletes all recovery tokens for an account
func (r *TokenRepository) RemoveRecoveries(ctx context.Context, accountID int64) error {
	return r.db.WithContext(ctx).Where("account_id = ?", accountID).Delete(&models.RecoveryToken{}).Error
}

// CreateEmailChange persists a pending email update
func (r *TokenRepository) CreateEmailChange(ctx context.Context, accountID int64, uuid, candidate string) error {
	return r.db.WithContext(ctx).Create(&models.EmailChange{
		UUID:      uuid,
		AccountID: accountID,
		Candidate: candidate,
	}).Error
}

// GetEmailChange retrieves a pending email update by UUID
func (r *TokenRepository) GetEmailChange(ctx context.Context, uuid string) (*models.EmailChange, error) {
	var rec models.EmailChange
	if err := r.db.WithContext(ctx).Where("uuid = ?", uuid).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// RemoveEmailChange deletes a pending email update
func (r *TokenRepository) RemoveEmailChange(ctx context.Context, uuid string) error {
	return r.db.WithContext(ctx).Where("uuid = ?", uuid).Delete(&models.EmailChange{}).Error
}

// BanRepository provides ban lookups and creation
type BanRepository struct {
	*Repository
}

// NewBanRepository creates a new ban repository
func NewBanRepository(repo *Repository) *BanRepository {
	return &BanRepository{Repository: repo}
}

// Active returns the ban in force for an account, or nil
func (r *BanRepository) Active(ctx context.Context, accountID int64) (*models.Ban, error) {
	var ban models.Ban
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND expires_at > ?", accountID, time.Now()).
		Order("expires_at DESC").
		First(&ban).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ban, nil
}

// Create inserts a ban row
func (r *BanRepository) Create(ctx context.Context, ban *models.Ban) error {
	return r.db.WithContext(ctx).Create(ban).Error
}
