package repository

import (
	"context"
	"time"

	"titanax/internal/domain"

	"gorm.io/gorm"
)

// UserRepository is the gorm-backed credential store. Every mutation that
// consumes or rotates a token is a single conditional UPDATE so concurrent
// requests settle on exactly one winner.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByRefreshToken(ctx context.Context, token string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).Where("refresh_token = ?", token).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByVerificationToken(ctx context.Context, token string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).Where("email_verification_token = ?", token).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateRefreshToken rotates (or, with nil, clears) the single stored
// refresh token for the account.
func (r *UserRepository) UpdateRefreshToken(ctx context.Context, userID int64, token *string) error {
	return r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", userID).
		Update("refresh_token", token).Error
}

func (r *UserRepository) SetResetToken(ctx context.Context, userID int64, token string, expires time.Time) error {
	return r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"reset_password_token":   token,
			"reset_password_expires": expires,
		}).Error
}

// ResetPassword swaps the password hash and clears the reset token in one
// conditional UPDATE. The expiry check is strict: a token is spent the
// moment reset_password_expires is no longer in the future.
func (r *UserRepository) ResetPassword(ctx context.Context, token, newHash string, now time.Time) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).Where("reset_password_token = ?", token).First(&u).Error; err != nil {
		return nil, err
	}

	res := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("reset_password_token = ? AND reset_password_expires > ?", token, now).
		Updates(map[string]any{
			"password_hash":          newHash,
			"reset_password_token":   nil,
			"reset_password_expires": nil,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

// MarkEmailVerified consumes the verification token: the flag flips and the
// token is cleared so the same link can never verify twice.
func (r *UserRepository) MarkEmailVerified(ctx context.Context, token string) error {
	res := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("email_verification_token = ?", token).
		Updates(map[string]any{
			"email_verified":           true,
			"email_verification_token": nil,
			"verification_expires":     nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
