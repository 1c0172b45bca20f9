package domain

import "time"

// User is the account + credential record. Token columns are nullable on
// purpose: NULL means "no outstanding token of that kind".
type User struct {
	ID                     int64      `gorm:"column:id;primaryKey" json:"id"`
	Name                   string     `gorm:"column:name" json:"name"`
	Email                  string     `gorm:"column:email;uniqueIndex" json:"email"`
	Role                   string     `gorm:"column:role" json:"role"`
	PasswordHash           string     `gorm:"column:password_hash" json:"-"`
	EmailVerified          bool       `gorm:"column:email_verified" json:"emailVerified"`
	EmailVerificationToken *string    `gorm:"column:email_verification_token" json:"-"`
	VerificationExpires    *time.Time `gorm:"column:verification_expires" json:"-"`
	ResetPasswordToken     *string    `gorm:"column:reset_password_token" json:"-"`
	ResetPasswordExpires   *time.Time `gorm:"column:reset_password_expires" json:"-"`
	RefreshToken           *string    `gorm:"column:refresh_token" json:"-"`
	CreatedAt              time.Time  `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt              time.Time  `gorm:"column:updated_at" json:"-"`
}

func (User) TableName() string { return "users" }
