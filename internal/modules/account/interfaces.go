package account

import (
	"context"
	"time"

	"titanax/internal/domain"
)

// UserRepository — only the methods the credential service uses.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByRefreshToken(ctx context.Context, token string) (*domain.User, error)
	GetByVerificationToken(ctx context.Context, token string) (*domain.User, error)
	UpdateRefreshToken(ctx context.Context, userID int64, token *string) error
	SetResetToken(ctx context.Context, userID int64, token string, expires time.Time) error
	ResetPassword(ctx context.Context, token, newHash string, now time.Time) (*domain.User, error)
	MarkEmailVerified(ctx context.Context, token string) error
}

// TokenIssuer is the slice of the token codec the service needs. Verification
// belongs to the access-guard middleware, not here.
type TokenIssuer interface {
	IssueAccessToken(userID int64, name, email, role string) (string, error)
	GenerateOpaqueToken(byteLen int) (string, error)
}
