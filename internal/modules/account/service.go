package account

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"titanax/internal/domain"
	"titanax/internal/notification"
	"titanax/internal/pkg/token"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const bcryptCost = 12

const genericResetMessage = "If that email exists, a password reset link has been sent"

// notifyPolicy makes the swallow-vs-propagate asymmetry of email failures
// explicit at each call site: signup mail is best-effort, reset mail is not.
type notifyPolicy int

const (
	notifyBestEffort notifyPolicy = iota
	notifyRequired
)

// Service orchestrates signup, login, session refresh/logout, password
// reset and email verification over the user store and token codec.
type Service struct {
	users     UserRepository
	tokens    TokenIssuer
	mailer    notification.Mailer
	resetTTL  time.Duration
	verifyTTL time.Duration
}

func NewService(users UserRepository, tokens TokenIssuer, mailer notification.Mailer, resetTTL, verifyTTL time.Duration) *Service {
	return &Service{
		users:     users,
		tokens:    tokens,
		mailer:    mailer,
		resetTTL:  resetTTL,
		verifyTTL: verifyTTL,
	}
}

func (s *Service) Signup(ctx context.Context, req SignupRequest) (*AuthResult, error) {
	email := normalizeEmail(req.Email)

	if _, exists, err := s.lookupByEmail(ctx, email); err != nil {
		return nil, err
	} else if exists {
		return nil, ErrEmailTaken
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	verifyToken, err := s.tokens.GenerateOpaqueToken(token.VerificationTokenBytes)
	if err != nil {
		return nil, err
	}
	verifyExpires := time.Now().Add(s.verifyTTL)

	user := &domain.User{
		Name:                   req.Name,
		Email:                  email,
		Role:                   req.Role,
		PasswordHash:           hash,
		EmailVerified:          false,
		EmailVerificationToken: &verifyToken,
		VerificationExpires:    &verifyExpires,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// Unique index on email is the authority; the earlier lookup only
		// gives a friendlier fast path.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	result, err := s.openSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.dispatchMail(ctx, notifyBestEffort, "verification", func(ctx context.Context) error {
		return s.mailer.SendVerificationEmail(ctx, user.Email, verifyToken)
	})
	s.dispatchMail(ctx, notifyBestEffort, "welcome", func(ctx context.Context) error {
		return s.mailer.SendWelcomeEmail(ctx, user.Email, user.Name)
	})

	log.Printf("account: new user registered email=%s", user.Email)
	return result, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	email := normalizeEmail(req.Email)

	user, exists, err := s.lookupByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !exists {
		// Same error as a wrong password so responses never reveal whether
		// the email is registered.
		log.Printf("account: login attempt for unknown email=%s", email)
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		log.Printf("account: failed login email=%s", email)
		return nil, ErrInvalidCredentials
	}

	result, err := s.openSession(ctx, user)
	if err != nil {
		return nil, err
	}

	log.Printf("account: user logged in email=%s", email)
	return result, nil
}

// RefreshAccessToken exchanges a stored refresh token for a fresh access
// token. The stored value is verified, not rotated.
func (s *Service) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	user, err := s.users.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidRefreshToken
		}
		return "", err
	}

	accessToken, err := s.tokens.IssueAccessToken(user.ID, user.Name, user.Email, user.Role)
	if err != nil {
		return "", err
	}

	log.Printf("account: token refreshed user_id=%d", user.ID)
	return accessToken, nil
}

// Logout clears the stored refresh token. Access tokens already in the wild
// stay valid until their own expiry.
func (s *Service) Logout(ctx context.Context, userID int64) error {
	if err := s.users.UpdateRefreshToken(ctx, userID, nil); err != nil {
		return err
	}
	log.Printf("account: user logged out user_id=%d", userID)
	return nil
}

func (s *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = normalizeEmail(email)

	user, exists, err := s.lookupByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if !exists {
		log.Printf("account: password reset requested for unknown email=%s", email)
		return genericResetMessage, nil
	}

	resetToken, err := s.tokens.GenerateOpaqueToken(token.ResetTokenBytes)
	if err != nil {
		return "", err
	}
	if err := s.users.SetResetToken(ctx, user.ID, resetToken, time.Now().Add(s.resetTTL)); err != nil {
		return "", err
	}

	if err := s.dispatchMail(ctx, notifyRequired, "password reset", func(ctx context.Context) error {
		return s.mailer.SendPasswordResetEmail(ctx, user.Email, resetToken)
	}); err != nil {
		return "", err
	}

	log.Printf("account: password reset requested email=%s", email)
	return genericResetMessage, nil
}

func (s *Service) ResetPassword(ctx context.Context, resetToken, newPassword string) (string, error) {
	hash, err := hashPassword(newPassword)
	if err != nil {
		return "", err
	}

	user, err := s.users.ResetPassword(ctx, resetToken, hash, time.Now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidResetToken
		}
		return "", err
	}

	log.Printf("account: password reset successful email=%s", user.Email)
	return "Password reset successful", nil
}

func (s *Service) VerifyEmail(ctx context.Context, verifyToken string) (string, error) {
	user, err := s.users.GetByVerificationToken(ctx, verifyToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrVerificationNotFound
		}
		return "", err
	}

	if user.EmailVerified {
		return "Email already verified", nil
	}
	if user.VerificationExpires != nil && !user.VerificationExpires.After(time.Now()) {
		return "", ErrVerificationNotFound
	}

	if err := s.users.MarkEmailVerified(ctx, verifyToken); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrVerificationNotFound
		}
		return "", err
	}

	log.Printf("account: email verified email=%s", user.Email)
	return "Email verified successfully", nil
}

func (s *Service) GetProfile(ctx context.Context, userID int64) (*UserPublic, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	pub := publicUser(user)
	return &pub, nil
}

// openSession mints the access token and rotates the stored refresh token.
// The overwrite makes any previously issued refresh token stale, which is
// the intended outcome of concurrent logins racing each other.
func (s *Service) openSession(ctx context.Context, user *domain.User) (*AuthResult, error) {
	accessToken, err := s.tokens.IssueAccessToken(user.ID, user.Name, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.tokens.GenerateOpaqueToken(token.RefreshTokenBytes)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateRefreshToken(ctx, user.ID, &refreshToken); err != nil {
		return nil, err
	}

	return &AuthResult{
		User:         publicUser(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// lookupByEmail centralizes account-existence branching; callers decide how
// much of the answer may leak to the client.
func (s *Service) lookupByEmail(ctx context.Context, email string) (*domain.User, bool, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return user, true, nil
}

func (s *Service) dispatchMail(ctx context.Context, policy notifyPolicy, kind string, send func(context.Context) error) error {
	if err := send(ctx); err != nil {
		if policy == notifyRequired {
			return fmt.Errorf("%w: %v", ErrMailDelivery, err)
		}
		log.Printf("account: %s email failed (suppressed): %v", kind, err)
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
