package account

import "errors"

// Closed error taxonomy for the credential service. Handlers match these
// with errors.Is and map each one to exactly one status/message pair.
var (
	ErrEmailTaken           = errors.New("email is already in use")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInvalidRefreshToken  = errors.New("invalid refresh token")
	ErrInvalidResetToken    = errors.New("invalid or expired reset token")
	ErrVerificationNotFound = errors.New("invalid verification token")
	ErrUserNotFound         = errors.New("user not found")
	ErrMailDelivery         = errors.New("failed to send reset email")
)
