package token

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Byte lengths for the opaque single-use tokens.
const (
	RefreshTokenBytes      = 40
	VerificationTokenBytes = 32
	ResetTokenBytes        = 32
)

var (
	// ErrNotConfigured means the deployment is missing the signing secret.
	ErrNotConfigured = errors.New("token: signing secret is not configured")
	// ErrExpired means the token was well-formed and signed but is past its expiry.
	ErrExpired = errors.New("token: expired")
	// ErrInvalid means the token is malformed, tampered with, or signed with another key.
	ErrInvalid = errors.New("token: invalid")
)

// Claims is the identity bundle carried by an access token.
type Claims struct {
	UserID int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwtlib.RegisteredClaims
}

// Codec issues and verifies signed access tokens and mints opaque tokens.
// The secret is injected once at construction; it is never read from the
// environment per call.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

func NewCodec(secret string, ttl time.Duration) *Codec {
	return &Codec{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

func (c *Codec) IssueAccessToken(userID int64, name, email, role string) (string, error) {
	if len(c.secret) == 0 {
		return "", ErrNotConfigured
	}

	now := time.Now()
	claims := Claims{
		UserID: userID,
		Name:   name,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(c.ttl)),
		},
	}

	tok := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return tok.SignedString(c.secret)
}

func (c *Codec) VerifyAccessToken(raw string) (*Claims, error) {
	if len(c.secret) == 0 {
		return nil, ErrNotConfigured
	}

	tok, err := jwtlib.ParseWithClaims(raw, &Claims{}, func(t *jwtlib.Token) (any, error) {
		return c.secret, nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, ErrInvalid
	}
	return claims, nil
}

// GenerateOpaqueToken returns byteLen random bytes hex-encoded. Used for
// refresh, verification and reset tokens; validity is server-side lookup only.
func (c *Codec) GenerateOpaqueToken(byteLen int) (string, error) {
	buf := make([]byte, byteLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
