// Package session resolves and issues the congress session token.
//
// The token is a signed, expiring JWT carrying the registrant id and
// participant type. Resolution is a pure verify-and-decode: no store access
// happens here, and every failure mode (missing, malformed, forged, expired)
// collapses into the single not-authenticated outcome.
package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/ilus66/Cnol-2025-2/internal/platform/errors"
)

const tokenIssuer = "cnol"

// ErrInvalidSession reports a token that does not resolve to an identity.
var ErrInvalidSession = apperrors.New(apperrors.CodeSessionInvalid, "session token is invalid")

// Identity is the resolved caller identity embedded in a session token.
type Identity struct {
	RegistrantID    string
	ParticipantType string
}

// sessionEnv holds raw env values before post-parse validation.
type sessionEnv struct {
	Secret string        `env:"CNOL_SESSION_SECRET"`
	TTL    time.Duration `env:"CNOL_SESSION_TTL" envDefault:"24h"`
}

// Codec signs and verifies session tokens.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// sessionClaims is the internal claims type used for JWT parsing.
type sessionClaims struct {
	jwt.RegisteredClaims
	ParticipantType string `json:"participant_type"`
}

// NewCodec creates a codec signing with the given HMAC secret.
func NewCodec(secret []byte, ttl time.Duration, now func() time.Time) (*Codec, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("session secret is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if now == nil {
		now = time.Now
	}
	return &Codec{secret: secret, ttl: ttl, now: now}, nil
}

// NewCodecFromEnv reads the session secret and TTL from the environment.
func NewCodecFromEnv(now func() time.Time) (*Codec, error) {
	var raw sessionEnv
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("parse session env: %w", err)
	}
	secret := strings.TrimSpace(raw.Secret)
	if secret == "" {
		return nil, fmt.Errorf("CNOL_SESSION_SECRET is required")
	}
	return NewCodec([]byte(secret), raw.TTL, now)
}

// Issue signs a session token for the given identity.
func (c *Codec) Issue(identity Identity) (string, error) {
	registrantID := strings.TrimSpace(identity.RegistrantID)
	if registrantID == "" {
		return "", fmt.Errorf("registrant id is required")
	}
	now := c.now().UTC()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   registrantID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		ParticipantType: identity.ParticipantType,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Resolve verifies a session token and extracts the caller identity.
// Any failure yields ErrInvalidSession; callers cannot distinguish a missing
// token from a malformed or expired one.
func (c *Codec) Resolve(token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, ErrInvalidSession
	}

	var parsed sessionClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(func() time.Time { return c.now().UTC() }),
	)
	if err != nil {
		return Identity{}, ErrInvalidSession
	}
	if strings.TrimSpace(parsed.Subject) == "" {
		return Identity{}, ErrInvalidSession
	}
	return Identity{
		RegistrantID:    parsed.Subject,
		ParticipantType: parsed.ParticipantType,
	}, nil
}
