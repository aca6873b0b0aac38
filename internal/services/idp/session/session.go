package session

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/louisbranch/corp-idp/internal/platform/errors"
)

// DefaultCookieName is the session cookie issued by the corporate login service.
const DefaultCookieName = "corp_session"

var (
	// ErrMissing indicates no session token was presented.
	ErrMissing = apperrors.New(apperrors.CodeSessionMissing, "session token is required")
	// ErrInvalid indicates a session token that failed verification.
	ErrInvalid = apperrors.New(apperrors.CodeSessionInvalid, "session token is invalid")
	// ErrExpired indicates a session token past its expiry.
	ErrExpired = apperrors.New(apperrors.CodeSessionExpired, "session token is expired")
)

// sessionEnv holds raw env values before post-parse validation.
type sessionEnv struct {
	Issuer     string `env:"CORP_IDP_SESSION_ISSUER"`
	Audience   string `env:"CORP_IDP_SESSION_AUDIENCE"`
	PublicKey  string `env:"CORP_IDP_SESSION_PUBLIC_KEY"`
	CookieName string `env:"CORP_IDP_SESSION_COOKIE" envDefault:"corp_session"`
}

// Config defines how session tokens are verified.
type Config struct {
	Issuer     string
	Audience   string
	CookieName string
	Key        ed25519.PublicKey
	Now        func() time.Time
}

// Identity is the authenticated subject extracted from a session token.
type Identity struct {
	UserID string
	Email  string
	Name   string
}

// sessionClaims is the internal claims type used for JWT parsing.
type sessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name"`
}

// LoadConfigFromEnv reads session verification configuration.
func LoadConfigFromEnv(now func() time.Time) (Config, error) {
	var raw sessionEnv
	if err := env.Parse(&raw); err != nil {
		return Config{}, fmt.Errorf("parse session env: %w", err)
	}
	issuer := strings.TrimSpace(raw.Issuer)
	audience := strings.TrimSpace(raw.Audience)
	publicKey := strings.TrimSpace(raw.PublicKey)
	if issuer == "" {
		return Config{}, fmt.Errorf("CORP_IDP_SESSION_ISSUER is required")
	}
	if audience == "" {
		return Config{}, fmt.Errorf("CORP_IDP_SESSION_AUDIENCE is required")
	}
	if publicKey == "" {
		return Config{}, fmt.Errorf("CORP_IDP_SESSION_PUBLIC_KEY is required")
	}
	keyBytes, err := decodeBase64(publicKey)
	if err != nil {
		return Config{}, fmt.Errorf("decode session public key: %w", err)
	}
	if len(keyBytes) != ed25519.PublicKeySize {
		return Config{}, fmt.Errorf("session public key must be %d bytes", ed25519.PublicKeySize)
	}
	cookieName := strings.TrimSpace(raw.CookieName)
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	if now == nil {
		now = time.Now
	}
	return Config{
		Issuer:     issuer,
		Audience:   audience,
		CookieName: cookieName,
		Key:        ed25519.PublicKey(keyBytes),
		Now:        now,
	}, nil
}

// Verify checks a session token and returns the subject identity it asserts.
func Verify(token string, cfg Config) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, ErrMissing
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Issuer == "" || cfg.Audience == "" || len(cfg.Key) != ed25519.PublicKeySize {
		return Identity{}, errors.New("session verifier is not configured")
	}

	var parsed sessionClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(token *jwt.Token) (any, error) {
		return cfg.Key, nil
	},
		jwt.WithValidMethods([]string{"EdDSA"}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return Identity{}, mapJWTError(err)
	}

	if parsed.Issuer == "" || parsed.Issuer != cfg.Issuer {
		return Identity{}, apperrors.WithMetadata(
			apperrors.CodeSessionInvalid,
			"session issuer mismatch",
			map[string]string{"Field": "issuer"},
		)
	}
	if !audienceContains(parsed.Audience, cfg.Audience) {
		return Identity{}, apperrors.WithMetadata(
			apperrors.CodeSessionInvalid,
			"session audience mismatch",
			map[string]string{"Field": "audience"},
		)
	}
	if strings.TrimSpace(parsed.Subject) == "" {
		return Identity{}, apperrors.New(apperrors.CodeSessionInvalid, "session sub is required")
	}
	if parsed.ExpiresAt == nil {
		return Identity{}, apperrors.New(apperrors.CodeSessionInvalid, "session exp is required")
	}

	now := cfg.Now().UTC()
	if !parsed.ExpiresAt.Time.UTC().After(now) {
		return Identity{}, ErrExpired
	}
	if parsed.NotBefore != nil && now.Before(parsed.NotBefore.Time.UTC()) {
		return Identity{}, apperrors.New(apperrors.CodeSessionInvalid, "session not active yet")
	}

	return Identity{
		UserID: parsed.Subject,
		Email:  parsed.Email,
		Name:   parsed.Name,
	}, nil
}

// FromRequest extracts and verifies the session cookie on a browser request.
func FromRequest(r *http.Request, cfg Config) (Identity, error) {
	name := cfg.CookieName
	if name == "" {
		name = DefaultCookieName
	}
	cookie, err := r.Cookie(name)
	if err != nil {
		return Identity{}, ErrMissing
	}
	return Verify(cookie.Value, cfg)
}

// mapJWTError translates jwt library errors to application errors.
func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrEd25519Verification) {
		return apperrors.New(apperrors.CodeSessionInvalid, "session signature is invalid")
	}
	if errors.Is(err, jwt.ErrTokenUnverifiable) {
		return apperrors.New(apperrors.CodeSessionInvalid, "session alg is invalid")
	}
	return ErrInvalid
}

// audienceContains reports whether the audience list contains the given value.
func audienceContains(aud jwt.ClaimStrings, value string) bool {
	for _, item := range aud {
		if item == value {
			return true
		}
	}
	return false
}

func decodeBase64(value string) ([]byte, error) {
	if value == "" {
		return nil, errors.New("empty base64 value")
	}
	decoded, err := base64.RawStdEncoding.DecodeString(value)
	if err == nil {
		return decoded, nil
	}
	return base64.StdEncoding.DecodeString(value)
}
