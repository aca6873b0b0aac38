package oauth

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"
)

const oauthTimeFormat = time.RFC3339Nano

// Store provides SQLite-backed storage for authorization codes and tokens.
type Store struct {
	db *sql.DB
}

// NewStore creates a new OAuth store using the provided database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("oauth store is not configured")
	}
	return nil
}

// generateToken returns length bytes of hex-encoded randomness. All credential
// strings here are 32 bytes (256 bits) before encoding.
func generateToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// CreateAuthorizationCode mints and stores a one-time authorization code bound
// to the client, subject, redirect URI, and granted scope.
func (s *Store) CreateAuthorizationCode(clientID, userID, redirectURI, scope string, ttl time.Duration) (*AuthorizationCode, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	code, err := generateToken(32)
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().UTC().Add(ttl)
	_, err = s.db.Exec(
		`INSERT INTO oauth_authorization_codes (code, client_id, user_id, redirect_uri, scope, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		code, clientID, userID, redirectURI, scope, expiresAt.Format(oauthTimeFormat),
	)
	if err != nil {
		return nil, err
	}
	return &AuthorizationCode{
		Code:        code,
		ClientID:    clientID,
		UserID:      userID,
		RedirectURI: redirectURI,
		Scope:       scope,
		ExpiresAt:   expiresAt,
	}, nil
}

// GetAuthorizationCode retrieves an authorization code record.
func (s *Store) GetAuthorizationCode(code string) (*AuthorizationCode, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var authCode AuthorizationCode
	var expiresAt string
	err := s.db.QueryRow(
		`SELECT code, client_id, user_id, redirect_uri, scope, expires_at
		FROM oauth_authorization_codes WHERE code = ?`,
		code,
	).Scan(
		&authCode.Code, &authCode.ClientID, &authCode.UserID,
		&authCode.RedirectURI, &authCode.Scope, &expiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	expiry, err := time.Parse(oauthTimeFormat, expiresAt)
	if err != nil {
		return nil, err
	}
	authCode.ExpiresAt = expiry
	return &authCode, nil
}

// ClaimAuthorizationCode deletes a code and reports whether this caller won.
//
// The single-row DELETE is the at-most-once redemption primitive: two
// concurrent redemptions of the same code see exactly one row affected
// between them, so exactly one proceeds to token issuance.
func (s *Store) ClaimAuthorizationCode(code string) (bool, error) {
	if err := s.ensureDB(); err != nil {
		return false, err
	}
	result, err := s.db.Exec(`DELETE FROM oauth_authorization_codes WHERE code = ?`, code)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

// CreateAccessToken creates and stores a new access token.
func (s *Store) CreateAccessToken(clientID, userID, scope string, ttl time.Duration) (*AccessToken, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	token, err := generateToken(32)
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().UTC().Add(ttl)
	_, err = s.db.Exec(
		`INSERT INTO oauth_access_tokens (token, client_id, user_id, scope, expires_at)
		VALUES (?, ?, ?, ?, ?)`,
		token, clientID, userID, scope, expiresAt.Format(oauthTimeFormat),
	)
	if err != nil {
		return nil, err
	}
	return &AccessToken{Token: token, ClientID: clientID, UserID: userID, Scope: scope, ExpiresAt: expiresAt}, nil
}

// CreateRefreshToken creates and stores a refresh token referencing an access token.
func (s *Store) CreateRefreshToken(accessToken string, ttl time.Duration) (*RefreshToken, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	token, err := generateToken(32)
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().UTC().Add(ttl)
	_, err = s.db.Exec(
		`INSERT INTO oauth_refresh_tokens (token, access_token, expires_at)
		VALUES (?, ?, ?)`,
		token, accessToken, expiresAt.Format(oauthTimeFormat),
	)
	if err != nil {
		return nil, err
	}
	return &RefreshToken{Token: token, AccessToken: accessToken, ExpiresAt: expiresAt}, nil
}

// GetRefreshToken retrieves a refresh token record.
func (s *Store) GetRefreshToken(token string) (*RefreshToken, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var refresh RefreshToken
	var expiresAt string
	err := s.db.QueryRow(
		`SELECT token, access_token, expires_at FROM oauth_refresh_tokens WHERE token = ?`,
		token,
	).Scan(&refresh.Token, &refresh.AccessToken, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	expiry, err := time.Parse(oauthTimeFormat, expiresAt)
	if err != nil {
		return nil, err
	}
	refresh.ExpiresAt = expiry
	return &refresh, nil
}

// GetAccessToken retrieves an access token record regardless of expiry.
func (s *Store) GetAccessToken(token string) (*AccessToken, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var access AccessToken
	var expiresAt string
	err := s.db.QueryRow(
		`SELECT token, client_id, user_id, scope, expires_at FROM oauth_access_tokens WHERE token = ?`,
		token,
	).Scan(&access.Token, &access.ClientID, &access.UserID, &access.Scope, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	expiry, err := time.Parse(oauthTimeFormat, expiresAt)
	if err != nil {
		return nil, err
	}
	access.ExpiresAt = expiry
	return &access, nil
}

// ValidateAccessToken checks a token against wall-clock expiry at the moment
// of use. Expired rows are left for the cleanup loop.
func (s *Store) ValidateAccessToken(token string, now time.Time) (*AccessToken, bool, error) {
	access, err := s.GetAccessToken(token)
	if err != nil || access == nil {
		return nil, false, err
	}
	if !access.ExpiresAt.After(now.UTC()) {
		return nil, false, nil
	}
	return access, true, nil
}

// CleanupExpired deletes expired codes and tokens.
func (s *Store) CleanupExpired(now time.Time) {
	if s == nil || s.db == nil {
		return
	}
	cutoff := now.UTC().Format(oauthTimeFormat)
	_, _ = s.db.Exec(`DELETE FROM oauth_authorization_codes WHERE expires_at <= ?`, cutoff)
	_, _ = s.db.Exec(`DELETE FROM oauth_access_tokens WHERE expires_at <= ?`, cutoff)
	_, _ = s.db.Exec(`DELETE FROM oauth_refresh_tokens WHERE expires_at <= ?`, cutoff)
}
