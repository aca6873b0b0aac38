package oauth

import (
	"encoding/json"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config describes the authorization server configuration.
type Config struct {
	Issuer          string
	LoginURL        string
	ConsentURL      string
	Clients         []Client
	CodeTTL         time.Duration
	TokenTTL        time.Duration
	RefreshTokenTTL time.Duration
}

// oauthEnv holds raw env values for authorization server configuration.
type oauthEnv struct {
	Issuer          string        `env:"CORP_IDP_OAUTH_ISSUER"`
	LoginURL        string        `env:"CORP_IDP_OAUTH_LOGIN_URL"`
	ConsentURL      string        `env:"CORP_IDP_OAUTH_CONSENT_URL"`
	ClientsJSON     string        `env:"CORP_IDP_OAUTH_CLIENTS"`
	CodeTTL         time.Duration `env:"CORP_IDP_OAUTH_CODE_TTL"          envDefault:"10m"`
	TokenTTL        time.Duration `env:"CORP_IDP_OAUTH_TOKEN_TTL"         envDefault:"1h"`
	RefreshTokenTTL time.Duration `env:"CORP_IDP_OAUTH_REFRESH_TOKEN_TTL" envDefault:"168h"`
}

// LoadConfigFromEnv loads authorization server configuration from environment
// variables. Malformed client JSON degrades to an empty registry rather than
// failing startup; every request against it then fails closed.
func LoadConfigFromEnv() Config {
	var raw oauthEnv
	if err := env.Parse(&raw); err != nil {
		return Config{
			CodeTTL:         10 * time.Minute,
			TokenTTL:        time.Hour,
			RefreshTokenTTL: 7 * 24 * time.Hour,
		}
	}

	var clients []Client
	if raw.ClientsJSON != "" {
		if err := json.Unmarshal([]byte(raw.ClientsJSON), &clients); err != nil {
			clients = nil
		}
	}

	return Config{
		Issuer:          raw.Issuer,
		LoginURL:        raw.LoginURL,
		ConsentURL:      raw.ConsentURL,
		Clients:         clients,
		CodeTTL:         raw.CodeTTL,
		TokenTTL:        raw.TokenTTL,
		RefreshTokenTTL: raw.RefreshTokenTTL,
	}
}
