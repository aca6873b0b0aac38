package oauth

import (
	"testing"
	"time"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := LoadConfigFromEnv()
		if cfg.CodeTTL != 10*time.Minute {
			t.Errorf("CodeTTL = %v, want 10m", cfg.CodeTTL)
		}
		if cfg.TokenTTL != time.Hour {
			t.Errorf("TokenTTL = %v, want 1h", cfg.TokenTTL)
		}
		if cfg.RefreshTokenTTL != 7*24*time.Hour {
			t.Errorf("RefreshTokenTTL = %v, want 168h", cfg.RefreshTokenTTL)
		}
	})

	t.Run("parses configured clients", func(t *testing.T) {
		t.Setenv("CORP_IDP_OAUTH_ISSUER", "https://idp.corp.example")
		t.Setenv("CORP_IDP_OAUTH_CLIENTS", `[{"client_id":"c1","client_secret":"s1","redirect_uri":"https://app.corp.example/callback","client_name":"Expense Reports"}]`)
		t.Setenv("CORP_IDP_OAUTH_CODE_TTL", "5m")

		cfg := LoadConfigFromEnv()
		if cfg.Issuer != "https://idp.corp.example" {
			t.Errorf("Issuer = %q", cfg.Issuer)
		}
		if cfg.CodeTTL != 5*time.Minute {
			t.Errorf("CodeTTL = %v, want 5m", cfg.CodeTTL)
		}
		if len(cfg.Clients) != 1 {
			t.Fatalf("clients = %d, want 1", len(cfg.Clients))
		}
		client := cfg.Clients[0]
		if client.ID != "c1" || client.Secret != "s1" || client.Name != "Expense Reports" {
			t.Errorf("client = %+v", client)
		}
	})

	t.Run("malformed clients fail closed", func(t *testing.T) {
		t.Setenv("CORP_IDP_OAUTH_CLIENTS", `{not json`)
		cfg := LoadConfigFromEnv()
		if cfg.Clients != nil {
			t.Errorf("clients = %v, want nil registry", cfg.Clients)
		}
	})
}
