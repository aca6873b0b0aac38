package oauth

import (
	"crypto/subtle"

	apperrors "github.com/louisbranch/corp-idp/internal/platform/errors"
)

// Client represents a registered OAuth client application.
//
// Clients are process-wide read-only configuration: exactly one redirect URI,
// a server-generated shared secret, and a trust flag for future policy use.
type Client struct {
	ID          string `json:"client_id"`
	Secret      string `json:"client_secret"`
	RedirectURI string `json:"redirect_uri"`
	Name        string `json:"client_name,omitempty"`
	Trusted     bool   `json:"trusted,omitempty"`
}

// DisplayName returns the client name suitable for consent prompts.
func (c Client) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}

// ErrInvalidClient indicates an unknown client or a failed secret check.
//
// Both cases share one error so callers cannot distinguish "no such client"
// from "wrong secret".
var ErrInvalidClient = apperrors.New(apperrors.CodeInvalidClient, "invalid client credentials")

// Registry resolves client identifiers against registered configuration.
type Registry struct {
	clients []Client
}

// NewRegistry builds a registry over the configured clients.
func NewRegistry(clients []Client) *Registry {
	return &Registry{clients: clients}
}

// Resolve looks up a client by ID. Pure lookup, no side effects.
func (r *Registry) Resolve(clientID string) (Client, bool) {
	if clientID == "" {
		return Client{}, false
	}
	for _, client := range r.clients {
		if client.ID == clientID {
			return client, true
		}
	}
	return Client{}, false
}

// Authenticate verifies a client secret against the registered value.
//
// Secrets are server-generated high-entropy values, but the comparison is
// still constant-time to avoid a timing side channel.
func (r *Registry) Authenticate(clientID, clientSecret string) (Client, error) {
	client, ok := r.Resolve(clientID)
	if !ok {
		return Client{}, ErrInvalidClient
	}
	if client.Secret == "" || clientSecret == "" {
		return Client{}, ErrInvalidClient
	}
	if subtle.ConstantTimeCompare([]byte(client.Secret), []byte(clientSecret)) != 1 {
		return Client{}, ErrInvalidClient
	}
	return client, nil
}
