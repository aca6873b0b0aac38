package oauth

import (
	"context"
	"net/http"
	"time"

	"github.com/louisbranch/corp-idp/internal/services/idp/session"
	"github.com/louisbranch/corp-idp/internal/services/idp/storage"
)

// Server hosts the authorization-server HTTP endpoints.
type Server struct {
	config    Config
	sessions  session.Config
	registry  *Registry
	store     *Store
	userStore storage.UserStore
	clock     func() time.Time
}

// NewServer builds an authorization server bound to its config and backing stores.
func NewServer(config Config, sessions session.Config, store *Store, userStore storage.UserStore) *Server {
	return &Server{
		config:    config,
		sessions:  sessions,
		registry:  NewRegistry(config.Clients),
		store:     store,
		userStore: userStore,
		clock:     time.Now,
	}
}

// RegisterRoutes registers the OAuth HTTP endpoints on the provided mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	if mux == nil {
		return
	}
	mux.HandleFunc("/oauth/authorize", s.handleAuthorize)
	mux.HandleFunc("/oauth/token", s.handleToken)
	mux.HandleFunc("/oauth/user", s.handleUserInfo)
	mux.HandleFunc("/.well-known/oauth-authorization-server", s.handleMetadata)
	mux.HandleFunc("/up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}

// StartCleanup starts periodic expiry cleanup for codes and tokens.
//
// This keeps short-lived records from accumulating without requiring a
// separate maintenance process.
func (s *Server) StartCleanup(ctx context.Context, interval time.Duration) {
	if s == nil || s.store == nil || interval <= 0 {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.store.CleanupExpired(s.clock().UTC())
			}
		}
	}()
}
