package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/corp-idp/internal/platform/branding"
	"github.com/louisbranch/corp-idp/internal/services/idp/oauth"
	"github.com/louisbranch/corp-idp/internal/services/idp/session"
	idpsqlite "github.com/louisbranch/corp-idp/internal/services/idp/storage/sqlite"
	"github.com/louisbranch/corp-idp/internal/services/idp/user"
)

const cleanupInterval = 5 * time.Minute

// Server hosts the identity provider service.
type Server struct {
	listener    net.Listener
	httpServer  *http.Server
	store       *idpsqlite.Store
	oauthStore  *oauth.Store
	oauthServer *oauth.Server
}

// New creates a configured identity provider server listening on httpAddr and
// backed by the SQLite store at dbPath.
func New(httpAddr, dbPath string) (*Server, error) {
	listener, err := net.Listen("tcp", httpAddr)
	if err != nil {
		return nil, fmt.Errorf("listen on http addr %s: %w", httpAddr, err)
	}
	store, err := openStore(dbPath)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	oauthConfig := oauth.LoadConfigFromEnv()
	if oauthConfig.Issuer == "" {
		oauthConfig.Issuer = defaultIssuer(listener.Addr().String())
	}
	sessionConfig, err := session.LoadConfigFromEnv(time.Now)
	if err != nil {
		_ = listener.Close()
		_ = store.Close()
		return nil, fmt.Errorf("load session config: %w", err)
	}
	if err := seedSubjects(store); err != nil {
		_ = listener.Close()
		_ = store.Close()
		return nil, err
	}

	oauthStore := oauth.NewStore(store.DB())
	oauthServer := oauth.NewServer(oauthConfig, sessionConfig, oauthStore, store)
	mux := http.NewServeMux()
	oauthServer.RegisterRoutes(mux)

	return &Server{
		listener:    listener,
		httpServer:  &http.Server{Handler: mux},
		store:       store,
		oauthStore:  oauthStore,
		oauthServer: oauthServer,
	}, nil
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves an identity provider server until the context ends.
func Run(ctx context.Context, httpAddr, dbPath string) error {
	server, err := New(httpAddr, dbPath)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the server and blocks until it stops or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	serverCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer s.closeStore()

	s.oauthServer.StartCleanup(serverCtx, cleanupInterval)

	log.Printf("%s listening at %v", branding.AppName, s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	shutdown := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.httpServer.Shutdown(shutdownCtx)
	}

	select {
	case <-ctx.Done():
		shutdown()
		<-serveErr
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve HTTP: %w", err)
	}
}

func openStore(path string) (*idpsqlite.Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = filepath.Join("data", "idp.db")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}

	store, err := idpsqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open idp sqlite store: %w", err)
	}
	return store, nil
}

func (s *Server) closeStore() {
	if s == nil || s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		log.Printf("close idp store: %v", err)
	}
}

// defaultIssuer derives an issuer URL from a listen address when none is
// configured. Only meaningful for local development.
func defaultIssuer(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return ""
	}
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return strings.TrimRight(addr, "/")
	}
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

// seedSubject is one declarative subject record from the seed env var.
type seedSubject struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// seedSubjects provisions subjects declared in CORP_IDP_SEED_USERS.
//
// Provisioning is idempotent on email: a subject that already exists keeps
// its ID and registration date. There are no credentials to seed; the login
// service authenticates subjects, this service only recognizes them.
func seedSubjects(store *idpsqlite.Store) error {
	raw := strings.TrimSpace(os.Getenv("CORP_IDP_SEED_USERS"))
	if raw == "" {
		return nil
	}
	var seeds []seedSubject
	if err := json.Unmarshal([]byte(raw), &seeds); err != nil {
		return fmt.Errorf("parse seed users: %w", err)
	}
	for _, seed := range seeds {
		input, err := user.NormalizeCreateUserInput(user.CreateUserInput{
			Email: seed.Email,
			Name:  seed.Name,
		})
		if err != nil {
			log.Printf("skip seed user %q: %v", seed.Email, err)
			continue
		}
		if _, err := store.GetUserByEmail(context.Background(), input.Email); err == nil {
			continue
		}
		created, err := user.CreateUser(input, time.Now, nil)
		if err != nil {
			return fmt.Errorf("create seed user: %w", err)
		}
		if err := store.PutUser(context.Background(), created); err != nil {
			return fmt.Errorf("store seed user: %w", err)
		}
	}
	return nil
}
