package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/corp-idp/internal/services/idp/storage"
	"github.com/louisbranch/corp-idp/internal/services/idp/user"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "idp.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idp.db")
	first, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	second, err := Open(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	second.Close()
}

func TestPutGetUser(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created := user.User{
		ID:        "user-1",
		Email:     "ana@corp.example",
		Name:      "Ana López",
		CreatedAt: time.Date(2023, 6, 15, 9, 30, 0, 0, time.UTC),
	}
	if err := store.PutUser(ctx, created); err != nil {
		t.Fatalf("put user: %v", err)
	}

	got, err := store.GetUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Email != created.Email || got.Name != created.Name {
		t.Errorf("got %+v, want %+v", got, created)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created.CreatedAt)
	}
}

func TestGetUserByEmail(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created := user.User{ID: "user-1", Email: "ana@corp.example", Name: "Ana", CreatedAt: time.Now().UTC()}
	if err := store.PutUser(ctx, created); err != nil {
		t.Fatalf("put user: %v", err)
	}

	got, err := store.GetUserByEmail(ctx, "ana@corp.example")
	if err != nil {
		t.Fatalf("get user by email: %v", err)
	}
	if got.ID != "user-1" {
		t.Errorf("ID = %q, want user-1", got.ID)
	}

	if _, err := store.GetUserByEmail(ctx, "nobody@corp.example"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestGetUserNotFound(t *testing.T) {
	store := openTestStore(t)
	_, err := store.GetUser(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestPutUserUpdatesExisting(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created := user.User{ID: "user-1", Email: "ana@corp.example", Name: "Ana", CreatedAt: time.Now().UTC()}
	if err := store.PutUser(ctx, created); err != nil {
		t.Fatalf("put user: %v", err)
	}
	created.Name = "Ana López"
	if err := store.PutUser(ctx, created); err != nil {
		t.Fatalf("update user: %v", err)
	}
	got, err := store.GetUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Name != "Ana López" {
		t.Errorf("Name = %q, want updated name", got.Name)
	}
}
