package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/example/projecthub/internal/domain/user"
)

// Persister mirrors the in-memory user sequence to durable storage. The
// file-backed implementation rewrites the whole document on every save so
// the file stays human-diffable.
type Persister interface {
	Load(ctx context.Context) ([]user.User, error)
	Save(ctx context.Context, users []user.User) error
}

type filePersister struct {
	path string
}

// NewFilePersister persists users as a pretty-printed JSON array at path.
// A missing file is treated as an empty store.
func NewFilePersister(path string) Persister {
	return &filePersister{path: path}
}

func (f *filePersister) Load(_ context.Context) ([]user.User, error) {
	buf, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", f.path, err)
	}
	var users []user.User
	if err := json.Unmarshal(buf, &users); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", f.path, err)
	}
	return users, nil
}

func (f *filePersister) Save(_ context.Context, users []user.User) error {
	buf, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode users: %w", err)
	}
	if err := os.WriteFile(f.path, buf, 0o600); err != nil {
		return fmt.Errorf("store: write %s: %w", f.path, err)
	}
	return nil
}

type memoryPersister struct {
	users []user.User
}

// NewMemoryPersister keeps the user sequence in memory only. Used by tests
// and by anything that wants a throwaway store.
func NewMemoryPersister(seed ...user.User) Persister {
	return &memoryPersister{users: seed}
}

func (m *memoryPersister) Load(_ context.Context) ([]user.User, error) {
	out := make([]user.User, len(m.users))
	copy(out, m.users)
	return out, nil
}

func (m *memoryPersister) Save(_ context.Context, users []user.User) error {
	m.users = make([]user.User, len(users))
	copy(m.users, users)
	return nil
}
