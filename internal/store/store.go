package store

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/example/projecthub/internal/domain/user"
)

var (
	ErrUsernameTaken = errors.New("username taken")
	ErrIDTaken       = errors.New("id taken")
)

// Store owns the ordered user sequence and its durable mirror. All lookups
// are linear scans; fine at this scale, O(n) per request when resolving
// sessions.
type Store struct {
	mu     sync.RWMutex
	users  []user.User
	p      Persister
	lastID int64
}

// Open loads the persisted user sequence into memory.
func Open(ctx context.Context, p Persister) (*Store, error) {
	users, err := p.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &Store{users: users, p: p}, nil
}

// FindByUsername scans for an exact, case-sensitive match.
func (s *Store) FindByUsername(_ context.Context, username string) (user.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, true
		}
	}
	return user.User{}, false
}

func (s *Store) FindByID(_ context.Context, id string) (user.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return user.User{}, false
}

// Append adds u if neither its username nor its id is already present, then
// rewrites the durable mirror with the full sequence. The uniqueness check
// and the insert happen under one lock, so two racing registrations with
// the same username cannot both get in. The durable write is committed
// before the in-memory sequence is touched; a failed write leaves the store
// exactly as it was.
func (s *Store) Append(ctx context.Context, u user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cur := range s.users {
		if cur.Username == u.Username {
			return ErrUsernameTaken
		}
		if cur.ID == u.ID {
			return ErrIDTaken
		}
	}
	next := make([]user.User, len(s.users), len(s.users)+1)
	copy(next, s.users)
	next = append(next, u)
	if err := s.p.Save(ctx, next); err != nil {
		return err
	}
	s.users = next
	return nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// NextID issues a millisecond-timestamp id, bumped forward when two calls
// land on the same tick so ids stay unique and monotonically increasing.
func (s *Store) NextID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := time.Now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return strconv.FormatInt(id, 10)
}
