package projects

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Project is a user-owned entry on the projects page.
type Project struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Repo stores projects the same way the user store does: an in-memory
// sequence mirrored to a pretty-printed JSON file on every create. An empty
// path keeps the repo memory-only.
type Repo struct {
	mu   sync.RWMutex
	path string
	list []Project
}

func OpenRepo(path string) (*Repo, error) {
	r := &Repo{path: path}
	if path == "" {
		return r, nil
	}
	buf, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return r, nil
	} else if err != nil {
		return nil, fmt.Errorf("projects: read %s: %w", path, err)
	}
	if err := json.Unmarshal(buf, &r.list); err != nil {
		return nil, fmt.Errorf("projects: decode %s: %w", path, err)
	}
	return r, nil
}

func (r *Repo) ListByOwner(_ context.Context, ownerID string) []Project {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Project
	for _, p := range r.list {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out
}

// Create assigns the id and creation time, appends, and rewrites the file.
// The file write commits before the in-memory list is updated.
func (r *Repo) Create(_ context.Context, p Project) (Project, error) {
	if strings.TrimSpace(p.Name) == "" {
		return Project{}, fmt.Errorf("projects: name is required")
	}
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()
	next := make([]Project, len(r.list), len(r.list)+1)
	copy(next, r.list)
	next = append(next, p)
	if r.path != "" {
		buf, err := json.MarshalIndent(next, "", "  ")
		if err != nil {
			return Project{}, fmt.Errorf("projects: encode: %w", err)
		}
		if err := os.WriteFile(r.path, buf, 0o600); err != nil {
			return Project{}, fmt.Errorf("projects: write %s: %w", r.path, err)
		}
	}
	r.list = next
	return p, nil
}
