package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Recents is a file-backed most-recent-first list of browsed blogs.
// Safe for concurrent use within one process.
type Recents struct {
	mu   sync.Mutex
	path string
}

// NewRecents opens the recents list backed by the given file.
// If path is empty, defaults to ~/.config/cardgrid/recents.json
func NewRecents(path string) (*Recents, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		path = filepath.Join(home, ".config", "cardgrid", "recents.json")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	return &Recents{path: path}, nil
}

// List returns the remembered blogs, most recently used first.
func (r *Recents) List() ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

// Touch records a visit. The entry is upserted by URL, moved to the
// front, and the list truncated to MaxEntries. Fields the caller left
// empty keep their stored values.
func (r *Recents) Touch(e Entry) error {
	if e.URL == "" {
		return fmt.Errorf("recents entry needs a url")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load()
	if err != nil {
		return err
	}

	k := urlKey(e.URL)
	rest := make([]Entry, 0, len(entries))
	for _, old := range entries {
		if urlKey(old.URL) != k {
			rest = append(rest, old)
			continue
		}
		if e.Title == "" {
			e.Title = old.Title
		}
		if e.Mode == "" {
			e.Mode = old.Mode
		}
		if e.Category == "" {
			e.Category = old.Category
		}
		e.Visits = old.Visits
	}
	e.Visits++
	e.LastUsed = time.Now()

	entries = append([]Entry{e}, rest...)
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}
	return r.save(entries)
}

// Remove forgets a blog. Removing an unknown URL is not an error.
func (r *Recents) Remove(rawURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load()
	if err != nil {
		return err
	}

	k := urlKey(rawURL)
	kept := entries[:0]
	for _, e := range entries {
		if urlKey(e.URL) != k {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return nil
	}
	return r.save(kept)
}

// Clear forgets everything.
func (r *Recents) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove recents file: %w", err)
	}
	return nil
}

// Path returns the backing file location.
func (r *Recents) Path() string {
	return r.path
}

func (r *Recents) load() ([]Entry, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read recents file: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		// A corrupt file should not brick the CLI; start over.
		return nil, nil
	}
	return entries, nil
}

func (r *Recents) save(entries []Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal recents: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0600); err != nil {
		return fmt.Errorf("write recents file: %w", err)
	}
	return nil
}
