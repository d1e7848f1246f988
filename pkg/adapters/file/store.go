// Package file keeps forms as YAML documents in a directory, one form per file.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/formflow/pkg/domain"
)

// FormStore implements ports.FormStore on a directory of "<id>.yaml" files.
// Files ending in ".yml" are read too. Writes always use ".yaml".
type FormStore struct {
	dir string
	mu  sync.RWMutex
}

// NewFormStore uses dir, creating it if needed.
func NewFormStore(dir string) (*FormStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create form directory: %w", err)
	}
	return &FormStore{dir: dir}, nil
}

// Dir returns the backing directory.
func (s *FormStore) Dir() string { return s.dir }

func (s *FormStore) path(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("invalid form id %q", id)
	}
	return filepath.Join(s.dir, id+".yaml"), nil
}

func (s *FormStore) find(id string) (string, error) {
	p, err := s.path(id)
	if err != nil {
		return "", err
	}
	for _, candidate := range []string{p, strings.TrimSuffix(p, ".yaml") + ".yml"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %s", domain.ErrFormNotFound, id)
}

// GetForm parses "<id>.yaml". A missing id field defaults to the file name.
func (s *FormStore) GetForm(ctx context.Context, id string) (*domain.Form, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := s.find(id)
	if err != nil {
		return nil, err
	}
	return Read(p)
}

// Read parses a single form file.
func Read(path string) (*domain.Form, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var form domain.Form
	if err := yaml.Unmarshal(data, &form); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if form.ID == "" {
		base := filepath.Base(path)
		form.ID = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if form.Settings.FormID == "" {
		form.Settings.FormID = form.ID
	}
	return &form, nil
}

// ListForms returns the IDs of every form file, sorted.
func (s *FormStore) ListForms(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.dir, err)
	}
	seen := make(map[string]bool)
	ids := []string{}
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ext)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// SaveForm writes the form atomically (temp file + rename).
func (s *FormStore) SaveForm(ctx context.Context, form *domain.Form) error {
	p, err := s.path(form.ID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := form.Clone()
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		if prev, err := Read(p); err == nil {
			c.CreatedAt = prev.CreatedAt
		}
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode form %s: %w", form.ID, err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+form.ID+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write form %s: %w", form.ID, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to flush form %s: %w", form.ID, err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("failed to replace form %s: %w", form.ID, err)
	}
	return nil
}

// DeleteForm removes the form file, if any.
func (s *FormStore) DeleteForm(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.find(id)
	if errors.Is(err, domain.ErrFormNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete form %s: %w", id, err)
	}
	return nil
}
