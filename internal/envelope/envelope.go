// Package envelope tracks signing envelopes: bundles of documents sent
// out for signature, persisted as JSON records under a directory.
package envelope

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Envelope status values.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

var (
	ErrNotFound     = errors.New("envelope: not found")
	ErrFileNotFound = errors.New("envelope: file not found")
)

// File is one document inside an envelope.
type File struct {
	Name     string     `json:"name"`
	URL      string     `json:"url,omitempty"`
	Signed   bool       `json:"signed"`
	SignedAt *time.Time `json:"signed_at,omitempty"`
}

// Envelope is a bundle of documents with a single status. The status
// flips to completed the moment the last file is signed.
type Envelope struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	Files     []File    `json:"files"`
}

// Signed reports how many files carry a signature.
func (e *Envelope) SignedCount() int {
	n := 0
	for _, f := range e.Files {
		if f.Signed {
			n++
		}
	}
	return n
}

// Store keeps one JSON file per envelope under dir.
type Store struct {
	dir string

	mu sync.Mutex
}

// NewStore opens (creating if needed) an envelope directory.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("envelope: create store dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Create registers a new pending envelope containing the named files.
func (s *Store) Create(id, name string, fileNames []string) (*Envelope, error) {
	if id == "" {
		return nil, errors.New("envelope: empty id")
	}
	if strings.ContainsAny(id, `/\`) {
		return nil, fmt.Errorf("envelope: id %q contains a path separator", id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := os.Stat(s.path(id)); err == nil {
		return nil, fmt.Errorf("envelope: %s already exists", id)
	}
	e := &Envelope{
		ID:        id,
		Name:      name,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	for _, fn := range fileNames {
		e.Files = append(e.Files, File{Name: fn})
	}
	if len(e.Files) == 0 {
		return nil, errors.New("envelope: no files")
	}
	if err := s.write(e); err != nil {
		return nil, err
	}
	return e, nil
}

// Get loads one envelope.
func (s *Store) Get(id string) (*Envelope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(id)
}

// List loads every envelope in the store, sorted by creation time.
func (s *Store) List() ([]*Envelope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("envelope: list: %w", err)
	}
	var out []*Envelope
	for _, ent := range entries {
		if ent.IsDir() || !strings.HasSuffix(ent.Name(), ".json") {
			continue
		}
		e, err := s.read(strings.TrimSuffix(ent.Name(), ".json"))
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// MarkSigned records a signature on one file and reports whether that
// completed the envelope.
func (s *Store) MarkSigned(id, fileName string, url string) (*Envelope, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.read(id)
	if err != nil {
		return nil, false, err
	}
	found := false
	now := time.Now().UTC()
	for i := range e.Files {
		if e.Files[i].Name == fileName {
			e.Files[i].Signed = true
			e.Files[i].SignedAt = &now
			if url != "" {
				e.Files[i].URL = url
			}
			found = true
			break
		}
	}
	if !found {
		return nil, false, fmt.Errorf("%w: %s in %s", ErrFileNotFound, fileName, id)
	}
	completed := false
	if e.Status == StatusPending && e.SignedCount() == len(e.Files) {
		e.Status = StatusCompleted
		completed = true
	}
	if err := s.write(e); err != nil {
		return nil, false, err
	}
	return e, completed, nil
}

func (s *Store) read(id string) (*Envelope, error) {
	data, err := os.ReadFile(s.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("envelope: read %s: %w", id, err)
	}
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("envelope: decode %s: %w", id, err)
	}
	return &e, nil
}

func (s *Store) write(e *Envelope) error {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("envelope: encode %s: %w", e.ID, err)
	}
	if err := os.WriteFile(s.path(e.ID), data, 0o644); err != nil {
		return fmt.Errorf("envelope: write %s: %w", e.ID, err)
	}
	return nil
}

// Uploader stores a signed document somewhere and returns its URL.
type Uploader interface {
	Upload(ctx context.Context, name string, data []byte) (string, error)
}

// DirUploader writes documents into a local directory. The returned
// URL is a file:// path.
type DirUploader struct {
	Dir string
}

func (u DirUploader) Upload(_ context.Context, name string, data []byte) (string, error) {
	if err := os.MkdirAll(u.Dir, 0o755); err != nil {
		return "", fmt.Errorf("envelope: upload dir: %w", err)
	}
	dst := filepath.Join(u.Dir, filepath.Base(name))
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("envelope: upload %s: %w", name, err)
	}
	abs, err := filepath.Abs(dst)
	if err != nil {
		return "", err
	}
	return "file://" + abs, nil
}

// UploadAll pushes every document concurrently and returns name→URL.
// The first failure cancels the rest.
func UploadAll(ctx context.Context, up Uploader, docs map[string][]byte) (map[string]string, error) {
	g, ctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	urls := make(map[string]string, len(docs))
	for name, data := range docs {
		g.Go(func() error {
			url, err := up.Upload(ctx, name, data)
			if err != nil {
				return fmt.Errorf("envelope: upload %s: %w", name, err)
			}
			mu.Lock()
			urls[name] = url
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}
