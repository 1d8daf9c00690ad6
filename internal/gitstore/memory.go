package gitstore

import (
	"context"
	"fmt"
	"sync"
)

// MemoryProvider is an in-memory Provider used by tests and by local
// development without repository credentials. It enforces the same
// optimistic-concurrency rules a real provider does.
type MemoryProvider struct {
	mu        sync.Mutex
	files     map[string]File
	revSeq    int
	commitSeq int
	cap       Capability

	// PutErr injects a failure for specific paths on PutFile.
	PutErr map[string]error
	// TreeErr injects a failure for the next CommitTree call.
	TreeErr error
}

// NewMemoryProvider returns an empty provider advertising capability c.
func NewMemoryProvider(c Capability) *MemoryProvider {
	return &MemoryProvider{
		files:  make(map[string]File),
		cap:    c,
		PutErr: make(map[string]error),
	}
}

func (m *MemoryProvider) Capabilities() Capability { return m.cap }

// Seed stores content without revision checks, for test setup.
func (m *MemoryProvider) Seed(path, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revSeq++
	m.files[path] = File{Path: path, Content: content, Revision: fmt.Sprintf("rev-%d", m.revSeq)}
}

// Content returns the stored content of path, empty when absent.
func (m *MemoryProvider) Content(path string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.files[path].Content
}

func (m *MemoryProvider) GetFile(_ context.Context, path string) (File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[path]
	if !ok {
		return File{Path: path}, nil
	}
	return f, nil
}

func (m *MemoryProvider) PutFile(_ context.Context, path, content, revision string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.PutErr[path]; err != nil {
		return "", err
	}

	current, exists := m.files[path]
	if exists && current.Revision != revision {
		return "", fmt.Errorf("put %s: %w", path, ErrConflict)
	}
	if !exists && revision != "" {
		return "", fmt.Errorf("put %s: %w", path, ErrConflict)
	}

	m.revSeq++
	f := File{Path: path, Content: content, Revision: fmt.Sprintf("rev-%d", m.revSeq)}
	m.files[path] = f
	return f.Revision, nil
}

func (m *MemoryProvider) CommitTree(_ context.Context, _ string, blobs []Blob) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.TreeErr != nil {
		err := m.TreeErr
		m.TreeErr = nil
		return "", err
	}

	for _, blob := range blobs {
		m.revSeq++
		m.files[blob.Path] = File{
			Path:     blob.Path,
			Content:  blob.Content,
			Revision: fmt.Sprintf("rev-%d", m.revSeq),
		}
	}
	m.commitSeq++
	return fmt.Sprintf("commit-%d", m.commitSeq), nil
}
