// Package gitstore talks to the Git hosting provider that owns the data
// files, and implements the batch commit protocol on top of it.
package gitstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrConflict means the revision token (or branch tip) moved since the
	// base was read. The caller must re-read and recompute; blind retries
	// with the same token risk clobbering a concurrent legitimate change.
	ErrConflict = errors.New("gitstore: stale revision, re-read required")

	// ErrCommitFailed means no file of the batch was applied.
	ErrCommitFailed = errors.New("gitstore: commit failed, no file applied")
)

// File is one blob read from the repository.
type File struct {
	Path     string
	Content  string
	Revision string // opaque revision token; empty when the file does not exist yet
}

// Blob is one path replacement in a commit batch. Revision is the token
// from the caller's last read of the path; per-file committers use it as
// the write precondition, tree committers ignore it (the branch tip is the
// precondition there). Empty means the caller believes the file is new.
type Blob struct {
	Path     string `json:"path"`
	Content  string `json:"content"`
	Revision string `json:"revision,omitempty"`
}

// Capability is a bitmask of operations the provider supports natively.
type Capability int

const (
	// CapFileUpdate means single-file content updates with a revision
	// precondition are available.
	CapFileUpdate Capability = 1 << iota
	// CapTreeCommit means the provider supports atomic multi-file commits.
	CapTreeCommit
)

// Provider is the repository content provider contract.
//
// GetFile treats a missing path as empty content with an empty revision,
// not as an error: the flat files are optional until first written.
type Provider interface {
	GetFile(ctx context.Context, path string) (File, error)
	PutFile(ctx context.Context, path, content, revision string) (newRevision string, err error)
	CommitTree(ctx context.Context, message string, blobs []Blob) (commitID string, err error)
	Capabilities() Capability
}

// Batch is the input of one commit protocol call.
type Batch struct {
	Message string
	Files   []Blob
}

// PathFailure reports one failed path of a per-file batch.
type PathFailure struct {
	Path string
	Err  error
}

// PartialCommitError is returned when some but not all files of a per-file
// batch were applied. The caller decides whether to accept the partial
// state or attempt compensating writes.
type PartialCommitError struct {
	Succeeded []string
	Failures  []PathFailure
}

func (e *PartialCommitError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.Path, f.Err))
	}
	return fmt.Sprintf("gitstore: partial commit: %d applied, %d failed (%s)",
		len(e.Succeeded), len(e.Failures), strings.Join(parts, "; "))
}

// CommitResult reports what a commit call actually did.
type CommitResult struct {
	CommitID  string // set in tree-commit mode
	Succeeded []string
	Failures  []PathFailure
}

const (
	// maxBatchFiles bounds the blast radius of one batch. Policy, not a
	// provider limit.
	maxBatchFiles = 10
	// maxBlobSize caps one file's content at 50MB, well under provider
	// limits.
	maxBlobSize = 50 * 1024 * 1024
	maxPathLen  = 255
)

var invalidPathChars = regexp.MustCompile(`[<>:"|?*\x00-\x1f]`)

// ValidateBatch checks batch shape before any network call.
func ValidateBatch(batch Batch) error {
	if len(batch.Files) == 0 {
		return errors.New("gitstore: empty batch")
	}
	if len(batch.Files) > maxBatchFiles {
		return fmt.Errorf("gitstore: batch holds %d files, max is %d", len(batch.Files), maxBatchFiles)
	}
	seen := make(map[string]bool, len(batch.Files))
	for i, blob := range batch.Files {
		path := strings.TrimSpace(blob.Path)
		if path == "" {
			return fmt.Errorf("gitstore: file %d has an empty path", i)
		}
		if len(path) > maxPathLen {
			return fmt.Errorf("gitstore: path %q exceeds %d characters", path, maxPathLen)
		}
		if invalidPathChars.MatchString(path) {
			return fmt.Errorf("gitstore: path %q contains invalid characters", path)
		}
		if seen[path] {
			return fmt.Errorf("gitstore: duplicate path %q in batch", path)
		}
		seen[path] = true
		if len(blob.Content) > maxBlobSize {
			return fmt.Errorf("gitstore: content for %q exceeds %d bytes", path, maxBlobSize)
		}
	}
	return nil
}
