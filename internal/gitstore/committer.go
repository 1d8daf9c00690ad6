package gitstore

import (
	"context"
	"fmt"

	"github.com/gitdex/gitdex/internal/logger"
)

// Committer applies one batch of path replacements against the provider.
// Implementations never auto-retry on conflict: the caller must regenerate
// content from a freshly read base first.
type Committer interface {
	Commit(ctx context.Context, batch Batch) (CommitResult, error)
}

// NewCommitter selects a strategy by provider capability. mode is "auto",
// "tree" or "file"; "auto" prefers tree commits when the provider has them.
func NewCommitter(p Provider, mode string, log logger.Logger) Committer {
	useTree := p.Capabilities()&CapTreeCommit != 0
	switch mode {
	case "tree":
		useTree = true
	case "file":
		useTree = false
	}
	if useTree {
		return &TreeCommitter{provider: p, log: log}
	}
	return &FileCommitter{provider: p, log: log}
}

// TreeCommitter writes every file of the batch as one commit on the branch
// tip. Either the ref moves to include every change, or nothing is
// observably changed.
type TreeCommitter struct {
	provider Provider
	log      logger.Logger
}

func (c *TreeCommitter) Commit(ctx context.Context, batch Batch) (CommitResult, error) {
	if err := ValidateBatch(batch); err != nil {
		return CommitResult{}, err
	}

	commitID, err := c.provider.CommitTree(ctx, batch.Message, batch.Files)
	if err != nil {
		return CommitResult{}, fmt.Errorf("tree commit: %w", err)
	}

	result := CommitResult{CommitID: commitID}
	for _, blob := range batch.Files {
		result.Succeeded = append(result.Succeeded, blob.Path)
	}
	c.log.Info("tree commit applied",
		logger.String("commit", commitID),
		logger.Int("files", len(batch.Files)))
	return result, nil
}

// FileCommitter writes each file independently with a revision-token
// precondition, for providers that only expose single-file updates. The
// batch is not atomic; the result reports the exact per-path outcome.
type FileCommitter struct {
	provider Provider
	log      logger.Logger
}

func (c *FileCommitter) Commit(ctx context.Context, batch Batch) (CommitResult, error) {
	if err := ValidateBatch(batch); err != nil {
		return CommitResult{}, err
	}

	var result CommitResult
	for _, blob := range batch.Files {
		if _, err := c.provider.PutFile(ctx, blob.Path, blob.Content, blob.Revision); err != nil {
			result.Failures = append(result.Failures, PathFailure{Path: blob.Path, Err: err})
			continue
		}
		result.Succeeded = append(result.Succeeded, blob.Path)
	}

	switch {
	case len(result.Failures) == 0:
		c.log.Info("per-file commit applied",
			logger.Int("files", len(result.Succeeded)))
		return result, nil
	case len(result.Succeeded) == 0:
		c.log.Error("per-file commit failed for every file",
			logger.Int("files", len(result.Failures)))
		return result, ErrCommitFailed
	default:
		err := &PartialCommitError{Succeeded: result.Succeeded, Failures: result.Failures}
		c.log.Error("per-file commit partially failed", logger.Error(err))
		return result, err
	}
}
