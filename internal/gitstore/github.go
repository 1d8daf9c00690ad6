package gitstore

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gitdex/gitdex/internal/utils"
)

const defaultAPIBase = "https://api.github.com"

// GitHubOptions configures a GitHubProvider.
type GitHubOptions struct {
	Token   string
	Owner   string
	Repo    string
	Branch  string        // default "main"
	BaseURL string        // default https://api.github.com; override in tests
	Timeout time.Duration // per-request HTTP timeout
}

// GitHubProvider implements Provider against the GitHub REST API.
// Single-file reads and writes use the contents endpoint with blob SHAs as
// revision tokens; multi-file batches use the git data API (ref -> commit
// -> tree -> commit -> ref) so the branch moves in one step.
type GitHubProvider struct {
	token   string
	owner   string
	repo    string
	branch  string
	baseURL string
	http    *http.Client
}

func NewGitHubProvider(opts GitHubOptions) *GitHubProvider {
	branch := opts.Branch
	if branch == "" {
		branch = "main"
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultAPIBase
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GitHubProvider{
		token:   opts.Token,
		owner:   opts.Owner,
		repo:    opts.Repo,
		branch:  branch,
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (g *GitHubProvider) Capabilities() Capability { return CapFileUpdate | CapTreeCommit }

type contentsResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
	SHA      string `json:"sha"`
}

// GetFile reads path from the configured branch. A 404 yields an empty
// File, not an error.
func (g *GitHubProvider) GetFile(ctx context.Context, path string) (File, error) {
	endpoint := fmt.Sprintf("/repos/%s/%s/contents/%s?ref=%s", g.owner, g.repo, path, g.branch)

	var resp contentsResponse
	status, err := g.api(ctx, http.MethodGet, endpoint, nil, &resp)
	if status == http.StatusNotFound {
		return File{Path: path}, nil
	}
	if err != nil {
		return File{}, err
	}

	content := resp.Content
	if resp.Encoding == "base64" {
		decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(content, "\n", ""))
		if err != nil {
			return File{}, fmt.Errorf("decode %s: %w", path, err)
		}
		content = string(decoded)
	}
	return File{Path: path, Content: content, Revision: resp.SHA}, nil
}

type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
	SHA     string `json:"sha,omitempty"`
}

type putResponse struct {
	Content struct {
		SHA string `json:"sha"`
	} `json:"content"`
}

// PutFile replaces path's content, using revision as the blob-SHA
// precondition. Empty revision creates the file.
func (g *GitHubProvider) PutFile(ctx context.Context, path, content, revision string) (string, error) {
	endpoint := fmt.Sprintf("/repos/%s/%s/contents/%s", g.owner, g.repo, path)
	body := putRequest{
		Message: fmt.Sprintf("Update %s", path),
		Content: base64.StdEncoding.EncodeToString([]byte(content)),
		Branch:  g.branch,
		SHA:     revision,
	}

	var resp putResponse
	status, err := g.api(ctx, http.MethodPut, endpoint, body, &resp)
	if status == http.StatusConflict || status == http.StatusUnprocessableEntity {
		return "", fmt.Errorf("put %s: %w", path, ErrConflict)
	}
	if err != nil {
		return "", err
	}
	return resp.Content.SHA, nil
}

type refResponse struct {
	Object struct {
		SHA string `json:"sha"`
	} `json:"object"`
}

type commitResponse struct {
	SHA  string `json:"sha"`
	Tree struct {
		SHA string `json:"sha"`
	} `json:"tree"`
}

type treeEntry struct {
	Path    string `json:"path"`
	Mode    string `json:"mode"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

type treeRequest struct {
	BaseTree string      `json:"base_tree"`
	Tree     []treeEntry `json:"tree"`
}

type treeResponse struct {
	SHA string `json:"sha"`
}

type createCommitRequest struct {
	Message string   `json:"message"`
	Tree    string   `json:"tree"`
	Parents []string `json:"parents"`
}

type updateRefRequest struct {
	SHA string `json:"sha"`
}

// CommitTree builds one tree with every path replacement applied, creates a
// commit on top of the branch tip and fast-forwards the ref. The ref update
// fails with ErrConflict when the branch moved since the tip was read.
func (g *GitHubProvider) CommitTree(ctx context.Context, message string, blobs []Blob) (string, error) {
	// 1. Current branch tip.
	var ref refResponse
	if _, err := g.api(ctx, http.MethodGet,
		fmt.Sprintf("/repos/%s/%s/git/ref/heads/%s", g.owner, g.repo, g.branch), nil, &ref); err != nil {
		return "", fmt.Errorf("get ref: %w", err)
	}
	baseCommit := ref.Object.SHA

	// 2. Tree of that commit.
	var base commitResponse
	if _, err := g.api(ctx, http.MethodGet,
		fmt.Sprintf("/repos/%s/%s/git/commits/%s", g.owner, g.repo, baseCommit), nil, &base); err != nil {
		return "", fmt.Errorf("get base commit: %w", err)
	}

	// 3. New tree with all replacements.
	entries := make([]treeEntry, 0, len(blobs))
	for _, blob := range blobs {
		entries = append(entries, treeEntry{
			Path:    blob.Path,
			Mode:    "100644",
			Type:    "blob",
			Content: blob.Content,
		})
	}
	var tree treeResponse
	if _, err := g.api(ctx, http.MethodPost,
		fmt.Sprintf("/repos/%s/%s/git/trees", g.owner, g.repo),
		treeRequest{BaseTree: base.Tree.SHA, Tree: entries}, &tree); err != nil {
		return "", fmt.Errorf("create tree: %w", err)
	}

	// 4. New commit.
	var commit commitResponse
	if _, err := g.api(ctx, http.MethodPost,
		fmt.Sprintf("/repos/%s/%s/git/commits", g.owner, g.repo),
		createCommitRequest{Message: message, Tree: tree.SHA, Parents: []string{baseCommit}}, &commit); err != nil {
		return "", fmt.Errorf("create commit: %w", err)
	}

	// 5. Fast-forward the branch ref.
	status, err := g.api(ctx, http.MethodPatch,
		fmt.Sprintf("/repos/%s/%s/git/refs/heads/%s", g.owner, g.repo, g.branch),
		updateRefRequest{SHA: commit.SHA}, nil)
	if status == http.StatusConflict || status == http.StatusUnprocessableEntity {
		return "", fmt.Errorf("update ref: %w", ErrConflict)
	}
	if err != nil {
		return "", fmt.Errorf("update ref: %w", err)
	}

	return commit.SHA, nil
}

// api performs one request and decodes the JSON response into out (when out
// is non-nil). It returns the HTTP status so callers can branch on 404/409
// before looking at err.
func (g *GitHubProvider) api(ctx context.Context, method, endpoint string, body, out interface{}) (int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+endpoint, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+g.token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("github api: %w", err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return resp.StatusCode, fmt.Errorf("github api %s %s: status %d: %s",
			method, endpoint, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("github api decode: %w", err)
		}
	}
	return resp.StatusCode, nil
}
