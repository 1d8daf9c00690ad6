package domain

import (
	"strings"
	"time"
)

// TodoStatus is the review state of a submission.
type TodoStatus string

const (
	StatusPending  TodoStatus = "pending"
	StatusApproved TodoStatus = "approved"
	StatusRejected TodoStatus = "rejected"
)

// Valid reports whether s is one of the three known states.
func (s TodoStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Todo is one submission row in the review queue. Rows are never deleted;
// review outcomes only flip Status.
type Todo struct {
	// URL is the submitted address and the record key.
	URL string `json:"url"`

	// Submitter metadata, captured at submission time.
	IP       string `json:"ip"`
	Language string `json:"language"`
	OS       string `json:"os"`
	Browser  string `json:"browser"`

	// SubmittedAt is an ISO-8601 timestamp string.
	SubmittedAt string `json:"submittedAt"`

	Status TodoStatus `json:"status"`
}

// SubmissionMeta is what the transport layer knows about the submitter.
type SubmissionMeta struct {
	IP             string
	AcceptLanguage string // raw Accept-Language header
	UserAgent      string // raw User-Agent header
}

// NewTodo builds a pending submission row from request metadata.
func NewTodo(url string, meta SubmissionMeta) Todo {
	ip := meta.IP
	if ip == "" {
		ip = "0.0.0.0"
	}
	return Todo{
		URL:         url,
		IP:          ip,
		Language:    primaryLanguage(meta.AcceptLanguage),
		OS:          ParseOS(meta.UserAgent),
		Browser:     ParseBrowser(meta.UserAgent),
		SubmittedAt: time.Now().UTC().Format(time.RFC3339),
		Status:      StatusPending,
	}
}

// PlaceholderTodo is what the reconciler synthesizes when a listed site has
// no matching submission row.
func PlaceholderTodo(url string, status TodoStatus) Todo {
	return Todo{
		URL:         url,
		IP:          "0.0.0.0",
		Language:    "en-US",
		OS:          "unknown",
		Browser:     "unknown",
		SubmittedAt: time.Now().UTC().Format(time.RFC3339),
		Status:      status,
	}
}

// FindTodo returns the index of the first row matching url (canonical URL
// equality), or -1. Duplicate rows are tolerated; first match wins.
func FindTodo(todos []Todo, url string) int {
	for i := range todos {
		if SameURL(todos[i].URL, url) {
			return i
		}
	}
	return -1
}

// primaryLanguage picks the first tag of an Accept-Language header.
// Example: "zh-CN,zh;q=0.9" -> "zh-CN"
func primaryLanguage(accept string) string {
	if accept == "" {
		return "en-US"
	}
	for i := 0; i < len(accept); i++ {
		if accept[i] == ',' || accept[i] == ';' {
			accept = accept[:i]
			break
		}
	}
	accept = strings.TrimSpace(accept)
	if accept == "" {
		return "en-US"
	}
	return accept
}
