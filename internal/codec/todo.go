package codec

import (
	"strings"

	"github.com/gitdex/gitdex/internal/domain"
)

// todoFieldCount is the exact number of CSV fields in one submission row:
// url, ip, language, os, browser, submitted_at, status.
const todoFieldCount = 7

// EncodeTodos serializes the review queue into the todo.csv format: one
// double-quoted, comma-separated line per record, no header row.
func EncodeTodos(todos []domain.Todo) string {
	lines := make([]string, 0, len(todos))
	for i := range todos {
		lines = append(lines, encodeTodo(todos[i]))
	}
	return strings.Join(lines, "\n")
}

func encodeTodo(t domain.Todo) string {
	status := t.Status
	if !status.Valid() {
		status = domain.StatusPending
	}
	fields := []string{
		t.URL,
		t.IP,
		t.Language,
		t.OS,
		t.Browser,
		t.SubmittedAt,
		string(status),
	}
	for i, f := range fields {
		fields[i] = `"` + strings.ReplaceAll(f, "\n", newlineGlyph) + `"`
	}
	return strings.Join(fields, ",")
}

// DecodeTodos parses todo.csv content. Lines that do not split into exactly
// 7 fields are skipped, not fatal.
func DecodeTodos(content string) []domain.Todo {
	todos := make([]domain.Todo, 0)
	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))
		if line == "" {
			continue
		}
		if todo, ok := decodeTodoLine(line); ok {
			todos = append(todos, todo)
		}
	}
	return todos
}

// decodeTodoLine is the tagged parse step for one CSV row. The split is a
// plain comma split: quoted fields containing bare commas break the field
// count and the row is skipped.
func decodeTodoLine(line string) (domain.Todo, bool) {
	parts := strings.Split(line, ",")
	if len(parts) != todoFieldCount {
		return domain.Todo{}, false
	}
	for i, p := range parts {
		parts[i] = unquote(strings.TrimSpace(p))
	}
	status := domain.TodoStatus(parts[6])
	if !status.Valid() {
		status = domain.StatusPending
	}
	return domain.Todo{
		URL:         parts[0],
		IP:          parts[1],
		Language:    parts[2],
		OS:          parts[3],
		Browser:     parts[4],
		SubmittedAt: parts[5],
		Status:      status,
	}, true
}

// unquote strips exactly one leading and one trailing double-quote.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	s = strings.TrimPrefix(s, `"`)
	return strings.TrimSuffix(s, `"`)
}
