package codec

import (
	"reflect"
	"testing"

	"github.com/gitdex/gitdex/internal/domain"
)

func sampleTodo() domain.Todo {
	return domain.Todo{
		URL:         "https://example.com/",
		IP:          "203.0.113.1",
		Language:    "en-US",
		OS:          "Windows",
		Browser:     "Chrome",
		SubmittedAt: "2025-07-06T12:34:56Z",
		Status:      domain.StatusPending,
	}
}

func TestTodosRoundTrip(t *testing.T) {
	todos := []domain.Todo{
		sampleTodo(),
		{
			URL:         "https://other.example/",
			IP:          "198.51.100.7",
			Language:    "zh-CN",
			OS:          "macOS",
			Browser:     "Safari",
			SubmittedAt: "2025-07-07T01:02:03Z",
			Status:      domain.StatusApproved,
		},
	}

	decoded := DecodeTodos(EncodeTodos(todos))
	if !reflect.DeepEqual(decoded, todos) {
		t.Errorf("round-trip mismatch:\n got %+v\nwant %+v", decoded, todos)
	}
}

func TestEncodeTodoQuoting(t *testing.T) {
	line := encodeTodo(sampleTodo())
	expected := `"https://example.com/","203.0.113.1","en-US","Windows","Chrome","2025-07-06T12:34:56Z","pending"`
	if line != expected {
		t.Errorf("encodeTodo() = %s, want %s", line, expected)
	}
}

func TestDecodeTodosSkipsMalformedLines(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected int
	}{
		{
			name:     "six fields skipped",
			content:  `"https://a.example","1.2.3.4","en","Windows","Chrome","2025-01-01T00:00:00Z"`,
			expected: 0,
		},
		{
			name:     "eight fields skipped",
			content:  `"a","b","c","d","e","f","pending","extra"`,
			expected: 0,
		},
		{
			name:     "blank lines ignored",
			content:  "\n\n" + encodeTodo(sampleTodo()) + "\n\n",
			expected: 1,
		},
		{
			name:     "good line survives next to bad",
			content:  "garbage line\n" + encodeTodo(sampleTodo()),
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeTodos(tt.content); len(got) != tt.expected {
				t.Errorf("DecodeTodos() returned %d records, want %d", len(got), tt.expected)
			}
		})
	}
}

func TestDecodeTodoUnknownStatusDefaultsToPending(t *testing.T) {
	content := `"https://a.example","1.2.3.4","en","Windows","Chrome","2025-01-01T00:00:00Z","weird"`
	todos := DecodeTodos(content)
	if len(todos) != 1 {
		t.Fatalf("decoded %d records, want 1", len(todos))
	}
	if todos[0].Status != domain.StatusPending {
		t.Errorf("Status = %q, want pending", todos[0].Status)
	}
}
