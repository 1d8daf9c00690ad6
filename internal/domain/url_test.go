package domain

import "testing"

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{
			name:     "bare host gains trailing slash",
			input:    "https://example.com",
			expected: "https://example.com/",
		},
		{
			name:     "trailing slash preserved",
			input:    "https://example.com/",
			expected: "https://example.com/",
		},
		{
			name:     "path and query preserved",
			input:    "https://example.com/a?b=1",
			expected: "https://example.com/a?b=1",
		},
		{
			name:    "relative URL rejected",
			input:   "/just/a/path",
			wantErr: true,
		},
		{
			name:    "empty string rejected",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CanonicalURL(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("CanonicalURL(%q) expected error, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("CanonicalURL(%q) error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("CanonicalURL(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSameURL(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected bool
	}{
		{
			name:     "identical",
			a:        "https://example.com/",
			b:        "https://example.com/",
			expected: true,
		},
		{
			name:     "trailing slash irrelevant on bare host",
			a:        "https://example.com",
			b:        "https://example.com/",
			expected: true,
		},
		{
			name:     "scheme is part of identity",
			a:        "http://example.com",
			b:        "https://example.com",
			expected: false,
		},
		{
			name:     "different hosts",
			a:        "https://example.com",
			b:        "https://example.org",
			expected: false,
		},
		{
			name:     "unparseable never matches",
			a:        "not a url",
			b:        "not a url",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameURL(tt.a, tt.b); got != tt.expected {
				t.Errorf("SameURL(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestValidateSubmissionURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "https ok", input: "https://example.com"},
		{name: "http ok", input: "http://example.com"},
		{name: "ftp rejected", input: "ftp://example.com", wantErr: true},
		{name: "missing host rejected", input: "https://", wantErr: true},
		{name: "garbage rejected", input: "://bad", wantErr: true},
		{name: "comma rejected", input: "https://maps.example/@48.85,2.35", wantErr: true},
		{name: "double quote rejected", input: `https://q.example/?q="x"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSubmissionURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSubmissionURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
