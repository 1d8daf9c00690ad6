package domain

import "testing"

const (
	uaChromeWindows = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	uaEdgeWindows   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36 Edg/124.0.0.0"
	uaFirefoxLinux  = "Mozilla/5.0 (X11; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0"
	uaSafariMac     = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15"
	uaChromeAndroid = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Mobile Safari/537.36"
	uaSafariiPhone  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Mobile/15E148 Safari/604.1"
)

func TestParseOS(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		expected  string
	}{
		{name: "windows", userAgent: uaChromeWindows, expected: "Windows"},
		{name: "macos", userAgent: uaSafariMac, expected: "macOS"},
		{name: "linux", userAgent: uaFirefoxLinux, expected: "Linux"},
		{name: "android wins over linux", userAgent: uaChromeAndroid, expected: "Android"},
		{name: "ios", userAgent: uaSafariiPhone, expected: "iOS"},
		{name: "empty", userAgent: "", expected: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseOS(tt.userAgent); got != tt.expected {
				t.Errorf("ParseOS() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestParseBrowser(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		expected  string
	}{
		{name: "chrome", userAgent: uaChromeWindows, expected: "Chrome"},
		{name: "edge wins over chrome", userAgent: uaEdgeWindows, expected: "Edge"},
		{name: "firefox", userAgent: uaFirefoxLinux, expected: "Firefox"},
		{name: "safari", userAgent: uaSafariMac, expected: "Safari"},
		{name: "empty", userAgent: "", expected: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseBrowser(tt.userAgent); got != tt.expected {
				t.Errorf("ParseBrowser() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestNewTodo(t *testing.T) {
	todo := NewTodo("https://example.com", SubmissionMeta{
		IP:             "203.0.113.1",
		AcceptLanguage: "zh-CN,zh;q=0.9",
		UserAgent:      uaChromeWindows,
	})

	if todo.Status != StatusPending {
		t.Errorf("Status = %q, want pending", todo.Status)
	}
	if todo.Language != "zh-CN" {
		t.Errorf("Language = %q, want zh-CN", todo.Language)
	}
	if todo.OS != "Windows" || todo.Browser != "Chrome" {
		t.Errorf("OS/Browser = %q/%q, want Windows/Chrome", todo.OS, todo.Browser)
	}
	if todo.SubmittedAt == "" {
		t.Error("SubmittedAt should be set")
	}

	empty := NewTodo("https://example.com", SubmissionMeta{})
	if empty.IP != "0.0.0.0" {
		t.Errorf("IP fallback = %q, want 0.0.0.0", empty.IP)
	}
	if empty.Language != "en-US" {
		t.Errorf("Language fallback = %q, want en-US", empty.Language)
	}
}
