package domain

import "strings"

// ParseOS infers the operating system from a User-Agent string by substring
// matching on known tokens.
func ParseOS(userAgent string) string {
	switch {
	case strings.Contains(userAgent, "Windows NT"):
		return "Windows"
	case strings.Contains(userAgent, "Mac OS X"), strings.Contains(userAgent, "macOS"):
		return "macOS"
	case strings.Contains(userAgent, "Android"):
		return "Android"
	case strings.Contains(userAgent, "Linux"):
		return "Linux"
	case strings.Contains(userAgent, "iPhone"), strings.Contains(userAgent, "iPad"):
		return "iOS"
	default:
		return "unknown"
	}
}

// ParseBrowser infers the browser from a User-Agent string. Order matters:
// Chromium-family agents also carry "Safari/" and "Chrome/".
func ParseBrowser(userAgent string) string {
	switch {
	case strings.Contains(userAgent, "Edg/"):
		return "Edge"
	case strings.Contains(userAgent, "Opera/"), strings.Contains(userAgent, "OPR/"):
		return "Opera"
	case strings.Contains(userAgent, "Chrome/"):
		return "Chrome"
	case strings.Contains(userAgent, "Firefox/"):
		return "Firefox"
	case strings.Contains(userAgent, "Safari/"):
		return "Safari"
	default:
		return "unknown"
	}
}
