package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// CanonicalURL parses raw and reserializes it into its canonical string
// form, used as the record identity key. An empty path becomes "/" so that
// "https://example.com" and "https://example.com/" are the same key.
//
// The scheme is part of the identity: http://x and https://x are different
// keys. TODO: confirm with the catalog owners whether scheme should matter;
// the data files currently rely on it.
func CanonicalURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("not an absolute URL: %q", raw)
	}
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String(), nil
}

// SameURL reports whether two raw URLs share the same canonical form.
// Unparseable input never matches.
func SameURL(a, b string) bool {
	ca, err := CanonicalURL(a)
	if err != nil {
		return false
	}
	cb, err := CanonicalURL(b)
	if err != nil {
		return false
	}
	return ca == cb
}

// ValidateSubmissionURL checks that raw is an absolute http or https URL.
// Rejected before any network call. Commas and double quotes are refused
// because the queue file cannot carry them: a row written with either would
// be dropped as malformed on the next decode, losing the submission.
func ValidateSubmissionURL(raw string) error {
	if strings.ContainsAny(raw, `,"`) {
		return fmt.Errorf("invalid URL: must not contain ',' or '\"'")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme %q (want http or https)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid URL: missing host")
	}
	return nil
}
