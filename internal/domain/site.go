package domain

// AgeRating is the content rating of a directory entry.
type AgeRating string

const (
	RatingSFW   AgeRating = "SFW"
	RatingAdult AgeRating = "18+"
)

// Site represents one directory entry, published or archived.
//
// It is NOT tied to any one file or transport. The flat-file encoding in
// internal/codec and the JSON API both map onto this structure.
//
// A Site is considered uniquely identified by its canonical URL within a
// single collection.
type Site struct {
	// ─────────────────────────────
	// Identity
	// ─────────────────────────────

	// URL is the canonical address and the record key.
	// Example: https://example.com/
	URL string `json:"url"`

	// ─────────────────────────────
	// Presentation
	// ─────────────────────────────

	// Title is the display name shown in listings.
	Title string `json:"title"`

	// Favicon is an absolute icon URL.
	Favicon string `json:"favicon"`

	// Description is a short human-readable summary.
	Description string `json:"description"`

	// OGImage is the Open Graph preview image URL, if any.
	OGImage string `json:"ogImage"`

	// ─────────────────────────────
	// Classification
	// ─────────────────────────────

	// Category is a single label from the configured category list.
	Category string `json:"category"`

	// Tags is an ordered list of free-form labels.
	Tags []string `json:"tags"`

	// AgeRating is SFW or 18+.
	AgeRating AgeRating `json:"ageRating"`

	// Language is a BCP 47 tag, ex: "en-US".
	Language string `json:"language"`

	// ─────────────────────────────
	// Capabilities & curation
	// ─────────────────────────────

	Starred       bool `json:"starred"`
	SupportsPWA   bool `json:"supportsPWA"`
	SupportsHTTPS bool `json:"supportsHTTPS"`

	// Recommendation is the curator's free-text note.
	Recommendation string `json:"recommendation"`

	// CreatedAt is an ISO-8601 timestamp, kept as the literal string the
	// data file carries.
	CreatedAt string `json:"createdAt"`
}

// Clone returns a deep copy. Tags is the only reference field.
func (s Site) Clone() Site {
	c := s
	if s.Tags != nil {
		c.Tags = append([]string(nil), s.Tags...)
	}
	return c
}

// FindSite returns the index of the site matching url (canonical URL
// equality), or -1.
func FindSite(sites []Site, url string) int {
	for i := range sites {
		if SameURL(sites[i].URL, url) {
			return i
		}
	}
	return -1
}
