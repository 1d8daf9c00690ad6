// Package codec maps Site and Todo records onto the flat-file encodings
// stored in the data repository: sites.txt / 404.txt (line groups) and
// todo.csv (quoted CSV).
//
// Neither format escapes embedded double-quotes or bare commas; records
// containing them do not round-trip. Known limitation of the file format,
// not something the codec tries to repair.
package codec

import (
	"strings"

	"github.com/gitdex/gitdex/internal/domain"
)

// siteFieldCount is the exact number of lines in one encoded site record.
const siteFieldCount = 14

// newlineGlyph replaces raw newlines inside a field before encoding, since
// the format is line-oriented.
const newlineGlyph = "⏎"

// Per-field sentinel placeholders. An empty field encodes to its sentinel,
// never to a blank line, so the line-group length check cannot drift.
const (
	sentinelTitle          = "[title]"
	sentinelURL            = "[url]"
	sentinelFavicon        = "[favicon]"
	sentinelDescription    = "[description]"
	sentinelCategory       = "[category]"
	sentinelTags           = "[tags]"
	sentinelLanguage       = "[language]"
	sentinelRecommendation = "[recommendation]"
	sentinelCreatedAt      = "[createdAt]"
	sentinelOGImage        = "[ogImage]"
)

// EncodeSites serializes sites into the sites.txt format: one 14-line group
// per record, groups separated by a single blank line.
func EncodeSites(sites []domain.Site) string {
	groups := make([]string, 0, len(sites))
	for i := range sites {
		groups = append(groups, encodeSite(sites[i]))
	}
	return strings.Join(groups, "\n\n")
}

func encodeSite(s domain.Site) string {
	rating := s.AgeRating
	if rating != domain.RatingAdult {
		rating = domain.RatingSFW
	}
	lines := []string{
		fieldOr(s.Title, sentinelTitle),
		fieldOr(s.URL, sentinelURL),
		fieldOr(s.Favicon, sentinelFavicon),
		fieldOr(s.Description, sentinelDescription),
		fieldOr(s.Category, sentinelCategory),
		fieldOr(strings.Join(s.Tags, ","), sentinelTags),
		string(rating),
		fieldOr(s.Language, sentinelLanguage),
		boolFlag(s.Starred),
		boolWord(s.SupportsPWA),
		boolWord(s.SupportsHTTPS),
		fieldOr(s.Recommendation, sentinelRecommendation),
		fieldOr(s.CreatedAt, sentinelCreatedAt),
		fieldOr(s.OGImage, sentinelOGImage),
	}
	return strings.Join(lines, "\n")
}

// DecodeSites parses sites.txt content. Line groups that do not hold exactly
// 14 non-empty lines are dropped silently; this is the malformed-record
// tolerance policy, not an error path.
func DecodeSites(content string) []domain.Site {
	sites := make([]domain.Site, 0)
	for _, group := range lineGroups(content) {
		if site, ok := decodeSiteGroup(group); ok {
			sites = append(sites, site)
		}
	}
	return sites
}

// decodeSiteGroup parses one record's line group. ok=false means the
// group is dropped as malformed, never fatal.
func decodeSiteGroup(lines []string) (domain.Site, bool) {
	if len(lines) != siteFieldCount {
		return domain.Site{}, false
	}
	site := domain.Site{
		Title:          fieldValue(lines[0], sentinelTitle),
		URL:            fieldValue(lines[1], sentinelURL),
		Favicon:        fieldValue(lines[2], sentinelFavicon),
		Description:    fieldValue(lines[3], sentinelDescription),
		Category:       fieldValue(lines[4], sentinelCategory),
		Tags:           decodeTags(lines[5]),
		AgeRating:      decodeRating(lines[6]),
		Language:       fieldValue(lines[7], sentinelLanguage),
		Starred:        lines[8] == "1",
		SupportsPWA:    lines[9] == "true",
		SupportsHTTPS:  lines[10] == "true",
		Recommendation: fieldValue(lines[11], sentinelRecommendation),
		CreatedAt:      fieldValue(lines[12], sentinelCreatedAt),
		OGImage:        fieldValue(lines[13], sentinelOGImage),
	}
	return site, true
}

// lineGroups splits content into contiguous runs of non-blank lines.
func lineGroups(content string) [][]string {
	var groups [][]string
	var current []string
	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))
		if line == "" {
			if len(current) > 0 {
				groups = append(groups, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}

func decodeTags(line string) []string {
	if line == "" || line == sentinelTags {
		return nil
	}
	parts := strings.Split(line, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}

func decodeRating(line string) domain.AgeRating {
	if line == string(domain.RatingAdult) {
		return domain.RatingAdult
	}
	return domain.RatingSFW
}

// fieldOr encodes a field value, replacing raw newlines and substituting
// the sentinel when the value is empty or whitespace-only.
func fieldOr(val, sentinel string) string {
	val = strings.TrimSpace(strings.ReplaceAll(val, "\n", newlineGlyph))
	val = strings.ReplaceAll(val, "\r", "")
	if val == "" {
		return sentinel
	}
	return val
}

// fieldValue decodes a field, mapping the sentinel back to the empty string.
func fieldValue(line, sentinel string) string {
	if line == sentinel {
		return ""
	}
	return line
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func boolWord(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
