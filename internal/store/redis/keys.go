package redis

import "time"

const (
	// KeySnapshot holds the JSON-encoded catalog snapshot.
	KeySnapshot = "gitdex:catalog:snapshot"
	// KeyPrefixAnalysis is the prefix for cached page analyses.
	KeyPrefixAnalysis = "gitdex:analysis:"

	// DefaultSnapshotTTL bounds how stale a cached catalog may get before
	// a reload goes back to the repository.
	DefaultSnapshotTTL = 5 * time.Minute
	// DefaultAnalysisTTL is the TTL for cached page analyses.
	DefaultAnalysisTTL = 24 * time.Hour
)

// AnalysisKey returns the Redis key for a cached analysis by canonical URL.
func AnalysisKey(url string) string {
	return KeyPrefixAnalysis + url
}
