package deps

import (
	"time"

	"github.com/gitdex/gitdex/internal/analyzer"
	"github.com/gitdex/gitdex/internal/auth"
	"github.com/gitdex/gitdex/internal/catalog"
	"github.com/gitdex/gitdex/internal/logger"
	"github.com/gitdex/gitdex/internal/sources/categories"
	redisstore "github.com/gitdex/gitdex/internal/store/redis"
	"github.com/redis/go-redis/v9"
)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string

	TimeNow      func() time.Time // for testing, defaults to time.Now
	AllowedHosts []string         // Host headers allowed on admin/ops routes
	AllowedCIDRS []string         // IPs allowed on ops routes
	TrustProxy   bool             // true when running behind a trusted reverse proxy

	Catalog    *catalog.Service      // catalog state + workflow operations
	Auth       *auth.Service         // admin credential check + session tokens
	Analyzer   *analyzer.Analyzer    // page analysis for the admin analyze endpoint
	Categories []categories.Category // admin category list

	RedisClient *redis.Client     // nil when caching is disabled
	Cache       *redisstore.Store // nil when caching is disabled

	ReloadTrigger chan struct{} // channel to trigger a manual catalog reload
}
