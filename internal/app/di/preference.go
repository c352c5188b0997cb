package di

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	watchlistadapters "stockwatch/internal/feature/watchlist/adapters"
	"stockwatch/internal/feature/watchlist/usecase"
)

// NewPreferenceRepository creates a PreferenceRepository implementation.
// If Redis is available, it returns a Redis-backed implementation.
// Otherwise, it falls back to the SQL database.
func NewPreferenceRepository(rdb *redis.Client, db *gorm.DB) usecase.PreferenceRepository {
	if rdb != nil {
		return watchlistadapters.NewPreferenceRedis(rdb, "prefs")
	}
	return watchlistadapters.NewPreferenceGorm(db)
}
