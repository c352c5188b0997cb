package main

import (
	"context"

	redisv9 "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	platformhandler "stockwatch/internal/platform/http/handler"
)

func healthChecks(db *gorm.DB, rdb *redisv9.Client) []platformhandler.Check {
	checks := []platformhandler.Check{{
		Name: "db",
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}}
	if rdb != nil {
		checks = append(checks, platformhandler.Check{
			Name: "redis",
			Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	}
	return checks
}
