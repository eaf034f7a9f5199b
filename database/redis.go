package database

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"

	"pagai-backend/config"
)

var Redis *redis.Client

// ConnectRedis opens the token-verification cache. Like the audit database
// it is optional: without it every session exchange hits Firebase directly.
func ConnectRedis() {
	Redis = redis.NewClient(&redis.Options{
		Addr: config.AppConfig.RedisURL,
	})

	if _, err := Redis.Ping(context.Background()).Result(); err != nil {
		log.Println("⚠️  Redis not available, token verifications will not be cached:", err)
		Redis = nil
		return
	}

	log.Println("✅ Redis connected, caching token verifications")
}
