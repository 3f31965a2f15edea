package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var Rdb *redis.Client

// Activation codes are mirrored here so the player activation hot path can
// resolve a code without touching Postgres. The database row stays the
// source of truth; a cache miss falls through to it.
const activationPrefix = "activation:"

// codes are rotated on use, the TTL only bounds garbage from stores that
// never activate
const activationTTL = 30 * 24 * time.Hour

func InitRedis(redisAddress string, redisUsername string, redisPassword string) {
	Rdb = redis.NewClient(&redis.Options{
		Addr:     redisAddress,
		Username: redisUsername,
		Password: redisPassword,
		DB:       0,
	})
}

func Set(ctx context.Context, key string, value interface{}, expiration time.Duration) {
	if Rdb == nil {
		return
	}
	if err := Rdb.Set(ctx, key, value, expiration).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to write key to redis")
	}
}

// PutActivationCode mirrors code -> storeID, dropping the previous code of
// the same store implicitly (codes are unique per write).
func PutActivationCode(ctx context.Context, code string, storeID int) {
	Set(ctx, activationPrefix+code, storeID, activationTTL)
}

// LookupActivationCode returns the store id a code maps to, or 0 when the
// mirror has no answer. A miss, a disabled redis, and an error all fall
// through to the database.
func LookupActivationCode(ctx context.Context, code string) int {
	if Rdb == nil {
		return 0
	}
	val, err := Rdb.Get(ctx, activationPrefix+code).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Error().Err(err).Msg("failed to look up activation code in redis")
		}
		return 0
	}
	id, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return id
}

// DropActivationCode removes a burned code from the mirror.
func DropActivationCode(ctx context.Context, code string) {
	if Rdb == nil {
		return
	}
	if err := Rdb.Del(ctx, activationPrefix+code).Err(); err != nil {
		log.Error().Err(err).Msg("failed to drop activation code from redis")
	}
}
