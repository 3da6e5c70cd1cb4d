package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/m-mizutani/goerr/v2"
	"github.com/oncowatch/oncowatch/pkg/domain/interfaces"
	"github.com/oncowatch/oncowatch/pkg/service/rostercache"
	"github.com/oncowatch/oncowatch/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Cache holds CLI flags for the roster snapshot cache
type Cache struct {
	backend  string
	addr     string
	password string
	db       int
	key      string
}

func (x *Cache) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "roster-cache",
			Usage:       "Roster snapshot cache backend (memory or redis)",
			Category:    "Cache",
			Value:       "memory",
			Sources:     cli.EnvVars("ONCOWATCH_ROSTER_CACHE"),
			Destination: &x.backend,
		},
		&cli.StringFlag{
			Name:        "redis-addr",
			Usage:       "Redis address (host:port) for the redis roster cache",
			Category:    "Cache",
			Value:       "localhost:6379",
			Sources:     cli.EnvVars("ONCOWATCH_REDIS_ADDR"),
			Destination: &x.addr,
		},
		&cli.StringFlag{
			Name:        "redis-password",
			Usage:       "Redis password",
			Category:    "Cache",
			Sources:     cli.EnvVars("ONCOWATCH_REDIS_PASSWORD"),
			Destination: &x.password,
		},
		&cli.IntFlag{
			Name:        "redis-db",
			Usage:       "Redis database number",
			Category:    "Cache",
			Sources:     cli.EnvVars("ONCOWATCH_REDIS_DB"),
			Destination: &x.db,
		},
		&cli.StringFlag{
			Name:        "redis-key",
			Usage:       "Redis key holding the roster snapshot",
			Category:    "Cache",
			Value:       rostercache.DefaultKey,
			Sources:     cli.EnvVars("ONCOWATCH_REDIS_KEY"),
			Destination: &x.key,
		},
	}
}

func (x Cache) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", x.backend),
		slog.String("addr", x.addr),
		slog.Int("password.len", len(x.password)),
		slog.Int("db", x.db),
		slog.String("key", x.key),
	)
}

// Configure builds the roster cache. Redis snapshots expire after ttl. The
// returned closer releases the redis connection pool.
func (x *Cache) Configure(ctx context.Context, ttl time.Duration) (interfaces.RosterCache, func(), error) {
	switch x.backend {
	case "memory", "":
		return rostercache.NewMemory(), func() {}, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     x.addr,
			Password: x.password,
			DB:       x.db,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, goerr.Wrap(err, "failed to connect to redis", goerr.V("addr", x.addr))
		}

		logging.Default().Info("Using redis roster cache", "cache", x, "ttl", ttl.String())
		closer := func() {
			if err := client.Close(); err != nil {
				logging.Default().Error("failed to close redis client", "error", err.Error())
			}
		}
		return rostercache.NewRedis(client, rostercache.WithKey(x.key), rostercache.WithTTL(ttl)), closer, nil

	default:
		return nil, nil, goerr.Wrap(ErrInvalidCacheBackend, "unknown cache backend", goerr.V("backend", x.backend))
	}
}
