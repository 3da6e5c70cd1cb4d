package rostercache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/m-mizutani/goerr/v2"
	"github.com/oncowatch/oncowatch/pkg/domain/interfaces"
	"github.com/oncowatch/oncowatch/pkg/domain/model"
)

// DefaultKey is the redis key the snapshot is stored under
const DefaultKey = "oncowatch:roster"

// Redis shares the snapshot between dashboard replicas
type Redis struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

var _ interfaces.RosterCache = &Redis{}

type RedisOption func(*Redis)

func WithKey(key string) RedisOption {
	return func(r *Redis) {
		r.key = key
	}
}

// WithTTL expires the snapshot so a stalled refresher cannot serve it forever
func WithTTL(ttl time.Duration) RedisOption {
	return func(r *Redis) {
		r.ttl = ttl
	}
}

func NewRedis(client *redis.Client, opts ...RedisOption) *Redis {
	r := &Redis{
		client: client,
		key:    DefaultKey,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Redis) Get(ctx context.Context) (*model.RosterSnapshot, error) {
	raw, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get roster snapshot", goerr.V("key", r.key))
	}

	var snapshot model.RosterSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, goerr.Wrap(err, "failed to decode roster snapshot", goerr.V("key", r.key))
	}
	return &snapshot, nil
}

func (r *Redis) Put(ctx context.Context, snapshot *model.RosterSnapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return goerr.Wrap(err, "failed to encode roster snapshot")
	}

	if err := r.client.Set(ctx, r.key, raw, r.ttl).Err(); err != nil {
		return goerr.Wrap(err, "failed to set roster snapshot", goerr.V("key", r.key))
	}
	return nil
}
