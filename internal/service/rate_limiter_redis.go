package service

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisIncrScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`

type redisCounterStore struct {
	client redisEvaler
	prefix string
}

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// NewRedisCounterStore crea un CounterStore respaldado en redis, util cuando
// hay mas de un proceso sirviendo trafico.
func NewRedisCounterStore(client *redis.Client) CounterStore {
	if client == nil {
		return nil
	}
	return &redisCounterStore{
		client: client,
		prefix: "auth:rl:",
	}
}

func (s *redisCounterStore) Incr(key string, window time.Duration) (int, time.Duration, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		key = "unknown"
	}
	if window <= 0 {
		window = time.Minute
	}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	vals, err := s.client.Eval(ctx, redisIncrScript, []string{s.prefix + key}, window.Milliseconds()).Slice()
	if err != nil || len(vals) != 2 {
		// Si redis no responde no se bloquea trafico legitimo.
		return 1, window, err
	}
	count, _ := vals[0].(int64)
	ttlMs, _ := vals[1].(int64)
	retryAfter := time.Duration(ttlMs) * time.Millisecond
	if retryAfter <= 0 {
		retryAfter = window
	}
	return int(count), retryAfter, nil
}
