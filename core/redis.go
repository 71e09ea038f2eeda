package core

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"

	"hashvote/config"
)

const Separator = ":"

// resultTTL is a backstop; results are invalidated on every commit anyway.
const resultTTL = time.Minute

// Redis caches per-poll chain tips for Phase-1 quotes and aggregated results.
// All methods are nil-safe: a nil cache always misses, and callers fall
// through to the ledger.
type Redis struct {
	Prefix string
	Client *redis.Client

	ctx context.Context
}

func NewRedis(cfg *config.Redis) *Redis {
	ctx := context.Background()

	client := redis.NewClient(&redis.Options{
		Addr:     *cfg.Url,
		Password: *cfg.Password,
		DB:       *cfg.Database,
		PoolSize: *cfg.PoolSize,
	})

	return &Redis{
		Prefix: *cfg.Prefix,
		Client: client,

		ctx: ctx,
	}
}

func (r *Redis) key(parts ...string) string {
	return r.Prefix + Separator + strings.Join(parts, Separator)
}

func (r *Redis) Tip(pollID string) (string, bool) {
	if r == nil {
		return "", false
	}
	tip, err := r.Client.Get(r.ctx, r.key("tip", pollID)).Result()
	if err != nil {
		return "", false
	}
	return tip, true
}

func (r *Redis) SetTip(pollID, hash string) {
	if r == nil {
		return
	}
	if err := r.Client.Set(r.ctx, r.key("tip", pollID), hash, 0).Err(); err != nil {
		log.Debugf("Cache tip write error: %v", err)
	}
}

func (r *Redis) Result(pollID string) (map[string]int, bool) {
	if r == nil {
		return nil, false
	}
	data, err := r.Client.Get(r.ctx, r.key("result", pollID)).Bytes()
	if err != nil {
		return nil, false
	}
	var counts map[string]int
	if err := json.Unmarshal(data, &counts); err != nil {
		return nil, false
	}
	return counts, true
}

func (r *Redis) SetResult(pollID string, counts map[string]int) {
	if r == nil {
		return
	}
	data, err := json.Marshal(counts)
	if err != nil {
		return
	}
	if err := r.Client.Set(r.ctx, r.key("result", pollID), data, resultTTL).Err(); err != nil {
		log.Debugf("Cache result write error: %v", err)
	}
}

func (r *Redis) InvalidateResult(pollID string) {
	if r == nil {
		return
	}
	if err := r.Client.Del(r.ctx, r.key("result", pollID)).Err(); err != nil {
		log.Debugf("Cache invalidate error: %v", err)
	}
}

func (r *Redis) Close() {
	if r == nil {
		return
	}
	r.Client.Close()
}
