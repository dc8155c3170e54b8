package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Harsh-BH/codepractice/internal/domain"
	"github.com/Harsh-BH/codepractice/internal/repository"
)

var _ repository.QuotaStore = (*redisQuota)(nil)

const (
	quotaKeyPrefix = "practice:quota:"
	quotaKeyTTL    = 48 * time.Hour
)

// admitScript checks the daily cap, then the cooldown, and consumes one
// execution only if both pass. Returns {allowed, reason, retry_ms, remaining}
// where reason is 0 (none), 1 (daily limit) or 2 (cooldown).
var admitScript = goredis.NewScript(`
local count = tonumber(redis.call('HGET', KEYS[1], 'count') or '0')
local last = tonumber(redis.call('HGET', KEYS[1], 'last') or '0')
local limit = tonumber(ARGV[1])
local cooldown = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])
if count >= limit then
  return {0, 1, 0, 0}
end
if last > 0 and now - last < cooldown then
  return {0, 2, cooldown - (now - last), limit - count}
end
count = redis.call('HINCRBY', KEYS[1], 'count', 1)
redis.call('HSET', KEYS[1], 'last', now)
redis.call('PEXPIRE', KEYS[1], ttl)
return {1, 0, 0, limit - count}
`)

type redisQuota struct {
	client *goredis.Client
}

// NewRedisQuotaStore creates a quota store whose admit step is one Lua script,
// so concurrent requests from any number of API instances cannot both take
// the last slot.
func NewRedisQuotaStore(client *goredis.Client) repository.QuotaStore {
	return &redisQuota{client: client}
}

func (r *redisQuota) Admit(ctx context.Context, userID, day string, now time.Time, policy repository.QuotaPolicy) (domain.QuotaDecision, error) {
	vals, err := admitScript.Run(ctx, r.client,
		[]string{quotaKey(userID, day)},
		policy.DailyLimit,
		policy.Cooldown.Milliseconds(),
		now.UnixMilli(),
		quotaKeyTTL.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return domain.QuotaDecision{}, fmt.Errorf("redis: admit: %w", err)
	}
	if len(vals) != 4 {
		return domain.QuotaDecision{}, fmt.Errorf("redis: admit: unexpected reply length %d", len(vals))
	}

	decision := domain.QuotaDecision{
		Allowed:   vals[0] == 1,
		Remaining: int(vals[3]),
	}
	switch vals[1] {
	case 1:
		decision.Reason = domain.ReasonDailyLimitExceeded
		decision.Remaining = 0
	case 2:
		decision.Reason = domain.ReasonCooldownActive
		decision.RetryAfterSeconds = ceilSeconds(vals[2])
	}
	return decision, nil
}

func (r *redisQuota) Usage(ctx context.Context, userID, day string) (domain.QuotaUsage, error) {
	vals, err := r.client.HMGet(ctx, quotaKey(userID, day), "count", "last").Result()
	if err != nil {
		return domain.QuotaUsage{}, fmt.Errorf("redis: usage: %w", err)
	}
	usage := domain.QuotaUsage{Day: day}
	if s, ok := vals[0].(string); ok {
		usage.Used, _ = strconv.Atoi(s)
	}
	if s, ok := vals[1].(string); ok {
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil && ms > 0 {
			usage.LastExecutionAt = time.UnixMilli(ms)
		}
	}
	return usage, nil
}

func quotaKey(userID, day string) string {
	return quotaKeyPrefix + userID + ":" + day
}

func ceilSeconds(ms int64) int {
	if ms <= 0 {
		return 0
	}
	return int((ms + 999) / 1000)
}
