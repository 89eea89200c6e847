package spend

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key TTLs. Day buckets survive at least two day-boundaries so a reserve
// racing midnight still lands in a live bucket; hour buckets likewise.
const (
	dayBucketTTL  = 48 * time.Hour
	hourBucketTTL = 2 * time.Hour
)

// reserveScript checks both ceilings and increments both counters in one
// atomic server-side step. Returns 1 on success, 0 when either ceiling
// would be exceeded, with no mutation on the 0 path.
var reserveScript = redis.NewScript(`
local day = tonumber(redis.call('GET', KEYS[1]) or '0')
local hour = tonumber(redis.call('GET', KEYS[2]) or '0')
local amount = tonumber(ARGV[1])
if day + amount > tonumber(ARGV[2]) then return 0 end
if hour + amount > tonumber(ARGV[3]) then return 0 end
redis.call('INCRBY', KEYS[1], amount)
redis.call('EXPIRE', KEYS[1], tonumber(ARGV[4]))
redis.call('INCRBY', KEYS[2], amount)
redis.call('EXPIRE', KEYS[2], tonumber(ARGV[5]))
return 1
`)

// releaseScript decrements a counter, clamping at zero.
var releaseScript = redis.NewScript(`
local cur = tonumber(redis.call('GET', KEYS[1]) or '0')
local amount = tonumber(ARGV[1])
if amount >= cur then
	redis.call('DEL', KEYS[1])
	return 0
end
return redis.call('DECRBY', KEYS[1], amount)
`)

// RedisLedger implements Ledger on a shared Redis instance so multiple
// server replicas enforce one ceiling. Observable semantics are identical
// to MemoryLedger.
type RedisLedger struct {
	rdb    *redis.Client
	limits Limits
	now    func() time.Time
}

// NewRedisLedger creates a Redis-backed ledger.
func NewRedisLedger(rdb *redis.Client, limits Limits) *RedisLedger {
	return &RedisLedger{
		rdb:    rdb,
		limits: limits,
		now:    time.Now,
	}
}

// SetClock overrides the time source. Test hook.
func (l *RedisLedger) SetClock(now func() time.Time) { l.now = now }

func (l *RedisLedger) SpentToday(ctx context.Context, userID string) (int64, error) {
	return l.counter(ctx, l.dayBucket(userID))
}

func (l *RedisLedger) SpentHour(ctx context.Context, userID string) (int64, error) {
	return l.counter(ctx, l.hourBucket(userID))
}

func (l *RedisLedger) Remaining(ctx context.Context, userID string) (int64, error) {
	if l.limits.Exempt(userID) {
		return l.limits.DayCents, nil
	}
	spent, err := l.SpentToday(ctx, userID)
	if err != nil {
		return 0, err
	}
	rem := l.limits.DayCents - spent
	if rem < 0 {
		rem = 0
	}
	return rem, nil
}

func (l *RedisLedger) Reserve(ctx context.Context, userID string, amountCents int64) (bool, error) {
	if amountCents <= 0 {
		return false, nil
	}
	if l.limits.Exempt(userID) {
		return true, nil
	}

	res, err := reserveScript.Run(ctx, l.rdb,
		[]string{l.dayBucket(userID), l.hourBucket(userID)},
		amountCents,
		l.limits.DayCents,
		l.limits.HourCents,
		int64(dayBucketTTL.Seconds()),
		int64(hourBucketTTL.Seconds()),
	).Int64()
	if err != nil {
		return false, fmt.Errorf("spend: reserve for %s: %w", userID, err)
	}
	return res == 1, nil
}

func (l *RedisLedger) Release(ctx context.Context, userID string, amountCents int64) error {
	if amountCents <= 0 || l.limits.Exempt(userID) {
		return nil
	}

	for _, key := range []string{l.dayBucket(userID), l.hourBucket(userID)} {
		if err := releaseScript.Run(ctx, l.rdb, []string{key}, amountCents).Err(); err != nil {
			return fmt.Errorf("spend: release for %s: %w", userID, err)
		}
	}
	return nil
}

func (l *RedisLedger) counter(ctx context.Context, key string) (int64, error) {
	val, err := l.rdb.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("spend: read %s: %w", key, err)
	}
	return val, nil
}

func (l *RedisLedger) dayBucket(userID string) string {
	return fmt.Sprintf("spend:day:%s:%s", userID, dayKey(l.now()))
}

func (l *RedisLedger) hourBucket(userID string) string {
	return fmt.Sprintf("spend:hour:%s:%s", userID, hourKey(l.now()))
}
