/*
Package lock implements a Redis-backed distributed TTL lock over the
job_locks keyspace, so two orchestrator replicas can never re-aggregate
the same month concurrently (spec.md §4.9, §6.1 Job_Locks).
*/
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"github.com/vilakshan/pli-leaderboard/metrics"
)

// ErrNotHeld is returned by Release/Renew when the lock's token no longer
// matches the key in Redis (another holder took over after expiry).
var ErrNotHeld = errors.New("lock: not held")

const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end`

const renewScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
else
	return 0
end`

// Locker acquires job_locks entries scoped to a re-aggregation run.
type Locker struct {
	client  *redis.Client
	prefix  string
	metrics *metrics.Registry
}

func NewLocker(client *redis.Client, prefix string) *Locker {
	if prefix == "" {
		prefix = "pli:job_lock:"
	}
	return &Locker{client: client, prefix: prefix}
}

// WithMetrics attaches a Registry so contended Acquire calls are counted.
// Optional: a Locker built without it just skips the observation.
func (l *Locker) WithMetrics(reg *metrics.Registry) *Locker {
	l.metrics = reg
	return l
}

// Handle is a held lock; call Release when the protected work is done.
type Handle struct {
	locker *Locker
	key    string
	token  string
}

// Acquire attempts to take the named lock, failing fast (rather than
// blocking) if another orchestrator replica already holds it — spec.md
// §4.9 treats a concurrent re-aggregation attempt as a no-op, not a queue.
func (l *Locker) Acquire(ctx context.Context, name string, ttl time.Duration) (*Handle, bool, error) {
	key := l.prefix + name
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, eris.Wrapf(err, "lock: acquire %q", name)
	}
	if !ok {
		if l.metrics != nil {
			l.metrics.LockContention.WithLabelValues(name).Inc()
		}
		return nil, false, nil
	}
	return &Handle{locker: l, key: key, token: token}, true, nil
}

func (h *Handle) Release(ctx context.Context) error {
	res, err := h.locker.client.Eval(ctx, releaseScript, []string{h.key}, h.token).Result()
	if err != nil {
		return fmt.Errorf("lock: release %q: %w", h.key, err)
	}
	if n, _ := res.(int64); n == 0 {
		return ErrNotHeld
	}
	return nil
}

// Renew extends the lock's TTL; used by a long-running re-aggregation to
// avoid losing the lock mid-run.
func (h *Handle) Renew(ctx context.Context, ttl time.Duration) error {
	res, err := h.locker.client.Eval(ctx, renewScript, []string{h.key}, h.token, ttl.Milliseconds()).Result()
	if err != nil {
		return fmt.Errorf("lock: renew %q: %w", h.key, err)
	}
	if n, _ := res.(int64); n == 0 {
		return ErrNotHeld
	}
	return nil
}
