package stats

import (
	"context"
	"sync/atomic"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Summary is a point-in-time view of issuance activity.
type Summary struct {
	Requested int64 `json:"requested"`
	Issued    int64 `json:"issued"`
	Failed    int64 `json:"failed"`
}

// Recorder counts issuance outcomes. Counting is best effort and must never
// slow down or fail the issuance path.
type Recorder interface {
	CountRequested(ctx context.Context)
	CountIssued(ctx context.Context)
	CountFailed(ctx context.Context)
	Snapshot(ctx context.Context) (Summary, error)
}

// MemoryRecorder keeps counters in process memory. The default when no
// Redis address is configured.
type MemoryRecorder struct {
	requested atomic.Int64
	issued    atomic.Int64
	failed    atomic.Int64
}

func NewMemoryRecorder() *MemoryRecorder { return &MemoryRecorder{} }

func (m *MemoryRecorder) CountRequested(context.Context) { m.requested.Add(1) }
func (m *MemoryRecorder) CountIssued(context.Context)    { m.issued.Add(1) }
func (m *MemoryRecorder) CountFailed(context.Context)    { m.failed.Add(1) }

func (m *MemoryRecorder) Snapshot(context.Context) (Summary, error) {
	return Summary{
		Requested: m.requested.Load(),
		Issued:    m.issued.Load(),
		Failed:    m.failed.Load(),
	}, nil
}

// Redis keys for the shared counters.
const (
	keyRequested = "certhub:stats:requested"
	keyIssued    = "certhub:stats:issued"
	keyFailed    = "certhub:stats:failed"
)

// RedisRecorder shares counters across instances through Redis. Increments
// that fail are logged and dropped.
type RedisRecorder struct {
	rdb *redis.Client
	log *logrus.Entry
}

func NewRedisRecorder(rdb *redis.Client, log *logrus.Entry) *RedisRecorder {
	return &RedisRecorder{rdb: rdb, log: log}
}

func (r *RedisRecorder) CountRequested(ctx context.Context) { r.incr(ctx, keyRequested) }
func (r *RedisRecorder) CountIssued(ctx context.Context)    { r.incr(ctx, keyIssued) }
func (r *RedisRecorder) CountFailed(ctx context.Context)    { r.incr(ctx, keyFailed) }

func (r *RedisRecorder) incr(ctx context.Context, key string) {
	if err := r.rdb.Incr(ctx, key).Err(); err != nil {
		r.log.Warnf("Failed to increment %s: %v", key, err)
	}
}

func (r *RedisRecorder) Snapshot(ctx context.Context) (Summary, error) {
	var out Summary
	for _, c := range []struct {
		key string
		dst *int64
	}{
		{keyRequested, &out.Requested},
		{keyIssued, &out.Issued},
		{keyFailed, &out.Failed},
	} {
		n, err := r.rdb.Get(ctx, c.key).Int64()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return Summary{}, err
		}
		*c.dst = n
	}
	return out, nil
}
