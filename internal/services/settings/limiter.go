package settings

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/BearBump/NovaDash/internal/cache/rediscache"
	"golang.org/x/time/rate"
)

const (
	validateWindow       = time.Minute
	defaultValidateLimit = 5
)

type Limiter interface {
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

type redisLimiter struct {
	rl    *rediscache.RateLimiter
	limit int64
}

// NewRedisLimiter: общий для реплик лимит perMinute попыток в минуту.
func NewRedisLimiter(rl *rediscache.RateLimiter, perMinute int) Limiter {
	if perMinute <= 0 {
		perMinute = defaultValidateLimit
	}
	return &redisLimiter{rl: rl, limit: int64(perMinute)}
}

func (l *redisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	d, err := l.rl.Allow(ctx, key, l.limit, validateWindow)
	if err != nil {
		return false, 0, err
	}
	return d.Allowed, d.RetryAfter, nil
}

// LocalLimiter: token bucket на процесс, если Redis не настроен.
type LocalLimiter struct {
	perMinute int
	now       func() time.Time

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewLocalLimiter(perMinute int) *LocalLimiter {
	if perMinute <= 0 {
		perMinute = defaultValidateLimit
	}
	return &LocalLimiter{perMinute: perMinute, now: time.Now, limiters: make(map[string]*rate.Limiter)}
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	l.mu.Lock()
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(rate.Every(validateWindow/time.Duration(l.perMinute)), l.perMinute)
		l.limiters[key] = lim
	}
	l.mu.Unlock()

	now := l.now()
	r := lim.ReserveN(now, 1)
	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)
		return false, d, nil
	}
	return true, 0, nil
}

// Sweep drops buckets that have refilled completely. Such a bucket behaves
// exactly like a new one, so nothing is lost.
func (l *LocalLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	n := 0
	for k, lim := range l.limiters {
		if lim.TokensAt(now) >= float64(lim.Burst()) {
			delete(l.limiters, k)
			n++
		}
	}
	return n
}

func (l *LocalLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// allow не блокирует сохранение ключа, если сам лимитер сломан.
func allow(ctx context.Context, l Limiter, key string) (bool, time.Duration) {
	if l == nil {
		return true, 0
	}
	ok, retry, err := l.Allow(ctx, key)
	if err != nil {
		slog.Warn("settings: rate limiter failed, allowing", "err", err)
		return true, 0
	}
	return ok, retry
}
