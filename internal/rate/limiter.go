// Package rate limita requests por clave (IP del cliente) sobre una ventana
// fija. Protege /auth/login: cada hit ahí abre un intento de login completo
// contra el IdP (state, nonce, PKCE, redirect) y no debe poder fabricarse
// sin costo.
package rate

import (
	"context"
	"fmt"
	"strings"
	"time"

	rdb "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/idgate/internal/cache"
)

// Result es el veredicto del limiter para un hit.
type Result struct {
	Allowed     bool
	Remaining   int64
	RetryAfter  time.Duration
	WindowTTL   time.Duration
	CurrentHits int64
}

// Limiter decide si un hit identificado por key entra en la ventana actual.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// RedisLimiter cuenta hits por ventana fija en Redis (INCR + EXPIRE). El
// contador se comparte entre nodos del gateway: el límite de /auth/login
// vale para el despliegue completo, no por réplica.
type RedisLimiter struct {
	client *rdb.Client
	prefix string
	max    int64
	window time.Duration
}

// NewRedisLimiter conecta contra el mismo Redis del keyed store compartido.
func NewRedisLimiter(cfg cache.Config, prefix string, max int, window time.Duration) *RedisLimiter {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	if cfg.Port == 0 {
		addr = cfg.Host + ":6379"
	}
	if prefix == "" {
		prefix = "rl:"
	}
	return &RedisLimiter{
		client: rdb.NewClient(&rdb.Options{
			Addr:     addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		prefix: prefix,
		max:    int64(max),
		window: window,
	}
}

// windowKey arma la clave del contador: una por key y por inicio de ventana.
// La ventana anterior no se borra; expira sola por TTL.
func (l *RedisLimiter) windowKey(key string, start time.Time) string {
	return fmt.Sprintf("%s%s:%d", l.prefix, strings.ReplaceAll(key, " ", "_"), start.Unix())
}

// Allow registra el hit en la ventana vigente y decide si pasa.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	now := time.Now().UTC()
	start := now.Truncate(l.window)
	counterKey := l.windowKey(key, start)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, counterKey)
	ttl := pipe.TTL(ctx, counterKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, err
	}

	// El primer hit de la ventana fija el expiry del contador.
	if incr.Val() == 1 {
		_ = l.client.Expire(ctx, counterKey, l.window).Err()
		ttl = l.client.TTL(ctx, counterKey)
	}

	hits := incr.Val()
	remaining := l.max - hits
	if remaining < 0 {
		remaining = 0
	}

	res := Result{
		Allowed:     hits <= l.max,
		Remaining:   remaining,
		CurrentHits: hits,
		WindowTTL:   ttl.Val(),
	}
	if !res.Allowed {
		res.RetryAfter = ttl.Val()
		if res.RetryAfter < 0 {
			// TTL ilegible: asumir el resto máximo posible.
			res.RetryAfter = l.window
		}
	}
	return res, nil
}
