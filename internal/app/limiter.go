package app

import (
	"github.com/dropDatabas3/idgate/internal/cache"
	"github.com/dropDatabas3/idgate/internal/config"
	"github.com/dropDatabas3/idgate/internal/rate"
)

// newLoginLimiter elige el backend del rate limit de /auth/login según el
// driver de cache: redis cuando hay despliegue multi-nodo, memoria si no.
func newLoginLimiter(cfg *config.Config) rate.Limiter {
	if cfg.Cache.Driver == "redis" {
		return rate.NewRedisLimiter(cache.Config{
			Host:     cfg.Cache.Redis.Host,
			Port:     cfg.Cache.Redis.Port,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		}, "rl:login:", cfg.Rate.Login.Limit, cfg.Rate.Login.Window)
	}
	return rate.NewMemoryLimiter(cfg.Rate.Login.Limit, cfg.Rate.Login.Window)
}
