// Package app es el composition root: construye todo el grafo de
// dependencias a partir de la configuración y expone el http.Handler listo
// para servir.
package app

import (
	"context"
	"net/http"

	"github.com/dropDatabas3/idgate/internal/audit"
	"github.com/dropDatabas3/idgate/internal/cache"
	"github.com/dropDatabas3/idgate/internal/config"
	"github.com/dropDatabas3/idgate/internal/crm"
	authctrl "github.com/dropDatabas3/idgate/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/idgate/internal/http/controllers/health"
	"github.com/dropDatabas3/idgate/internal/http/router"
	"github.com/dropDatabas3/idgate/internal/http/services/flow"
	"github.com/dropDatabas3/idgate/internal/metrics"
	"github.com/dropDatabas3/idgate/internal/oauth/provider"
	"github.com/dropDatabas3/idgate/internal/observability/logger"
	"github.com/dropDatabas3/idgate/internal/rate"
	"github.com/dropDatabas3/idgate/internal/security/sealer"
	"github.com/dropDatabas3/idgate/internal/session"
)

// App agrupa los recursos de proceso del gateway.
type App struct {
	Handler http.Handler

	cache cache.Client
	audit audit.Recorder
}

// New arma el gateway completo. Todo error acá es fatal: mejor no arrancar
// que arrancar a medias.
func New(ctx context.Context, cfg *config.Config, version string) (*App, error) {
	// Sellado de sesión/state.
	seal, err := sealer.New(cfg.Session.Secret)
	if err != nil {
		return nil, err
	}
	codec := session.NewCodec(seal, cfg.Session.TTL, cfg.Session.StateTTL)

	// Keyed store compartido (guard de single-use).
	cacheClient, err := cache.New(cache.Config{
		Driver:   cfg.Cache.Driver,
		Host:     cfg.Cache.Redis.Host,
		Port:     cfg.Cache.Redis.Port,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
		Prefix:   cfg.Cache.Redis.Prefix,
	})
	if err != nil {
		return nil, err
	}
	guard := session.NewStateGuard(cacheClient, cfg.Session.StateTTL)

	// Cliente del IdP upstream.
	providerClient, err := provider.New(provider.Config{
		ClientID:              cfg.Provider.ClientID,
		ClientSecret:          cfg.Provider.ClientSecret,
		RedirectURI:           cfg.Provider.RedirectURI,
		Scope:                 cfg.Provider.Scope,
		Issuer:                cfg.Provider.Issuer,
		AuthorizationEndpoint: cfg.Provider.AuthorizationEndpoint,
		TokenEndpoint:         cfg.Provider.TokenEndpoint,
		UserInfoEndpoint:      cfg.Provider.UserInfoEndpoint,
		JWKSEndpoint:          cfg.Provider.JWKSEndpoint,
		LogoutEndpoint:        cfg.Provider.LogoutEndpoint,
		ACRValues:             cfg.Provider.ACRValues,
		ExchangeTimeout:       cfg.Provider.ExchangeTimeout,
		HTTPTimeout:           cfg.Provider.HTTPTimeout,
	})
	if err != nil {
		return nil, err
	}

	// Cliente y orquestador CRM.
	crmClient, err := crm.NewClient(crm.ClientConfig{
		BaseURL:  cfg.CRM.BaseURL,
		APIToken: cfg.CRM.APIToken,
		Version:  cfg.CRM.Version,
		Timeout:  cfg.CRM.Timeout,
	})
	if err != nil {
		return nil, err
	}
	orchestrator := crm.NewOrchestrator(crmClient, crm.NewResolver(crmClient), crm.Policy{
		RequireNationalID:  cfg.CRM.RequireNationalID,
		DefaultCountry:     cfg.CRM.DefaultCountry,
		DefaultLocale:      cfg.CRM.DefaultLocale,
		DefaultNationality: cfg.CRM.DefaultNationality,
		PlaceholderDomain:  cfg.CRM.PlaceholderDomain,
		RedirectURL:        cfg.CRM.RedirectURL,
		LogoutURL:          cfg.CRM.LogoutURL,
	})

	// Audit: Postgres si hay DSN, log estructurado si no.
	auditRecorder := audit.NewLogRecorder()
	if cfg.Audit.PostgresDSN != "" {
		pgRecorder, err := audit.NewPostgresRecorder(ctx, cfg.Audit.PostgresDSN)
		if err != nil {
			// El sink de auditoría no tumba el gateway; degradamos al log.
			logger.L().Warn("postgres audit sink unavailable, using log sink", logger.Err(err))
		} else {
			auditRecorder = pgRecorder
		}
	}

	if err := metrics.Register(nil); err != nil {
		return nil, err
	}

	flowService := flow.NewService(flow.Deps{
		Provider:      providerClient,
		Codec:         codec,
		Guard:         guard,
		Orchestrator:  orchestrator,
		Audit:         auditRecorder,
		StrictIDToken: cfg.Provider.StrictIDToken,
	})

	authControllers := authctrl.New(authctrl.Deps{
		Flow:  flowService,
		Codec: codec,
		Cookies: authctrl.CookieConfig{
			SessionName: cfg.Session.CookieName,
			Path:        cfg.Session.Path,
			Secure:      cfg.Session.Secure || cfg.IsProd(),
		},
	})

	var loginLimiter rate.Limiter
	if cfg.Rate.Enabled {
		loginLimiter = newLoginLimiter(cfg)
	}

	handler := router.New(router.Deps{
		Auth: authControllers,
		Health: healthctrl.New(healthctrl.Deps{
			Cache:   cacheClient,
			Version: version,
		}),
		LoginLimiter: loginLimiter,
	})

	return &App{
		Handler: handler,
		cache:   cacheClient,
		audit:   auditRecorder,
	}, nil
}

// Close libera los recursos de proceso.
func (a *App) Close() {
	if a.audit != nil {
		a.audit.Close()
	}
	if a.cache != nil {
		_ = a.cache.Close()
	}
}
