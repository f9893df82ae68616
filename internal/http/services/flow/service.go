package flow

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/dropDatabas3/idgate/internal/audit"
	"github.com/dropDatabas3/idgate/internal/crm"
	"github.com/dropDatabas3/idgate/internal/identity"
	"github.com/dropDatabas3/idgate/internal/metrics"
	"github.com/dropDatabas3/idgate/internal/oauth/provider"
	"github.com/dropDatabas3/idgate/internal/observability/logger"
	tokens "github.com/dropDatabas3/idgate/internal/security/token"
	"github.com/dropDatabas3/idgate/internal/session"
	"github.com/dropDatabas3/idgate/internal/util"
)

// Deps contiene las dependencias del flow service.
type Deps struct {
	Provider     *provider.Client
	Codec        *session.Codec
	Guard        *session.StateGuard
	Orchestrator *crm.Orchestrator
	Audit        audit.Recorder

	// StrictIDToken: true aborta el callback cuando el id_token no valida.
	// false (default observado del proveedor) degrada a warning.
	StrictIDToken bool
}

// Service drives the login flow: start, callback state machine, CRM
// confirmation, logout. All outcomes are explicit Result values.
type Service struct {
	deps Deps
}

// NewService crea el flow service.
func NewService(deps Deps) *Service {
	if deps.Audit == nil {
		deps.Audit = audit.NewLogRecorder()
	}
	return &Service{deps: deps}
}

// Start opens a new login attempt: fresh state, nonce and PKCE pair, sealed
// for cookie transport, plus the provider authorization URL.
func (s *Service) Start(ctx context.Context) (*StartResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("flow"),
		logger.Op("Start"),
	)

	state := tokens.GenerateState()
	nonce := tokens.GenerateNonce()
	pkce := tokens.GeneratePKCE()

	stateTok, err := s.deps.Codec.SealState(session.StateKindCSRF, state)
	if err != nil {
		return nil, err
	}
	nonceTok, err := s.deps.Codec.SealState(session.StateKindNonce, nonce)
	if err != nil {
		return nil, err
	}
	verifierTok, err := s.deps.Codec.SealState(session.StateKindVerifier, pkce.Verifier)
	if err != nil {
		return nil, err
	}

	metrics.LoginsStarted.Inc()
	s.deps.Audit.Record(ctx, audit.EventLoginStarted, map[string]any{
		"state_prefix": util.MaskSecret(state),
	})
	log.Info("login flow started", logger.StatePrefix(util.MaskSecret(state)))

	return &StartResult{
		AuthURL:       s.deps.Provider.AuthURL(state, nonce, pkce.Challenge),
		StateToken:    stateTok,
		NonceToken:    nonceTok,
		VerifierToken: verifierTok,
	}, nil
}

// Callback runs the state machine for one provider callback:
//
//	CSRF check → single-use consumption → code exchange → advisory id_token
//	validation → userinfo → normalize → session seal
//
// The CSRF check runs before anything touches the network: a mismatched state
// terminates the attempt with zero provider calls.
func (s *Service) Callback(ctx context.Context, in CallbackInput) *CallbackResult {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("flow"),
		logger.Op("Callback"),
	)

	fail := func(fe *FlowError) *CallbackResult {
		metrics.CallbackOutcomes.WithLabelValues(fe.Category).Inc()
		s.deps.Audit.Record(ctx, audit.EventFlowFailed, map[string]any{
			"category": fe.Category,
			"step":     "callback",
		})
		log.Warn("callback rejected",
			logger.Category(fe.Category),
			logger.Err(fe),
		)
		return &CallbackResult{Result: *failed(fe)}
	}

	// Paso 1: abrir la cookie de state. Ausente/alterada/vencida = el intento
	// ya no existe.
	expectedState, ok := s.deps.Codec.OpenState(session.StateKindCSRF, in.StateToken)
	if !ok {
		return fail(newFlowError(CategoryExpiredAuthState, "login attempt expired or missing", nil))
	}

	// Paso 2: CSRF. Comparación en tiempo constante; ante mismatch no se toca
	// la red.
	if subtle.ConstantTimeCompare([]byte(expectedState), []byte(in.State)) != 1 {
		return fail(newFlowError(CategoryCSRFMismatch, "state parameter does not match", nil))
	}

	// Paso 3: consumo único. El primer callback con este state gana; replays
	// concurrentes o posteriores mueren aquí, haya tenido éxito o no el
	// primero.
	used, err := s.deps.Guard.Consume(ctx, expectedState)
	if err != nil {
		// Store degradado: preferimos disponibilidad; la cookie igual se
		// invalida al responder.
		log.Warn("state guard unavailable, continuing", logger.Err(err))
	} else if !used {
		return fail(newFlowError(CategoryExpiredAuthState, "login attempt already used", nil))
	}

	// Paso 4: el proveedor reportó error en el redirect (denegación, etc.).
	if in.ErrorCode != "" {
		return fail(newFlowError(CategoryTokenExchange, "provider returned "+in.ErrorCode, nil))
	}
	if in.Code == "" {
		return fail(newFlowError(CategoryTokenExchange, "missing authorization code", nil))
	}

	nonce, ok := s.deps.Codec.OpenState(session.StateKindNonce, in.NonceToken)
	if !ok {
		return fail(newFlowError(CategoryExpiredAuthState, "nonce missing or expired", nil))
	}
	verifier, ok := s.deps.Codec.OpenState(session.StateKindVerifier, in.VerifierToken)
	if !ok {
		return fail(newFlowError(CategoryExpiredAuthState, "verifier missing or expired", nil))
	}

	// Paso 5: intercambio de código (con retry/backoff/pin interno).
	start := time.Now()
	tokenSet, err := s.deps.Provider.ExchangeCode(ctx, in.Code, verifier)
	metrics.ProviderRequestDuration.WithLabelValues("exchange").Observe(time.Since(start).Seconds())
	if err != nil {
		detail := "token exchange failed"
		var exErr *provider.ExchangeError
		if errors.As(err, &exErr) {
			detail = "token exchange failed (" + string(exErr.Kind) + ")"
		}
		return fail(newFlowError(CategoryTokenExchange, detail, err))
	}

	// Paso 6: validación del id_token. Advisory salvo StrictIDToken: el
	// proveedor observado emite tokens con fallas de firma conocidas y el
	// perfil se obtiene de userinfo, no de los claims.
	var claims *provider.Claims
	if tokenSet.IDToken != "" {
		start = time.Now()
		claims, err = s.deps.Provider.VerifyIDToken(ctx, tokenSet.IDToken, nonce)
		metrics.ProviderRequestDuration.WithLabelValues("verify").Observe(time.Since(start).Seconds())
		if err != nil {
			if s.deps.StrictIDToken {
				return fail(newFlowError(CategoryTokenValidation, "id token rejected", err))
			}
			log.Warn("id token validation failed, continuing",
				logger.Category(CategoryTokenValidation),
				logger.Err(err),
			)
		}
	}

	// Paso 7: userinfo es la fuente del perfil.
	start = time.Now()
	profile, err := s.deps.Provider.FetchUserInfo(ctx, tokenSet.AccessToken)
	metrics.ProviderRequestDuration.WithLabelValues("userinfo").Observe(time.Since(start).Seconds())
	if err != nil {
		return fail(newFlowError(CategoryProfileFetch, "profile fetch failed", err))
	}

	// El ACR verificado complementa al perfil cuando userinfo no lo trae.
	if claims != nil && claims.ACR != "" {
		if _, present := profile["acr"]; !present {
			profile["acr"] = claims.ACR
		}
	}

	id := identity.Normalize(profile)

	sess := &session.Session{
		Identity:    id,
		AccessToken: tokenSet.AccessToken,
		IDToken:     tokenSet.IDToken,
	}
	sessionToken, err := s.deps.Codec.Seal(sess)
	if err != nil {
		return fail(newFlowError(CategoryTokenValidation, "session seal failed", err))
	}

	metrics.CallbackOutcomes.WithLabelValues("success").Inc()
	log.Info("callback completed",
		logger.Subject(id.Subject),
		logger.Tier(string(id.Tier)),
	)

	return &CallbackResult{
		Result: *rendered("confirm", map[string]any{
			"name": id.FullName,
			"tier": string(id.Tier),
		}),
		SessionToken: sessionToken,
	}
}

// Confirm drives the CRM orchestration for an authenticated session and
// returns the one-time direct-login redirect.
func (s *Service) Confirm(ctx context.Context, sess *session.Session) *Result {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("flow"),
		logger.Op("Confirm"),
		logger.Subject(sess.Identity.Subject),
	)

	fail := func(fe *FlowError) *Result {
		metrics.ConfirmOutcomes.WithLabelValues(fe.Category).Inc()
		s.deps.Audit.Record(ctx, audit.EventFlowFailed, map[string]any{
			"category": fe.Category,
			"step":     "confirm",
			"sub":      sess.Identity.Subject,
		})
		log.Warn("confirmation rejected",
			logger.Category(fe.Category),
			logger.Err(fe),
		)
		return failed(fe)
	}

	start := time.Now()
	result, err := s.deps.Orchestrator.Login(ctx, sess.Identity)
	metrics.CRMRequestDuration.WithLabelValues("login").Observe(time.Since(start).Seconds())
	if err != nil {
		var tierErr *crm.TierError
		if errors.As(err, &tierErr) {
			s.deps.Audit.Record(ctx, audit.EventTierRejected, map[string]any{
				"sub":    sess.Identity.Subject,
				"tier":   string(sess.Identity.Tier),
				"reason": string(tierErr.Reason),
			})
		}
		return fail(classifyCRMError(err))
	}

	if result.Registered {
		metrics.AccountsRegistered.Inc()
		s.deps.Audit.Record(ctx, audit.EventAccountRegistered, map[string]any{
			"account_id": result.Account.ID,
			"sub":        sess.Identity.Subject,
			"tier":       string(sess.Identity.Tier),
		})
	}
	if !result.LinkDegraded {
		s.deps.Audit.Record(ctx, audit.EventAccountLinked, map[string]any{
			"account_id": result.Account.ID,
			"sub":        sess.Identity.Subject,
		})
	}

	metrics.ConfirmOutcomes.WithLabelValues("success").Inc()
	s.deps.Audit.Record(ctx, audit.EventLoginCompleted, map[string]any{
		"account_id": result.Account.ID,
		"sub":        sess.Identity.Subject,
		"tier":       string(sess.Identity.Tier),
		"registered": result.Registered,
	})
	log.Info("login confirmed",
		logger.AccountID(result.Account.ID),
		logger.Bool("registered", result.Registered),
	)

	return redirectTo(result.URL)
}

// Logout returns the provider logout redirect; the controller clears cookies.
func (s *Service) Logout(ctx context.Context) *Result {
	logger.From(ctx).Info("logout",
		logger.Layer("service"),
		logger.Component("flow"),
	)
	return redirectTo(s.deps.Provider.LogoutURL())
}

// classifyCRMError mapea errores del orquestador a categorías estables.
func classifyCRMError(err error) *FlowError {
	var tierErr *crm.TierError
	if errors.As(err, &tierErr) {
		if tierErr.Reason == crm.TierReasonUnknown {
			return newFlowError(CategoryUnknownAccountType, tierErr.Message, err)
		}
		return newFlowError(CategoryInsufficientTier, tierErr.Message, err)
	}

	var regErr *crm.RegistrationError
	if errors.As(err, &regErr) {
		return newFlowError(CategoryCRMRegistration, "registration failed ("+string(regErr.Category)+")", err)
	}

	var urlErr *crm.LoginURLError
	if errors.As(err, &urlErr) {
		return newFlowError(CategoryCRMLoginURL, "could not issue login url", err)
	}

	return newFlowError(CategoryCRMLookup, "account resolution failed", err)
}
