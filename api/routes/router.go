package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/luminastudio/lumina-backend/api/controllers"
	"github.com/luminastudio/lumina-backend/api/middleware"
	"github.com/luminastudio/lumina-backend/internal/auth"
	"github.com/luminastudio/lumina-backend/internal/paymentconfigs"
	"github.com/luminastudio/lumina-backend/internal/proposals"
	"github.com/luminastudio/lumina-backend/internal/templates"
	"github.com/luminastudio/lumina-backend/pkg/auth/session"
	"github.com/luminastudio/lumina-backend/pkg/config"
	"github.com/luminastudio/lumina-backend/pkg/db"
	"github.com/luminastudio/lumina-backend/pkg/logger"
	pkgredis "github.com/luminastudio/lumina-backend/pkg/redis"
	"github.com/luminastudio/lumina-backend/pkg/storage/gcs"
)

// RedisStore is the slice of the redis client the HTTP layer needs:
// idempotency replay, rate-limit counters, and readiness pings.
type RedisStore interface {
	pkgredis.IdempotencyStore
	Ping(ctx context.Context) error
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          RedisStore
	GCS            gcs.Pinger
	SessionChecker session.AccessSessionChecker

	AuthService          auth.Service
	ProposalService      proposals.Service
	TemplateService      templates.Service
	PaymentConfigService paymentconfigs.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis, deps.GCS))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.With(
			middleware.AuthRateLimit(registerPolicy, deps.Redis, logg),
			middleware.Idempotency(deps.Redis, logg),
		).Post("/register", controllers.AuthRegister(deps.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.AuthService, cfg.JWT, logg))
	})

	// Capability-token surface: the token in the path is the only credential.
	r.Route("/api/public/propostas/{token}", func(r chi.Router) {
		r.Use(middleware.PublicRateLimit(
			deps.Redis,
			cfg.Proposals.PublicRateLimitIPLimit,
			cfg.Proposals.PublicRateLimitWindow,
			logg,
		))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Get("/", controllers.PublicProposalView(deps.ProposalService, logg))
		r.Get("/contract", controllers.PublicContract(deps.ProposalService, logg))
		r.Post("/approve", controllers.PublicApprove(deps.ProposalService, logg))
		r.Post("/request-changes", controllers.PublicRequestChanges(deps.ProposalService, logg))
		r.Post("/client-data", controllers.PublicClientData(deps.ProposalService, logg))
		r.Post("/sign", controllers.PublicSign(deps.ProposalService, logg))
		r.Post("/receipt", controllers.PublicReceipt(deps.ProposalService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionChecker, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Route("/proposals", func(r chi.Router) {
			r.Post("/", controllers.CreateProposal(deps.ProposalService, logg))
			r.Get("/", controllers.ListProposals(deps.ProposalService, logg))
			r.Route("/{proposalId}", func(r chi.Router) {
				r.Get("/", controllers.GetProposal(deps.ProposalService, logg))
				r.Put("/", controllers.UpdateProposal(deps.ProposalService, logg))
				r.Delete("/", controllers.DeleteProposal(deps.ProposalService, logg))
				r.Post("/send", controllers.SendProposal(deps.ProposalService, logg))
				r.Post("/cancel", controllers.CancelProposal(deps.ProposalService, logg))
				r.Post("/confirm-payment", controllers.ConfirmProposalPayment(deps.ProposalService, logg))
				r.Post("/apply-template/{templateId}", controllers.ApplyTemplate(deps.TemplateService, deps.ProposalService, logg))
			})
		})

		r.Route("/templates", func(r chi.Router) {
			r.Post("/", controllers.CreateTemplate(deps.TemplateService, logg))
			r.Get("/", controllers.ListTemplates(deps.TemplateService, logg))
			r.Route("/{templateId}", func(r chi.Router) {
				r.Get("/", controllers.GetTemplate(deps.TemplateService, logg))
				r.Put("/", controllers.UpdateTemplate(deps.TemplateService, logg))
				r.Delete("/", controllers.DeleteTemplate(deps.TemplateService, logg))
			})
		})

		r.Route("/payment-configs", func(r chi.Router) {
			r.Post("/", controllers.CreatePaymentConfig(deps.PaymentConfigService, logg))
			r.Get("/", controllers.ListPaymentConfigs(deps.PaymentConfigService, logg))
			r.Route("/{configId}", func(r chi.Router) {
				r.Put("/", controllers.UpdatePaymentConfig(deps.PaymentConfigService, logg))
				r.Delete("/", controllers.DeletePaymentConfig(deps.PaymentConfigService, logg))
			})
		})
	})

	return r
}
