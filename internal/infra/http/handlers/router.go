package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/xavierca1/ligue-leads/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-leads/internal/ratelimit"
)

// Policies são as faixas de rate limit de cada grupo de rota.
type Policies struct {
	Global       ratelimit.Policy
	LeadCreation ratelimit.Policy
	LeadLookup   ratelimit.Policy
	AdminQuery   ratelimit.Policy
}

func DefaultPolicies() Policies {
	return Policies{
		Global:       ratelimit.GlobalPolicy(),
		LeadCreation: ratelimit.LeadCreationPolicy(),
		LeadLookup:   ratelimit.LeadLookupPolicy(),
		AdminQuery:   ratelimit.AdminQueryPolicy(),
	}
}

type RouterConfig struct {
	Leads    *LeadHandler
	Health   *HealthHandler
	Limiter  *ratelimit.Limiter
	Policies Policies
	// ClientIP é a chave do rate limit. Nil usa ratelimit.ClientIP.
	ClientIP       ratelimit.KeyFunc
	AllowedOrigins []string
	// Metrics é o handler do /metrics (promhttp). Nil desliga a rota.
	Metrics    http.Handler
	Production bool
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(middleware.Recoverer(cfg.Production))
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With", "Authorization"},
		ExposedHeaders:   []string{"Retry-After", "RateLimit-Limit", "RateLimit-Remaining", "RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)

	if cfg.Health != nil {
		r.Get("/health", cfg.Health.Handle)
	}
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics)
	}

	limit := func(p ratelimit.Policy) func(http.Handler) http.Handler {
		return cfg.Limiter.Middleware(p, cfg.ClientIP, middleware.RecordRateLimitRejection)
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(limit(cfg.Policies.Global))

		api.Route("/leads", func(leads chi.Router) {
			h := cfg.Leads

			leads.With(limit(cfg.Policies.LeadCreation)).Post("/", h.CaptureLead)
			leads.With(limit(cfg.Policies.AdminQuery)).Get("/", h.ListLeads)

			leads.With(limit(cfg.Policies.LeadLookup)).Get("/check/email", h.CheckEmail)
			leads.With(limit(cfg.Policies.LeadLookup)).Get("/check/whatsapp", h.CheckWhatsApp)

			leads.With(limit(cfg.Policies.AdminQuery)).Get("/stats/dashboard", h.Stats)
			leads.Get("/health/check", h.ServiceHealth)

			leads.Group(func(admin chi.Router) {
				admin.Use(limit(cfg.Policies.AdminQuery))
				admin.Get("/{id}", h.GetLead)
				admin.Put("/{id}", h.UpdateLead)
				admin.Delete("/{id}", h.DeleteLead)
			})
		})
	})

	return r
}
