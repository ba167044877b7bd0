package server

import (
	"net"
	"net/http"
	"net/netip"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"devis/internal/quote"
)

type RouterConfig struct {
	AdminAPIKey    string
	RateLimiter    *IPRateLimiter
	TrustedProxies []netip.Prefix
}

func NewRouter(module *quote.Module, cfg RouterConfig, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RealIP(cfg.TrustedProxies))
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/api/pricing/catalog", module.Pricing.Catalog)

	r.Group(func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(RateLimit(cfg.RateLimiter, logger))
		}
		r.Post("/api/pricing/estimate", module.Pricing.Estimate)
		r.Post("/api/pricing/document", module.Pricing.Document)
		r.Post("/api/devis", module.Quotes.Submit)
		r.Post("/api/devis/{devisNumber}/signature", module.Quotes.Sign)
	})

	r.Get("/devis/{devisNumber}/action", module.Actions.Apply)

	if cfg.AdminAPIKey != "" {
		r.Route("/api/admin/devis", func(r chi.Router) {
			r.Use(AdminKey(cfg.AdminAPIKey))
			r.Get("/", module.Admin.List)
			r.Get("/stats", module.Admin.Stats)
			r.Get("/{devisNumber}", module.Admin.Get)
		})
	} else {
		logger.Info("ADMIN_API_KEY not set, admin routes disabled")
	}

	return r
}

func remoteHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
