package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apphandler "childminder/internal/application/handler"
	loginhandler "childminder/internal/login/handler"
	paymenthandler "childminder/internal/payment/handler"
	"childminder/internal/platform/config"
	"childminder/internal/platform/metrics"
	"childminder/internal/platform/ratelimit"
	reviewhandler "childminder/internal/review/handler"
	"childminder/pkg/platform/httputil"
	"childminder/pkg/platform/middleware/admin"
	"childminder/pkg/platform/middleware/auth"
	"childminder/pkg/platform/middleware/metadata"
	request "childminder/pkg/platform/middleware/request"
	"childminder/pkg/platform/middleware/requesttime"
)

const requestTimeout = 30 * time.Second

func newRouter(cfg config.Config, in *infra, svc *services, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(log))
	r.Use(request.Logger(log))
	r.Use(request.Timeout(requestTimeout))
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(metrics.New().Middleware)

	r.Handle("/metrics", metrics.Handler())
	r.Get("/healthz", healthz(in))

	requireSession := auth.RequireSession(svc.tokens, svc.revoked, log)
	requireAdmin := admin.RequireAdminToken(cfg.Server.AdminToken, log)

	var limits ratelimit.Store = ratelimit.NewInMemoryStore()
	if in.redis != nil {
		limits = ratelimit.NewRedis(in.redis.Client)
	}
	login := loginhandler.New(svc.login, requireSession, log, cfg.Server.SecureCookies)
	r.Group(func(r chi.Router) {
		r.Use(ratelimit.PerIP(limits, "login", cfg.Login.IPLimit, cfg.Login.IPWindow, log))
		login.RegisterPublic(r)
	})
	login.RegisterSession(r)
	apphandler.New(svc.apps, requireSession, log).Register(r)
	paymenthandler.New(svc.payment, requireSession, log).Register(r)
	reviewhandler.New(svc.review, requireAdmin, log).Register(r)
	return r
}

// healthz reports unavailable when a configured backing service is down.
func healthz(in *infra) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		checks := map[string]string{}
		healthy := true
		record := func(name string, err error) {
			if err != nil {
				checks[name] = err.Error()
				healthy = false
				return
			}
			checks[name] = "ok"
		}
		if in.db != nil {
			record("postgres", in.db.PingContext(ctx))
		}
		if in.redis != nil {
			record("redis", in.redis.Health(ctx))
		}
		if in.producer != nil {
			record("kafka", in.producer.Health(ctx))
		}
		status := http.StatusOK
		if !healthy {
			status = http.StatusServiceUnavailable
		}
		httputil.WriteJSON(w, status, checks)
	}
}
