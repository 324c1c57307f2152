// Package parishcalendar собирает приложение календаря прихода и его маршруты.
package parishcalendar

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/parish-calendar/internal/access"
	"github.com/magabrotheeeer/parish-calendar/internal/config"
	"github.com/magabrotheeeer/parish-calendar/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/parish-calendar/internal/http/handlers/auth/me"
	"github.com/magabrotheeeer/parish-calendar/internal/http/handlers/events/create"
	"github.com/magabrotheeeer/parish-calendar/internal/http/handlers/events/list"
	"github.com/magabrotheeeer/parish-calendar/internal/http/handlers/events/options"
	"github.com/magabrotheeeer/parish-calendar/internal/http/handlers/events/remove"
	"github.com/magabrotheeeer/parish-calendar/internal/http/handlers/events/update"
	"github.com/magabrotheeeer/parish-calendar/internal/http/handlers/health"
	profileslist "github.com/magabrotheeeer/parish-calendar/internal/http/handlers/profiles/list"
	profilesupdate "github.com/magabrotheeeer/parish-calendar/internal/http/handlers/profiles/update"
	"github.com/magabrotheeeer/parish-calendar/internal/http/middlewarectx"
	"github.com/magabrotheeeer/parish-calendar/internal/services/auth"
	"github.com/magabrotheeeer/parish-calendar/internal/services/events"
	"github.com/magabrotheeeer/parish-calendar/internal/services/profiles"
)

// Services: зависимости, нужные маршрутам.
type Services struct {
	Events   *events.Store
	Auth     *auth.AuthService
	Profiles *profiles.Service
	Local    health.Pinger
	Remote   health.Pinger
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, svc Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middlewarectx.MetricsMiddleware(),
		middlewarectx.JWTMiddleware(svc.Auth, logger),
	)

	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Get("/events", list.New(logger, svc.Events, cfg.UpcomingLimit).ServeHTTP)
		r.With(middlewarectx.RateLimitMiddleware(logger, limiter)).
			Post("/login", login.New(logger, svc.Auth).ServeHTTP)

		// Любой вошедший сотрудник
		r.With(middlewarectx.RequireRole(logger)).Get("/me", me.ServeHTTP)

		// Управление событиями: секретарь и выше
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RequireRole(logger, access.RoleSecretary))
			r.Get("/events/options", options.New(logger, svc.Events, cfg.Communities).ServeHTTP)
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RateLimitMiddleware(logger, limiter))
				r.Post("/events", create.New(logger, svc.Events).ServeHTTP)
				r.Put("/events/{id}", update.New(logger, svc.Events).ServeHTTP)
				r.Delete("/events/{id}", remove.New(logger, svc.Events).ServeHTTP)
			})
		})

		// Профили: только администратор
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RequireRole(logger, access.RoleAdmin))
			r.Get("/profiles", profileslist.New(logger, svc.Profiles).ServeHTTP)
			r.Put("/profiles/{id}", profilesupdate.New(logger, svc.Profiles).ServeHTTP)
		})
	})

	r.Handle("/health", health.New(logger, svc.Local, svc.Remote, 2*time.Second))
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
