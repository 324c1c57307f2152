// Package options отдаёт значения для фильтров календаря.
package options

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/parish-calendar/internal/http/response"
	"github.com/magabrotheeeer/parish-calendar/internal/lib/sl"
	"github.com/magabrotheeeer/parish-calendar/internal/services/events"
)

// Service описывает загрузку списка событий.
type Service interface {
	Load(ctx context.Context, useLocalFallback bool) (events.LoadResult, error)
}

// Handler обрабатывает GET /events/options.
type Handler struct {
	log         *slog.Logger
	service     Service
	communities []string
	now         func() time.Time
}

// New создает Handler. communities: общины прихода, доступные в фильтре всегда.
func New(log *slog.Logger, service Service, communities []string) *Handler {
	return &Handler{
		log:         log,
		service:     service,
		communities: communities,
		now:         time.Now,
	}
}

// ServeHTTP godoc
// @Summary Значения фильтров
// @Description Общины, категории и месяцы, встречающиеся в календаре.
// @Tags Events
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.SyncResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /events/options [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.events.options"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	res, err := h.service.Load(r.Context(), true)
	if err != nil {
		log.Error("failed to load events", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load events"))
		return
	}

	render.JSON(w, r, response.Synced(events.Options(res.Events, h.communities, h.now()), res.Synced, res.Err))
}
