// Package remove реализует HTTP-обработчик удаления события календаря.
// Событие всегда удаляется из локальной копии; synced показывает результат удалённого удаления.
package remove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/parish-calendar/internal/http/response"
	"github.com/magabrotheeeer/parish-calendar/internal/lib/sl"
	"github.com/magabrotheeeer/parish-calendar/internal/services/events"
)

// Service описывает удаление события.
type Service interface {
	Delete(ctx context.Context, id string) (events.MutationResult, error)
}

// Handler обрабатывает DELETE /events/{id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удалить событие
// @Description Удаляет событие. Повторное удаление не ошибка.
// @Tags Events
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID события"
// @Success 200 {object} response.SyncResponse
// @Failure 500 {object} response.ErrorResponse "Отказ локального кэша"
// @Router /events/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.events.remove"
	id := chi.URLParam(r, "id")
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("id", id),
	)

	res, err := h.service.Delete(r.Context(), id)
	if err != nil {
		log.Error("failed to delete event", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not delete event"))
		return
	}

	log.Info("event deleted", sl.Synced(res.Synced))
	render.JSON(w, r, response.Synced(map[string]any{
		"events": res.Events,
	}, res.Synced, res.Err))
}
