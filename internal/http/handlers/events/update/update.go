// Package update реализует HTTP-обработчик изменения события календаря.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/parish-calendar/internal/http/response"
	"github.com/magabrotheeeer/parish-calendar/internal/lib/sl"
	"github.com/magabrotheeeer/parish-calendar/internal/models"
	"github.com/magabrotheeeer/parish-calendar/internal/services/events"
)

// Service описывает изменение события.
type Service interface {
	Update(ctx context.Context, id string, in models.EventInput) (events.MutationResult, error)
}

// Handler обрабатывает PUT /events/{id}.
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
// @Summary Изменить событие
// @Description Полностью заменяет поля события, идентификатор сохраняется.
// @Tags Events
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID события"
// @Param request body models.EventInput true "Новые данные события"
// @Success 200 {object} response.SyncResponse
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Событие не найдено"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Отказ локального кэша"
// @Router /events/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.events.update"
	id := chi.URLParam(r, "id")
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("id", id),
	)

	var req models.EventInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	res, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		if errors.Is(err, events.ErrValidation) {
			log.Info("event rejected", sl.Err(err))
			render.Status(r, http.StatusUnprocessableEntity)
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				render.JSON(w, r, response.ValidationError(verrs))
				return
			}
			render.JSON(w, r, response.Error("invalid event"))
			return
		}
		log.Error("failed to update event", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update event"))
		return
	}

	if res.Event == nil {
		log.Warn("event not found locally", sl.Err(res.Err))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("event not found"))
		return
	}

	log.Info("event updated", sl.Synced(res.Synced))
	render.JSON(w, r, response.Synced(res.Event, res.Synced, res.Err))
}
