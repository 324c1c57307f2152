// Package create реализует HTTP-обработчик создания события календаря.
//
// Handler принимает JSON с полями события, подставляет текущий день при пустой дате
// и передаёт данные хранилищу событий. Сбой синхронизации не считается ошибкой запроса:
// событие сохраняется локально, а ответ содержит synced=false и уведомление.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/parish-calendar/internal/http/response"
	"github.com/magabrotheeeer/parish-calendar/internal/lib/sl"
	"github.com/magabrotheeeer/parish-calendar/internal/models"
	"github.com/magabrotheeeer/parish-calendar/internal/services/events"
)

// Service описывает создание события.
type Service interface {
	Create(ctx context.Context, in models.EventInput) (events.MutationResult, error)
}

// Handler обрабатывает POST /events.
type Handler struct {
	log     *slog.Logger
	service Service
	now     func() time.Time
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
		now:     time.Now,
	}
}

// ServeHTTP godoc
// @Summary Создать событие
// @Description Создает событие. Без даты событие назначается на текущий день.
// @Tags Events
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.EventInput true "Данные события"
// @Success 201 {object} response.SyncResponse
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.RedirectResponse "Нет сессии"
// @Failure 403 {object} response.RedirectResponse "Недостаточно прав"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Отказ локального кэша"
// @Router /events [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.events.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.EventInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if req.Date == "" {
		req.Date = h.now().Format("2006-01-02")
	}

	res, err := h.service.Create(r.Context(), req)
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
		log.Error("failed to create event", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create event"))
		return
	}

	if res.Err != nil {
		log.Warn("event saved locally only", slog.String("id", res.Event.ID), sl.Err(res.Err))
	} else {
		log.Info("event created", slog.String("id", res.Event.ID), sl.Synced(res.Synced))
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.Synced(res.Event, res.Synced, res.Err))
}
