// Package list реализует HTTP-обработчик списка профилей сотрудников.
package list

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/parish-calendar/internal/http/response"
	"github.com/magabrotheeeer/parish-calendar/internal/lib/sl"
	"github.com/magabrotheeeer/parish-calendar/internal/models"
	"github.com/magabrotheeeer/parish-calendar/internal/services/profiles"
)

// Service описывает получение профилей.
type Service interface {
	List(ctx context.Context) ([]*models.Profile, error)
}

// Handler обрабатывает GET /profiles.
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
// @Summary Список профилей
// @Description Все зарегистрированные сотрудники, по имени. Только для администратора.
// @Tags Profiles
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.OKResponse
// @Failure 401 {object} response.RedirectResponse
// @Failure 403 {object} response.RedirectResponse
// @Failure 503 {object} response.ErrorResponse "Хранилище профилей не настроено"
// @Failure 500 {object} response.ErrorResponse
// @Router /profiles [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.profiles.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	list, err := h.service.List(r.Context())
	if err != nil {
		if errors.Is(err, profiles.ErrUnavailable) {
			log.Warn("profile storage unavailable", sl.Err(err))
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("profiles are unavailable"))
			return
		}
		log.Error("failed to list profiles", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list profiles"))
		return
	}

	log.Info("profiles listed", slog.Int("count", len(list)))
	render.JSON(w, r, response.OKWithData(list))
}
