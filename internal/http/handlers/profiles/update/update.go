// Package update реализует HTTP-обработчик изменения имени и роли сотрудника.
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

	"github.com/magabrotheeeer/parish-calendar/internal/access"
	"github.com/magabrotheeeer/parish-calendar/internal/http/response"
	"github.com/magabrotheeeer/parish-calendar/internal/lib/sl"
	"github.com/magabrotheeeer/parish-calendar/internal/models"
	"github.com/magabrotheeeer/parish-calendar/internal/services/profiles"
	"github.com/magabrotheeeer/parish-calendar/internal/storage/repository"
)

// Service описывает изменение профиля.
type Service interface {
	Update(ctx context.Context, id string, upd models.ProfileUpdate) (*models.Profile, error)
}

// Handler обрабатывает PUT /profiles/{id}.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: models.NewValidator(),
	}
}

// ServeHTTP godoc
// @Summary Изменить профиль
// @Description Меняет имя и роль сотрудника. Только для администратора.
// @Tags Profiles
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID профиля"
// @Param request body models.ProfileUpdate true "Имя и роль"
// @Success 200 {object} response.OKResponse
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Профиль не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 503 {object} response.ErrorResponse "Хранилище профилей не настроено"
// @Router /profiles/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.profiles.update"
	id := chi.URLParam(r, "id")
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("id", id),
	)

	var req models.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			render.JSON(w, r, response.ValidationError(verrs))
			return
		}
		render.JSON(w, r, response.Error("invalid request"))
		return
	}

	p, err := h.service.Update(r.Context(), id, req)
	switch {
	case errors.Is(err, access.ErrUnknownRole):
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("unknown role"))
		return
	case errors.Is(err, repository.ErrProfileNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("profile not found"))
		return
	case errors.Is(err, profiles.ErrUnavailable):
		log.Warn("profile storage unavailable", sl.Err(err))
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("profiles are unavailable"))
		return
	case err != nil:
		log.Error("failed to update profile", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update profile"))
		return
	}

	log.Info("profile updated", slog.String("role", p.Role))
	render.JSON(w, r, response.OKWithData(p))
}
