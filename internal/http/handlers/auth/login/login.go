// Package login реализует HTTP-обработчик входа сотрудника прихода.
//
// Обработчик декодирует и валидирует учётные данные, делегирует проверку
// пароля сервису аутентификации и возвращает JWT вместе с данными сессии.
package login

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/parish-calendar/internal/access"
	"github.com/magabrotheeeer/parish-calendar/internal/http/response"
	"github.com/magabrotheeeer/parish-calendar/internal/lib/sl"
	"github.com/magabrotheeeer/parish-calendar/internal/models"
	"github.com/magabrotheeeer/parish-calendar/internal/services/auth"
)

// Service описывает интерфейс бизнес-логики аутентификации.
type Service interface {
	Login(ctx context.Context, email, password string) (string, *access.Subject, error)
}

// Handler обрабатывает HTTP-запросы для авторизации.
type Handler struct {
	log        *slog.Logger        // Логгер для записи операций и ошибок
	authClient Service             // Сервис аутентификации
	validate   *validator.Validate // Валидатор для проверки входных данных
}

// New создает новый экземпляр Handler с указанными логгером и сервисом аутентификации.
func New(log *slog.Logger, authClient Service) *Handler {
	return &Handler{
		log:        log,
		authClient: authClient,
		validate:   models.NewValidator(),
	}
}

// ServeHTTP godoc
// @Summary Вход сотрудника
// @Description Проверяет почту и пароль. Возвращает JWT и данные сессии.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body models.Credentials true "Учетные данные"
// @Success 200 {object} map[string]any "Успешная авторизация"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 503 {object} response.ErrorResponse "Хранилище профилей не настроено"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
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

	token, subject, err := h.authClient.Login(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		log.Info("login rejected", slog.String("email", req.Email))
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid credentials"))
		return
	case errors.Is(err, auth.ErrUnavailable):
		log.Warn("login without profile storage", sl.Err(err))
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("sign-in is unavailable"))
		return
	case err != nil:
		log.Error("login failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("login success", slog.String("id", subject.ID), slog.String("role", subject.Role))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"token": token,
		"id":    subject.ID,
		"name":  subject.Name,
		"role":  subject.Role,
	}))
}
