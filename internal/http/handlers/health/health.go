// Package health отдаёт состояние локального кэша и удалённого хранилища.
// Недоступность удалённого хранилища не делает сервис нездоровым: события
// продолжают работать на локальной копии.
package health

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/parish-calendar/internal/http/response"
	"github.com/magabrotheeeer/parish-calendar/internal/lib/sl"
	"github.com/magabrotheeeer/parish-calendar/internal/storage/repository"
)

const (
	stateOK            = "ok"
	stateUnavailable   = "unavailable"
	stateNotConfigured = "not configured"
)

// Pinger проверяет доступность зависимости.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler обрабатывает GET /health.
type Handler struct {
	log     *slog.Logger
	local   Pinger
	remote  Pinger
	timeout time.Duration
}

// New создает Handler.
func New(log *slog.Logger, local, remote Pinger, timeout time.Duration) *Handler {
	return &Handler{
		log:     log,
		local:   local,
		remote:  remote,
		timeout: timeout,
	}
}

// ServeHTTP godoc
// @Summary Проверка состояния
// @Tags Health
// @Produce  json
// @Success 200 {object} response.OKResponse
// @Failure 503 {object} response.OKResponse "Локальный кэш недоступен"
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"
	log := h.log.With(slog.String("op", op))

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	local := stateOK
	if err := h.local.Ping(ctx); err != nil {
		log.Error("local cache ping failed", sl.Err(err))
		local = stateUnavailable
	}

	remote := stateOK
	if err := h.remote.Ping(ctx); err != nil {
		if errors.Is(err, repository.ErrNotConfigured) {
			remote = stateNotConfigured
		} else {
			log.Warn("remote storage ping failed", sl.Err(err))
			remote = stateUnavailable
		}
	}

	if local != stateOK {
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, response.OKWithData(map[string]any{
		"local":  local,
		"remote": remote,
	}))
}
