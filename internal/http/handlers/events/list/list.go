// Package list реализует HTTP-обработчик публичного списка событий календаря.
//
// Секретарь и администратор могут сузить список фильтрами community, category и month;
// для остальных фильтры игнорируются. Дополнительно возвращаются события текущего дня,
// ближайшие события и, при параметре date, события выбранного дня.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/parish-calendar/internal/access"
	"github.com/magabrotheeeer/parish-calendar/internal/http/middlewarectx"
	"github.com/magabrotheeeer/parish-calendar/internal/http/response"
	"github.com/magabrotheeeer/parish-calendar/internal/lib/sl"
	"github.com/magabrotheeeer/parish-calendar/internal/models"
	"github.com/magabrotheeeer/parish-calendar/internal/services/events"
)

// Service описывает загрузку списка событий.
type Service interface {
	Load(ctx context.Context, useLocalFallback bool) (events.LoadResult, error)
}

// Handler обрабатывает GET /events.
type Handler struct {
	log           *slog.Logger
	service       Service
	upcomingLimit int
	now           func() time.Time
}

// New создает Handler.
func New(log *slog.Logger, service Service, upcomingLimit int) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		upcomingLimit: upcomingLimit,
		now:           time.Now,
	}
}

// Result: данные ответа.
type Result struct {
	Events   []models.Event `json:"events"`
	Today    []models.Event `json:"today"`
	Upcoming []models.Event `json:"upcoming"`
	Selected []models.Event `json:"selected,omitempty"`
}

// ServeHTTP godoc
// @Summary Список событий
// @Description Возвращает события календаря. Фильтры применяются только для секретаря и администратора.
// @Tags Events
// @Produce  json
// @Param community query string false "Община или all"
// @Param category query string false "Категория или all"
// @Param month query string false "Месяц YYYY-MM или all"
// @Param date query string false "День YYYY-MM-DD для списка selected"
// @Param local_fallback query bool false "Отдавать локальную копию при ошибке удалённого чтения (по умолчанию true)"
// @Success 200 {object} response.SyncResponse
// @Failure 500 {object} response.ErrorResponse "Отказ локального кэша"
// @Router /events [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.events.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	q := r.URL.Query()
	useLocal := q.Get("local_fallback") != "false"

	res, err := h.service.Load(r.Context(), useLocal)
	if err != nil {
		log.Error("failed to load events", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load events"))
		return
	}

	all := res.Events
	visible := all
	if access.IsManager(middlewarectx.SubjectFrom(r.Context())) {
		visible = events.Filter{
			Community: q.Get("community"),
			Category:  q.Get("category"),
			Month:     q.Get("month"),
		}.Apply(all)
	}

	now := h.now()
	result := Result{
		Events:   visible,
		Today:    events.OnDate(all, now.Format("2006-01-02")),
		Upcoming: events.Upcoming(all, now, h.upcomingLimit),
	}
	if date := q.Get("date"); date != "" {
		result.Selected = events.OnDate(visible, date)
	}

	log.Debug("events listed", slog.Int("count", len(visible)), sl.Synced(res.Synced))
	render.JSON(w, r, response.Synced(result, res.Synced, res.Err))
}
