package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/parish-calendar/internal/access"
	"github.com/magabrotheeeer/parish-calendar/internal/http/response"
)

// RequireRole пропускает запрос, если субъект сессии удовлетворяет хотя бы одной из ролей.
// Без ролей достаточно любой сессии.
// Отсутствие сессии даёт 401 с перенаправлением на вход, недостаточная роль: 403
// с перенаправлением на панель управления.
func RequireRole(log *slog.Logger, roles ...access.Role) func(http.Handler) http.Handler {
	required := access.Require(roles...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RequireRole"

			decision := access.Authorize(SubjectFrom(r.Context()), required, r.URL.RequestURI())
			switch decision.Outcome {
			case access.Allow:
				next.ServeHTTP(w, r)
				return
			case access.DenyNoSession:
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Redirect("authentication required", decision.Redirect, decision.From))
			default:
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Redirect("insufficient role", decision.Redirect, ""))
			}
			log.Info("access denied",
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("decision", decision.Outcome.String()),
				slog.String("path", r.URL.Path),
			)
		})
	}
}
