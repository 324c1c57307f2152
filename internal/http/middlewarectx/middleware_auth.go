// Package middlewarectx содержит HTTP middleware для разрешения сессии по JWT,
// проверки ролей, ограничения частоты запросов и сбора метрик.
//
// JWTMiddleware не отклоняет запросы без токена: он только кладёт в контекст
// субъекта сессии, если токен валиден. Решение о доступе принимает RequireRole.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/parish-calendar/internal/access"
	"github.com/magabrotheeeer/parish-calendar/internal/lib/sl"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// SubjectKey: ключ субъекта сессии в контексте.
const SubjectKey Key = "subject"

// Service описывает интерфейс сервиса для валидации JWT токена.
type Service interface {
	ValidateToken(ctx context.Context, token string) (*access.Subject, error)
}

// WithSubject возвращает контекст с субъектом сессии.
func WithSubject(ctx context.Context, s *access.Subject) context.Context {
	return context.WithValue(ctx, SubjectKey, s)
}

// SubjectFrom возвращает субъекта сессии или nil, если сессии нет.
func SubjectFrom(ctx context.Context) *access.Subject {
	s, _ := ctx.Value(SubjectKey).(*access.Subject)
	return s
}

// JWTMiddleware возвращает HTTP middleware, который разрешает сессию по заголовку Authorization.
//
// Если токен валиден, субъект сессии добавляется в контекст запроса.
// Отсутствующий или невалидный токен означает отсутствие сессии.
func JWTMiddleware(authClient Service, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			subject, err := authClient.ValidateToken(r.Context(), tokenStr)
			if err != nil {
				log.Warn("invalid or expired token",
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					sl.Err(err),
				)
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSubject(r.Context(), subject)))
		})
	}
}
