// Package me отдаёт данные текущей сессии для панели управления.
package me

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/parish-calendar/internal/access"
	"github.com/magabrotheeeer/parish-calendar/internal/http/middlewarectx"
	"github.com/magabrotheeeer/parish-calendar/internal/http/response"
)

// ServeHTTP godoc
// @Summary Текущая сессия
// @Description Имя и роль вошедшего сотрудника и признак доступа к управлению событиями.
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.OKResponse
// @Failure 401 {object} response.RedirectResponse
// @Router /me [get]
func ServeHTTP(w http.ResponseWriter, r *http.Request) {
	subject := middlewarectx.SubjectFrom(r.Context())
	if subject == nil {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Redirect("authentication required", "/login", r.URL.RequestURI()))
		return
	}
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id":      subject.ID,
		"name":    subject.Name,
		"role":    subject.Role,
		"manager": access.IsManager(subject),
	}))
}
