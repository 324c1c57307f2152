// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков. Пакет упрощает возврат
// успешных ответов, ошибок, сообщений валидации и признака синхронизации.
package response

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator"
)

const (
	// StatusOK: значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError: значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// NoticeNotSynced: ненавязчивое уведомление о том, что изменение сохранено только локально.
const NoticeNotSynced = "saved locally, will not be synced"

// OKResponse описывает стандартную структуру JSON‑ответа сервера.
// Поле Status: статус запроса ("OK").
// Поле Data: данные ответа (опционально, при успехе).
type OKResponse struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
}

// SyncResponse: успешный ответ операции с событиями.
// Synced=false сопровождается уведомлением Notice и, при наличии, причиной Warning.
type SyncResponse struct {
	Status  string `json:"status" example:"OK"`
	Data    any    `json:"data,omitempty"`
	Synced  bool   `json:"synced"`
	Notice  string `json:"notice,omitempty" example:"saved locally, will not be synced"`
	Warning string `json:"warning,omitempty"`
}

// ErrorResponse описывает стандартную структуру JSON‑ответа сервера.
// Поле Status: статус запроса ("Error").
// Поле Error : сообщение ошибки ответа.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
}

// RedirectResponse: отказ в доступе с указанием, куда перенаправить пользователя.
type RedirectResponse struct {
	Status   string `json:"status" example:"Error"`
	Error    string `json:"error" example:"authentication required"`
	Redirect string `json:"redirect" example:"/login"`
	From     string `json:"from,omitempty" example:"/events/manage"`
}

// OKWithData возвращает успешный Response с переданными данными.
func OKWithData(data any) OKResponse {
	return OKResponse{
		Status: StatusOK,
		Data:   data,
	}
}

// Synced возвращает ответ операции с событиями. Ошибка синхронизации
// не делает ответ неуспешным, а попадает в Warning.
func Synced(data any, synced bool, syncErr error) SyncResponse {
	resp := SyncResponse{
		Status: StatusOK,
		Data:   data,
		Synced: synced,
	}
	if !synced {
		resp.Notice = NoticeNotSynced
	}
	if syncErr != nil {
		resp.Warning = syncErr.Error()
	}
	return resp
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Error:  msg,
	}
}

// Redirect возвращает отказ в доступе с целью перенаправления.
func Redirect(msg, redirect, from string) RedirectResponse {
	return RedirectResponse{
		Status:   StatusError,
		Error:    msg,
		Redirect: redirect,
		From:     from,
	}
}

// ValidationError формирует Response со статусом Error на основе ошибок валидации.
// Каждое нарушение формируется в человеко‑читаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) ErrorResponse {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "oneof":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be one of: %s", err.Field(), err.Param()))
		case "datetime":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must match format %s", err.Field(), err.Param()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return ErrorResponse{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
	}
}
