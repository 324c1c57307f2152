package models

import (
	"time"

	"github.com/go-playground/validator"
)

// NewValidator возвращает валидатор с правилом datetime=<layout>,
// проверяющим строку через time.Parse.
func NewValidator() *validator.Validate {
	v := validator.New()
	// Ошибка возможна только для пустого или зарезервированного имени.
	_ = v.RegisterValidation("datetime", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(fl.Param(), fl.Field().String())
		return err == nil
	})
	return v
}
