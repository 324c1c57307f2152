// Package models содержит доменную модель пользователя сайта (профиль),
// включающую имя, электронную почту, роль и хэш пароля.
// Структура используется в бизнес‑логике и при работе с хранилищем.
package models

// Profile представляет зарегистрированного сотрудника прихода.
type Profile struct {
	ID           string `json:"id"`    // Уникальный идентификатор профиля
	Name         string `json:"name"`  // Отображаемое имя, может быть пустым
	Email        string `json:"email"` // Электронная почта, используется для входа
	Role         string `json:"role"`  // Роль: member, secretary или admin
	PasswordHash string `json:"-"`     // Хэш пароля, наружу не отдаётся
}

// ProfileUpdate используется для приёма изменений профиля из JSON-запроса.
type ProfileUpdate struct {
	Name string `json:"name"`
	Role string `json:"role" validate:"required,oneof=member secretary admin"`
}

// Credentials: данные для входа.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
