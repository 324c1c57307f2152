// Package models содержит доменные структуры календаря прихода:
// событие, входные данные для его создания и изменения, а также
// функцию нормализации, через которую проходит любое сохраняемое событие.
package models

import (
	"strings"
	"time"
)

// Recurrence: метка повторения события. Только информационная:
// повторения не разворачиваются в отдельные даты.
type Recurrence string

// Допустимые метки повторения. Пустая строка равнозначна RecurrenceNone.
const (
	RecurrenceNone    Recurrence = "none"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
	RecurrenceYearly  Recurrence = "yearly"
)

// Valid проверяет, входит ли метка в закрытый набор.
func (r Recurrence) Valid() bool {
	switch r {
	case "", RecurrenceNone, RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly:
		return true
	}
	return false
}

// IsNone сообщает, что событие не повторяется.
func (r Recurrence) IsNone() bool {
	return r == "" || r == RecurrenceNone
}

// Event представляет одну запись календаря.
// Все необязательные поля хранятся пустыми строками, а не отсутствуют.
type Event struct {
	ID          string     `json:"id"`
	Title       string     `json:"title" validate:"required"`
	Date        string     `json:"date" validate:"omitempty,datetime=2006-01-02"` // YYYY-MM-DD
	Time        string     `json:"time" validate:"omitempty,datetime=15:04"`      // HH:MM
	Location    string     `json:"location"`
	Community   string     `json:"community"`
	Category    string     `json:"category"`
	Recurrence  Recurrence `json:"recurrence" validate:"omitempty,oneof=none weekly monthly yearly"`
	Description string     `json:"description"`
}

// EventInput используется для приёма данных из JSON-запроса
// до нормализации. Отсутствующие поля приходят пустыми строками.
type EventInput struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	Community   string `json:"community"`
	Category    string `json:"category"`
	Recurrence  string `json:"recurrence"`
	Description string `json:"description"`
}

// NormalizeEvent приводит входные данные к полной форме события без идентификатора.
// Название, община, категория и метка повторения обрезаются по краям.
func NormalizeEvent(in EventInput) Event {
	return Event{
		Title:       strings.TrimSpace(in.Title),
		Date:        in.Date,
		Time:        in.Time,
		Location:    in.Location,
		Community:   strings.TrimSpace(in.Community),
		Category:    strings.TrimSpace(in.Category),
		Recurrence:  Recurrence(strings.TrimSpace(in.Recurrence)),
		Description: in.Description,
	}
}

// Input возвращает данные события в виде входных данных, например для повторной нормализации.
func (e Event) Input() EventInput {
	return EventInput{
		Title:       e.Title,
		Date:        e.Date,
		Time:        e.Time,
		Location:    e.Location,
		Community:   e.Community,
		Category:    e.Category,
		Recurrence:  string(e.Recurrence),
		Description: e.Description,
	}
}

// WithID возвращает копию события с заданным идентификатором.
func (e Event) WithID(id string) Event {
	e.ID = id
	return e
}

// MonthKey возвращает ключ месяца YYYY-MM или пустую строку, если дата не задана
// или не в формате YYYY-MM-DD.
func (e Event) MonthKey() string {
	d, err := time.Parse(time.DateOnly, e.Date)
	if err != nil {
		return ""
	}
	return d.Format("2006-01")
}
