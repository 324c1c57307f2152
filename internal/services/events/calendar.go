package events

import (
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/magabrotheeeer/parish-calendar/internal/models"
)

// FilterAll: значение фильтра без ограничения.
const FilterAll = "all"

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

// DefaultCategories: категории, доступные в фильтре даже без событий.
var DefaultCategories = []string{"Missa", "Formacao", "Pastoral", "Encontro", "Mutirao", "Festa", "Outro"}

// Filter ограничивает список событий по общине, категории и месяцу (YYYY-MM).
// Пустое значение и FilterAll не ограничивают.
type Filter struct {
	Community string `json:"community"`
	Category  string `json:"category"`
	Month     string `json:"month"`
}

func constrained(v string) bool {
	return v != "" && v != FilterAll
}

// Match сообщает, проходит ли событие фильтр.
func (f Filter) Match(e models.Event) bool {
	if constrained(f.Community) && e.Community != f.Community {
		return false
	}
	if constrained(f.Category) && e.Category != f.Category {
		return false
	}
	if constrained(f.Month) && e.MonthKey() != f.Month {
		return false
	}
	return true
}

// Apply возвращает события, прошедшие фильтр, в исходном порядке.
func (f Filter) Apply(list []models.Event) []models.Event {
	out := make([]models.Event, 0, len(list))
	for _, e := range list {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

// OnDate возвращает события указанного дня, отсортированные по времени.
func OnDate(list []models.Event, date string) []models.Event {
	out := make([]models.Event, 0)
	for _, e := range list {
		if e.Date == date {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time < out[j].Time
	})
	return out
}

// Upcoming возвращает не более limit событий начиная с дня today, по возрастанию даты.
// События без корректной даты пропускаются.
func Upcoming(list []models.Event, today time.Time, limit int) []models.Event {
	from := today.Format(dateLayout)
	out := make([]models.Event, 0)
	for _, e := range list {
		if _, err := time.Parse(dateLayout, e.Date); err != nil {
			continue
		}
		if e.Date >= from {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// FilterOptions: значения, доступные для фильтров календаря.
type FilterOptions struct {
	Communities []string `json:"communities"`
	Categories  []string `json:"categories"`
	Months      []string `json:"months"`
}

// Options собирает значения фильтров из списка событий.
// Общины из extraCommunities идут первыми, категории начинаются с DefaultCategories,
// месяцы отсортированы и всегда содержат текущий месяц.
func Options(list []models.Event, extraCommunities []string, now time.Time) FilterOptions {
	communities := make([]string, 0)
	for _, c := range extraCommunities {
		communities = appendUnique(communities, strings.TrimSpace(c))
	}
	categories := slices.Clone(DefaultCategories)
	months := []string{now.Format(monthLayout)}

	for _, e := range list {
		communities = appendUnique(communities, e.Community)
		categories = appendUnique(categories, e.Category)
		months = appendUnique(months, e.MonthKey())
	}
	sort.Strings(months)

	return FilterOptions{
		Communities: communities,
		Categories:  categories,
		Months:      months,
	}
}

func appendUnique(list []string, v string) []string {
	if v == "" || slices.Contains(list, v) {
		return list
	}
	return append(list, v)
}
