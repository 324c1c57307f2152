package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/parish-calendar/internal/lib/sl"
	"github.com/magabrotheeeer/parish-calendar/internal/models"
)

// ErrLocalParse: содержимое слота не удалось разобрать. Трактуется как пустой кэш.
var ErrLocalParse = errors.New("local cache contents are not parseable")

// EventCache: долговременный слот со списком событий под фиксированным ключом.
type EventCache struct {
	cache *Cache
	key   string
	log   *slog.Logger
}

// NewEventCache создаёт слот событий поверх Redis.
func NewEventCache(c *Cache, key string, log *slog.Logger) *EventCache {
	return &EventCache{
		cache: c,
		key:   key,
		log:   log,
	}
}

// Read возвращает сохранённый список событий.
// Отсутствующий ключ и неразборчивое содержимое дают пустой список без ошибки.
// Ошибка возвращается только при недоступности самого Redis.
func (e *EventCache) Read(ctx context.Context) ([]models.Event, error) {
	const op = "cache.EventCache.Read"
	var events []models.Event
	found, err := e.cache.Get(ctx, e.key, &events)
	if errors.Is(err, ErrDecode) {
		e.log.Warn("discarding local events", slog.String("key", e.key),
			sl.Err(fmt.Errorf("%w: %w", ErrLocalParse, err)))
		return []models.Event{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found || events == nil {
		return []models.Event{}, nil
	}
	return events, nil
}

// Write перезаписывает слот списком событий.
func (e *EventCache) Write(ctx context.Context, events []models.Event) error {
	const op = "cache.EventCache.Write"
	if events == nil {
		events = []models.Event{}
	}
	if err := e.cache.Set(ctx, e.key, events, 0); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
