// Package events реализует хранилище событий календаря с двумя уровнями:
// удалённой реляционной таблицей и локальным кэшем. Хранилище само решает,
// куда писать, когда удалённая сторона недоступна, и как засеять пустую
// удалённую таблицу из локальной копии.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/parish-calendar/internal/lib/sl"
	"github.com/magabrotheeeer/parish-calendar/internal/models"
)

// RemoteRepository: удалённое реляционное хранилище событий.
type RemoteRepository interface {
	// Ready сообщает, настроено ли хранилище. Проверяется перед каждой попыткой.
	Ready() bool
	// ListEvents возвращает все события по возрастанию даты.
	ListEvents(ctx context.Context) ([]models.Event, error)
	// InsertEvent вставляет одно событие и возвращает запись с удалённым ID.
	InsertEvent(ctx context.Context, e models.Event) (models.Event, error)
	// InsertEvents вставляет набор событий атомарно.
	InsertEvents(ctx context.Context, events []models.Event) ([]models.Event, error)
	// UpdateEvent обновляет событие по ID.
	UpdateEvent(ctx context.Context, id string, e models.Event) (models.Event, error)
	// DeleteEvent удаляет событие по ID.
	DeleteEvent(ctx context.Context, id string) (int, error)
}

// LocalCache: локальный слот со списком событий.
type LocalCache interface {
	// Read возвращает список; пустой при отсутствии или порче данных.
	Read(ctx context.Context) ([]models.Event, error)
	// Write перезаписывает список целиком.
	Write(ctx context.Context, events []models.Event) error
}

// LoadResult: результат загрузки списка событий.
type LoadResult struct {
	Events []models.Event
	Synced bool
	Err    error
}

// MutationResult: результат создания, изменения или удаления события.
// Event равен nil, если изменяемого события нет в локальном кэше,
// а также для удаления.
type MutationResult struct {
	Event  *models.Event
	Events []models.Event
	Synced bool
	Err    error
}

// Option настраивает Store.
type Option func(*Store)

// WithNotifier подключает получателя уведомлений об изменениях.
func WithNotifier(n Notifier) Option {
	return func(s *Store) {
		s.notifier = n
	}
}

// WithRemoteTimeout ограничивает длительность каждого удалённого вызова.
// Ноль отключает ограничение.
func WithRemoteTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.timeout = d
	}
}

// WithIDGenerator задаёт генератор локальных идентификаторов.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		s.newID = gen
	}
}

// Store: единственный источник событий для API.
// Локальный кэш изменяется только под мьютексом; удалённые вызовы выполняются вне его.
type Store struct {
	mu       sync.Mutex
	remote   RemoteRepository
	local    LocalCache
	notifier Notifier
	validate *validator.Validate
	timeout  time.Duration
	newID    func() string
	log      *slog.Logger
}

// NewStore создаёт хранилище событий. remote может быть nil: тогда работает только локальный кэш.
func NewStore(remote RemoteRepository, local LocalCache, log *slog.Logger, opts ...Option) *Store {
	s := &Store{
		remote:   remote,
		local:    local,
		notifier: noopNotifier{},
		validate: models.NewValidator(),
		newID:    func() string { return uuid.New().String() },
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RemoteReady сообщает, будет ли хранилище обращаться к удалённой стороне.
func (s *Store) RemoteReady() bool {
	return s.remote != nil && s.remote.Ready()
}

func (s *Store) remoteCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func remoteFailed(err error) error {
	return fmt.Errorf("%w: %w", ErrRemoteOperationFailed, err)
}

// Load возвращает список событий.
// При непустой удалённой таблице локальный кэш перезаписывается ею.
// При пустой удалённой таблице и непустом кэше выполняется однократный посев.
// Ошибка возвращается только при отказе локального кэша.
func (s *Store) Load(ctx context.Context, useLocalFallback bool) (LoadResult, error) {
	const op = "events.Store.Load"
	log := s.log.With(slog.String("op", op))

	local, err := s.readLocal(ctx)
	if err != nil {
		return LoadResult{}, fmt.Errorf("%s: %w", op, err)
	}

	if !s.RemoteReady() {
		observe("load", false)
		return LoadResult{Events: local, Err: ErrRemoteUnavailable}, nil
	}

	rctx, cancel := s.remoteCtx(ctx)
	remote, err := s.remote.ListEvents(rctx)
	cancel()
	if err != nil {
		log.Warn("remote read failed, serving local events", sl.Err(err))
		observe("load", false)
		return LoadResult{Events: fallback(local, useLocalFallback), Err: remoteFailed(err)}, nil
	}

	if len(remote) > 0 {
		if err := s.writeLocal(ctx, remote); err != nil {
			return LoadResult{}, fmt.Errorf("%s: %w", op, err)
		}
		observe("load", true)
		return LoadResult{Events: remote, Synced: true}, nil
	}

	if len(local) == 0 {
		observe("load", true)
		return LoadResult{Events: []models.Event{}, Synced: true}, nil
	}

	seeded, err := s.seed(ctx, local)
	if err != nil {
		log.Warn("seeding remote from local events failed", slog.Int("count", len(local)), sl.Err(err))
		observe("load", true)
		return LoadResult{Events: fallback(local, useLocalFallback), Synced: true}, nil
	}
	if err := s.writeLocal(ctx, seeded); err != nil {
		return LoadResult{}, fmt.Errorf("%s: %w", op, err)
	}
	log.Info("seeded remote from local events", slog.Int("count", len(seeded)))
	s.notify(ctx, Change{Op: OpSeeded, Count: len(seeded), Synced: true})
	observe("load", true)
	return LoadResult{Events: seeded, Synced: true}, nil
}

func (s *Store) seed(ctx context.Context, local []models.Event) ([]models.Event, error) {
	payload := make([]models.Event, 0, len(local))
	for _, e := range local {
		payload = append(payload, models.NormalizeEvent(e.Input()))
	}

	rctx, cancel := s.remoteCtx(ctx)
	defer cancel()
	return s.remote.InsertEvents(rctx, payload)
}

// Create нормализует и сохраняет новое событие.
// При недоступной или отказавшей удалённой стороне событие получает локальный ID.
func (s *Store) Create(ctx context.Context, in models.EventInput) (MutationResult, error) {
	const op = "events.Store.Create"
	log := s.log.With(slog.String("op", op))

	e := models.NormalizeEvent(in)
	if err := s.check(e); err != nil {
		return MutationResult{}, fmt.Errorf("%s: %w", op, err)
	}

	remoteErr := ErrRemoteUnavailable
	if s.RemoteReady() {
		rctx, cancel := s.remoteCtx(ctx)
		inserted, err := s.remote.InsertEvent(rctx, e)
		cancel()
		if err == nil {
			list, err := s.modifyLocal(ctx, func(list []models.Event) ([]models.Event, bool) {
				list = without(list, inserted.ID)
				return append(list, inserted), true
			})
			if err != nil {
				return MutationResult{}, fmt.Errorf("%s: %w", op, err)
			}
			s.notify(ctx, Change{Op: OpCreated, EventID: inserted.ID, Event: &inserted, Synced: true})
			observe("create", true)
			return MutationResult{Event: &inserted, Events: list, Synced: true}, nil
		}
		log.Warn("remote insert failed, saving locally", sl.Err(err))
		remoteErr = remoteFailed(err)
	}

	created := e.WithID(s.newID())
	list, err := s.modifyLocal(ctx, func(list []models.Event) ([]models.Event, bool) {
		return append(list, created), true
	})
	if err != nil {
		return MutationResult{}, fmt.Errorf("%s: %w", op, err)
	}
	s.notify(ctx, Change{Op: OpCreated, EventID: created.ID, Event: &created})
	observe("create", false)
	return MutationResult{Event: &created, Events: list, Err: remoteErr}, nil
}

// Update заменяет поля события с данным ID, сохраняя сам ID.
// Если при локальной замене событие не найдено, Event в результате равен nil.
func (s *Store) Update(ctx context.Context, id string, in models.EventInput) (MutationResult, error) {
	const op = "events.Store.Update"
	log := s.log.With(slog.String("op", op), slog.String("id", id))

	if id == "" {
		return MutationResult{}, fmt.Errorf("%s: %w: empty id", op, ErrValidation)
	}
	e := models.NormalizeEvent(in)
	if err := s.check(e); err != nil {
		return MutationResult{}, fmt.Errorf("%s: %w", op, err)
	}

	remoteErr := ErrRemoteUnavailable
	if s.RemoteReady() {
		rctx, cancel := s.remoteCtx(ctx)
		updated, err := s.remote.UpdateEvent(rctx, id, e)
		cancel()
		if err == nil {
			list, err := s.modifyLocal(ctx, func(list []models.Event) ([]models.Event, bool) {
				i := indexOf(list, id)
				if i < 0 {
					return list, false
				}
				list[i] = updated
				return list, true
			})
			if err != nil {
				return MutationResult{}, fmt.Errorf("%s: %w", op, err)
			}
			s.notify(ctx, Change{Op: OpUpdated, EventID: updated.ID, Event: &updated, Synced: true})
			observe("update", true)
			return MutationResult{Event: &updated, Events: list, Synced: true}, nil
		}
		log.Warn("remote update failed, updating locally", sl.Err(err))
		remoteErr = remoteFailed(err)
	}

	var changed *models.Event
	list, err := s.modifyLocal(ctx, func(list []models.Event) ([]models.Event, bool) {
		i := indexOf(list, id)
		if i < 0 {
			return list, false
		}
		list[i] = e.WithID(id)
		replaced := list[i]
		changed = &replaced
		return list, true
	})
	if err != nil {
		return MutationResult{}, fmt.Errorf("%s: %w", op, err)
	}
	if changed != nil {
		s.notify(ctx, Change{Op: OpUpdated, EventID: id, Event: changed})
	}
	observe("update", false)
	return MutationResult{Event: changed, Events: list, Err: remoteErr}, nil
}

// Delete удаляет событие. Из локального кэша запись удаляется всегда,
// Synced отражает только результат удалённого удаления.
// Повторное удаление не ошибка.
func (s *Store) Delete(ctx context.Context, id string) (MutationResult, error) {
	const op = "events.Store.Delete"
	log := s.log.With(slog.String("op", op), slog.String("id", id))

	synced := false
	remoteErr := ErrRemoteUnavailable
	if s.RemoteReady() {
		rctx, cancel := s.remoteCtx(ctx)
		_, err := s.remote.DeleteEvent(rctx, id)
		cancel()
		if err != nil {
			log.Warn("remote delete failed", sl.Err(err))
			remoteErr = remoteFailed(err)
		} else {
			synced = true
			remoteErr = nil
		}
	}

	list, err := s.modifyLocal(ctx, func(list []models.Event) ([]models.Event, bool) {
		return without(list, id), true
	})
	if err != nil {
		return MutationResult{}, fmt.Errorf("%s: %w", op, err)
	}
	s.notify(ctx, Change{Op: OpDeleted, EventID: id, Synced: synced})
	observe("delete", synced)
	return MutationResult{Events: list, Synced: synced, Err: remoteErr}, nil
}

func (s *Store) check(e models.Event) error {
	if err := s.validate.Struct(e); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

func (s *Store) readLocal(ctx context.Context) ([]models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.local.Read(ctx)
}

func (s *Store) writeLocal(ctx context.Context, events []models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.local.Write(ctx, events)
}

// modifyLocal выполняет чтение, изменение и запись кэша как одну операцию.
// Если fn сообщает об отсутствии изменений, запись пропускается.
func (s *Store) modifyLocal(ctx context.Context, fn func([]models.Event) ([]models.Event, bool)) ([]models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.local.Read(ctx)
	if err != nil {
		return nil, err
	}
	list, changed := fn(list)
	if !changed {
		return list, nil
	}
	if err := s.local.Write(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Store) notify(ctx context.Context, c Change) {
	c.At = time.Now().UTC()
	if err := s.notifier.Notify(ctx, c); err != nil {
		s.log.Warn("failed to publish event change",
			slog.String("change", c.Op), slog.String("id", c.EventID), sl.Err(err))
	}
}

func fallback(local []models.Event, useLocal bool) []models.Event {
	if useLocal {
		return local
	}
	return []models.Event{}
}

func indexOf(list []models.Event, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func without(list []models.Event, id string) []models.Event {
	out := make([]models.Event, 0, len(list))
	for _, e := range list {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}
