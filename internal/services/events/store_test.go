package events

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/parish-calendar/internal/cache"
	"github.com/magabrotheeeer/parish-calendar/internal/models"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type RemoteMock struct{ mock.Mock }

func (m *RemoteMock) Ready() bool {
	return m.Called().Bool(0)
}

func (m *RemoteMock) ListEvents(ctx context.Context) ([]models.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Event), args.Error(1)
}

func (m *RemoteMock) InsertEvent(ctx context.Context, e models.Event) (models.Event, error) {
	args := m.Called(ctx, e)
	return args.Get(0).(models.Event), args.Error(1)
}

func (m *RemoteMock) InsertEvents(ctx context.Context, events []models.Event) ([]models.Event, error) {
	args := m.Called(ctx, events)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Event), args.Error(1)
}

func (m *RemoteMock) UpdateEvent(ctx context.Context, id string, e models.Event) (models.Event, error) {
	args := m.Called(ctx, id, e)
	return args.Get(0).(models.Event), args.Error(1)
}

func (m *RemoteMock) DeleteEvent(ctx context.Context, id string) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func readyRemote() *RemoteMock {
	r := &RemoteMock{}
	r.On("Ready").Return(true)
	return r
}

// memCache хранит список в памяти и считает обращения.
type memCache struct {
	events   []models.Event
	readErr  error
	writeErr error
	reads    int
	writes   int
}

func (c *memCache) Read(context.Context) ([]models.Event, error) {
	c.reads++
	if c.readErr != nil {
		return nil, c.readErr
	}
	return append([]models.Event{}, c.events...), nil
}

func (c *memCache) Write(_ context.Context, events []models.Event) error {
	c.writes++
	if c.writeErr != nil {
		return c.writeErr
	}
	c.events = append([]models.Event{}, events...)
	return nil
}

type NotifierMock struct{ mock.Mock }

func (m *NotifierMock) Notify(ctx context.Context, c Change) error {
	return m.Called(ctx, c).Error(0)
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("local-%d", n)
	}
}

func newLocalStore(local *memCache, opts ...Option) *Store {
	opts = append([]Option{WithIDGenerator(sequentialIDs())}, opts...)
	return NewStore(nil, local, newNoopLogger(), opts...)
}

func TestStore_CreateThenLoad_LocalOnly(t *testing.T) {
	local := &memCache{}
	s := newLocalStore(local)
	ctx := context.Background()

	created, err := s.Create(ctx, models.EventInput{Title: "  Missa de Natal  ", Date: "2025-12-25"})
	require.NoError(t, err)
	assert.False(t, created.Synced)
	assert.ErrorIs(t, created.Err, ErrRemoteUnavailable)

	loaded, err := s.Load(ctx, true)
	require.NoError(t, err)
	assert.False(t, loaded.Synced)
	require.Len(t, loaded.Events, 1)
	assert.Equal(t, "Missa de Natal", loaded.Events[0].Title)
	assert.Equal(t, created.Event.ID, loaded.Events[0].ID)
}

func TestStore_Create_RemoteUnreachable(t *testing.T) {
	remote := &RemoteMock{}
	remote.On("Ready").Return(false)
	local := &memCache{}
	s := NewStore(remote, local, newNoopLogger(), WithIDGenerator(sequentialIDs()))

	res, err := s.Create(context.Background(), models.EventInput{Title: "Mass", Date: "2025-12-08"})
	require.NoError(t, err)
	assert.False(t, res.Synced)
	require.NotNil(t, res.Event)
	assert.Equal(t, "local-1", res.Event.ID)
	assert.Equal(t, []models.Event{{ID: "local-1", Title: "Mass", Date: "2025-12-08"}}, local.events)
	remote.AssertNotCalled(t, "InsertEvent", mock.Anything, mock.Anything)
}

func TestStore_Create_Remote(t *testing.T) {
	in := models.EventInput{Title: " Encontro ", Date: "2025-12-10", Community: " Capela ", Recurrence: " monthly "}
	normalized := models.Event{Title: "Encontro", Date: "2025-12-10", Community: "Capela", Recurrence: models.RecurrenceMonthly}

	t.Run("success replaces stale entry with same id", func(t *testing.T) {
		remote := readyRemote()
		remote.On("InsertEvent", mock.Anything, normalized).Return(normalized.WithID("r1"), nil)
		notifier := &NotifierMock{}
		notifier.On("Notify", mock.Anything, mock.MatchedBy(func(c Change) bool {
			return c.Op == OpCreated && c.EventID == "r1" && c.Synced
		})).Return(nil)
		local := &memCache{events: []models.Event{{ID: "r1", Title: "stale"}, {ID: "x", Title: "Outro"}}}
		s := NewStore(remote, local, newNoopLogger(), WithNotifier(notifier))

		res, err := s.Create(context.Background(), in)
		require.NoError(t, err)
		assert.True(t, res.Synced)
		assert.NoError(t, res.Err)
		assert.Equal(t, "r1", res.Event.ID)
		assert.Equal(t, []models.Event{{ID: "x", Title: "Outro"}, normalized.WithID("r1")}, local.events)
		assert.Equal(t, local.events, res.Events)
		remote.AssertExpectations(t)
		notifier.AssertExpectations(t)
	})

	t.Run("failure falls back to local id", func(t *testing.T) {
		remote := readyRemote()
		remote.On("InsertEvent", mock.Anything, normalized).Return(models.Event{}, errors.New("network down"))
		local := &memCache{}
		s := NewStore(remote, local, newNoopLogger(), WithIDGenerator(sequentialIDs()))

		res, err := s.Create(context.Background(), in)
		require.NoError(t, err)
		assert.False(t, res.Synced)
		assert.ErrorIs(t, res.Err, ErrRemoteOperationFailed)
		assert.Contains(t, res.Err.Error(), "network down")
		assert.Equal(t, []models.Event{normalized.WithID("local-1")}, local.events)
	})
}

func TestStore_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   models.EventInput
	}{
		{name: "blank title", in: models.EventInput{Title: "   "}},
		{name: "unknown recurrence", in: models.EventInput{Title: "Missa", Recurrence: "daily"}},
		{name: "bad date", in: models.EventInput{Title: "Missa", Date: "08/12/2025"}},
		{name: "bad time", in: models.EventInput{Title: "Missa", Time: "7pm"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := &RemoteMock{}
			local := &memCache{events: []models.Event{{ID: "a", Title: "A"}}}
			s := NewStore(remote, local, newNoopLogger())

			_, err := s.Create(context.Background(), tt.in)
			assert.ErrorIs(t, err, ErrValidation)
			_, err = s.Update(context.Background(), "a", tt.in)
			assert.ErrorIs(t, err, ErrValidation)

			assert.Zero(t, local.reads)
			assert.Zero(t, local.writes)
			remote.AssertNotCalled(t, "Ready")
		})
	}

	t.Run("empty id on update", func(t *testing.T) {
		s := newLocalStore(&memCache{})
		_, err := s.Update(context.Background(), "", models.EventInput{Title: "Missa"})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestStore_DatedEventsDoNotPanic(t *testing.T) {
	local := &memCache{events: []models.Event{{ID: "a", Title: "Old"}}}
	s := newLocalStore(local)
	ctx := context.Background()

	var created MutationResult
	var err error
	require.NotPanics(t, func() {
		created, err = s.Create(ctx, models.EventInput{Title: "Mass", Date: "2025-12-08", Time: "19:00"})
	})
	require.NoError(t, err)
	require.NotNil(t, created.Event)
	assert.Equal(t, "2025-12-08", created.Event.Date)

	var updated MutationResult
	require.NotPanics(t, func() {
		updated, err = s.Update(ctx, "a", models.EventInput{Title: "  New  ", Date: "2025-12-09"})
	})
	require.NoError(t, err)
	require.NotNil(t, updated.Event)
	assert.Equal(t, "New", updated.Event.Title)
	assert.Equal(t, "a", updated.Event.ID)
}

func TestStore_Update_LocalOnly(t *testing.T) {
	local := &memCache{events: []models.Event{
		{ID: "a", Title: "Old", Date: "2025-12-01", Location: "Matriz"},
		{ID: "b", Title: "Other"},
	}}
	s := newLocalStore(local)

	res, err := s.Update(context.Background(), "a", models.EventInput{Title: "  New  "})
	require.NoError(t, err)
	assert.False(t, res.Synced)
	require.NotNil(t, res.Event)
	assert.Equal(t, "New", res.Event.Title)
	assert.Equal(t, "a", res.Event.ID)
	assert.Empty(t, res.Event.Location, "fields are replaced, not merged")

	loaded, err := s.Load(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, "New", loaded.Events[0].Title)
	assert.Equal(t, "Other", loaded.Events[1].Title)
}

func TestStore_Update_MissingLocally(t *testing.T) {
	local := &memCache{events: []models.Event{{ID: "a", Title: "A"}}}
	s := newLocalStore(local)

	res, err := s.Update(context.Background(), "missing", models.EventInput{Title: "New"})
	require.NoError(t, err)
	assert.Nil(t, res.Event)
	assert.Equal(t, []models.Event{{ID: "a", Title: "A"}}, res.Events)
	assert.Zero(t, local.writes)
}

func TestStore_Update_Remote(t *testing.T) {
	payload := models.Event{Title: "Festa", Date: "2025-12-25"}

	t.Run("success stores remote record", func(t *testing.T) {
		remote := readyRemote()
		remote.On("UpdateEvent", mock.Anything, "r1", payload).
			Return(models.Event{ID: "r1", Title: "Festa", Date: "2025-12-25", Category: "Festa"}, nil)
		local := &memCache{events: []models.Event{{ID: "r1", Title: "Old"}}}
		s := NewStore(remote, local, newNoopLogger())

		res, err := s.Update(context.Background(), "r1", payload.Input())
		require.NoError(t, err)
		assert.True(t, res.Synced)
		assert.Equal(t, "Festa", local.events[0].Category)
		remote.AssertExpectations(t)
	})

	t.Run("success for event absent locally does not append", func(t *testing.T) {
		remote := readyRemote()
		remote.On("UpdateEvent", mock.Anything, "r9", payload).Return(payload.WithID("r9"), nil)
		local := &memCache{events: []models.Event{{ID: "r1", Title: "Old"}}}
		s := NewStore(remote, local, newNoopLogger())

		res, err := s.Update(context.Background(), "r9", payload.Input())
		require.NoError(t, err)
		assert.True(t, res.Synced)
		require.NotNil(t, res.Event)
		assert.Len(t, local.events, 1)
	})

	t.Run("failure applies local replacement", func(t *testing.T) {
		remote := readyRemote()
		remote.On("UpdateEvent", mock.Anything, "r1", payload).Return(models.Event{}, errors.New("timeout"))
		local := &memCache{events: []models.Event{{ID: "r1", Title: "Old"}}}
		s := NewStore(remote, local, newNoopLogger())

		res, err := s.Update(context.Background(), "r1", payload.Input())
		require.NoError(t, err)
		assert.False(t, res.Synced)
		assert.ErrorIs(t, res.Err, ErrRemoteOperationFailed)
		assert.Equal(t, []models.Event{payload.WithID("r1")}, local.events)
	})
}

func TestStore_Delete(t *testing.T) {
	t.Run("idempotent without remote", func(t *testing.T) {
		local := &memCache{events: []models.Event{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}}}
		s := newLocalStore(local)

		first, err := s.Delete(context.Background(), "a")
		require.NoError(t, err)
		second, err := s.Delete(context.Background(), "a")
		require.NoError(t, err)

		assert.Equal(t, []models.Event{{ID: "b", Title: "B"}}, first.Events)
		assert.Equal(t, first.Events, second.Events)
		assert.False(t, second.Synced)
	})

	t.Run("remote failure still removes locally", func(t *testing.T) {
		remote := readyRemote()
		remote.On("DeleteEvent", mock.Anything, "a").Return(0, errors.New("connection refused"))
		local := &memCache{events: []models.Event{{ID: "a", Title: "A"}}}
		s := NewStore(remote, local, newNoopLogger())

		res, err := s.Delete(context.Background(), "a")
		require.NoError(t, err)
		assert.False(t, res.Synced)
		assert.ErrorIs(t, res.Err, ErrRemoteOperationFailed)
		assert.Empty(t, res.Events)
		assert.Empty(t, local.events)
	})

	t.Run("remote success", func(t *testing.T) {
		remote := readyRemote()
		remote.On("DeleteEvent", mock.Anything, "a").Return(1, nil)
		notifier := &NotifierMock{}
		notifier.On("Notify", mock.Anything, mock.MatchedBy(func(c Change) bool {
			return c.Op == OpDeleted && c.EventID == "a"
		})).Return(errors.New("broker down"))
		local := &memCache{events: []models.Event{{ID: "a", Title: "A"}}}
		s := NewStore(remote, local, newNoopLogger(), WithNotifier(notifier))

		res, err := s.Delete(context.Background(), "a")
		require.NoError(t, err)
		assert.True(t, res.Synced)
		assert.NoError(t, res.Err)
		notifier.AssertExpectations(t)
	})
}

func TestStore_Load(t *testing.T) {
	localEvents := []models.Event{
		{ID: "local-1", Title: " Missa ", Date: "2025-12-08"},
		{ID: "local-2", Title: "Festa", Date: "2025-12-25", Recurrence: models.RecurrenceYearly},
	}
	seedPayload := []models.Event{
		{Title: "Missa", Date: "2025-12-08"},
		{Title: "Festa", Date: "2025-12-25", Recurrence: models.RecurrenceYearly},
	}
	seeded := []models.Event{seedPayload[0].WithID("r1"), seedPayload[1].WithID("r2")}

	t.Run("remote list overwrites local", func(t *testing.T) {
		remote := readyRemote()
		remoteEvents := []models.Event{{ID: "r5", Title: "Remote"}}
		remote.On("ListEvents", mock.Anything).Return(remoteEvents, nil)
		local := &memCache{events: localEvents}
		s := NewStore(remote, local, newNoopLogger())

		res, err := s.Load(context.Background(), true)
		require.NoError(t, err)
		assert.True(t, res.Synced)
		assert.Equal(t, remoteEvents, res.Events)
		assert.Equal(t, remoteEvents, local.events)
		remote.AssertNotCalled(t, "InsertEvents", mock.Anything, mock.Anything)
	})

	t.Run("empty remote is seeded from local", func(t *testing.T) {
		remote := readyRemote()
		remote.On("ListEvents", mock.Anything).Return([]models.Event{}, nil)
		remote.On("InsertEvents", mock.Anything, seedPayload).Return(seeded, nil)
		notifier := &NotifierMock{}
		notifier.On("Notify", mock.Anything, mock.MatchedBy(func(c Change) bool {
			return c.Op == OpSeeded && c.Count == 2
		})).Return(nil)
		local := &memCache{events: localEvents}
		s := NewStore(remote, local, newNoopLogger(), WithNotifier(notifier))

		res, err := s.Load(context.Background(), true)
		require.NoError(t, err)
		assert.True(t, res.Synced)
		assert.Equal(t, seeded, res.Events)
		assert.Equal(t, seeded, local.events)
		remote.AssertExpectations(t)
		notifier.AssertExpectations(t)
	})

	t.Run("seed failure keeps synced read", func(t *testing.T) {
		for _, useLocal := range []bool{true, false} {
			remote := readyRemote()
			remote.On("ListEvents", mock.Anything).Return([]models.Event{}, nil)
			remote.On("InsertEvents", mock.Anything, seedPayload).Return(nil, errors.New("constraint"))
			local := &memCache{events: localEvents}
			s := NewStore(remote, local, newNoopLogger())

			res, err := s.Load(context.Background(), useLocal)
			require.NoError(t, err)
			assert.True(t, res.Synced)
			assert.NoError(t, res.Err)
			if useLocal {
				assert.Equal(t, localEvents, res.Events)
			} else {
				assert.Empty(t, res.Events)
			}
			assert.Equal(t, localEvents, local.events)
		}
	})

	t.Run("both empty", func(t *testing.T) {
		remote := readyRemote()
		remote.On("ListEvents", mock.Anything).Return([]models.Event{}, nil)
		s := NewStore(remote, &memCache{}, newNoopLogger())

		res, err := s.Load(context.Background(), true)
		require.NoError(t, err)
		assert.True(t, res.Synced)
		assert.Empty(t, res.Events)
	})

	t.Run("remote read failure", func(t *testing.T) {
		for _, useLocal := range []bool{true, false} {
			remote := readyRemote()
			remote.On("ListEvents", mock.Anything).Return(nil, errors.New("dial tcp: refused"))
			s := NewStore(remote, &memCache{events: localEvents}, newNoopLogger())

			res, err := s.Load(context.Background(), useLocal)
			require.NoError(t, err)
			assert.False(t, res.Synced)
			assert.ErrorIs(t, res.Err, ErrRemoteOperationFailed)
			if useLocal {
				assert.Equal(t, localEvents, res.Events)
			} else {
				assert.Empty(t, res.Events)
			}
		}
	})
}

func TestStore_RemoteTimeout(t *testing.T) {
	remote := readyRemote()
	remote.On("ListEvents", mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.DeadlineExceeded)
	s := NewStore(remote, &memCache{events: []models.Event{{ID: "a", Title: "A"}}}, newNoopLogger(),
		WithRemoteTimeout(20*time.Millisecond))

	res, err := s.Load(context.Background(), true)
	require.NoError(t, err)
	assert.False(t, res.Synced)
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
	assert.Len(t, res.Events, 1)
}

func TestStore_LocalFailurePropagates(t *testing.T) {
	broken := errors.New("redis: connection pool exhausted")

	s := newLocalStore(&memCache{readErr: broken})
	_, err := s.Load(context.Background(), true)
	assert.ErrorIs(t, err, broken)

	s = newLocalStore(&memCache{writeErr: broken})
	_, err = s.Create(context.Background(), models.EventInput{Title: "Missa"})
	assert.ErrorIs(t, err, broken)
	_, err = s.Delete(context.Background(), "a")
	assert.ErrorIs(t, err, broken)
}

func TestStore_ConcurrentCreates(t *testing.T) {
	local := &memCache{}
	var mu sync.Mutex
	n := 0
	s := NewStore(nil, local, newNoopLogger(), WithIDGenerator(func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}))

	const workers = 50
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Create(context.Background(), models.EventInput{Title: fmt.Sprintf("Evento %d", i)})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, local.events, workers)
}

func TestStore_WithRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})
	slot := cache.NewEventCache(&cache.Cache{Db: client}, "paroquia_events", newNoopLogger())

	remote := readyRemote()
	remote.On("ListEvents", mock.Anything).Return([]models.Event{}, nil)
	remote.On("InsertEvents", mock.Anything, []models.Event{{Title: "Missa"}, {Title: "Festa"}}).
		Return([]models.Event{{ID: "r1", Title: "Missa"}, {ID: "r2", Title: "Festa"}}, nil)

	offline := NewStore(nil, slot, newNoopLogger())
	ctx := context.Background()
	_, err := offline.Create(ctx, models.EventInput{Title: "Missa"})
	require.NoError(t, err)
	_, err = offline.Create(ctx, models.EventInput{Title: "Festa"})
	require.NoError(t, err)

	online := NewStore(remote, slot, newNoopLogger())
	res, err := online.Load(ctx, true)
	require.NoError(t, err)
	assert.True(t, res.Synced)

	stored, err := slot.Read(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "r1", stored[0].ID)
	assert.Equal(t, "r2", stored[1].ID)
}

type publisherFunc func(routingKey string, message any) error

func (f publisherFunc) Publish(routingKey string, message any) error {
	return f(routingKey, message)
}

func TestBrokerNotifier(t *testing.T) {
	var gotKey string
	var gotMsg any
	n := NewBrokerNotifier(publisherFunc(func(key string, msg any) error {
		gotKey, gotMsg = key, msg
		return nil
	}))

	c := Change{Op: OpUpdated, EventID: "r1", Synced: true}
	require.NoError(t, n.Notify(context.Background(), c))
	assert.Equal(t, "events.updated", gotKey)
	assert.Equal(t, c, gotMsg)
}
