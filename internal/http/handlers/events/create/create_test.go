package create

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/parish-calendar/internal/http/response"
	"github.com/magabrotheeeer/parish-calendar/internal/models"
	"github.com/magabrotheeeer/parish-calendar/internal/services/events"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, in models.EventInput) (events.MutationResult, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(events.MutationResult), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validationErr() error {
	err := models.NewValidator().Struct(models.Event{})
	return errors.Join(events.ErrValidation, err)
}

func TestCreateHandler(t *testing.T) {
	created := models.Event{ID: "r1", Title: "Missa", Date: "2025-12-08"}
	local := models.Event{ID: "local-1", Title: "Missa", Date: "2025-12-08"}

	tests := []struct {
		name       string
		body       string
		setupMock  func(m *MockService)
		wantStatus int
		wantBody   func(t *testing.T, raw string)
	}{
		{
			name: "synced create",
			body: `{"title":"Missa","date":"2025-12-08"}`,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, models.EventInput{Title: "Missa", Date: "2025-12-08"}).
					Return(events.MutationResult{Event: &created, Synced: true}, nil).Once()
			},
			wantStatus: http.StatusCreated,
			wantBody: func(t *testing.T, raw string) {
				var got response.SyncResponse
				require.NoError(t, json.Unmarshal([]byte(raw), &got))
				assert.True(t, got.Synced)
				assert.Empty(t, got.Notice)
			},
		},
		{
			name: "empty date defaults to today",
			body: `{"title":"Missa"}`,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, models.EventInput{Title: "Missa", Date: "2025-12-08"}).
					Return(events.MutationResult{Event: &local, Err: events.ErrRemoteUnavailable}, nil).Once()
			},
			wantStatus: http.StatusCreated,
			wantBody: func(t *testing.T, raw string) {
				assert.Contains(t, raw, `"synced":false`)
				assert.Contains(t, raw, response.NoticeNotSynced)
				assert.Contains(t, raw, `"id":"local-1"`)
			},
		},
		{
			name:       "invalid json",
			body:       `{"title":`,
			setupMock:  func(_ *MockService) {},
			wantStatus: http.StatusBadRequest,
			wantBody: func(t *testing.T, raw string) {
				assert.JSONEq(t, `{"status":"Error","error":"invalid request body"}`, raw)
			},
		},
		{
			name: "validation failure",
			body: `{"title":"   ","date":"2025-12-08"}`,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, mock.Anything).Return(events.MutationResult{}, validationErr()).Once()
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody: func(t *testing.T, raw string) {
				assert.Contains(t, raw, "field Title is a required field")
			},
		},
		{
			name: "local cache failure",
			body: `{"title":"Missa","date":"2025-12-08"}`,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, mock.Anything).Return(events.MutationResult{}, errors.New("redis down")).Once()
			},
			wantStatus: http.StatusInternalServerError,
			wantBody: func(t *testing.T, raw string) {
				assert.JSONEq(t, `{"status":"Error","error":"could not create event"}`, raw)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)
			h := New(newNoopLogger(), svc)
			h.now = func() time.Time { return time.Date(2025, 12, 8, 9, 0, 0, 0, time.UTC) }

			req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			tt.wantBody(t, rec.Body.String())
			svc.AssertExpectations(t)
		})
	}
}
