package list

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/parish-calendar/internal/models"
	"github.com/magabrotheeeer/parish-calendar/internal/services/profiles"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) List(ctx context.Context) ([]*models.Profile, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]*models.Profile)
	return list, args.Error(1)
}

func TestListHandler(t *testing.T) {
	tests := []struct {
		name        string
		list        []*models.Profile
		err         error
		wantStatus  int
		contains    string
		notContains string
	}{
		{
			name:        "profiles without password hashes",
			list:        []*models.Profile{{ID: "p-1", Name: "Ana", Email: "ana@paroquia.org", Role: "admin", PasswordHash: "secret-hash"}},
			wantStatus:  http.StatusOK,
			contains:    `"email":"ana@paroquia.org"`,
			notContains: "secret-hash",
		},
		{
			name:       "storage not configured",
			err:        fmt.Errorf("profiles.List: %w", profiles.ErrUnavailable),
			wantStatus: http.StatusServiceUnavailable,
			contains:   `"error":"profiles are unavailable"`,
		},
		{
			name:       "storage failure",
			err:        errors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
			contains:   `"error":"could not list profiles"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("List", mock.Anything).Return(tt.list, tt.err).Once()

			rec := httptest.NewRecorder()
			New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).
				ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profiles", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.contains)
			if tt.notContains != "" {
				assert.NotContains(t, rec.Body.String(), tt.notContains)
			}
			svc.AssertExpectations(t)
		})
	}
}
