package models

import (
	"errors"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidator_Event(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name     string
		event    Event
		wantTags map[string]string
	}{
		{name: "date and time in format", event: Event{Title: "Missa", Date: "2025-12-08", Time: "19:00"}},
		{name: "no date or time", event: Event{Title: "Missa"}},
		{
			name:     "date in another format",
			event:    Event{Title: "Missa", Date: "08/12/2025"},
			wantTags: map[string]string{"Date": "datetime"},
		},
		{
			name:     "impossible time",
			event:    Event{Title: "Missa", Date: "2025-12-08", Time: "25:99"},
			wantTags: map[string]string{"Time": "datetime"},
		},
		{
			name:     "missing title and bad recurrence",
			event:    Event{Recurrence: "daily"},
			wantTags: map[string]string{"Title": "required", "Recurrence": "oneof"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			require.NotPanics(t, func() { err = v.Struct(tt.event) })
			if tt.wantTags == nil {
				assert.NoError(t, err)
				return
			}
			var verrs validator.ValidationErrors
			require.True(t, errors.As(err, &verrs))
			got := map[string]string{}
			for _, fe := range verrs {
				got[fe.Field()] = fe.ActualTag()
			}
			assert.Equal(t, tt.wantTags, got)
		})
	}
}
