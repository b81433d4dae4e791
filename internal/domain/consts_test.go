package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWeekBounds(t *testing.T) {
	want := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
	}{
		{name: "monday morning", now: time.Date(2024, time.March, 4, 7, 0, 0, 0, time.UTC)},
		{name: "wednesday", now: time.Date(2024, time.March, 6, 12, 30, 0, 0, time.UTC)},
		{name: "sunday night", now: time.Date(2024, time.March, 10, 23, 59, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := WeekBounds(tt.now)
			assert.Equal(t, want, start)
			assert.Equal(t, want.AddDate(0, 0, 6), end)
		})
	}
}

func TestISOWeekday(t *testing.T) {
	assert.Equal(t, Monday, ISOWeekday(time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, Sunday, ISOWeekday(time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)))
}
