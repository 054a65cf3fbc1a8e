package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/notifykit/pkg/schedule"
)

func TestNextDigestHourly(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "mid hour",
			now:  time.Date(2025, 6, 4, 14, 37, 21, 500, time.UTC),
			want: time.Date(2025, 6, 4, 15, 0, 0, 0, time.UTC),
		},
		{
			name: "exactly on the hour still moves forward",
			now:  time.Date(2025, 6, 4, 14, 0, 0, 0, time.UTC),
			want: time.Date(2025, 6, 4, 15, 0, 0, 0, time.UTC),
		},
		{
			name: "crosses midnight",
			now:  time.Date(2025, 6, 4, 23, 59, 59, 0, time.UTC),
			want: time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, schedule.NextDigest(tt.now, schedule.FrequencyHourly))
		})
	}
}

func TestNextDigestDaily(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 4, 22, 15, 0, 0, time.UTC)
	want := time.Date(2025, 6, 5, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, want, schedule.NextDigest(now, schedule.FrequencyDaily))

	// Early morning still defers to tomorrow, never today.
	now = time.Date(2025, 6, 4, 2, 0, 0, 0, time.UTC)
	want = time.Date(2025, 6, 5, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, want, schedule.NextDigest(now, schedule.FrequencyDaily))
}

func TestNextDigestWeekly(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "wednesday goes to next monday",
			now:  time.Date(2025, 6, 4, 10, 0, 0, 0, time.UTC), // Wednesday
			want: time.Date(2025, 6, 9, 9, 0, 0, 0, time.UTC),  // Monday
		},
		{
			name: "sunday goes to tomorrow",
			now:  time.Date(2025, 6, 8, 10, 0, 0, 0, time.UTC), // Sunday
			want: time.Date(2025, 6, 9, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "monday morning waits a full week",
			now:  time.Date(2025, 6, 9, 7, 30, 0, 0, time.UTC), // Monday before 09:00
			want: time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "monday evening waits a full week",
			now:  time.Date(2025, 6, 9, 22, 0, 0, 0, time.UTC),
			want: time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "saturday",
			now:  time.Date(2025, 6, 7, 12, 0, 0, 0, time.UTC),
			want: time.Date(2025, 6, 9, 9, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := schedule.NextDigest(tt.now, schedule.FrequencyWeekly)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, time.Monday, got.Weekday())
			assert.Equal(t, 9, got.Hour())
			assert.True(t, got.After(tt.now), "weekly digest must be strictly in the future")
		})
	}
}

func TestNextDigestUnknownFrequency(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 4, 14, 37, 0, 0, time.UTC)
	assert.Equal(t, now.Add(time.Hour), schedule.NextDigest(now, schedule.Frequency("fortnightly")))
	assert.Equal(t, now.Add(time.Hour), schedule.NextDigest(now, ""))
}
