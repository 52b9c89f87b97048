package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalkonsult/vk-api/internal/models"
)

func batch(name string, days *string) models.BatchDetail {
	return models.BatchDetail{Batch: models.Batch{BatchName: name, DaysOfWeek: days}}
}

func TestTodaysBatchesMatchesWeekday(t *testing.T) {
	// 2024-05-15 is a Wednesday.
	wednesday := time.Date(2024, 5, 15, 9, 0, 0, 0, time.Local)
	batches := []models.BatchDetail{
		batch("Java Morning", strPtr("Mon,Wed,Fri")),
		batch("DSA Evening", strPtr("Tue,Thu")),
		batch("Weekend Python", strPtr("Sat,Sun")),
	}

	got := TodaysBatches(batches, wednesday)
	require.Len(t, got, 1)
	assert.Equal(t, "Java Morning", got[0].BatchName)

	tuesday := time.Date(2024, 5, 14, 9, 0, 0, 0, time.Local)
	got = TodaysBatches(batches, tuesday)
	require.Len(t, got, 1)
	assert.Equal(t, "DSA Evening", got[0].BatchName)
}

func TestTodaysBatchesSkipsEmptySchedule(t *testing.T) {
	monday := time.Date(2024, 5, 13, 9, 0, 0, 0, time.Local)
	batches := []models.BatchDetail{
		batch("No Schedule", nil),
		batch("Blank Schedule", strPtr("")),
		batch("Daily", strPtr("Sun,Mon,Tue,Wed,Thu,Fri,Sat")),
	}

	got := TodaysBatches(batches, monday)
	require.Len(t, got, 1)
	assert.Equal(t, "Daily", got[0].BatchName)
}

func TestWeekdayAbbrev(t *testing.T) {
	assert.Equal(t, "Sun", WeekdayAbbrev(time.Sunday))
	assert.Equal(t, "Wed", WeekdayAbbrev(time.Wednesday))
	assert.Equal(t, "Sat", WeekdayAbbrev(time.Saturday))
}
