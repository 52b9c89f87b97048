package filter

import (
	"strings"
	"time"

	"github.com/vitalkonsult/vk-api/internal/models"
)

var weekdayAbbrev = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// WeekdayAbbrev maps a weekday to the canonical three-letter form used in
// the days_of_week field.
func WeekdayAbbrev(d time.Weekday) string {
	return weekdayAbbrev[int(d)%7]
}

// TodaysBatches selects the batches whose days_of_week membership contains
// the current weekday abbreviation. Batches without a days_of_week value
// are never selected.
func TodaysBatches(batches []models.BatchDetail, now time.Time) []models.BatchDetail {
	day := WeekdayAbbrev(now.Weekday())
	result := make([]models.BatchDetail, 0, len(batches))
	for _, batch := range batches {
		if batch.DaysOfWeek == nil || *batch.DaysOfWeek == "" {
			continue
		}
		if strings.Contains(*batch.DaysOfWeek, day) {
			result = append(result, batch)
		}
	}
	return result
}
