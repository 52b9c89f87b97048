// Package filter implements the pure, in-memory record filter engine used
// by the list and history views: date-bucket filtering, multi-field filter
// composition, per-batch attendance grouping and the today's-schedule
// selector. Every function is a pure projection over its inputs; source
// slices are never mutated and relative record order is preserved.
package filter

import "time"

// DateBucket is a named relative or explicit date range.
type DateBucket string

const (
	BucketAll       DateBucket = ""
	BucketToday     DateBucket = "today"
	BucketYesterday DateBucket = "yesterday"
	BucketLastWeek  DateBucket = "last_week"
	BucketCustom    DateBucket = "custom"
)

// startOfDay normalises a timestamp to local midnight. Time-of-day is
// irrelevant to every bucket comparison.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// endOfDay returns the last representable instant of t's calendar day.
func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// InBucket reports whether a record timestamp falls inside the named
// bucket relative to now. Unknown bucket names behave as BucketAll. A
// zero timestamp is excluded from every bucket except BucketAll. For
// BucketCustom either bound may be nil, giving a one-sided range; with
// both bounds nil every record passes.
func InBucket(ts time.Time, bucket DateBucket, start, end *time.Time, now time.Time) bool {
	day := startOfDay(ts)
	today := startOfDay(now)

	switch bucket {
	case BucketToday:
		return !ts.IsZero() && day.Equal(today)
	case BucketYesterday:
		return !ts.IsZero() && day.Equal(today.AddDate(0, 0, -1))
	case BucketLastWeek:
		// Open-ended upper bound: today and future-dated records pass.
		return !ts.IsZero() && !day.Before(today.AddDate(0, 0, -7))
	case BucketCustom:
		if ts.IsZero() {
			return false
		}
		if start != nil && ts.Before(startOfDay(*start)) {
			return false
		}
		if end != nil && ts.After(endOfDay(*end)) {
			return false
		}
		return true
	default:
		return true
	}
}
