package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2024, 5, 15, 14, 30, 0, 0, time.Local)

func day(offset int) time.Time {
	return testNow.AddDate(0, 0, offset)
}

func datePtr(t time.Time) *time.Time { return &t }

func TestInBucketAllPassesEverything(t *testing.T) {
	assert.True(t, InBucket(day(-30), BucketAll, nil, nil, testNow))
	assert.True(t, InBucket(day(30), BucketAll, nil, nil, testNow))
	assert.True(t, InBucket(time.Time{}, BucketAll, nil, nil, testNow))
}

func TestInBucketUnknownBehavesAsAll(t *testing.T) {
	assert.True(t, InBucket(day(-30), DateBucket("fortnight"), nil, nil, testNow))
}

func TestInBucketToday(t *testing.T) {
	morning := time.Date(2024, 5, 15, 0, 0, 1, 0, time.Local)
	night := time.Date(2024, 5, 15, 23, 59, 0, 0, time.Local)

	assert.True(t, InBucket(morning, BucketToday, nil, nil, testNow))
	assert.True(t, InBucket(night, BucketToday, nil, nil, testNow))
	assert.False(t, InBucket(day(-1), BucketToday, nil, nil, testNow))
	assert.False(t, InBucket(day(1), BucketToday, nil, nil, testNow))
}

func TestInBucketYesterday(t *testing.T) {
	assert.True(t, InBucket(day(-1), BucketYesterday, nil, nil, testNow))
	assert.False(t, InBucket(day(0), BucketYesterday, nil, nil, testNow))
	assert.False(t, InBucket(day(-2), BucketYesterday, nil, nil, testNow))
}

func TestInBucketLastWeek(t *testing.T) {
	assert.True(t, InBucket(day(-7), BucketLastWeek, nil, nil, testNow))
	assert.True(t, InBucket(day(-3), BucketLastWeek, nil, nil, testNow))
	assert.True(t, InBucket(day(0), BucketLastWeek, nil, nil, testNow))
	// Upper bound is open-ended.
	assert.True(t, InBucket(day(5), BucketLastWeek, nil, nil, testNow))
	assert.False(t, InBucket(day(-8), BucketLastWeek, nil, nil, testNow))
}

func TestInBucketCustomBothBounds(t *testing.T) {
	start := day(-5)
	end := day(-2)

	assert.True(t, InBucket(day(-5), BucketCustom, datePtr(start), datePtr(end), testNow))
	assert.True(t, InBucket(day(-3), BucketCustom, datePtr(start), datePtr(end), testNow))
	assert.True(t, InBucket(day(-2), BucketCustom, datePtr(start), datePtr(end), testNow))
	assert.False(t, InBucket(day(-6), BucketCustom, datePtr(start), datePtr(end), testNow))
	assert.False(t, InBucket(day(-1), BucketCustom, datePtr(start), datePtr(end), testNow))
}

func TestInBucketCustomEndIsInclusiveOfWholeDay(t *testing.T) {
	end := time.Date(2024, 5, 13, 0, 0, 0, 0, time.Local)
	lateThatDay := time.Date(2024, 5, 13, 22, 45, 0, 0, time.Local)

	assert.True(t, InBucket(lateThatDay, BucketCustom, nil, datePtr(end), testNow))
}

func TestInBucketCustomOneSided(t *testing.T) {
	start := day(-3)

	assert.True(t, InBucket(day(-3), BucketCustom, datePtr(start), nil, testNow))
	assert.True(t, InBucket(day(10), BucketCustom, datePtr(start), nil, testNow))
	assert.False(t, InBucket(day(-4), BucketCustom, datePtr(start), nil, testNow))

	end := day(-3)
	assert.True(t, InBucket(day(-10), BucketCustom, nil, datePtr(end), testNow))
	assert.False(t, InBucket(day(-2), BucketCustom, nil, datePtr(end), testNow))
}

func TestInBucketCustomNoBoundsPassesEverything(t *testing.T) {
	assert.True(t, InBucket(day(-100), BucketCustom, nil, nil, testNow))
	assert.True(t, InBucket(day(100), BucketCustom, nil, nil, testNow))
}

func TestInBucketZeroDateExcludedExceptAll(t *testing.T) {
	var zero time.Time

	assert.True(t, InBucket(zero, BucketAll, nil, nil, testNow))
	assert.False(t, InBucket(zero, BucketToday, nil, nil, testNow))
	assert.False(t, InBucket(zero, BucketYesterday, nil, nil, testNow))
	assert.False(t, InBucket(zero, BucketLastWeek, nil, nil, testNow))
	assert.False(t, InBucket(zero, BucketCustom, nil, nil, testNow))
}
