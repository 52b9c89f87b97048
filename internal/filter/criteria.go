package filter

import (
	"strings"
	"time"

	"github.com/vitalkonsult/vk-api/internal/models"
)

// Criteria holds the optional, independently toggled filters a list view
// can apply. The zero value passes every record; clearing a view's
// filters is just resetting its criteria to the zero value.
type Criteria struct {
	// Search is a case-insensitive substring match over name and mobile.
	Search string
	// Course is a case-sensitive exact match.
	Course string
	// College and CreatedBy are case-insensitive substring matches.
	College   string
	CreatedBy string

	DateFilter DateBucket
	StartDate  *time.Time
	EndDate    *time.Time
}

// IsZero reports whether no filter is active.
func (c Criteria) IsZero() bool {
	return c.Search == "" && c.Course == "" && c.College == "" &&
		c.CreatedBy == "" && c.DateFilter == BucketAll &&
		c.StartDate == nil && c.EndDate == nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Inquiries returns the inquiries matching every active criterion. The
// predicates AND together and commute; the input slice is left untouched
// and relative order is preserved.
func Inquiries(items []models.InquiryDetail, c Criteria, now time.Time) []models.InquiryDetail {
	result := make([]models.InquiryDetail, 0, len(items))
	for _, item := range items {
		if !InBucket(item.CreatedAt, c.DateFilter, c.StartDate, c.EndDate, now) {
			continue
		}
		if c.Course != "" && item.InterestedCourse != c.Course {
			continue
		}
		if c.College != "" && !containsFold(item.College, c.College) {
			continue
		}
		if c.CreatedBy != "" && !containsFold(derefOrEmpty(item.CreatedByName), c.CreatedBy) {
			continue
		}
		if c.Search != "" && !containsFold(item.Name, c.Search) && !containsFold(item.Mobile, c.Search) {
			continue
		}
		result = append(result, item)
	}
	return result
}

// Students returns the students matching every active criterion. Text
// filters read the nested inquiry details the way the list views do;
// the date bucket applies to the enrollment date.
func Students(items []models.StudentDetail, c Criteria, now time.Time) []models.StudentDetail {
	result := make([]models.StudentDetail, 0, len(items))
	for _, item := range items {
		if !InBucket(item.EnrollmentDate, c.DateFilter, c.StartDate, c.EndDate, now) {
			continue
		}
		if c.Course != "" && item.Course != c.Course {
			continue
		}
		if c.College != "" && !containsFold(item.InquiryDetails.College, c.College) {
			continue
		}
		if c.CreatedBy != "" && !containsFold(derefOrEmpty(item.InquiryDetails.CreatedByName), c.CreatedBy) {
			continue
		}
		if c.Search != "" && !containsFold(item.InquiryDetails.Name, c.Search) && !containsFold(item.Mobile, c.Search) {
			continue
		}
		result = append(result, item)
	}
	return result
}
