package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalkonsult/vk-api/internal/models"
)

func strPtr(s string) *string { return &s }

func inquiry(name, mobile, college, course, createdBy string, createdAt time.Time) models.InquiryDetail {
	return models.InquiryDetail{
		Inquiry: models.Inquiry{
			Name:             name,
			Mobile:           mobile,
			College:          college,
			InterestedCourse: course,
			CreatedAt:        createdAt,
		},
		CreatedByName: strPtr(createdBy),
	}
}

func sampleInquiries() []models.InquiryDetail {
	return []models.InquiryDetail{
		inquiry("Asha Rao", "9000000001", "MIT", "DSA", "priya", day(0)),
		inquiry("Vikram Shah", "9000000002", "XYZ College", "Java", "priya", day(-1)),
		inquiry("Neha Jain", "9000000003", "MIT", "Java", "rahul", day(-10)),
		inquiry("Arjun Mehta", "9000000004", "ABC Institute", "DSA", "rahul", day(-3)),
	}
}

func TestInquiriesZeroCriteriaReturnsAllInOrder(t *testing.T) {
	src := sampleInquiries()
	got := Inquiries(src, Criteria{}, testNow)

	require.Len(t, got, len(src))
	for i := range src {
		assert.Equal(t, src[i].Name, got[i].Name)
	}
}

func TestInquiriesDateBucketToday(t *testing.T) {
	src := []models.InquiryDetail{
		inquiry("Asha Rao", "9000000001", "MIT", "DSA", "priya", day(0)),
		inquiry("Vikram Shah", "9000000002", "XYZ", "Java", "priya", day(-1)),
	}

	got := Inquiries(src, Criteria{DateFilter: BucketToday}, testNow)
	require.Len(t, got, 1)
	assert.Equal(t, "MIT", got[0].College)
}

func TestInquiriesCourseIsExactAndCaseSensitive(t *testing.T) {
	src := sampleInquiries()

	got := Inquiries(src, Criteria{Course: "DSA"}, testNow)
	assert.Len(t, got, 2)

	got = Inquiries(src, Criteria{Course: "dsa"}, testNow)
	assert.Empty(t, got)
}

func TestInquiriesTextFiltersAreCaseInsensitiveSubstrings(t *testing.T) {
	src := sampleInquiries()

	got := Inquiries(src, Criteria{College: "mit"}, testNow)
	assert.Len(t, got, 2)

	got = Inquiries(src, Criteria{CreatedBy: "PRIYA"}, testNow)
	assert.Len(t, got, 2)

	got = Inquiries(src, Criteria{Search: "vikram"}, testNow)
	require.Len(t, got, 1)
	assert.Equal(t, "Vikram Shah", got[0].Name)

	got = Inquiries(src, Criteria{Search: "0000003"}, testNow)
	require.Len(t, got, 1)
	assert.Equal(t, "Neha Jain", got[0].Name)
}

func TestInquiriesCompositionEqualsIntersection(t *testing.T) {
	src := sampleInquiries()

	a := Criteria{Course: "Java"}
	b := Criteria{College: "mit"}
	both := Criteria{Course: "Java", College: "mit"}

	onlyA := Inquiries(src, a, testNow)
	onlyB := Inquiries(src, b, testNow)
	combined := Inquiries(src, both, testNow)

	intersection := make([]models.InquiryDetail, 0)
	for _, x := range onlyA {
		for _, y := range onlyB {
			if x.Name == y.Name {
				intersection = append(intersection, x)
			}
		}
	}

	require.Len(t, combined, len(intersection))
	for i := range combined {
		assert.Equal(t, intersection[i].Name, combined[i].Name)
	}
}

func TestInquiriesDoesNotMutateSource(t *testing.T) {
	src := sampleInquiries()
	snapshot := make([]models.InquiryDetail, len(src))
	copy(snapshot, src)

	_ = Inquiries(src, Criteria{Course: "DSA", DateFilter: BucketLastWeek}, testNow)

	require.Len(t, src, len(snapshot))
	for i := range snapshot {
		assert.Equal(t, snapshot[i].Name, src[i].Name)
		assert.Equal(t, snapshot[i].CreatedAt, src[i].CreatedAt)
	}
}

func TestInquiriesIdempotent(t *testing.T) {
	src := sampleInquiries()
	criteria := Criteria{College: "mit", DateFilter: BucketLastWeek}

	first := Inquiries(src, criteria, testNow)
	second := Inquiries(src, criteria, testNow)

	assert.Equal(t, first, second)
}

func TestInquiriesResetRestoresFullCollection(t *testing.T) {
	src := sampleInquiries()

	filtered := Inquiries(src, Criteria{Course: "DSA", DateFilter: BucketToday}, testNow)
	require.NotEqual(t, len(src), len(filtered))

	// Resetting filters means applying the zero-value criteria again.
	restored := Inquiries(src, Criteria{}, testNow)
	assert.Equal(t, src, restored)
}

func TestCriteriaIsZero(t *testing.T) {
	assert.True(t, Criteria{}.IsZero())
	assert.False(t, Criteria{Course: "DSA"}.IsZero())
	assert.False(t, Criteria{DateFilter: BucketToday}.IsZero())
	assert.False(t, Criteria{StartDate: datePtr(day(0))}.IsZero())
}

func student(name, mobile, college, course, createdBy string, enrolled time.Time) models.StudentDetail {
	return models.StudentDetail{
		Student: models.Student{
			Mobile:         mobile,
			Course:         course,
			EnrollmentDate: enrolled,
		},
		InquiryDetails: inquiry(name, mobile, college, course, createdBy, enrolled),
	}
}

func TestStudentsFiltersOnNestedInquiryDetails(t *testing.T) {
	src := []models.StudentDetail{
		student("Asha Rao", "9000000001", "MIT", "DSA", "priya", day(0)),
		student("Vikram Shah", "9000000002", "XYZ College", "Java", "rahul", day(-20)),
	}

	got := Students(src, Criteria{College: "xyz"}, testNow)
	require.Len(t, got, 1)
	assert.Equal(t, "Vikram Shah", got[0].InquiryDetails.Name)

	got = Students(src, Criteria{CreatedBy: "priya"}, testNow)
	require.Len(t, got, 1)
	assert.Equal(t, "Asha Rao", got[0].InquiryDetails.Name)

	got = Students(src, Criteria{DateFilter: BucketLastWeek}, testNow)
	require.Len(t, got, 1)
	assert.Equal(t, "Asha Rao", got[0].InquiryDetails.Name)
}

func TestStudentsSearchMatchesNameAndMobile(t *testing.T) {
	src := []models.StudentDetail{
		student("Asha Rao", "9000000001", "MIT", "DSA", "priya", day(0)),
		student("Vikram Shah", "9000000002", "XYZ", "Java", "rahul", day(0)),
	}

	got := Students(src, Criteria{Search: "asha"}, testNow)
	require.Len(t, got, 1)

	got = Students(src, Criteria{Search: "9000000002"}, testNow)
	require.Len(t, got, 1)
	assert.Equal(t, "Vikram Shah", got[0].InquiryDetails.Name)
}
