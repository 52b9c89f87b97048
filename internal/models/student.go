package models

import "time"

// StudentStatus represents a student's enrollment lifecycle state.
type StudentStatus string

const (
	StudentStatusActive    StudentStatus = "ACTIVE"
	StudentStatusCompleted StudentStatus = "COMPLETED"
	StudentStatusDropped   StudentStatus = "DROPPED"
)

// Valid returns true when the status is a supported value.
func (s StudentStatus) Valid() bool {
	switch s {
	case StudentStatusActive, StudentStatusCompleted, StudentStatusDropped:
		return true
	default:
		return false
	}
}

// Student is an enrolled record linked to exactly one originating inquiry.
type Student struct {
	ID             string        `db:"id" json:"id"`
	InquiryID      string        `db:"inquiry_id" json:"inquiry"`
	Mobile         string        `db:"mobile" json:"mobile"`
	Email          string        `db:"email" json:"email"`
	Course         string        `db:"course" json:"course"`
	TotalFees      float64       `db:"total_fees" json:"total_fees"`
	BatchID        *string       `db:"batch_id" json:"batch,omitempty"`
	EnrollmentDate time.Time     `db:"enrollment_date" json:"enrollment_date"`
	Status         StudentStatus `db:"status" json:"status"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}

// StudentDetail extends Student with its originating inquiry, batch name
// and collected fees.
type StudentDetail struct {
	Student
	BatchName      *string       `db:"batch_name" json:"batch_name,omitempty"`
	InquiryDetails InquiryDetail `db:"-" json:"inquiry_details"`
	Fees           []FeeDetail   `db:"-" json:"fees,omitempty"`
}

// StudentFilter captures the repository-level scope for listing students.
type StudentFilter struct {
	Mobile  string
	BatchID string
	Page    int
	PageSize int
}
