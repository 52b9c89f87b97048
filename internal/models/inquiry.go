package models

import "time"

// LeadStatus captures the sales temperature of an inquiry.
type LeadStatus string

const (
	LeadStatusHot      LeadStatus = "HOT"
	LeadStatusWarm     LeadStatus = "WARM"
	LeadStatusCold     LeadStatus = "COLD"
	LeadStatusEnrolled LeadStatus = "ENROLLED"
)

// Valid returns true when the lead status is a supported value.
func (s LeadStatus) Valid() bool {
	switch s {
	case LeadStatusHot, LeadStatusWarm, LeadStatusCold, LeadStatusEnrolled:
		return true
	default:
		return false
	}
}

// Inquiry is a prospective-student lead captured before enrollment.
type Inquiry struct {
	ID               string     `db:"id" json:"id"`
	Name             string     `db:"name" json:"name"`
	Mobile           string     `db:"mobile" json:"mobile"`
	Email            string     `db:"email" json:"email"`
	College          string     `db:"college" json:"college"`
	Degree           string     `db:"degree" json:"degree"`
	Branch           string     `db:"branch" json:"branch"`
	PassoutYear      int        `db:"passout_year" json:"passout_year"`
	InterestedCourse string     `db:"interested_course" json:"interested_course"`
	Source           string     `db:"source" json:"source"`
	LeadStatus       LeadStatus `db:"lead_status" json:"lead_status"`
	CreatedBy        *string    `db:"created_by" json:"created_by,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// InquiryDetail extends Inquiry with creator and admission metadata.
type InquiryDetail struct {
	Inquiry
	CreatedByName *string `db:"created_by_name" json:"created_by_name,omitempty"`
	IsAdmitted    bool    `db:"is_admitted" json:"is_admitted"`
}

// InquiryFilter captures the repository-level scope for listing inquiries.
// In-memory refinement (date buckets, text matching) belongs to the filter
// engine, not the repository.
type InquiryFilter struct {
	CreatedBy string
	Search    string
	Page      int
	PageSize  int
}

// InquiryCountFilter narrows dashboard counts.
type InquiryCountFilter struct {
	CreatedBy  string
	Since      *time.Time
	LeadStatus *LeadStatus
}
