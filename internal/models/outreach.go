package models

import "time"

// OutreachMode enumerates how a company was contacted.
type OutreachMode string

const (
	OutreachModeCall     OutreachMode = "CALL"
	OutreachModeEmail    OutreachMode = "EMAIL"
	OutreachModeLinkedIn OutreachMode = "LINKEDIN"
	OutreachModeVisit    OutreachMode = "VISIT"
)

// Valid returns true when the mode is a supported value.
func (m OutreachMode) Valid() bool {
	switch m {
	case OutreachModeCall, OutreachModeEmail, OutreachModeLinkedIn, OutreachModeVisit:
		return true
	default:
		return false
	}
}

// PlacementOutreach is a single company-contact activity by a placement officer.
type PlacementOutreach struct {
	ID          string       `db:"id" json:"id"`
	OfficerID   *string      `db:"officer_id" json:"officer,omitempty"`
	CompanyName string       `db:"company_name" json:"company_name"`
	ContactName string       `db:"contact_name" json:"contact_name"`
	Mode        OutreachMode `db:"mode" json:"mode"`
	PhoneEmail  string       `db:"phone_email" json:"phone_email"`
	Remark      *string      `db:"remark" json:"remark,omitempty"`
	Date        time.Time    `db:"date" json:"date"`
}

// PlacementOutreachDetail extends PlacementOutreach with the officer name.
type PlacementOutreachDetail struct {
	PlacementOutreach
	OfficerName *string `db:"officer_name" json:"officer_name,omitempty"`
}

// OutreachFilter captures the repository-level scope for listing outreach.
type OutreachFilter struct {
	OfficerID string
	Page      int
	PageSize  int
}
