package models

import "time"

// FeeMode enumerates supported payment modes.
type FeeMode string

const (
	FeeModeCash   FeeMode = "CASH"
	FeeModeUPI    FeeMode = "UPI"
	FeeModeNEFT   FeeMode = "NEFT"
	FeeModeRTGS   FeeMode = "RTGS"
	FeeModeCheque FeeMode = "CHEQUE"
)

// Valid returns true when the mode is a supported value.
func (m FeeMode) Valid() bool {
	switch m {
	case FeeModeCash, FeeModeUPI, FeeModeNEFT, FeeModeRTGS, FeeModeCheque:
		return true
	default:
		return false
	}
}

// Fee is a single payment collected against a student.
type Fee struct {
	ID            string    `db:"id" json:"id"`
	StudentID     string    `db:"student_id" json:"student"`
	Amount        float64   `db:"amount" json:"amount"`
	Mode          FeeMode   `db:"mode" json:"mode"`
	UTR           *string   `db:"utr" json:"utr,omitempty"`
	DateCollected time.Time `db:"date_collected" json:"date_collected"`
	CollectedBy   *string   `db:"collected_by" json:"collected_by,omitempty"`
}

// FeeDetail extends Fee with student and collector names.
type FeeDetail struct {
	Fee
	StudentName     string  `db:"student_name" json:"student_name"`
	CollectedByName *string `db:"collected_by_name" json:"collected_by_name,omitempty"`
}

// FeeFilter captures the repository-level scope for listing fees.
type FeeFilter struct {
	StudentID string
	Page      int
	PageSize  int
}
