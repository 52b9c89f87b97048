package models

import "time"

// Batch is a scheduled recurring class cohort.
type Batch struct {
	ID            string    `db:"id" json:"id"`
	Course        string    `db:"course" json:"course"`
	BatchName     string    `db:"batch_name" json:"batch_name"`
	Trainer       *string   `db:"trainer" json:"trainer,omitempty"`
	StartDate     time.Time `db:"start_date" json:"start_date"`
	ClassroomName *string   `db:"classroom_name" json:"classroom_name,omitempty"`
	StartTime     *string   `db:"start_time" json:"start_time,omitempty"`
	EndTime       *string   `db:"end_time" json:"end_time,omitempty"`
	// DaysOfWeek holds comma-separated weekday abbreviations, e.g. "Mon,Wed,Fri".
	DaysOfWeek *string `db:"days_of_week" json:"days_of_week,omitempty"`

	ZoomHostAccount    *string `db:"zoom_host_account" json:"zoom_host_account,omitempty"`
	ZoomHostPassword   *string `db:"zoom_host_password" json:"zoom_host_password,omitempty"`
	ZoomMeetingID      *string `db:"zoom_meeting_id" json:"zoom_meeting_id,omitempty"`
	ZoomMeetingPasscode *string `db:"zoom_meeting_passcode" json:"zoom_meeting_passcode,omitempty"`
	ZoomLink           *string `db:"zoom_link" json:"zoom_link,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// BatchDetail extends Batch with trainer metadata.
type BatchDetail struct {
	Batch
	TrainerName *string `db:"trainer_name" json:"trainer_name,omitempty"`
}

// BatchFilter captures the repository-level scope for listing batches.
type BatchFilter struct {
	TrainerID string
	Course    string
}
