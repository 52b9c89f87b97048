package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresentOnline  AttendanceStatus = "PRESENT_ONLINE"
	AttendanceStatusPresentOffline AttendanceStatus = "PRESENT_OFFLINE"
	AttendanceStatusPresent        AttendanceStatus = "PRESENT"
	AttendanceStatusAbsent         AttendanceStatus = "ABSENT"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresentOnline, AttendanceStatusPresentOffline,
		AttendanceStatusPresent, AttendanceStatusAbsent:
		return true
	default:
		return false
	}
}

// Present reports whether the status counts toward the present tally.
// Unrecognised statuses count as absent.
func (s AttendanceStatus) Present() bool {
	switch s {
	case AttendanceStatusPresentOnline, AttendanceStatusPresentOffline, AttendanceStatusPresent:
		return true
	default:
		return false
	}
}

// Attendance is a single per-student attendance row. One row per
// (student, date).
type Attendance struct {
	ID          string           `db:"id" json:"id"`
	BatchID     string           `db:"batch_id" json:"batch"`
	StudentID   string           `db:"student_id" json:"student"`
	Date        time.Time        `db:"date" json:"date"`
	LectureTime *string          `db:"lecture_time" json:"lecture_time,omitempty"`
	Status      AttendanceStatus `db:"status" json:"status"`
	TopicTaught *string          `db:"topic_taught" json:"topic_taught,omitempty"`
	Remarks     *string          `db:"remarks" json:"remarks,omitempty"`
	TrainerID   *string          `db:"trainer_id" json:"trainer,omitempty"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
}

// AttendanceRecord extends Attendance with display names.
type AttendanceRecord struct {
	Attendance
	BatchName   string  `db:"batch_name" json:"batch_name"`
	StudentName string  `db:"student_name" json:"student_name"`
	TrainerName *string `db:"trainer_name" json:"trainer_name,omitempty"`
}

// AttendanceFilter captures the repository-level scope for attendance lookups.
type AttendanceFilter struct {
	Date      *time.Time
	BatchID   string
	TrainerID string
}
