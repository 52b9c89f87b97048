package dto

// CounselorDashboardResponse summarises a counselor's own pipeline.
type CounselorDashboardResponse struct {
	TotalInquiries int `json:"total_inquiries"`
	InquiriesToday int `json:"inquiries_today"`
	HotLeads       int `json:"hot_leads"`
	Enrolled       int `json:"enrolled"`
}

// HRDashboardResponse summarises admissions and fee collection.
type HRDashboardResponse struct {
	TotalStudents      int     `json:"total_students"`
	ActiveStudents     int     `json:"active_students"`
	TotalFeesCollected float64 `json:"total_fees_collected"`
	FeesCollectedToday float64 `json:"fees_collected_today"`
}

// TrainerDashboardResponse lists the trainer's schedule for today.
type TrainerDashboardResponse struct {
	TodaysBatches []TodaysBatch `json:"todays_batches"`
	TotalBatches  int           `json:"total_batches"`
}

// TodaysBatch is one scheduled class in a trainer dashboard.
type TodaysBatch struct {
	ID            string  `json:"id"`
	BatchName     string  `json:"batch_name"`
	Course        string  `json:"course"`
	ClassroomName *string `json:"classroom_name,omitempty"`
	StartTime     *string `json:"start_time,omitempty"`
	EndTime       *string `json:"end_time,omitempty"`
	ZoomLink      *string `json:"zoom_link,omitempty"`
}

// ManagerDashboardResponse aggregates organisation-wide counters.
type ManagerDashboardResponse struct {
	TotalInquiries int     `json:"total_inquiries"`
	TotalStudents  int     `json:"total_students"`
	TotalFees      float64 `json:"total_fees"`
	Placements     int     `json:"placements"`
}

// PlacementDashboardResponse summarises an officer's outreach activity.
type PlacementDashboardResponse struct {
	TotalOutreach int `json:"total_outreach"`
	OutreachToday int `json:"outreach_today"`
}
