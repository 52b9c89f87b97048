package dto

import "github.com/vitalkonsult/vk-api/internal/filter"

// AttendanceHistoryResponse carries the grouped per-batch view for one
// date plus overall totals.
type AttendanceHistoryResponse struct {
	Date    string               `json:"date"`
	Groups  []filter.BatchGroup  `json:"groups"`
	Total   int                  `json:"total"`
	Present int                  `json:"present"`
	Absent  int                  `json:"absent"`
}
