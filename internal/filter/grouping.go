package filter

import "github.com/vitalkonsult/vk-api/internal/models"

// BatchGroup is the derived per-batch attendance summary for one date.
// It is rebuilt from the raw records on every computation and never
// persisted.
type BatchGroup struct {
	BatchID   string                    `json:"batch"`
	BatchName string                    `json:"batch_name"`
	Topic     *string                   `json:"topic_taught,omitempty"`
	Remarks   *string                   `json:"remarks,omitempty"`
	Present   int                       `json:"present"`
	Absent    int                       `json:"absent"`
	Records   []models.AttendanceRecord `json:"records"`
}

// GroupAttendance partitions a flat attendance list into per-batch groups
// with present/absent tallies. Groups appear in first-seen order and each
// group's records keep their fetched order. The first record seen for a
// batch fixes the group's name, topic and remarks; later records never
// overwrite them. Every input record lands in exactly one group, so
// present+absent always equals the group's record count.
func GroupAttendance(records []models.AttendanceRecord) []BatchGroup {
	groups := make([]BatchGroup, 0)
	index := make(map[string]int)

	for _, record := range records {
		i, ok := index[record.BatchID]
		if !ok {
			i = len(groups)
			index[record.BatchID] = i
			groups = append(groups, BatchGroup{
				BatchID:   record.BatchID,
				BatchName: record.BatchName,
				Topic:     record.TopicTaught,
				Remarks:   record.Remarks,
			})
		}
		groups[i].Records = append(groups[i].Records, record)
		if record.Status.Present() {
			groups[i].Present++
		} else {
			groups[i].Absent++
		}
	}

	return groups
}
