package score

import "time"

// Entry is a student's running score for one enrolled subject.
type Entry struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	Subject   string    `json:"subject"`
	Score     int       `json:"score"`
	UpdatedAt time.Time `json:"updated_at"` // UTC
}
