package models

// Rate-limited professor actions.
const (
	ActionUpload = "upload"
)

// RateLimit tracks per-professor daily action counters.
type RateLimit struct {
	ID          string `db:"id" json:"id"`
	ProfessorID string `db:"professor_id" json:"professor_id"`
	Action      string `db:"action" json:"action"`
	Day         string `db:"day" json:"day"`
	Count       int    `db:"count" json:"count"`
}

// Totals aggregates global counters for the admin stats view.
type Totals struct {
	Universities     int `db:"universities" json:"universities"`
	Majors           int `db:"majors" json:"majors"`
	Courses          int `db:"courses" json:"courses"`
	Professors       int `db:"professors" json:"professors"`
	ApprovedStudents int `db:"approved_students" json:"approved_students"`
	PendingStudents  int `db:"pending_students" json:"pending_students"`
	Materials        int `db:"materials" json:"materials"`
	QuizAttempts     int `db:"quiz_attempts" json:"quiz_attempts"`
}
