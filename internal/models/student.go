package models

import "time"

// Student self-registers and stays pending until an admin approves it.
// Approval gates material access and quiz requests.
type Student struct {
	ID           string     `db:"id" json:"id"`
	TelegramID   *string    `db:"telegram_id" json:"telegram_id,omitempty"`
	StudentNo    string     `db:"student_no" json:"student_no"`
	FullName     string     `db:"full_name" json:"full_name"`
	UniversityID string     `db:"university_id" json:"university_id"`
	MajorID      string     `db:"major_id" json:"major_id"`
	Year         int        `db:"year" json:"year"`
	Approved     bool       `db:"approved" json:"approved"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	ApprovedAt   *time.Time `db:"approved_at" json:"approved_at,omitempty"`
}
