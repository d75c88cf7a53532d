package models

import "time"

// Professor authenticates with a shared access code and is bound to at most
// one course at a time. Reassignment updates CourseID in place.
type Professor struct {
	ID         string    `db:"id" json:"id"`
	FullName   string    `db:"full_name" json:"full_name"`
	Code       string    `db:"code" json:"-"`
	TelegramID *string   `db:"telegram_id" json:"telegram_id,omitempty"`
	CourseID   *string   `db:"course_id" json:"course_id,omitempty"`
	Active     bool      `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
