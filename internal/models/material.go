package models

import "time"

// Material is one uploaded document tied to a course and week. It keeps
// referencing its original course even if the uploading professor is later
// reassigned.
type Material struct {
	ID          string    `db:"id" json:"id"`
	CourseID    string    `db:"course_id" json:"course_id"`
	UploaderID  string    `db:"uploader_id" json:"uploader_id"`
	Filename    string    `db:"filename" json:"filename"`
	Filepath    string    `db:"filepath" json:"filepath"`
	Week        int       `db:"week" json:"week"`
	Description string    `db:"description" json:"description,omitempty"`
	UploadedAt  time.Time `db:"uploaded_at" json:"uploaded_at"`
}
