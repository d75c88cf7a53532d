package models

import "time"

// Course is identified by (university, major, year, name).
type Course struct {
	ID           string    `db:"id" json:"id"`
	UniversityID string    `db:"university_id" json:"university_id"`
	MajorID      string    `db:"major_id" json:"major_id"`
	Year         int       `db:"year" json:"year"`
	Name         string    `db:"name" json:"name"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// CourseFilter captures filtering options for listing courses.
type CourseFilter struct {
	UniversityID string
	MajorID      string
	Year         int
}
