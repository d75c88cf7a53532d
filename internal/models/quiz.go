package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Difficulty selects the framing of generated questions. It only affects
// prompt wording, never the structural contract.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty normalises a user-supplied difficulty, defaulting to medium.
func ParseDifficulty(raw string) Difficulty {
	switch Difficulty(raw) {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return Difficulty(raw)
	default:
		return DifficultyMedium
	}
}

// Question is one multiple-choice question with a 0-based correct index.
type Question struct {
	Prompt      string   `json:"prompt"`
	Choices     []string `json:"choices"`
	Answer      int      `json:"answer"`
	Explanation string   `json:"explanation,omitempty"`
}

// QuestionList stores questions as a JSON column.
type QuestionList []Question

// Value implements driver.Valuer.
func (q QuestionList) Value() (driver.Value, error) {
	return json.Marshal(q)
}

// Scan implements sql.Scanner.
func (q *QuestionList) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, q)
	case string:
		return json.Unmarshal([]byte(v), q)
	case nil:
		*q = nil
		return nil
	default:
		return fmt.Errorf("unsupported question list source %T", src)
	}
}

// AnswerList stores submitted choice indices as a JSON column.
type AnswerList []int

// Value implements driver.Valuer.
func (a AnswerList) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner.
func (a *AnswerList) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	case nil:
		*a = nil
		return nil
	default:
		return fmt.Errorf("unsupported answer list source %T", src)
	}
}

// QuizAttempt is one generated, student-specific question set. Once scored it
// is immutable; re-takes create new attempts.
type QuizAttempt struct {
	ID         string       `db:"id" json:"id"`
	StudentID  string       `db:"student_id" json:"student_id"`
	CourseID   string       `db:"course_id" json:"course_id"`
	Week       int          `db:"week" json:"week"`
	Difficulty Difficulty   `db:"difficulty" json:"difficulty"`
	Questions  QuestionList `db:"questions" json:"questions"`
	Answers    AnswerList   `db:"answers" json:"answers,omitempty"`
	Score      *float64     `db:"score" json:"score,omitempty"`
	Scored     bool         `db:"scored" json:"scored"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
	ScoredAt   *time.Time   `db:"scored_at" json:"scored_at,omitempty"`
}

// PresentedQuestion is a question stripped of its answer for delivery to the
// student.
type PresentedQuestion struct {
	Prompt  string   `json:"prompt"`
	Choices []string `json:"choices"`
}

// Presented returns the attempt's questions without correct-choice markers.
func (a *QuizAttempt) Presented() []PresentedQuestion {
	out := make([]PresentedQuestion, len(a.Questions))
	for i, q := range a.Questions {
		out[i] = PresentedQuestion{Prompt: q.Prompt, Choices: q.Choices}
	}
	return out
}

// QuizResult is the outcome of scoring a submitted attempt.
type QuizResult struct {
	AttemptID string  `json:"attempt_id"`
	Score     float64 `json:"score"`
	Correct   int     `json:"correct"`
	Total     int     `json:"total"`
	Incorrect []int   `json:"incorrect"`
}
