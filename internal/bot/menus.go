package bot

import (
	"fmt"

	tele "gopkg.in/telebot.v3"

	"github.com/coursemate/coursemate-api/internal/models"
)

const (
	btnTextMaterials = "📚 Materials"
	btnTextQuiz      = "📝 Take Quiz"
	btnTextResults   = "📊 My Results"
	btnTextUpload    = "📤 Upload Material"
	btnTextMyUploads = "🗂 My Uploads"
)

func studentMenu() *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{ResizeKeyboard: true}
	m.Reply(
		m.Row(m.Text(btnTextMaterials), m.Text(btnTextQuiz)),
		m.Row(m.Text(btnTextResults)),
	)
	return m
}

func professorMenu() *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{ResizeKeyboard: true}
	m.Reply(
		m.Row(m.Text(btnTextUpload), m.Text(btnTextMyUploads)),
	)
	return m
}

func universityKeyboard(prefix string, universities []models.University) *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(universities))
	for _, u := range universities {
		rows = append(rows, m.Row(m.Data(u.Name, prefix+u.ID)))
	}
	m.Inline(rows...)
	return m
}

func majorKeyboard(prefix string, majors []models.Major) *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(majors))
	for _, mj := range majors {
		rows = append(rows, m.Row(m.Data(mj.Name, prefix+mj.ID)))
	}
	m.Inline(rows...)
	return m
}

func yearKeyboard(prefix string, maxYear int) *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	row := tele.Row{}
	for y := 1; y <= maxYear; y++ {
		row = append(row, m.Data(fmt.Sprintf("Year %d", y), fmt.Sprintf("%s%d", prefix, y)))
	}
	m.Inline(m.Row(row...))
	return m
}

func courseKeyboard(prefix string, courses []models.Course) *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(courses))
	for _, course := range courses {
		rows = append(rows, m.Row(m.Data(course.Name, prefix+course.ID)))
	}
	m.Inline(rows...)
	return m
}

func weekKeyboard(prefix string, weeks []int) *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0)
	row := tele.Row{}
	for _, w := range weeks {
		row = append(row, m.Data(fmt.Sprintf("Week %d", w), fmt.Sprintf("%s%d", prefix, w)))
		if len(row) == 4 {
			rows = append(rows, m.Row(row...))
			row = tele.Row{}
		}
	}
	if len(row) > 0 {
		rows = append(rows, m.Row(row...))
	}
	m.Inline(rows...)
	return m
}

func difficultyKeyboard(prefix string) *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	m.Inline(m.Row(
		m.Data("🟢 Easy", prefix+string(models.DifficultyEasy)),
		m.Data("🟡 Medium", prefix+string(models.DifficultyMedium)),
		m.Data("🔴 Hard", prefix+string(models.DifficultyHard)),
	))
	return m
}
