package bot

import (
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v3"

	"github.com/coursemate/coursemate-api/internal/models"
	"github.com/coursemate/coursemate-api/internal/service"
)

func (b *Bot) startRegistration(c tele.Context) error {
	ctx, cancel := requestContext()
	defer cancel()

	if _, err := b.svc.Students.FindByTelegram(ctx, senderID(c)); err == nil {
		return c.Send("You are already registered.")
	}

	universities, err := b.svc.Taxonomy.ListUniversities(ctx)
	if err != nil {
		return b.replyError(c, err)
	}
	if len(universities) == 0 {
		return c.Send("No universities are set up yet, please check back later.")
	}
	b.sessions.reset(c.Sender().ID)
	return c.Send("Pick your university:", universityKeyboard("reg_uni_", universities))
}

func (b *Bot) registrationUniversity(c tele.Context, universityID string) error {
	ctx, cancel := requestContext()
	defer cancel()

	sess := b.sessions.get(c.Sender().ID)
	sess.UniversityID = universityID

	majors, err := b.svc.Taxonomy.ListMajors(ctx, universityID)
	if err != nil {
		return b.replyError(c, err)
	}
	if len(majors) == 0 {
		return c.Send("That university has no majors yet.")
	}
	return c.Send("Pick your major:", majorKeyboard("reg_major_", majors))
}

func (b *Bot) registrationMajor(c tele.Context, majorID string) error {
	sess := b.sessions.get(c.Sender().ID)
	sess.MajorID = majorID
	return c.Send("Which year are you in?", yearKeyboard("reg_year_", 6))
}

func (b *Bot) registrationYear(c tele.Context, raw string) error {
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1 {
		return c.Send("Please pick a year from the buttons.")
	}
	sess := b.sessions.get(c.Sender().ID)
	sess.Year = year
	sess.State = stateRegisterStudentNo
	return c.Send("Enter your student number:")
}

func (b *Bot) registrationStudentNo(c tele.Context, sess *session) error {
	studentNo := strings.TrimSpace(c.Text())
	if len(studentNo) < 3 {
		return c.Send("That doesn't look like a student number, try again.")
	}
	sess.StudentNo = studentNo
	sess.State = stateRegisterFullName
	return c.Send("Enter your full name:")
}

func (b *Bot) registrationFullName(c tele.Context, sess *session) error {
	ctx, cancel := requestContext()
	defer cancel()

	_, err := b.svc.Students.Register(ctx, service.RegisterStudentRequest{
		TelegramID:   senderID(c),
		StudentNo:    sess.StudentNo,
		FullName:     strings.TrimSpace(c.Text()),
		UniversityID: sess.UniversityID,
		MajorID:      sess.MajorID,
		Year:         sess.Year,
	})
	b.sessions.reset(c.Sender().ID)
	if err != nil {
		return b.replyError(c, err)
	}
	return c.Send("Registration received. You'll be notified once an admin approves you.")
}

// student resolves the sender to an approved-or-pending student record.
func (b *Bot) student(c tele.Context) (*models.Student, error) {
	ctx, cancel := requestContext()
	defer cancel()
	return b.svc.Students.FindByTelegram(ctx, senderID(c))
}

func (b *Bot) handleMaterialsMenu(c tele.Context) error {
	return b.pickCourse(c, "mat_course_", "Pick a course to browse:")
}

// pickCourse lists the sender's program courses behind the given callback
// prefix. Shared by the materials and quiz flows.
func (b *Bot) pickCourse(c tele.Context, prefix, prompt string) error {
	student, err := b.student(c)
	if err != nil {
		return c.Send("Please /register first.")
	}
	if !student.Approved {
		return c.Send("Your registration is still awaiting approval.")
	}

	ctx, cancel := requestContext()
	defer cancel()
	courses, err := b.svc.Taxonomy.ListCourses(ctx, models.CourseFilter{
		UniversityID: student.UniversityID,
		MajorID:      student.MajorID,
		Year:         student.Year,
	})
	if err != nil {
		return b.replyError(c, err)
	}
	if len(courses) == 0 {
		return c.Send("No courses are set up for your program yet.")
	}
	return c.Send(prompt, courseKeyboard(prefix, courses))
}

func (b *Bot) materialsCourse(c tele.Context, courseID string) error {
	student, err := b.student(c)
	if err != nil {
		return c.Send("Please /register first.")
	}

	ctx, cancel := requestContext()
	defer cancel()
	weeks, err := b.svc.Materials.Weeks(ctx, student, courseID)
	if err != nil {
		return b.replyError(c, err)
	}
	if len(weeks) == 0 {
		return c.Send("No materials uploaded for this course yet.")
	}
	return c.Send("Pick a week:", weekKeyboard("mat_week_"+courseID+"_", weeks))
}

func (b *Bot) materialsWeek(c tele.Context, payload string) error {
	courseID, week, ok := splitCourseWeek(payload)
	if !ok {
		return nil
	}
	student, err := b.student(c)
	if err != nil {
		return c.Send("Please /register first.")
	}

	ctx, cancel := requestContext()
	defer cancel()
	materials, err := b.svc.Materials.ListForStudent(ctx, student, courseID, week)
	if err != nil {
		return b.replyError(c, err)
	}
	if len(materials) == 0 {
		return c.Send(fmt.Sprintf("No materials for week %d.", week))
	}

	m := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(materials))
	for _, mat := range materials {
		label := mat.Filename
		if mat.Description != "" {
			label = mat.Filename + " - " + mat.Description
		}
		rows = append(rows, m.Row(m.Data(label, "dl_"+mat.ID)))
	}
	m.Inline(rows...)
	return c.Send(fmt.Sprintf("Week %d materials:", week), m)
}

func (b *Bot) materialDownload(c tele.Context, materialID string) error {
	student, err := b.student(c)
	if err != nil {
		return c.Send("Please /register first.")
	}

	ctx, cancel := requestContext()
	defer cancel()
	material, file, err := b.svc.Materials.Download(ctx, student, materialID)
	if err != nil {
		return b.replyError(c, err)
	}
	defer file.Close() //nolint:errcheck

	return c.Send(&tele.Document{
		File:     tele.FromReader(file),
		FileName: material.Filename,
	})
}

func (b *Bot) handleResults(c tele.Context) error {
	student, err := b.student(c)
	if err != nil {
		return c.Send("Please /register first.")
	}

	ctx, cancel := requestContext()
	defer cancel()
	attempts, err := b.svc.Quizzes.History(ctx, student)
	if err != nil {
		return b.replyError(c, err)
	}
	if len(attempts) == 0 {
		return c.Send("You haven't taken any quizzes yet.")
	}

	var sb strings.Builder
	sb.WriteString("Your quiz history:\n\n")
	for i, a := range attempts {
		if i >= 10 {
			break
		}
		score := "unfinished"
		if a.Score != nil {
			score = fmt.Sprintf("%.0f%%", *a.Score)
		}
		fmt.Fprintf(&sb, "Week %d, %s: %s (%s)\n", a.Week, a.Difficulty, score, a.CreatedAt.Format("Jan 2"))
	}
	return c.Send(sb.String())
}

// splitCourseWeek parses "<courseID>_<week>" payloads. Course IDs are UUIDs
// and never contain underscores.
func splitCourseWeek(payload string) (string, int, bool) {
	idx := strings.LastIndex(payload, "_")
	if idx <= 0 {
		return "", 0, false
	}
	week, err := strconv.Atoi(payload[idx+1:])
	if err != nil {
		return "", 0, false
	}
	return payload[:idx], week, true
}
