package bot

import (
	"bytes"
	"crypto/subtle"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"github.com/coursemate/coursemate-api/internal/models"
	"github.com/coursemate/coursemate-api/internal/service"
)

func (b *Bot) startAdminLogin(c tele.Context) error {
	sess := b.sessions.get(c.Sender().ID)
	if sess.Admin {
		return c.Send("Admin panel:", adminMenu())
	}
	sess.State = stateAdminCode
	return c.Send("Enter the admin code:")
}

func (b *Bot) adminCodeInput(c tele.Context) error {
	sess := b.sessions.get(c.Sender().ID)
	sess.State = stateIdle
	if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(c.Text())), []byte(b.adminCode)) != 1 {
		return c.Send("Wrong code.")
	}
	sess.Admin = true
	return c.Send("Admin panel:", adminMenu())
}

func adminMenu() *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	m.Inline(
		m.Row(m.Data("👥 Pending students", "adm_pending")),
		m.Row(m.Data("🏛 Add university", "adm_adduni"), m.Data("🎓 Add major", "adm_addmajor")),
		m.Row(m.Data("📖 Add course", "adm_addcourse"), m.Data("👨‍🏫 Add professor", "adm_addprof")),
		m.Row(m.Data("📈 Stats", "adm_stats")),
		m.Row(m.Data("⬇️ Export CSV", "adm_exportcsv"), m.Data("⬇️ Export PDF", "adm_exportpdf")),
	)
	return m
}

func (b *Bot) adminCallback(c tele.Context, action string) error {
	sess := b.sessions.get(c.Sender().ID)
	if !sess.Admin {
		return c.Send("Use /admin to log in first.")
	}

	ctx, cancel := requestContext()
	defer cancel()

	switch {
	case action == "menu":
		return c.Send("Admin panel:", adminMenu())

	case action == "pending":
		students, err := b.svc.Students.ListPending(ctx)
		if err != nil {
			return b.replyError(c, err)
		}
		if len(students) == 0 {
			return c.Send("No pending registrations.")
		}
		for _, s := range students {
			m := &tele.ReplyMarkup{}
			m.Inline(m.Row(
				m.Data("✅ Approve", "adm_approve_"+s.ID),
				m.Data("❌ Reject", "adm_reject_"+s.ID),
			))
			if err := c.Send(fmt.Sprintf("%s (%s), year %d", s.FullName, s.StudentNo, s.Year), m); err != nil {
				return err
			}
		}
		return nil

	case strings.HasPrefix(action, "approve_"):
		student, err := b.svc.Students.Approve(ctx, strings.TrimPrefix(action, "approve_"))
		if err != nil {
			return b.replyError(c, err)
		}
		if student.TelegramID != nil {
			b.sendTo(*student.TelegramID, "🎉 Your registration was approved. Send /start to begin.")
		}
		return c.Send("Approved " + student.FullName + ".")

	case strings.HasPrefix(action, "reject_"):
		if err := b.svc.Students.Reject(ctx, strings.TrimPrefix(action, "reject_")); err != nil {
			return b.replyError(c, err)
		}
		return c.Send("Registration rejected.")

	case action == "adduni":
		sess.State = stateAdminNewUniversity
		return c.Send("University name:")

	case action == "addmajor":
		return b.adminPickUniversity(c, "adm_major_uni_")

	case strings.HasPrefix(action, "major_uni_"):
		sess.UniversityID = strings.TrimPrefix(action, "major_uni_")
		sess.State = stateAdminNewMajor
		return c.Send("Major name:")

	case action == "addcourse":
		return b.adminPickUniversity(c, "adm_course_uni_")

	case strings.HasPrefix(action, "course_uni_"):
		sess.UniversityID = strings.TrimPrefix(action, "course_uni_")
		return b.adminPickMajor(c, sess.UniversityID, "adm_course_major_")

	case strings.HasPrefix(action, "course_major_"):
		sess.MajorID = strings.TrimPrefix(action, "course_major_")
		sess.State = stateAdminNewCourse
		return c.Send("Send the course as: <year> <name>\nFor example: 1 Introduction to Programming")

	case action == "addprof":
		return b.adminPickUniversity(c, "adm_prof_uni_")

	case strings.HasPrefix(action, "prof_uni_"):
		sess.UniversityID = strings.TrimPrefix(action, "prof_uni_")
		return b.adminPickMajor(c, sess.UniversityID, "adm_prof_major_")

	case strings.HasPrefix(action, "prof_major_"):
		sess.MajorID = strings.TrimPrefix(action, "prof_major_")
		courses, err := b.svc.Taxonomy.ListCourses(ctx, models.CourseFilter{
			UniversityID: sess.UniversityID,
			MajorID:      sess.MajorID,
		})
		if err != nil {
			return b.replyError(c, err)
		}
		if len(courses) == 0 {
			return c.Send("No courses under that major yet.")
		}
		return c.Send("Pick the course:", courseKeyboard("adm_prof_course_", courses))

	case strings.HasPrefix(action, "prof_course_"):
		sess.CourseID = strings.TrimPrefix(action, "prof_course_")
		sess.State = stateAdminNewProfessor
		return c.Send("Professor's full name:")

	case action == "stats":
		totals, err := b.svc.Stats.Totals(ctx)
		if err != nil {
			return b.replyError(c, err)
		}
		return c.Send(fmt.Sprintf(strings.Join([]string{
			"Universities: %d",
			"Majors: %d",
			"Courses: %d",
			"Professors: %d",
			"Approved students: %d",
			"Pending students: %d",
			"Materials: %d",
			"Quiz attempts: %d",
		}, "\n"),
			totals.Universities, totals.Majors, totals.Courses, totals.Professors,
			totals.ApprovedStudents, totals.PendingStudents, totals.Materials, totals.QuizAttempts))

	case action == "exportcsv":
		out, err := b.svc.Stats.ExportAttemptsCSV(ctx)
		if err != nil {
			return b.replyError(c, err)
		}
		return c.Send(&tele.Document{
			File:     tele.FromReader(bytes.NewReader(out)),
			FileName: fmt.Sprintf("attempts-%s.csv", time.Now().Format("2006-01-02")),
		})

	case action == "exportpdf":
		out, err := b.svc.Stats.ExportAttemptsPDF(ctx)
		if err != nil {
			return b.replyError(c, err)
		}
		return c.Send(&tele.Document{
			File:     tele.FromReader(bytes.NewReader(out)),
			FileName: fmt.Sprintf("attempts-%s.pdf", time.Now().Format("2006-01-02")),
		})
	}
	return nil
}

func (b *Bot) adminPickUniversity(c tele.Context, prefix string) error {
	ctx, cancel := requestContext()
	defer cancel()
	universities, err := b.svc.Taxonomy.ListUniversities(ctx)
	if err != nil {
		return b.replyError(c, err)
	}
	if len(universities) == 0 {
		return c.Send("No universities yet, add one first.")
	}
	return c.Send("Pick the university:", universityKeyboard(prefix, universities))
}

func (b *Bot) adminPickMajor(c tele.Context, universityID, prefix string) error {
	ctx, cancel := requestContext()
	defer cancel()
	majors, err := b.svc.Taxonomy.ListMajors(ctx, universityID)
	if err != nil {
		return b.replyError(c, err)
	}
	if len(majors) == 0 {
		return c.Send("No majors under that university yet.")
	}
	return c.Send("Pick the major:", majorKeyboard(prefix, majors))
}

func (b *Bot) adminCreateUniversity(c tele.Context) error {
	ctx, cancel := requestContext()
	defer cancel()
	university, err := b.svc.Taxonomy.CreateUniversity(ctx, service.CreateUniversityRequest{Name: c.Text()})
	b.sessions.get(c.Sender().ID).State = stateIdle
	if err != nil {
		return b.replyError(c, err)
	}
	return c.Send("Created university: " + university.Name)
}

func (b *Bot) adminCreateMajor(c tele.Context, sess *session) error {
	ctx, cancel := requestContext()
	defer cancel()
	major, err := b.svc.Taxonomy.CreateMajor(ctx, service.CreateMajorRequest{
		UniversityID: sess.UniversityID,
		Name:         c.Text(),
	})
	sess.State = stateIdle
	if err != nil {
		return b.replyError(c, err)
	}
	return c.Send("Created major: " + major.Name)
}

func (b *Bot) adminCreateCourse(c tele.Context, sess *session) error {
	parts := strings.SplitN(strings.TrimSpace(c.Text()), " ", 2)
	if len(parts) != 2 {
		return c.Send("Format: <year> <name>, for example: 1 Introduction to Programming")
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil || year < 1 {
		return c.Send("The year must be a number of 1 or greater.")
	}

	ctx, cancel := requestContext()
	defer cancel()
	course, err := b.svc.Taxonomy.CreateCourse(ctx, service.CreateCourseRequest{
		UniversityID: sess.UniversityID,
		MajorID:      sess.MajorID,
		Year:         year,
		Name:         parts[1],
	})
	sess.State = stateIdle
	if err != nil {
		return b.replyError(c, err)
	}
	return c.Send(fmt.Sprintf("Created course: %s (year %d)", course.Name, course.Year))
}

func (b *Bot) adminCreateProfessor(c tele.Context, sess *session) error {
	ctx, cancel := requestContext()
	defer cancel()
	professor, err := b.svc.Professors.Create(ctx, service.CreateProfessorRequest{
		FullName: c.Text(),
		CourseID: sess.CourseID,
	})
	sess.State = stateIdle
	if err != nil {
		return b.replyError(c, err)
	}
	return c.Send(fmt.Sprintf("Created professor %s.\nAccess code: %s\nShare it privately.", professor.FullName, professor.Code))
}

// sendTo delivers a message to a raw Telegram ID, logging failures instead of
// surfacing them.
func (b *Bot) sendTo(telegramID, text string) {
	id, err := strconv.ParseInt(telegramID, 10, 64)
	if err != nil {
		return
	}
	if _, err := b.tg.Send(&tele.User{ID: id}, text); err != nil {
		b.logger.Warn("send telegram message failed", zap.String("telegram_id", telegramID), zap.Error(err))
	}
}
