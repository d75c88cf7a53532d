package bot

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"github.com/coursemate/coursemate-api/internal/models"
	"github.com/coursemate/coursemate-api/internal/service"
)

// maxUploadBytes matches the Telegram bot API download ceiling.
const maxUploadBytes = 20 * 1024 * 1024

func (b *Bot) startProfessorLogin(c tele.Context) error {
	sess := b.sessions.get(c.Sender().ID)
	sess.State = stateProfessorCode
	return c.Send("Enter your professor access code:")
}

func (b *Bot) professorCode(c tele.Context) error {
	ctx, cancel := requestContext()
	defer cancel()

	professor, err := b.svc.Professors.Authenticate(ctx, c.Text())
	b.sessions.reset(c.Sender().ID)
	if err != nil {
		return b.replyError(c, err)
	}
	if err := b.svc.Professors.LinkTelegram(ctx, professor.ID, senderID(c)); err != nil {
		return b.replyError(c, err)
	}
	return c.Send("Welcome, "+professor.FullName+".", professorMenu())
}

// professor resolves the sender to a linked professor account.
func (b *Bot) professor(c tele.Context) (*models.Professor, error) {
	ctx, cancel := requestContext()
	defer cancel()
	return b.svc.Professors.FindByTelegram(ctx, senderID(c))
}

func (b *Bot) handleUploadStart(c tele.Context) error {
	professor, err := b.professor(c)
	if err != nil {
		return c.Send("Use /professor to log in first.")
	}
	if professor.CourseID == nil {
		return c.Send("You are not assigned to a course. Contact an admin.")
	}
	sess := b.sessions.get(c.Sender().ID)
	sess.State = stateUploadWeek
	return c.Send("Which week is this material for? Send a number (1, 2, 3...):")
}

func (b *Bot) uploadWeek(c tele.Context, sess *session) error {
	week, err := strconv.Atoi(strings.TrimSpace(c.Text()))
	if err != nil || week < 1 {
		return c.Send("Please send a week number of 1 or greater.")
	}
	sess.UploadWeek = week
	sess.State = stateUploadFile
	return c.Send("Now send the file (PDF, DOCX, PPTX, TXT or MD). Add a caption to use it as the description.")
}

func (b *Bot) handleDocument(c tele.Context) error {
	sess := b.sessions.get(c.Sender().ID)
	if sess.State != stateUploadFile {
		return nil
	}
	professor, err := b.professor(c)
	if err != nil {
		return c.Send("Use /professor to log in first.")
	}

	doc := c.Message().Document
	if doc == nil {
		return c.Send("Please send the material as a document attachment.")
	}
	if doc.FileSize > maxUploadBytes {
		return c.Send("That file is too large, the limit is 20 MB.")
	}

	reader, err := b.tg.File(&doc.File)
	if err != nil {
		b.logger.Error("download telegram file failed", zap.String("filename", doc.FileName), zap.Error(err))
		return c.Send("Could not fetch the file from Telegram, please resend it.")
	}
	defer reader.Close() //nolint:errcheck
	data, err := io.ReadAll(io.LimitReader(reader, maxUploadBytes+1))
	if err != nil {
		return c.Send("Could not read the file, please resend it.")
	}

	ctx, cancel := requestContext()
	defer cancel()
	courseCtx, err := b.svc.Taxonomy.DescribeCourse(ctx, *professor.CourseID)
	if err != nil {
		return b.replyError(c, err)
	}

	material, err := b.svc.Materials.Upload(ctx, professor, service.UploadMaterialRequest{
		University:  courseCtx.University,
		Major:       courseCtx.Major,
		Course:      courseCtx.Course.Name,
		Year:        courseCtx.Course.Year,
		Week:        sess.UploadWeek,
		Filename:    doc.FileName,
		Description: strings.TrimSpace(c.Message().Caption),
		Data:        data,
	})
	b.sessions.reset(c.Sender().ID)
	if err != nil {
		return b.replyError(c, err)
	}
	return c.Send(fmt.Sprintf("Uploaded %s to %s, week %d. Enrolled students will be notified.",
		material.Filename, courseCtx.Course.Name, material.Week), professorMenu())
}

func (b *Bot) handleMyUploads(c tele.Context) error {
	professor, err := b.professor(c)
	if err != nil {
		return c.Send("Use /professor to log in first.")
	}

	ctx, cancel := requestContext()
	defer cancel()
	materials, err := b.svc.Materials.ListMine(ctx, professor.ID)
	if err != nil {
		return b.replyError(c, err)
	}
	if len(materials) == 0 {
		return c.Send("You haven't uploaded anything yet.")
	}

	var sb strings.Builder
	sb.WriteString("Your uploads:\n\n")
	for _, m := range materials {
		fmt.Fprintf(&sb, "Week %d: %s (%s)\n", m.Week, m.Filename, m.UploadedAt.Format("Jan 2"))
	}
	return c.Send(sb.String())
}
