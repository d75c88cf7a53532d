package bot

import (
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v3"

	"github.com/coursemate/coursemate-api/internal/models"
)

func (b *Bot) handleQuizMenu(c tele.Context) error {
	return b.pickCourse(c, "quiz_course_", "Pick a course for your quiz:")
}

func (b *Bot) quizCourse(c tele.Context, courseID string) error {
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
		return c.Send("No materials to quiz on yet.")
	}
	return c.Send("Pick a week:", weekKeyboard("quiz_week_"+courseID+"_", weeks))
}

func (b *Bot) quizWeek(c tele.Context, payload string) error {
	courseID, week, ok := splitCourseWeek(payload)
	if !ok {
		return nil
	}
	prefix := fmt.Sprintf("quiz_diff_%s_%d_", courseID, week)
	return c.Send("Pick a difficulty:", difficultyKeyboard(prefix))
}

func (b *Bot) quizDifficulty(c tele.Context, payload string) error {
	courseID, week, difficulty, ok := splitQuizTarget(payload)
	if !ok {
		return nil
	}
	student, err := b.student(c)
	if err != nil {
		return c.Send("Please /register first.")
	}

	if err := c.Send("Generating your quiz, this can take a minute..."); err != nil {
		return err
	}

	ctx, cancel := requestContext()
	defer cancel()
	attempt, err := b.svc.Quizzes.Generate(ctx, student, courseID, week, difficulty)
	if err != nil {
		return b.replyError(c, err)
	}

	sess := b.sessions.get(c.Sender().ID)
	sess.AttemptID = attempt.ID
	sess.QuestionIdx = 0
	sess.Answers = sess.Answers[:0]
	sess.Questions = make([]quizQuestion, 0, len(attempt.Questions))
	for _, q := range attempt.Questions {
		sess.Questions = append(sess.Questions, quizQuestion{
			Prompt:      q.Prompt,
			Choices:     q.Choices,
			Answer:      q.Answer,
			Explanation: q.Explanation,
		})
	}
	return b.sendQuestion(c, sess)
}

func (b *Bot) sendQuestion(c tele.Context, sess *session) error {
	q := sess.Questions[sess.QuestionIdx]

	var sb strings.Builder
	fmt.Fprintf(&sb, "Question %d/%d\n\n%s\n\n", sess.QuestionIdx+1, len(sess.Questions), q.Prompt)
	labels := []string{"A", "B", "C", "D"}
	m := &tele.ReplyMarkup{}
	row := tele.Row{}
	for i, choice := range q.Choices {
		fmt.Fprintf(&sb, "%s. %s\n", labels[i], choice)
		row = append(row, m.Data(labels[i], fmt.Sprintf("ans_%d", i)))
	}
	m.Inline(m.Row(row...))
	return c.Send(sb.String(), m)
}

func (b *Bot) quizAnswer(c tele.Context, raw string) error {
	choice, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	sess := b.sessions.get(c.Sender().ID)
	if sess.AttemptID == "" || sess.QuestionIdx >= len(sess.Questions) {
		return c.Send("No quiz in progress. Use " + btnTextQuiz + " to start one.")
	}

	sess.Answers = append(sess.Answers, choice)
	sess.QuestionIdx++
	if sess.QuestionIdx < len(sess.Questions) {
		return b.sendQuestion(c, sess)
	}
	return b.finishQuiz(c, sess)
}

func (b *Bot) finishQuiz(c tele.Context, sess *session) error {
	student, err := b.student(c)
	if err != nil {
		return c.Send("Please /register first.")
	}

	ctx, cancel := requestContext()
	defer cancel()
	result, err := b.svc.Quizzes.Submit(ctx, student, sess.AttemptID, sess.Answers)
	questions := sess.Questions
	b.sessions.reset(c.Sender().ID)
	if err != nil {
		return b.replyError(c, err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Done! You scored %.0f%% (%d/%d correct).\n", result.Score, result.Correct, result.Total)
	if len(result.Incorrect) > 0 {
		labels := []string{"A", "B", "C", "D"}
		sb.WriteString("\nQuestions to review:\n")
		for _, idx := range result.Incorrect {
			if idx >= len(questions) {
				continue
			}
			q := questions[idx]
			fmt.Fprintf(&sb, "\n%s\n", q.Prompt)
			if q.Answer >= 0 && q.Answer < len(q.Choices) {
				fmt.Fprintf(&sb, "Correct answer: %s. %s\n", labels[q.Answer], q.Choices[q.Answer])
			}
			if q.Explanation != "" {
				fmt.Fprintf(&sb, "%s\n", q.Explanation)
			}
		}
	}
	return c.Send(sb.String(), studentMenu())
}

// splitQuizTarget parses "<courseID>_<week>_<difficulty>" payloads.
func splitQuizTarget(payload string) (string, int, models.Difficulty, bool) {
	last := strings.LastIndex(payload, "_")
	if last <= 0 {
		return "", 0, "", false
	}
	difficulty := models.ParseDifficulty(payload[last+1:])

	rest := payload[:last]
	mid := strings.LastIndex(rest, "_")
	if mid <= 0 {
		return "", 0, "", false
	}
	week, err := strconv.Atoi(rest[mid+1:])
	if err != nil {
		return "", 0, "", false
	}
	return rest[:mid], week, difficulty, true
}
