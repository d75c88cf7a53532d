package bot

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"github.com/coursemate/coursemate-api/internal/service"
)

// Services bundles everything the bot front-end talks to.
type Services struct {
	Students   *service.StudentService
	Professors *service.ProfessorService
	Taxonomy   *service.TaxonomyService
	Materials  *service.MaterialService
	Quizzes    *service.QuizService
	Stats      *service.StatsService
}

// Bot is the Telegram front-end. All state it keeps is per-chat session
// state; everything durable lives behind the services.
type Bot struct {
	tg        *tele.Bot
	svc       Services
	sessions  *sessionStore
	adminCode string
	logger    *zap.Logger
}

// New builds the bot and registers its handlers.
func New(token, adminCode string, svc Services, logger *zap.Logger) (*Bot, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	tg, err := tele.NewBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, err
	}

	b := &Bot{
		tg:        tg,
		svc:       svc,
		sessions:  newSessionStore(),
		adminCode: adminCode,
		logger:    logger,
	}
	b.register()
	return b, nil
}

// Telebot exposes the underlying client, used by the upload notifier.
func (b *Bot) Telebot() *tele.Bot {
	return b.tg
}

// Start begins long polling. Blocks until Stop is called.
func (b *Bot) Start() {
	b.logger.Info("telegram bot started")
	b.tg.Start()
}

// Stop shuts down polling.
func (b *Bot) Stop() {
	b.tg.Stop()
	b.logger.Info("telegram bot stopped")
}

func (b *Bot) register() {
	b.tg.Handle("/start", b.handleStart)
	b.tg.Handle("/help", b.handleHelp)
	b.tg.Handle("/cancel", b.handleCancel)
	b.tg.Handle("/register", b.startRegistration)
	b.tg.Handle("/professor", b.startProfessorLogin)
	b.tg.Handle("/admin", b.startAdminLogin)

	b.tg.Handle(btnTextMaterials, b.handleMaterialsMenu)
	b.tg.Handle(btnTextQuiz, b.handleQuizMenu)
	b.tg.Handle(btnTextResults, b.handleResults)
	b.tg.Handle(btnTextUpload, b.handleUploadStart)
	b.tg.Handle(btnTextMyUploads, b.handleMyUploads)

	b.tg.Handle(tele.OnText, b.handleText)
	b.tg.Handle(tele.OnDocument, b.handleDocument)
	b.tg.Handle(tele.OnCallback, b.handleCallback)
}

// requestContext bounds one update's worth of work. Quiz generation carries
// its own longer timeout inside the service.
func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 2*time.Minute)
}

func senderID(c tele.Context) string {
	return strconv.FormatInt(c.Sender().ID, 10)
}

// replyError sends the user-facing message for an error, falling back to a
// generic line for anything unexpected.
func (b *Bot) replyError(c tele.Context, err error) error {
	msg := userMessage(err)
	return c.Send(msg)
}

func (b *Bot) handleHelp(c tele.Context) error {
	return c.Send(strings.Join([]string{
		"CourseMate commands:",
		"/start - main menu",
		"/register - register as a student",
		"/professor - log in with a professor code",
		"/cancel - abandon the current action",
	}, "\n"))
}

func (b *Bot) handleCancel(c tele.Context) error {
	b.sessions.reset(c.Sender().ID)
	return b.handleStart(c)
}

// handleStart routes the user to the right menu based on who they are.
func (b *Bot) handleStart(c tele.Context) error {
	ctx, cancel := requestContext()
	defer cancel()

	tgID := senderID(c)

	if professor, err := b.svc.Professors.FindByTelegram(ctx, tgID); err == nil {
		return c.Send("Welcome back, "+professor.FullName+".", professorMenu())
	}

	student, err := b.svc.Students.FindByTelegram(ctx, tgID)
	if err == nil {
		if !student.Approved {
			return c.Send("Hi " + student.FullName + ", your registration is still awaiting approval.")
		}
		return c.Send("Welcome back, "+student.FullName+".", studentMenu())
	}

	return c.Send(strings.Join([]string{
		"Welcome to CourseMate.",
		"",
		"Students: /register to sign up for your program.",
		"Professors: /professor to log in with your access code.",
	}, "\n"))
}

// handleText dispatches free-form input to whatever flow the session is in.
func (b *Bot) handleText(c tele.Context) error {
	sess := b.sessions.get(c.Sender().ID)
	switch sess.State {
	case stateRegisterStudentNo:
		return b.registrationStudentNo(c, sess)
	case stateRegisterFullName:
		return b.registrationFullName(c, sess)
	case stateProfessorCode:
		return b.professorCode(c)
	case stateUploadWeek:
		return b.uploadWeek(c, sess)
	case stateAdminCode:
		return b.adminCodeInput(c)
	case stateAdminNewUniversity:
		return b.adminCreateUniversity(c)
	case stateAdminNewMajor:
		return b.adminCreateMajor(c, sess)
	case stateAdminNewCourse:
		return b.adminCreateCourse(c, sess)
	case stateAdminNewProfessor:
		return b.adminCreateProfessor(c, sess)
	default:
		return nil
	}
}

// handleCallback dispatches inline button presses by prefix.
func (b *Bot) handleCallback(c tele.Context) error {
	defer func() {
		_ = c.Respond()
	}()
	data := strings.TrimPrefix(strings.TrimSpace(c.Callback().Data), "\f")

	switch {
	case strings.HasPrefix(data, "reg_uni_"):
		return b.registrationUniversity(c, strings.TrimPrefix(data, "reg_uni_"))
	case strings.HasPrefix(data, "reg_major_"):
		return b.registrationMajor(c, strings.TrimPrefix(data, "reg_major_"))
	case strings.HasPrefix(data, "reg_year_"):
		return b.registrationYear(c, strings.TrimPrefix(data, "reg_year_"))
	case strings.HasPrefix(data, "mat_course_"):
		return b.materialsCourse(c, strings.TrimPrefix(data, "mat_course_"))
	case strings.HasPrefix(data, "mat_week_"):
		return b.materialsWeek(c, strings.TrimPrefix(data, "mat_week_"))
	case strings.HasPrefix(data, "dl_"):
		return b.materialDownload(c, strings.TrimPrefix(data, "dl_"))
	case strings.HasPrefix(data, "quiz_course_"):
		return b.quizCourse(c, strings.TrimPrefix(data, "quiz_course_"))
	case strings.HasPrefix(data, "quiz_week_"):
		return b.quizWeek(c, strings.TrimPrefix(data, "quiz_week_"))
	case strings.HasPrefix(data, "quiz_diff_"):
		return b.quizDifficulty(c, strings.TrimPrefix(data, "quiz_diff_"))
	case strings.HasPrefix(data, "ans_"):
		return b.quizAnswer(c, strings.TrimPrefix(data, "ans_"))
	case strings.HasPrefix(data, "adm_"):
		return b.adminCallback(c, strings.TrimPrefix(data, "adm_"))
	default:
		return nil
	}
}
