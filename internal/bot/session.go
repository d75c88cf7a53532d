package bot

import (
	"sync"

	appErrors "github.com/coursemate/coursemate-api/pkg/errors"
)

type sessionState int

const (
	stateIdle sessionState = iota
	stateRegisterStudentNo
	stateRegisterFullName
	stateProfessorCode
	stateUploadWeek
	stateUploadFile
	stateAdminCode
	stateAdminNewUniversity
	stateAdminNewMajor
	stateAdminNewCourse
	stateAdminNewProfessor
)

// session tracks one user's in-flight multi-step flow. Durable facts live in
// the database; losing a session only abandons an unfinished dialog.
type session struct {
	State sessionState
	Admin bool

	// registration draft
	UniversityID string
	MajorID      string
	Year         int
	StudentNo    string

	// upload draft
	UploadWeek int

	// admin taxonomy draft
	CourseID string

	// quiz in flight
	AttemptID   string
	Questions   []quizQuestion
	QuestionIdx int
	Answers     []int
}

// quizQuestion mirrors one attempt question for rendering inside the chat.
// Answer and Explanation are only shown after the attempt is scored.
type quizQuestion struct {
	Prompt      string
	Choices     []string
	Answer      int
	Explanation string
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[int64]*session)}
}

func (s *sessionStore) get(userID int64) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		sess = &session{}
		s.sessions[userID] = sess
	}
	return sess
}

func (s *sessionStore) reset(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	admin := false
	if sess, ok := s.sessions[userID]; ok {
		admin = sess.Admin
	}
	s.sessions[userID] = &session{Admin: admin}
}

// userMessage maps service errors to chat-friendly text. Typed errors carry
// messages written for end users; anything else gets a generic line.
func userMessage(err error) string {
	appErr := appErrors.FromError(err)
	if appErr.Code == appErrors.ErrInternal.Code {
		return "Something went wrong, please try again later."
	}
	return appErr.Message
}
