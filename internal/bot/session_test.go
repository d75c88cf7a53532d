package bot

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursemate/coursemate-api/internal/models"
	appErrors "github.com/coursemate/coursemate-api/pkg/errors"
)

func TestSessionStoreGetCreates(t *testing.T) {
	store := newSessionStore()

	sess := store.get(42)
	require.NotNil(t, sess)
	assert.Equal(t, stateIdle, sess.State)

	sess.State = stateRegisterStudentNo
	assert.Equal(t, stateRegisterStudentNo, store.get(42).State)
}

func TestSessionStoreResetPreservesAdmin(t *testing.T) {
	store := newSessionStore()

	sess := store.get(42)
	sess.Admin = true
	sess.State = stateAdminNewCourse
	sess.CourseID = "course-1"

	store.reset(42)
	fresh := store.get(42)
	assert.True(t, fresh.Admin)
	assert.Equal(t, stateIdle, fresh.State)
	assert.Empty(t, fresh.CourseID)
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "your registration is awaiting approval",
		userMessage(appErrors.Clone(appErrors.ErrForbidden, "your registration is awaiting approval")))
	assert.Equal(t, "Something went wrong, please try again later.",
		userMessage(errors.New("pq: connection refused")))
}

func TestSplitCourseWeek(t *testing.T) {
	courseID, week, ok := splitCourseWeek("3f1b2c0a-aaaa-bbbb-cccc-1234567890ab_4")
	require.True(t, ok)
	assert.Equal(t, "3f1b2c0a-aaaa-bbbb-cccc-1234567890ab", courseID)
	assert.Equal(t, 4, week)

	_, _, ok = splitCourseWeek("no-separator")
	assert.False(t, ok)

	_, _, ok = splitCourseWeek("course_notanumber")
	assert.False(t, ok)
}

func TestSplitQuizTarget(t *testing.T) {
	courseID, week, difficulty, ok := splitQuizTarget("3f1b2c0a-aaaa-bbbb-cccc-1234567890ab_2_hard")
	require.True(t, ok)
	assert.Equal(t, "3f1b2c0a-aaaa-bbbb-cccc-1234567890ab", courseID)
	assert.Equal(t, 2, week)
	assert.Equal(t, models.DifficultyHard, difficulty)

	_, _, _, ok = splitQuizTarget("missing_parts")
	assert.False(t, ok)
}
