package bot

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/coursemate/coursemate-api/internal/models"
	"github.com/coursemate/coursemate-api/pkg/jobs"
)

type studentDirectory interface {
	ListTelegramIDsForCourse(ctx context.Context, courseID string) ([]string, error)
}

type uploadEvent struct {
	Material models.Material
	Course   models.Course
}

// UploadNotifier broadcasts new-material announcements to enrolled students
// off the upload path, through a background queue.
type UploadNotifier struct {
	bot      *Bot
	students studentDirectory
	queue    *jobs.Queue
	logger   *zap.Logger
}

// NewUploadNotifier wires the notifier and its queue.
func NewUploadNotifier(b *Bot, students studentDirectory, logger *zap.Logger) *UploadNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	n := &UploadNotifier{bot: b, students: students, logger: logger}
	n.queue = jobs.NewQueue("upload-notifications", n.handle, jobs.QueueConfig{
		Workers: 2,
		Logger:  logger,
	})
	return n
}

// Start begins queue consumption.
func (n *UploadNotifier) Start(ctx context.Context) {
	n.queue.Start(ctx)
}

// Stop drains the workers.
func (n *UploadNotifier) Stop() {
	n.queue.Stop()
}

// NotifyUpload enqueues a broadcast. A full queue drops the announcement
// rather than stalling the upload.
func (n *UploadNotifier) NotifyUpload(material models.Material, course models.Course) {
	err := n.queue.Enqueue(jobs.Job{
		ID:      material.ID,
		Type:    "material_uploaded",
		Payload: uploadEvent{Material: material, Course: course},
	})
	if err != nil {
		n.logger.Warn("enqueue upload notification failed", zap.String("material_id", material.ID), zap.Error(err))
	}
}

func (n *UploadNotifier) handle(ctx context.Context, job jobs.Job) error {
	event, ok := job.Payload.(uploadEvent)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}

	ids, err := n.students.ListTelegramIDsForCourse(ctx, event.Course.ID)
	if err != nil {
		return fmt.Errorf("list recipients: %w", err)
	}

	text := fmt.Sprintf("📚 New material in %s: %s (week %d)", event.Course.Name, event.Material.Filename, event.Material.Week)
	for _, id := range ids {
		n.bot.sendTo(id, text)
	}
	n.logger.Info("upload announced",
		zap.String("material_id", event.Material.ID),
		zap.Int("recipients", len(ids)))
	return nil
}
