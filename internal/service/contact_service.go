package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/foliopulse/internal/db"
	"github.com/foliopulse/internal/queue"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const contactNotificationJob = "email-notification"

// ContactInput is a validated contact form submission.
type ContactInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// ContactService 负责联系表单的落库与通知任务投递。
type ContactService struct {
	db       *gorm.DB
	queue    queue.Queue
	sanitize *bluemonday.Policy
	log      zerolog.Logger
}

// NewContactService creates a ContactService instance.
func NewContactService(gdb *gorm.DB, q queue.Queue, log zerolog.Logger) *ContactService {
	return &ContactService{
		db:       gdb,
		queue:    q,
		sanitize: bluemonday.StrictPolicy(),
		log:      log,
	}
}

// Submit sanitizes and stores the message, then enqueues a notification
// job. Notification delivery is best-effort: a queue failure is logged
// but does not fail the submission.
func (s *ContactService) Submit(ctx context.Context, input ContactInput, visitorID string) (*db.ContactMessage, error) {
	message := db.ContactMessage{
		Name:      strings.TrimSpace(s.sanitize.Sanitize(input.Name)),
		Email:     strings.TrimSpace(input.Email),
		Subject:   strings.TrimSpace(s.sanitize.Sanitize(input.Subject)),
		Message:   strings.TrimSpace(s.sanitize.Sanitize(input.Message)),
		VisitorID: visitorID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.Create(&message).Error; err != nil {
		return nil, err
	}

	if s.queue != nil {
		_, err := s.queue.Enqueue(ctx, contactNotificationJob, map[string]any{
			"messageId": message.ID,
			"name":      message.Name,
			"email":     message.Email,
			"subject":   message.Subject,
		}, queue.Options{
			Priority:       queue.PriorityNormal,
			IdempotencyKey: contactKey(message),
			Tags:           []string{"contact"},
		})
		if err != nil {
			s.log.Error().Err(err).Uint("message_id", message.ID).
				Msg("contact notification enqueue failed")
		}
	}

	return &message, nil
}

func contactKey(m db.ContactMessage) string {
	sum := sha256.Sum256([]byte(m.Email + "|" + m.Message + "|" + m.CreatedAt.Format(time.RFC3339)))
	return "contact:" + hex.EncodeToString(sum[:])
}
