package store

import (
	"context"
	"time"

	"github.com/Butord/gl/internal/domain"
)

// Repo defines storage operations for timezone preferences and reminders.
type Repo interface {
	// SaveTimezone upserts the chat's timezone preference.
	SaveTimezone(ctx context.Context, chatID int64, tz string) error
	// GetTimezone returns the stored timezone, or "" if the chat has none.
	GetTimezone(ctx context.Context, chatID int64) (string, error)

	// CreateReminder persists a new reminder and returns its id.
	// Fails with domain.ErrNotifyAfterOccurrence if notifyAt is after occursAt.
	CreateReminder(ctx context.Context, chatID int64, text string, occursAt, notifyAt time.Time, tz string) (int64, error)

	// DueForNotify returns up to limit reminders whose heads-up is unsent
	// and due at now, earliest first. Overflow is picked up by later scans.
	DueForNotify(ctx context.Context, now time.Time, limit int) ([]domain.Reminder, error)
	// DueForReminder is the same scan for the unsent on-time message.
	DueForReminder(ctx context.Context, now time.Time, limit int) ([]domain.Reminder, error)

	// MarkNotifySent / MarkReminderSent set the delivery flags. Idempotent:
	// marking an already-sent reminder is a no-op.
	MarkNotifySent(ctx context.Context, id int64) error
	MarkReminderSent(ctx context.Context, id int64) error

	// ListByChat returns the chat's reminders ordered by occurrence time.
	ListByChat(ctx context.Context, chatID int64) ([]domain.Reminder, error)

	Close() error
}
