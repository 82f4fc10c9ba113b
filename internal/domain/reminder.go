package domain

import "time"

// Reminder is one scheduled task with two one-shot notifications:
// an advance heads-up at NotifyAt and the on-time message at OccursAt.
type Reminder struct {
	ID           int64
	ChatID       int64
	Text         string
	OccursAt     time.Time // UTC
	NotifyAt     time.Time // UTC, never after OccursAt
	TZ           string    // zone the user resolved the times in, kept for display
	NotifySent   bool
	ReminderSent bool
}

// Preference holds per-chat settings. Currently just the timezone.
type Preference struct {
	ChatID int64
	TZ     string
}
