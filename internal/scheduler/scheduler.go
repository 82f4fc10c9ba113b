package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Butord/gl/internal/domain"
	"github.com/Butord/gl/internal/store"
)

// Sender is a minimal interface the scheduler needs to send a text message.
// telegram.Router will implement this (method: SendMessage).
type Sender interface {
	SendMessage(chatID int64, text string) error
}

// Outbound message formats.
const (
	notifyFmt   = "🔔 Heads-up: %s is scheduled for %s"
	reminderFmt = "🔔 Reminder: %s"
)

// dueBatchSize bounds one tick's work; a larger backlog drains over the
// following ticks.
const dueBatchSize = 100

// Scheduler periodically polls the store and dispatches due notifications.
// Delivery is send-then-mark: a flag is set only after a confirmed send, so a
// failed send is retried on the next tick and a set flag is never re-fired.
type Scheduler struct {
	repo     store.Repo
	log      *zap.Logger
	sender   Sender
	interval time.Duration
}

// New creates a Scheduler polling at the given interval.
func New(repo store.Repo, log *zap.Logger, sender Sender, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		repo:     repo,
		log:      log,
		sender:   sender,
		interval: interval,
	}
}

// Run starts the loop until ctx is canceled. Ticks run inline on this
// goroutine, so they never overlap.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopping")
			return
		case <-ticker.C:
			s.tick(ctx, time.Now().UTC())
		}
	}
}

// tick performs one scheduling cycle against a single now snapshot: heads-up
// scan first, then the on-time scan. After an outage both legs of an overdue
// reminder fire on the same tick, heads-up first.
func (s *Scheduler) tick(ctx context.Context, now time.Time) {
	due, err := s.repo.DueForNotify(ctx, now, dueBatchSize)
	if err != nil {
		// Abandon the tick; the next interval retries.
		s.log.Error("DueForNotify failed", zap.Error(err))
		return
	}
	for _, rem := range due {
		occursLocal, err := domain.FormatInZone(rem.OccursAt, rem.TZ, domain.ClockLayout)
		if err != nil {
			// Zone came from a validated preference; fall back to UTC rather than skip.
			occursLocal = rem.OccursAt.Format(domain.ClockLayout)
		}
		if err := s.sender.SendMessage(rem.ChatID, fmt.Sprintf(notifyFmt, rem.Text, occursLocal)); err != nil {
			s.log.Error("heads-up send failed", zap.Error(err), zap.Int64("chatID", rem.ChatID), zap.Int64("id", rem.ID))
			continue
		}
		if err := s.repo.MarkNotifySent(ctx, rem.ID); err != nil {
			s.log.Error("MarkNotifySent failed", zap.Error(err), zap.Int64("id", rem.ID))
		}
	}

	due, err = s.repo.DueForReminder(ctx, now, dueBatchSize)
	if err != nil {
		s.log.Error("DueForReminder failed", zap.Error(err))
		return
	}
	for _, rem := range due {
		if err := s.sender.SendMessage(rem.ChatID, fmt.Sprintf(reminderFmt, rem.Text)); err != nil {
			s.log.Error("reminder send failed", zap.Error(err), zap.Int64("chatID", rem.ChatID), zap.Int64("id", rem.ID))
			continue
		}
		if err := s.repo.MarkReminderSent(ctx, rem.ID); err != nil {
			s.log.Error("MarkReminderSent failed", zap.Error(err), zap.Int64("id", rem.ID))
		}
	}
}
