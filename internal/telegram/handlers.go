package telegram

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Butord/gl/internal/domain"
)

func (r *Router) sendText(chatID int64, text string) {
	if err := r.SendMessage(chatID, text); err != nil {
		r.log.Error("send failed", zap.Error(err), zap.Int64("chatID", chatID))
	}
}

func (r *Router) handleStart(ctx context.Context, chatID int64) {
	tz, err := r.repo.GetTimezone(ctx, chatID)
	if err != nil {
		r.log.Error("get timezone failed", zap.Error(err), zap.Int64("chatID", chatID))
		r.sendText(chatID, "Error reading your settings. Please try again later.")
		return
	}
	if tz == "" {
		r.sendText(chatID, startTextNew)
		return
	}

	local := tz
	if _, now, err := domain.NowInZone(tz); err == nil {
		if clock, err := domain.FormatInZone(now, tz, domain.ClockLayout); err == nil {
			local = fmt.Sprintf("%s, local time %s", tz, clock)
		}
	}
	r.sendText(chatID, fmt.Sprintf(startTextBackFmt, local))
}

func (r *Router) handleList(ctx context.Context, chatID int64) {
	reminders, err := r.repo.ListByChat(ctx, chatID)
	if err != nil {
		r.log.Error("ListByChat failed", zap.Error(err), zap.Int64("chatID", chatID))
		r.sendText(chatID, "Error reading your reminders. Please try again later.")
		return
	}
	if len(reminders) == 0 {
		r.sendText(chatID, "You have no reminders yet. Create one with /remind.")
		return
	}

	var b strings.Builder
	b.WriteString(listTitle)
	for _, rem := range reminders {
		occurs, err := domain.FormatInZone(rem.OccursAt, rem.TZ, listTimeLayout)
		if err != nil {
			occurs = rem.OccursAt.Format(listTimeLayout) + " UTC"
		}
		notify, err := domain.FormatInZone(rem.NotifyAt, rem.TZ, domain.ClockLayout)
		if err != nil {
			notify = rem.NotifyAt.Format(domain.ClockLayout)
		}
		status := "⏳"
		if rem.ReminderSent {
			status = "✅"
		}
		fmt.Fprintf(&b, "%s %s (%s) — %s, heads-up at %s\n", status, occurs, rem.TZ, rem.Text, notify)
	}
	r.sendText(chatID, b.String())
}
