package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Butord/gl/internal/domain"
	"github.com/Butord/gl/internal/store"
)

// Button is one menu entry: a visible label and the opaque token sent back
// when the user taps it.
type Button struct {
	Label string
	Data  string
}

// Keyboard is an ordered grid of buttons attached to an outbound message.
type Keyboard [][]Button

// Dispatcher sends outbound messages. telegram.Router implements this.
type Dispatcher interface {
	SendMessage(chatID int64, text string) error
	SendKeyboard(chatID int64, text string, kb Keyboard) error
}

// Conversation steps. A chat with no draft is idle.
type step int

const (
	stepText step = iota + 1
	stepTime
	stepTimezone
	stepCustomTimezone
	stepNotify
	stepSetTimezone // standalone /set_timezone flow
)

// draft accumulates reminder fields across steps. Volatile: a restart loses
// mid-flow drafts but never persisted reminders.
type draft struct {
	step  step
	task  string
	clock string // task time, HH:mm
	tz    string
}

// Engine drives the per-chat conversational state machine that collects a
// reminder draft and persists it on completion.
type Engine struct {
	repo store.Repo
	out  Dispatcher
	log  *zap.Logger
	now  func() time.Time

	mu     sync.Mutex
	drafts map[int64]*draft
	// locks entries live for the process lifetime: dropping one while a
	// concurrent handler still holds or waits on it would let two handlers
	// run under different locks for the same chat. One mutex per chat that
	// ever talked to the bot is an acceptable ceiling.
	locks map[int64]*sync.Mutex
}

// NewEngine creates a conversation engine on top of a store and a dispatcher.
func NewEngine(repo store.Repo, out Dispatcher, log *zap.Logger) *Engine {
	return &Engine{
		repo:   repo,
		out:    out,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
		drafts: make(map[int64]*draft),
		locks:  make(map[int64]*sync.Mutex),
	}
}

// lockChat serializes all transitions of one chat. Different chats proceed
// in parallel; a single chat's messages apply strictly in arrival order.
func (e *Engine) lockChat(chatID int64) func() {
	e.mu.Lock()
	l, ok := e.locks[chatID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[chatID] = l
	}
	e.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (e *Engine) getDraft(chatID int64) *draft {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.drafts[chatID]
}

func (e *Engine) setDraft(chatID int64, d *draft) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drafts[chatID] = d
}

func (e *Engine) dropDraft(chatID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.drafts, chatID)
}

// StartRemind begins (or restarts) the reminder flow for a chat. Any stale
// draft is overwritten.
func (e *Engine) StartRemind(ctx context.Context, chatID int64) {
	defer e.lockChat(chatID)()

	d := &draft{step: stepText}
	// Pre-fill the stored timezone; the flow still confirms it at the
	// timezone step.
	if tz, err := e.repo.GetTimezone(ctx, chatID); err != nil {
		e.log.Error("get timezone failed", zap.Error(err), zap.Int64("chatID", chatID))
	} else {
		d.tz = tz
	}
	e.setDraft(chatID, d)
	e.send(chatID, promptTask)
}

// StartSetTimezone begins the standalone timezone update flow.
func (e *Engine) StartSetTimezone(ctx context.Context, chatID int64) {
	defer e.lockChat(chatID)()

	e.setDraft(chatID, &draft{step: stepSetTimezone})
	e.sendKeyboard(chatID, promptTimezone, TimezoneKeyboard())
}

// Cancel discards the chat's draft unconditionally.
func (e *Engine) Cancel(ctx context.Context, chatID int64) {
	defer e.lockChat(chatID)()

	if e.getDraft(chatID) == nil {
		e.send(chatID, msgNothingToCancel)
		return
	}
	e.dropDraft(chatID)
	e.send(chatID, msgCancelled)
}

// HandleText applies a free-text message to the chat's draft. Messages for
// idle chats are ignored.
func (e *Engine) HandleText(ctx context.Context, chatID int64, text string) {
	defer e.lockChat(chatID)()

	d := e.getDraft(chatID)
	if d == nil {
		return
	}
	text = strings.TrimSpace(text)

	switch d.step {
	case stepText:
		if text == "" {
			e.send(chatID, promptTask)
			return
		}
		d.task = text
		d.step = stepTime
		e.send(chatID, promptTime)

	case stepTime:
		if err := domain.ValidateClock(text); err != nil {
			e.send(chatID, msgBadClock)
			return
		}
		d.clock = text
		d.step = stepTimezone
		e.sendKeyboard(chatID, promptTimezone, TimezoneKeyboard())

	case stepTimezone, stepCustomTimezone, stepSetTimezone:
		e.applyTimezone(ctx, chatID, d, text)

	case stepNotify:
		e.applyNotify(ctx, chatID, d, text)
	}
}

// HandleCallback applies a button token to the chat's draft. Tokens for idle
// chats or mismatched steps are ignored.
func (e *Engine) HandleCallback(ctx context.Context, chatID int64, data string) {
	defer e.lockChat(chatID)()

	d := e.getDraft(chatID)
	if d == nil {
		return
	}

	switch d.step {
	case stepTimezone, stepSetTimezone:
		if data == tokenTZCustom {
			if d.step == stepTimezone {
				d.step = stepCustomTimezone
			}
			e.send(chatID, promptCustomTimezone)
			return
		}
		if tz, ok := strings.CutPrefix(data, tokenTZPrefix); ok {
			e.applyTimezone(ctx, chatID, d, tz)
		}
	}
}

// applyTimezone validates and stores a timezone input, then advances the flow.
func (e *Engine) applyTimezone(ctx context.Context, chatID int64, d *draft, input string) {
	tz, err := domain.ValidateTZ(input)
	if err != nil {
		e.send(chatID, msgBadTimezone)
		return
	}
	if err := e.repo.SaveTimezone(ctx, chatID, tz); err != nil {
		e.log.Error("save timezone failed", zap.Error(err), zap.Int64("chatID", chatID))
		e.send(chatID, msgStoreFailure)
		return
	}
	d.tz = tz

	if d.step == stepSetTimezone {
		e.dropDraft(chatID)
		e.send(chatID, fmt.Sprintf(msgTimezoneSetFmt, tz))
		return
	}
	d.step = stepNotify
	e.send(chatID, promptNotify)
}

// applyNotify validates the heads-up time, resolves both instants and
// persists the reminder. Any validation failure re-prompts without a state
// change.
func (e *Engine) applyNotify(ctx context.Context, chatID int64, d *draft, input string) {
	if err := domain.ValidateClock(input); err != nil {
		e.send(chatID, msgBadClock)
		return
	}

	now := e.now()
	occurs, err := domain.ResolveUpcoming(d.clock, d.tz, now)
	if err != nil {
		e.log.Error("resolve occurrence failed", zap.Error(err), zap.Int64("chatID", chatID))
		e.send(chatID, msgStoreFailure)
		return
	}

	// The heads-up lands on the same local date as the occurrence.
	occursDate, err := domain.FormatInZone(occurs, d.tz, domain.DateLayout)
	if err != nil {
		e.log.Error("format occurrence failed", zap.Error(err), zap.Int64("chatID", chatID))
		e.send(chatID, msgStoreFailure)
		return
	}
	notify, err := domain.ResolveLocal(occursDate, input, d.tz)
	if err != nil {
		e.send(chatID, msgBadClock)
		return
	}
	if !notify.Before(occurs) {
		e.send(chatID, msgNotifyNotBefore)
		return
	}
	if notify.Before(now) {
		e.send(chatID, msgNotifyInPast)
		return
	}

	if _, err := e.repo.CreateReminder(ctx, chatID, d.task, occurs, notify, d.tz); err != nil {
		if errors.Is(err, domain.ErrNotifyAfterOccurrence) {
			e.send(chatID, msgNotifyNotBefore)
			return
		}
		e.log.Error("create reminder failed", zap.Error(err), zap.Int64("chatID", chatID))
		e.send(chatID, msgStoreFailure)
		return
	}

	e.dropDraft(chatID)

	occursLocal, _ := domain.FormatInZone(occurs, d.tz, domain.ClockLayout)
	notifyLocal, _ := domain.FormatInZone(notify, d.tz, domain.ClockLayout)
	e.send(chatID, fmt.Sprintf(msgCreatedFmt, d.task, occursDate, occursLocal, d.tz, notifyLocal))
}

// send delivers a prompt. A failed prompt is logged only: the draft state is
// already advanced, so the user's next input still applies correctly if the
// prompt eventually lands.
func (e *Engine) send(chatID int64, text string) {
	if err := e.out.SendMessage(chatID, text); err != nil {
		e.log.Error("prompt send failed", zap.Error(err), zap.Int64("chatID", chatID))
	}
}

func (e *Engine) sendKeyboard(chatID int64, text string, kb Keyboard) {
	if err := e.out.SendKeyboard(chatID, text, kb); err != nil {
		e.log.Error("prompt send failed", zap.Error(err), zap.Int64("chatID", chatID))
	}
}
