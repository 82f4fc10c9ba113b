package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Butord/gl/internal/conversation"
	"github.com/Butord/gl/internal/store"
)

// Router wires Telegram updates to the conversation engine and acts as the
// outbound dispatcher for both the engine and the scheduler.
type Router struct {
	bot    *tgbotapi.BotAPI
	log    *zap.Logger
	repo   store.Repo
	engine *conversation.Engine
}

// NewRouter creates a new Telegram router. Bind the conversation engine with
// SetEngine before feeding updates.
func NewRouter(bot *tgbotapi.BotAPI, log *zap.Logger, repo store.Repo) *Router {
	return &Router{bot: bot, log: log, repo: repo}
}

// SetEngine attaches the conversation engine. Separate from the constructor
// because the engine sends through the router.
func (r *Router) SetEngine(e *conversation.Engine) { r.engine = e }

// HandleUpdate routes a single update to the appropriate handler.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	// Text messages
	if upd.Message != nil {
		msg := upd.Message
		chatID := msg.Chat.ID
		text := strings.TrimSpace(msg.Text)

		switch {
		case strings.HasPrefix(text, "/start"):
			r.handleStart(ctx, chatID)
		case strings.HasPrefix(text, "/remind"):
			r.engine.StartRemind(ctx, chatID)
		case strings.HasPrefix(text, "/set_timezone"):
			r.engine.StartSetTimezone(ctx, chatID)
		case strings.HasPrefix(text, "/list"):
			r.handleList(ctx, chatID)
		case strings.HasPrefix(text, "/cancel"):
			r.engine.Cancel(ctx, chatID)
		default:
			// Mid-flow input; idle chats are ignored by the engine.
			r.engine.HandleText(ctx, chatID, text)
		}
		return
	}

	// Callback queries (inline buttons)
	if upd.CallbackQuery != nil {
		cb := upd.CallbackQuery
		if cb.Message == nil {
			return
		}
		_ = r.answerCallback(cb.ID, "")
		r.engine.HandleCallback(ctx, cb.Message.Chat.ID, cb.Data)
		return
	}
}

// SendMessage sends a plain text message to the given chat. This makes Router
// satisfy scheduler.Sender and half of conversation.Dispatcher.
func (r *Router) SendMessage(chatID int64, text string) error {
	_, err := r.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// SendKeyboard sends a message with an inline button menu attached.
func (r *Router) SendKeyboard(chatID int64, text string, kb conversation.Keyboard) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = toInlineKeyboard(kb)
	_, err := r.bot.Send(msg)
	return err
}

func (r *Router) answerCallback(id, text string) error {
	_, err := r.bot.Request(tgbotapi.NewCallback(id, text))
	return err
}

// toInlineKeyboard converts the engine's transport-agnostic menu into
// Telegram inline buttons.
func toInlineKeyboard(kb conversation.Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		btns := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			btns = append(btns, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Data))
		}
		rows = append(rows, btns)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
