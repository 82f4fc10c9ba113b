package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/Butord/gl/internal/domain"
)

// SQLiteRepo implements Repo using an embedded SQLite database.
type SQLiteRepo struct{ db *sql.DB }

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies recommended PRAGMAs, runs SQL migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if dir := filepath.Dir(path); dir != "." && !strings.HasPrefix(path, ":") {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Reasonable pooling for SQLite; it's a single-writer engine.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Apply PRAGMAs and run migrations.
	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db}, nil
}

// applyPragmas configures the SQLite connection for durability and concurrency.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// SaveTimezone upserts the timezone preference for a chat.
func (r *SQLiteRepo) SaveTimezone(ctx context.Context, chatID int64, tz string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO preferences (chat_id, timezone)
		VALUES (?, ?)
		ON CONFLICT(chat_id) DO UPDATE SET
			timezone = excluded.timezone`,
		chatID, tz,
	)
	return err
}

// GetTimezone returns the stored timezone for a chat, or "" when none is set.
func (r *SQLiteRepo) GetTimezone(ctx context.Context, chatID int64) (string, error) {
	var tz string
	err := r.db.QueryRowContext(ctx,
		`SELECT timezone FROM preferences WHERE chat_id = ?`, chatID,
	).Scan(&tz)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return tz, nil
}

// CreateReminder inserts a new reminder with both delivery flags unset.
func (r *SQLiteRepo) CreateReminder(ctx context.Context, chatID int64, text string, occursAt, notifyAt time.Time, tz string) (int64, error) {
	if text == "" {
		return 0, errors.New("empty reminder text")
	}
	if notifyAt.After(occursAt) {
		return 0, domain.ErrNotifyAfterOccurrence
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO reminders (chat_id, text, occurs_at, notify_at, timezone, notify_sent, reminder_sent)
		VALUES (?, ?, ?, ?, ?, 0, 0)`,
		chatID, text, occursAt.UTC().Unix(), notifyAt.UTC().Unix(), tz,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// DueForNotify returns up to `limit` reminders whose heads-up has not been
// sent yet and is due. Results are ordered by notify_at ascending.
func (r *SQLiteRepo) DueForNotify(ctx context.Context, now time.Time, limit int) ([]domain.Reminder, error) {
	return r.queryReminders(ctx, `
		SELECT id, chat_id, text, occurs_at, notify_at, timezone, notify_sent, reminder_sent
		FROM reminders
		WHERE notify_sent = 0
		  AND notify_at <= ?
		ORDER BY notify_at ASC
		LIMIT ?`,
		now.UTC().Unix(), limit,
	)
}

// DueForReminder returns up to `limit` reminders whose on-time message has not
// been sent yet and is due. Results are ordered by occurs_at ascending.
func (r *SQLiteRepo) DueForReminder(ctx context.Context, now time.Time, limit int) ([]domain.Reminder, error) {
	return r.queryReminders(ctx, `
		SELECT id, chat_id, text, occurs_at, notify_at, timezone, notify_sent, reminder_sent
		FROM reminders
		WHERE reminder_sent = 0
		  AND occurs_at <= ?
		ORDER BY occurs_at ASC
		LIMIT ?`,
		now.UTC().Unix(), limit,
	)
}

// ListByChat returns all reminders of a chat ordered by occurrence time.
func (r *SQLiteRepo) ListByChat(ctx context.Context, chatID int64) ([]domain.Reminder, error) {
	return r.queryReminders(ctx, `
		SELECT id, chat_id, text, occurs_at, notify_at, timezone, notify_sent, reminder_sent
		FROM reminders
		WHERE chat_id = ?
		ORDER BY occurs_at ASC`,
		chatID,
	)
}

// MarkNotifySent sets the heads-up flag. Setting an already-set flag is a no-op;
// a flag is never unset.
func (r *SQLiteRepo) MarkNotifySent(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE reminders SET notify_sent = 1 WHERE id = ?`, id)
	return err
}

// MarkReminderSent sets the on-time flag. Same idempotence as MarkNotifySent.
func (r *SQLiteRepo) MarkReminderSent(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE reminders SET reminder_sent = 1 WHERE id = ?`, id)
	return err
}

func (r *SQLiteRepo) queryReminders(ctx context.Context, query string, args ...any) ([]domain.Reminder, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Reminder
	for rows.Next() {
		var (
			rem         domain.Reminder
			occursAt    int64
			notifyAt    int64
			notifyInt   int
			reminderInt int
		)
		if err := rows.Scan(
			&rem.ID, &rem.ChatID, &rem.Text, &occursAt, &notifyAt, &rem.TZ,
			&notifyInt, &reminderInt,
		); err != nil {
			return nil, err
		}
		rem.OccursAt = time.Unix(occursAt, 0).UTC()
		rem.NotifyAt = time.Unix(notifyAt, 0).UTC()
		rem.NotifySent = notifyInt != 0
		rem.ReminderSent = reminderInt != 0
		res = append(res, rem)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}
