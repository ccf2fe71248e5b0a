package usage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store handles chat_usage persistence.
type Store struct {
	db *pgxpool.Pool
}

// NewStore returns a Store backed by the given connection pool.
func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// UseToken atomically checks the monthly quota and deducts one request token.
// It resets the counter to DefaultTokens when the stored period is behind the
// current month. Returns ErrInsufficientTokens when 0 rows are updated (quota
// exhausted or user absent).
func (s *Store) UseToken(ctx context.Context, uid string) error {
	period := time.Now().Format("2006-01")

	tag, err := s.db.Exec(ctx, `
		UPDATE chat_usage SET
			tokens_remaining = CASE WHEN period != $1 THEN $2 - 1 ELSE tokens_remaining - 1 END,
			period = $1
		WHERE uid = $3 AND (period < $1 OR tokens_remaining > 0)
	`, period, DefaultTokens, uid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientTokens
	}
	return nil
}

// EnsureUser inserts a new chat_usage row for uid with the default allowance.
// If the row already exists the insert is silently skipped.
func (s *Store) EnsureUser(ctx context.Context, uid string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO chat_usage (uid, tokens_remaining, period)
		VALUES ($1, $2, $3)
		ON CONFLICT (uid) DO NOTHING
	`, uid, DefaultTokens, time.Now().Format("2006-01"))
	return err
}
