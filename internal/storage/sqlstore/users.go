package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// UserStore is the e-mail to proprietary id directory.
type UserStore struct {
	db *sqlx.DB
}

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

// Upsert stores the mapping and returns the proprietary id it replaced, if
// any. An unchanged mapping is not rewritten.
func (s *UserStore) Upsert(ctx context.Context, email, propID string) (previous string, changed bool, err error) {
	exec := GetExecutor(ctx, s.db)
	err = sqlx.GetContext(ctx, exec, &previous,
		exec.Rebind(`SELECT proprietary_id FROM emails WHERE email = ?`), email)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", false, fmt.Errorf("get user %s: %w", email, err)
	}
	if err == nil && previous == propID {
		return previous, false, nil
	}

	_, err = exec.ExecContext(ctx, exec.Rebind(`
		INSERT INTO emails (email, proprietary_id) VALUES (?, ?)
		ON CONFLICT (email) DO UPDATE SET proprietary_id = excluded.proprietary_id`),
		email, propID)
	if err != nil {
		return "", false, fmt.Errorf("upsert user %s: %w", email, err)
	}
	return previous, true, nil
}

// All returns the directory keyed by lower-case e-mail.
func (s *UserStore) All(ctx context.Context) (map[string]string, error) {
	rows, err := GetExecutor(ctx, s.db).QueryxContext(ctx, `SELECT email, proprietary_id FROM emails`)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	defer rows.Close()

	users := make(map[string]string)
	for rows.Next() {
		var email, propID string
		if err := rows.Scan(&email, &propID); err != nil {
			return nil, err
		}
		users[email] = propID
	}
	return users, rows.Err()
}
