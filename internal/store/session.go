package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/wolfiez/wallpaper/types"
)

// SessionRepository handles persistence for login sessions.
type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Replace installs the session as the user's only session. Any previous
// session rows for the user are removed in the same transaction, which is
// what enforces the one-session-per-user rule.
func (r *SessionRepository) Replace(ctx context.Context, session types.Session) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const deleteExisting = `DELETE FROM sessions WHERE user_id = $1`
	if _, err := tx.ExecContext(ctx, deleteExisting, session.UserID); err != nil {
		return err
	}

	const insert = `
		INSERT INTO sessions (token, user_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)`
	if _, err := tx.ExecContext(
		ctx,
		insert,
		session.Token,
		session.UserID,
		session.CreatedAt,
		session.ExpiresAt,
	); err != nil {
		return err
	}

	return tx.Commit()
}

// GetValid fetches the session for the token if it has not expired.
func (r *SessionRepository) GetValid(ctx context.Context, token string) (types.Session, error) {
	const query = `
		SELECT token, user_id, created_at, expires_at
		FROM sessions
		WHERE token = $1 AND expires_at > now()`
	var session types.Session
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&session.Token,
		&session.UserID,
		&session.CreatedAt,
		&session.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Session{}, ErrNotFound
		}
		return types.Session{}, err
	}
	return session, nil
}

func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	const query = `DELETE FROM sessions WHERE token = $1`
	result, err := r.db.ExecContext(ctx, query, token)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteExpired removes sessions past their expiry and reports how many
// rows were removed. Called opportunistically on login.
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	const query = `DELETE FROM sessions WHERE expires_at <= now()`
	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
