package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lumina-social/lumina/internal/common"
	"github.com/lumina-social/lumina/internal/dbx"
	"github.com/lumina-social/lumina/internal/server/users"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, userID int64, token string) error {
	query :=
		`INSERT INTO sessions (user_id, session_key)
		 VALUES ($1, $2)
		 `
	_, err := r.db.ExecContext(ctx, query, userID, token)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetUserByToken(ctx context.Context, token string) (*users.User, error) {
	query :=
		`SELECT u.id, u.username, u.email, u.password_hash, u.created_at
		 FROM users u
		 JOIN sessions s ON s.user_id = u.id
		 WHERE s.session_key = $1
		 `
	user := &users.User{}
	err := r.db.QueryRowContext(ctx, query, token).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) DeleteByToken(ctx context.Context, token string) error {
	query :=
		`DELETE FROM sessions
		 WHERE session_key = $1
		 `
	_, err := r.db.ExecContext(ctx, query, token)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	query :=
		`DELETE FROM sessions
		 WHERE created_at < $1
		 `
	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("error performing sql request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error reading affected rows: %w", err)
	}
	return n, nil
}
