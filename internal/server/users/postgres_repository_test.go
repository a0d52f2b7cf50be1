package users

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lumina-social/lumina/internal/common"
)

func TestPostgresRepository_Create(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WithArgs("alice", "alice@example.com", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(42), now))

	r := NewPostgresRepository(db)
	u, err := r.Create(context.Background(), &User{Username: "alice", Email: "alice@example.com", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.ID != 42 || !u.CreatedAt.Equal(now) {
		t.Fatalf("unexpected user: %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestPostgresRepository_GetByUsername(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "created_at"}).
		AddRow(int64(7), "alice", "alice@example.com", "hash", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, username, email, password_hash, created_at FROM users`)).
		WithArgs("alice").
		WillReturnRows(rows)

	r := NewPostgresRepository(db)
	u, err := r.GetByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if u.ID != 7 || u.Email != "alice@example.com" {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestPostgresRepository_NotFound(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, username, email, password_hash, created_at FROM users`)).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "created_at"}))

	r := NewPostgresRepository(db)
	_, err := r.GetByID(context.Background(), 404)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestPostgresRepository_QueryError(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, username, email, password_hash, created_at FROM users`)).
		WithArgs("alice@example.com").
		WillReturnError(errBoom{})

	r := NewPostgresRepository(db)
	_, err := r.GetByEmail(context.Background(), "alice@example.com")
	if err == nil || errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want wrapped query error, got %v", err)
	}
}
