// Package db wires repository constructors to a concrete database and owns
// schema migrations.
package db

import (
	"context"
	"database/sql"

	"github.com/lumina-social/lumina/internal/dbx"
	"github.com/lumina-social/lumina/internal/server/sessions"
	"github.com/lumina-social/lumina/internal/server/users"
)

// RepositoryManager vends repositories bound to a database handle. Passing
// the transaction from dbx.WithTx yields transactional repositories; passing
// Conn() yields plain ones.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Conn() *sql.DB
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
}
