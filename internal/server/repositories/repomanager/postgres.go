// Package repomanager wires concrete PostgreSQL repositories together and
// applies embedded goose migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/Preethi0409/canvas/internal/dbx"
	"github.com/Preethi0409/canvas/internal/server/migrations"
	"github.com/Preethi0409/canvas/internal/server/repositories/canvases"
	"github.com/Preethi0409/canvas/internal/server/repositories/operations"
	"github.com/Preethi0409/canvas/internal/server/repositories/refreshtokens"
	"github.com/Preethi0409/canvas/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresRepositoryManager struct {
}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Canvases(db dbx.DBTX) canvases.Repository {
	return canvases.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Operations(db dbx.DBTX) operations.Repository {
	return operations.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}
