package repomanager

import (
	"context"
	"database/sql"

	"github.com/Preethi0409/canvas/internal/dbx"
	"github.com/Preethi0409/canvas/internal/server/repositories/canvases"
	"github.com/Preethi0409/canvas/internal/server/repositories/operations"
	"github.com/Preethi0409/canvas/internal/server/repositories/refreshtokens"
	"github.com/Preethi0409/canvas/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to a DBTX, so the same
// repository code runs against a plain connection or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Canvases(db dbx.DBTX) canvases.Repository
	Operations(db dbx.DBTX) operations.Repository
}
