package store

import (
	"database/sql"

	"github.com/jk278/lifetracker/internal/logger"
	"github.com/jk278/lifetracker/migrations"
)

// DB wraps the shared *sql.DB handle together with the application logger.
// All repositories embed it, so the manifest and the records live inside the
// same database and can share one transaction boundary.
type DB struct {
	*sql.DB
	logger *logger.Logger
}

func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB)
}
