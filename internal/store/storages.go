package store

import "github.com/jk278/lifetracker/internal/logger"

// Storages bundles the repositories that share the local database.
type Storages struct {
	Records  RecordRepository
	Manifest ManifestRepository
	Settings SettingsRepository
	Audit    AuditRepository
}

func NewStorages(db *DB, log *logger.Logger) *Storages {
	return &Storages{
		Records:  NewRecordRepository(db, log),
		Manifest: NewManifestRepository(db, log),
		Settings: NewSettingsRepository(db, log),
		Audit:    NewAuditRepository(db, log),
	}
}
