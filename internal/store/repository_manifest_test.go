package store

import (
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jk278/lifetracker/internal/logger"
	"github.com/jk278/lifetracker/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var manifestColumns = []string{
	"id", "entity_type",
	"last_local_hash", "last_local_modified",
	"last_remote_hash", "last_remote_modified",
	"base_payload",
}

func testManifestEntry(id string) models.ManifestEntry {
	now := time.Now().Truncate(time.Millisecond)
	return models.ManifestEntry{
		ID:                 id,
		Type:               models.EntityTask,
		LastLocalHash:      "lh-" + id,
		LastLocalModified:  now,
		LastRemoteHash:     "rh-" + id,
		LastRemoteModified: now,
		BasePayload:        []byte(`{"done":false}`),
	}
}

func TestManifestGetAll(t *testing.T) {
	now := time.Now().Truncate(time.Millisecond)

	t.Run("success: keyed by id, null base payload allowed", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewManifestRepository(newDBFromSQL(db), logger.Nop())

		rows := sqlmock.NewRows(manifestColumns).
			AddRow("rec-1", string(models.EntityTask), "lh1", now, "rh1", now, `{"done":true}`).
			AddRow("rec-2", string(models.EntityNote), "lh2", now, "rh2", now, nil)

		mock.ExpectQuery(regexp.QuoteMeta("FROM sync_manifest")).WillReturnRows(rows)

		entries, err := repo.GetAll(testContext())
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.JSONEq(t, `{"done":true}`, string(entries["rec-1"].BasePayload))
		assert.Nil(t, entries["rec-2"].BasePayload)
		assert.Equal(t, models.EntityNote, entries["rec-2"].Type)
	})

	t.Run("success: empty manifest", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewManifestRepository(newDBFromSQL(db), logger.Nop())

		mock.ExpectQuery(regexp.QuoteMeta("FROM sync_manifest")).
			WillReturnRows(sqlmock.NewRows(manifestColumns))

		entries, err := repo.GetAll(testContext())
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("query error", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewManifestRepository(newDBFromSQL(db), logger.Nop())

		mock.ExpectQuery(regexp.QuoteMeta("FROM sync_manifest")).
			WillReturnError(errors.New("database is locked"))

		_, err := repo.GetAll(testContext())
		require.Error(t, err)
	})
}

func TestManifestCommitRound(t *testing.T) {
	t.Run("success: upserts and deletes in one transaction", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewManifestRepository(newDBFromSQL(db), logger.Nop())

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sync_manifest")).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sync_manifest")).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sync_manifest")).
			WithArgs("rec-gone").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.CommitRound(testContext(),
			[]models.ManifestEntry{testManifestEntry("rec-1"), testManifestEntry("rec-2")},
			[]string{"rec-gone"})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success: empty round commits trivially", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewManifestRepository(newDBFromSQL(db), logger.Nop())

		mock.ExpectBegin()
		mock.ExpectCommit()

		err := repo.CommitRound(testContext(), nil, nil)
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed upsert rolls back the whole round", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewManifestRepository(newDBFromSQL(db), logger.Nop())

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sync_manifest")).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sync_manifest")).
			WillReturnError(errors.New("constraint failed"))
		mock.ExpectRollback()

		err := repo.CommitRound(testContext(),
			[]models.ManifestEntry{testManifestEntry("rec-1"), testManifestEntry("rec-2")},
			nil)
		require.ErrorIs(t, err, ErrManifestCommit)
		assert.Contains(t, err.Error(), "rec-2")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed delete rolls back the whole round", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewManifestRepository(newDBFromSQL(db), logger.Nop())

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sync_manifest")).
			WillReturnError(errors.New("database is locked"))
		mock.ExpectRollback()

		err := repo.CommitRound(testContext(), nil, []string{"rec-gone"})
		require.ErrorIs(t, err, ErrManifestCommit)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin error", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewManifestRepository(newDBFromSQL(db), logger.Nop())

		mock.ExpectBegin().WillReturnError(errors.New("connection closed"))

		err := repo.CommitRound(testContext(), []models.ManifestEntry{testManifestEntry("rec-1")}, nil)
		require.ErrorIs(t, err, ErrManifestCommit)
	})

	t.Run("commit error", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewManifestRepository(newDBFromSQL(db), logger.Nop())

		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(errors.New("disk I/O error"))

		err := repo.CommitRound(testContext(), nil, nil)
		require.ErrorIs(t, err, ErrManifestCommit)
	})
}

func TestManifestUpsert(t *testing.T) {
	t.Run("success: base payload bound as text", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewManifestRepository(newDBFromSQL(db), logger.Nop())

		entry := testManifestEntry("rec-1")

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sync_manifest")).
			WithArgs(entry.ID, entry.Type,
				entry.LastLocalHash, entry.LastLocalModified,
				entry.LastRemoteHash, entry.LastRemoteModified,
				string(entry.BasePayload)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Upsert(testContext(), entry))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success: empty base payload bound as NULL", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewManifestRepository(newDBFromSQL(db), logger.Nop())

		entry := testManifestEntry("rec-1")
		entry.BasePayload = nil

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sync_manifest")).
			WithArgs(entry.ID, entry.Type,
				entry.LastLocalHash, entry.LastLocalModified,
				entry.LastRemoteHash, entry.LastRemoteModified,
				nil).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Upsert(testContext(), entry))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("exec error", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewManifestRepository(newDBFromSQL(db), logger.Nop())

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sync_manifest")).
			WillReturnError(errors.New("constraint failed"))

		err := repo.Upsert(testContext(), testManifestEntry("rec-1"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rec-1")
	})
}

func TestManifestDelete(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewManifestRepository(newDBFromSQL(db), logger.Nop())

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sync_manifest")).
		WithArgs("rec-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(testContext(), "rec-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
