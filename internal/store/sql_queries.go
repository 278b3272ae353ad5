// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

const (
	saveRecord = `
		INSERT INTO records (
			id,
			entity_type,
			name,
			payload,
			hash,
			modified_at,
			deleted
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			entity_type = excluded.entity_type,
			name        = excluded.name,
			payload     = excluded.payload,
			hash        = excluded.hash,
			modified_at = excluded.modified_at,
			deleted     = excluded.deleted;`

	getRecord = `
		SELECT
			id,
			entity_type,
			name,
			payload,
			hash,
			modified_at,
			deleted
		FROM records
		WHERE id = $1;`

	getAllRecordStates = `
		SELECT
			id,
			entity_type,
			name,
			hash,
			modified_at,
			deleted
		FROM records;`

	softDeleteRecord = `
		UPDATE records SET
			deleted     = true,
			modified_at = $1
		WHERE id = $2;`

	hardDeleteRecord = `
		DELETE FROM records
		WHERE id = $1;`

	getAllManifestEntries = `
		SELECT
			id,
			entity_type,
			last_local_hash,
			last_local_modified,
			last_remote_hash,
			last_remote_modified,
			base_payload
		FROM sync_manifest;`

	upsertManifestEntry = `
		INSERT INTO sync_manifest (
			id,
			entity_type,
			last_local_hash,
			last_local_modified,
			last_remote_hash,
			last_remote_modified,
			base_payload
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			entity_type          = excluded.entity_type,
			last_local_hash      = excluded.last_local_hash,
			last_local_modified  = excluded.last_local_modified,
			last_remote_hash     = excluded.last_remote_hash,
			last_remote_modified = excluded.last_remote_modified,
			base_payload         = excluded.base_payload;`

	deleteManifestEntry = `
		DELETE FROM sync_manifest
		WHERE id = $1;`

	getSetting = `
		SELECT value
		FROM settings
		WHERE key = $1;`

	upsertSetting = `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET
			value      = excluded.value,
			updated_at = CURRENT_TIMESTAMP;`

	insertAuditEntry = `
		INSERT INTO sync_audit (
			record_id,
			choice,
			local_hash,
			remote_hash,
			result_hash,
			resolved_at
		) VALUES ($1, $2, $3, $4, $5, $6);`
)
