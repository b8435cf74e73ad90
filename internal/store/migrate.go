package store

import "database/sql"

// Migrate brings the schema up to the current version. Versioning rides on
// PRAGMA user_version, same connection that serves queries.
func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}

	if v < 1 {
		stmts := []string{
			`CREATE TABLE IF NOT EXISTS jobs (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				external_id TEXT NOT NULL UNIQUE,
				title       TEXT NOT NULL,
				company     TEXT NOT NULL,
				location    TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				tags        TEXT NOT NULL DEFAULT '[]',
				source      TEXT NOT NULL,
				apply_link  TEXT NOT NULL,
				posted_at   TEXT NOT NULL,
				created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
				updated_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
			);`,
			`CREATE INDEX IF NOT EXISTS idx_jobs_source ON jobs(source);`,
			`CREATE INDEX IF NOT EXISTS idx_jobs_posted_at ON jobs(posted_at);`,

			`CREATE TABLE IF NOT EXISTS users (
				id            TEXT PRIMARY KEY,
				email         TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				created_at    TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
			);`,

			`CREATE TABLE IF NOT EXISTS saved_jobs (
				user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				job_id     INTEGER NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
				created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
				PRIMARY KEY (user_id, job_id)
			);`,

			`CREATE TABLE IF NOT EXISTS preferences (
				user_id    TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
				keywords   TEXT NOT NULL DEFAULT '[]',
				locations  TEXT NOT NULL DEFAULT '[]',
				sources    TEXT NOT NULL DEFAULT '[]',
				remote_ok  INTEGER NOT NULL DEFAULT 1,
				updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
			);`,

			`PRAGMA user_version = 1;`,
		}
		for _, s := range stmts {
			if _, err := tx.Exec(s); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}
