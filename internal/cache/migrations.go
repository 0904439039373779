package cache

// migration is one versioned schema change. Migrations run in order and
// each one records its own version row.
type migration struct {
	version int
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		sql: `
			CREATE TABLE IF NOT EXISTS schema_version (
				version INTEGER PRIMARY KEY,
				applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);

			CREATE TABLE IF NOT EXISTS project_content (
				key TEXT PRIMARY KEY,
				payload TEXT NOT NULL,
				updated_at TIMESTAMP NOT NULL
			);

			INSERT INTO schema_version (version) VALUES (1);
		`,
	},
}
