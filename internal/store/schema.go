package store

// Schema shared by the sqlite3 and postgres drivers. Positions are plain
// integers; density (0..n-1 per container) is an application invariant
// maintained transactionally, not a database constraint, so that
// multi-statement renumbering can pass through intermediate states.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS boards (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		owner_id    TEXT NOT NULL REFERENCES users(id),
		created_at  TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS board_members (
		board_id TEXT NOT NULL REFERENCES boards(id) ON DELETE CASCADE,
		user_id  TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role     TEXT NOT NULL,
		PRIMARY KEY (board_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS columns (
		id       TEXT PRIMARY KEY,
		board_id TEXT NOT NULL REFERENCES boards(id) ON DELETE CASCADE,
		title    TEXT NOT NULL,
		position INTEGER NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS cards (
		id          TEXT PRIMARY KEY,
		column_id   TEXT NOT NULL REFERENCES columns(id) ON DELETE CASCADE,
		title       TEXT NOT NULL,
		description TEXT,
		due_date    TIMESTAMP,
		labels      TEXT NOT NULL DEFAULT '[]',
		assignee_id TEXT REFERENCES users(id) ON DELETE SET NULL,
		creator_id  TEXT NOT NULL REFERENCES users(id),
		position    INTEGER NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_board_members_user ON board_members(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_columns_board ON columns(board_id)`,
	`CREATE INDEX IF NOT EXISTS idx_cards_column ON cards(column_id)`,
}
