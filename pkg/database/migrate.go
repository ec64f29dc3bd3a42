package database

import (
	"database/sql"
	"fmt"
)

func Migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT UNIQUE,
			password_hash TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS profiles (
			user_id TEXT PRIMARY KEY REFERENCES users(id),
			display_name TEXT DEFAULT '',
			avatar_url TEXT DEFAULT '',
			bio TEXT DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS comics (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			comicvine_id INTEGER NOT NULL UNIQUE,
			title TEXT,
			publisher TEXT,
			start_year TEXT,
			issue_count INTEGER DEFAULT 0,
			description TEXT,
			image_url TEXT,
			api_detail_url TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS user_comics (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			comic_id INTEGER NOT NULL REFERENCES comics(id),
			status TEXT NOT NULL DEFAULT 'planned',
			personal_rating INTEGER,
			added_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			started_reading_date TIMESTAMP,
			completed_date TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(user_id, comic_id)
		);`,
		`CREATE TABLE IF NOT EXISTS user_issues (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			comic_id INTEGER NOT NULL REFERENCES comics(id),
			issue_number INTEGER NOT NULL,
			is_read INTEGER NOT NULL DEFAULT 0,
			read_date TIMESTAMP,
			UNIQUE(user_id, comic_id, issue_number)
		);`,
	}

	for i, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("migrate stmt %d: %w", i, err)
		}
	}
	return nil
}
