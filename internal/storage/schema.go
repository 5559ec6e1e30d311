package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// InitSchema creates all necessary tables and indexes.
// Note: WAL mode and the other pragmas are configured in db.go.
func InitSchema(db *sql.DB) error {
	if err := createUsersTable(db); err != nil {
		return err
	}

	return createRichMenusTable(db)
}

func createUsersTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		line_user_id TEXT PRIMARY KEY,
		state TEXT NOT NULL DEFAULT 'idle' CHECK(state IN ('idle', 'started_consultation')),
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_users_state ON users(state);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	return nil
}

// createRichMenusTable stores the bot-side name to platform-side id binding
// written by the menu registration command and read on every menu link.
func createRichMenusTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS rich_menus (
		name TEXT PRIMARY KEY,
		rich_menu_id TEXT,
		created_at INTEGER NOT NULL
	);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create rich_menus table: %w", err)
	}

	return nil
}
