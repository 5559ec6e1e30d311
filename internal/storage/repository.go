package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kentyisapen/line-chatbot-workshop/internal/consult"
	domerrors "github.com/kentyisapen/line-chatbot-workshop/internal/errors"
)

// GetUser retrieves a user by LINE user id.
// Returns (nil, nil) when the user does not exist.
func (db *DB) GetUser(ctx context.Context, id string) (*consult.User, error) {
	query := `SELECT line_user_id, state FROM users WHERE line_user_id = ?`

	var user consult.User
	var state string
	err := db.conn.QueryRowContext(ctx, query, id).Scan(&user.ID, &state)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}

	user.State = consult.State(state)
	return &user, nil
}

// CreateUser inserts a user record with the given initial state.
// Inserting an existing user is a no-op, which makes first-contact handling
// idempotent under concurrent webhook deliveries.
func (db *DB) CreateUser(ctx context.Context, id string, state consult.State) error {
	query := `
		INSERT INTO users (line_user_id, state, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(line_user_id) DO NOTHING
	`
	now := time.Now().Unix()
	if _, err := db.conn.ExecContext(ctx, query, id, string(state), now, now); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// SetState updates the conversation state of an existing user.
// Returns ErrNotFound when no user record matches the id.
func (db *DB) SetState(ctx context.Context, id string, state consult.State) error {
	query := `UPDATE users SET state = ?, updated_at = ? WHERE line_user_id = ?`

	res, err := db.conn.ExecContext(ctx, query, string(state), time.Now().Unix(), id)
	if err != nil {
		return fmt.Errorf("update user state: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user state: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update state for user %s: %w", id, domerrors.ErrNotFound)
	}
	return nil
}

// CountUsers returns the number of user records. Used by the readiness probe.
func (db *DB) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

// GetMenu retrieves a rich menu binding by logical name.
// Returns (nil, nil) when the menu has never been saved.
func (db *DB) GetMenu(ctx context.Context, name string) (*consult.MenuBinding, error) {
	query := `SELECT name, rich_menu_id FROM rich_menus WHERE name = ?`

	var binding consult.MenuBinding
	var remoteID sql.NullString
	err := db.conn.QueryRowContext(ctx, query, name).Scan(&binding.Name, &remoteID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query rich menu: %w", err)
	}

	binding.RemoteID = remoteID.String
	return &binding, nil
}

// SaveMenu records the platform-assigned id for a logical menu name,
// replacing any previous binding.
func (db *DB) SaveMenu(ctx context.Context, name, remoteID string) error {
	query := `
		INSERT INTO rich_menus (name, rich_menu_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			rich_menu_id = excluded.rich_menu_id,
			created_at = excluded.created_at
	`
	if _, err := db.conn.ExecContext(ctx, query, name, remoteID, time.Now().Unix()); err != nil {
		return fmt.Errorf("save rich menu: %w", err)
	}
	return nil
}

// ListMenus returns all saved rich menu bindings ordered by name.
func (db *DB) ListMenus(ctx context.Context) ([]consult.MenuBinding, error) {
	query := `SELECT name, rich_menu_id FROM rich_menus ORDER BY name`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list rich menus: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var bindings []consult.MenuBinding
	for rows.Next() {
		var binding consult.MenuBinding
		var remoteID sql.NullString
		if err := rows.Scan(&binding.Name, &remoteID); err != nil {
			return nil, fmt.Errorf("scan rich menu: %w", err)
		}
		binding.RemoteID = remoteID.String
		bindings = append(bindings, binding)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rich menus: %w", err)
	}
	return bindings, nil
}
