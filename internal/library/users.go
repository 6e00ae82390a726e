package library

import (
	"fmt"
	"time"
)

const userColumns = "id, email, display_name, permissions, api_key, created_at"

func scanUser(row rowScanner) (*User, error) {
	u := &User{}
	if err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.Permissions, &u.APIKey, &u.CreatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

func addUser(q querier, u *User) error {
	now := time.Now()
	result, err := q.Exec(`
		INSERT INTO users (email, display_name, permissions, api_key, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		u.Email, u.DisplayName, u.Permissions, u.APIKey, now,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	u.ID = id
	u.CreatedAt = now
	return nil
}

// AddUser inserts a new user. Sets ID and CreatedAt.
func (s *Store) AddUser(u *User) error { return addUser(s.db, u) }

// AddUser inserts a new user within a transaction.
func (t *Tx) AddUser(u *User) error { return addUser(t.tx, u) }

// GetUser retrieves a user by ID.
// Returns ErrNotFound if the user does not exist.
func (s *Store) GetUser(id int64) (*User, error) {
	u, err := scanUser(s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, mapSQLiteError(err))
	}
	return u, nil
}

// GetUserByAPIKey finds the user owning key.
// Returns ErrNotFound if no user has that key.
func (s *Store) GetUserByAPIKey(key string) (*User, error) {
	u, err := scanUser(s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE api_key = ?", key))
	if err != nil {
		return nil, fmt.Errorf("get user by api key: %w", mapSQLiteError(err))
	}
	return u, nil
}

// FirstUser returns the user with the lowest id.
// Returns ErrNotFound if there are no users.
func (s *Store) FirstUser() (*User, error) {
	u, err := scanUser(s.db.QueryRow("SELECT " + userColumns + " FROM users ORDER BY id LIMIT 1"))
	if err != nil {
		return nil, fmt.Errorf("get first user: %w", mapSQLiteError(err))
	}
	return u, nil
}

// FirstAdmin returns the lowest-id user holding the admin permission.
// Returns ErrNotFound if no user is an administrator.
func (s *Store) FirstAdmin() (*User, error) {
	u, err := scanUser(s.db.QueryRow(
		"SELECT "+userColumns+" FROM users WHERE (permissions & ?) != 0 ORDER BY id LIMIT 1",
		int64(PermissionAdmin)))
	if err != nil {
		return nil, fmt.Errorf("get first admin: %w", mapSQLiteError(err))
	}
	return u, nil
}

// ListUsers returns every user ordered by id.
func (s *Store) ListUsers() ([]*User, error) {
	rows, err := s.db.Query("SELECT " + userColumns + " FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func deleteUser(q querier, id int64) error {
	if _, err := q.Exec(`
		DELETE FROM season_requests
		WHERE request_id IN (SELECT id FROM media_requests WHERE requested_by = ?)`, id); err != nil {
		return fmt.Errorf("delete seasons of user %d: %w", id, mapSQLiteError(err))
	}
	if _, err := q.Exec("DELETE FROM media_requests WHERE requested_by = ?", id); err != nil {
		return fmt.Errorf("delete requests of user %d: %w", id, mapSQLiteError(err))
	}
	if _, err := q.Exec("UPDATE media_requests SET modified_by = NULL WHERE modified_by = ?", id); err != nil {
		return fmt.Errorf("clear modified_by of user %d: %w", id, mapSQLiteError(err))
	}
	result, err := q.Exec("DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, mapSQLiteError(err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete user %d: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteUser removes a user, the requests they own and their seasons.
// Requests the user merely modified keep existing with modified_by cleared.
func (s *Store) DeleteUser(id int64) error {
	return s.WithTx(func(tx *Tx) error { return deleteUser(tx.tx, id) })
}
