// Package store provides database access methods for all TeleMart
// entities. Each store struct wraps a *sql.DB and exposes typed query methods.
package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"telemart/internal/models"
)

// UserStore handles all user-related database operations.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore with the given database connection.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, telegram_id, first_name, last_name, username, photo_url, is_admin, created_at, updated_at`

// scanUser scans a row into a User struct.
func scanUser(scanner interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	err := scanner.Scan(
		&u.ID, &u.TelegramID, &u.FirstName, &u.LastName, &u.Username,
		&u.PhotoURL, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// uuidStrings converts UUIDs to their string form for ANY($1::uuid[])
// parameters, which the pgx stdlib driver binds reliably as text arrays.
func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// FindByID retrieves a user by their UUID. Returns nil if not found.
func (s *UserStore) FindByID(id uuid.UUID) (*models.User, error) {
	row := s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

// FindByIDs retrieves multiple users keyed by UUID. Missing ids are
// simply absent from the result map.
func (s *UserStore) FindByIDs(ids []uuid.UUID) (map[uuid.UUID]models.User, error) {
	result := make(map[uuid.UUID]models.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := s.db.Query(`SELECT `+userColumns+` FROM users WHERE id = ANY($1::uuid[])`, uuidStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("find users by ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		result[u.ID] = *u
	}
	return result, rows.Err()
}

// Upsert creates a user on first Telegram login or syncs the profile
// fields on a returning one. The second return value reports whether the
// row was newly created.
func (s *UserStore) Upsert(telegramID int64, firstName, lastName, username, photoURL string, isAdmin bool) (*models.User, bool, error) {
	u := &models.User{}
	var created bool
	// (xmax = 0) is true only for rows inserted by this statement.
	err := s.db.QueryRow(`
		INSERT INTO users (telegram_id, first_name, last_name, username, photo_url, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (telegram_id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			username = EXCLUDED.username,
			photo_url = EXCLUDED.photo_url,
			is_admin = EXCLUDED.is_admin,
			updated_at = NOW()
		RETURNING `+userColumns+`, (xmax = 0)
	`, telegramID, firstName, lastName, username, photoURL, isAdmin).Scan(
		&u.ID, &u.TelegramID, &u.FirstName, &u.LastName, &u.Username,
		&u.PhotoURL, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt,
		&created,
	)
	if err != nil {
		return nil, false, fmt.Errorf("upsert user: %w", err)
	}
	return u, created, nil
}

// Delete removes a user by ID.
func (s *UserStore) Delete(userID uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
