// internal/repository/user_repository.go
package repository

import (
	"database/sql"
	"encoding/json"

	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/model"
)

type UserRepositoryInterface interface {
	GetByPhone(phone string) (*model.User, error)
	ListAll() ([]model.User, error)
	ListActive() ([]model.User, error)
	// Upsert creates or updates by normalized phone (natural key) and
	// reports whether a new row was created.
	Upsert(u *model.User) (bool, error)
	UpdateConsent(phone string, state model.ConsentState) error
}

type UserRepository struct {
	DB *sql.DB
}

func (r *UserRepository) GetByPhone(phone string) (*model.User, error) {
	query := `
        SELECT phone_number, attributes, consent_state, is_active, created_at, updated_at
        FROM users WHERE phone_number=$1
    `
	return scanUser(r.DB.QueryRow(query, phone))
}

func (r *UserRepository) ListAll() ([]model.User, error) {
	return r.list(`
        SELECT phone_number, attributes, consent_state, is_active, created_at, updated_at
        FROM users ORDER BY created_at DESC
    `)
}

func (r *UserRepository) ListActive() ([]model.User, error) {
	return r.list(`
        SELECT phone_number, attributes, consent_state, is_active, created_at, updated_at
        FROM users WHERE is_active ORDER BY created_at DESC
    `)
}

func (r *UserRepository) list(query string) ([]model.User, error) {
	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUserRows(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *UserRepository) Upsert(u *model.User) (bool, error) {
	attrs, err := json.Marshal(u.Attributes)
	if err != nil {
		return false, err
	}
	// xmax = 0 distinguishes a fresh insert from a conflict-update in the
	// same round trip.
	query := `
        INSERT INTO users (phone_number, attributes, consent_state, is_active)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (phone_number) DO UPDATE
        SET attributes=EXCLUDED.attributes,
            consent_state=EXCLUDED.consent_state,
            is_active=EXCLUDED.is_active,
            updated_at=NOW()
        RETURNING created_at, (xmax = 0) AS inserted
    `
	var created bool
	err = r.DB.QueryRow(query, u.Phone, attrs, u.ConsentState, u.IsActive).
		Scan(&u.CreatedAt, &created)
	return created, err
}

func (r *UserRepository) UpdateConsent(phone string, state model.ConsentState) error {
	query := `UPDATE users SET consent_state=$1, updated_at=NOW() WHERE phone_number=$2`
	_, err := r.DB.Exec(query, state, phone)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row *sql.Row) (*model.User, error) {
	u, err := scanUserRows(row)
	if err == sql.ErrNoRows {
		return nil, nil // not found
	}
	return u, err
}

func scanUserRows(row rowScanner) (*model.User, error) {
	var u model.User
	var attrs []byte
	if err := row.Scan(&u.Phone, &attrs, &u.ConsentState, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Attributes = map[string]any{}
	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, &u.Attributes); err != nil {
			return nil, err
		}
	}
	return &u, nil
}

var _ UserRepositoryInterface = (*UserRepository)(nil)
