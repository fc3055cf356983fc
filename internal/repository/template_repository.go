// internal/repository/template_repository.go
package repository

import (
	"database/sql"
	"encoding/json"

	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/model"
)

type TemplateRepositoryInterface interface {
	Create(t *model.Template) error
	GetByID(id int) (*model.Template, error)
	ListAll() ([]model.Template, error)
}

type TemplateRepository struct {
	DB *sql.DB
}

func (r *TemplateRepository) Create(t *model.Template) error {
	placeholders, err := json.Marshal(t.Placeholders)
	if err != nil {
		return err
	}
	query := `
        INSERT INTO templates (channel, locale, body, placeholders)
        VALUES ($1, $2, $3, $4)
        RETURNING template_id, is_active, created_at
    `
	return r.DB.QueryRow(query, t.Channel, t.Locale, t.Body, placeholders).
		Scan(&t.ID, &t.IsActive, &t.CreatedAt)
}

func (r *TemplateRepository) GetByID(id int) (*model.Template, error) {
	query := `
        SELECT template_id, channel, locale, body, placeholders, is_active, created_at, updated_at
        FROM templates WHERE template_id=$1
    `
	t, err := scanTemplate(r.DB.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return t, err
}

func (r *TemplateRepository) ListAll() ([]model.Template, error) {
	query := `
        SELECT template_id, channel, locale, body, placeholders, is_active, created_at, updated_at
        FROM templates ORDER BY template_id DESC
    `
	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := []model.Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

func scanTemplate(row rowScanner) (*model.Template, error) {
	var t model.Template
	var placeholders []byte
	err := row.Scan(&t.ID, &t.Channel, &t.Locale, &t.Body, &placeholders, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Placeholders = []string{}
	if len(placeholders) > 0 {
		if err := json.Unmarshal(placeholders, &t.Placeholders); err != nil {
			return nil, err
		}
	}
	return &t, nil
}

var _ TemplateRepositoryInterface = (*TemplateRepository)(nil)
