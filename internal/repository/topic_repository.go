// internal/repository/topic_repository.go
package repository

import (
	"database/sql"

	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/model"
)

type TopicRepositoryInterface interface {
	Create(t *model.Topic) error
	GetByID(id int) (*model.Topic, error)
	List(activeOnly bool) ([]model.Topic, error)
	Deactivate(id int) error
}

type TopicRepository struct {
	DB *sql.DB
}

func (r *TopicRepository) Create(t *model.Topic) error {
	query := `INSERT INTO topics (name) VALUES ($1) RETURNING topic_id, is_active, created_at`
	return r.DB.QueryRow(query, t.Name).Scan(&t.ID, &t.IsActive, &t.CreatedAt)
}

func (r *TopicRepository) GetByID(id int) (*model.Topic, error) {
	query := `SELECT topic_id, name, is_active, created_at FROM topics WHERE topic_id=$1`
	var t model.Topic
	err := r.DB.QueryRow(query, id).Scan(&t.ID, &t.Name, &t.IsActive, &t.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TopicRepository) List(activeOnly bool) ([]model.Topic, error) {
	query := `SELECT topic_id, name, is_active, created_at FROM topics`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY topic_id`

	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	topics := []model.Topic{}
	for rows.Next() {
		var t model.Topic
		if err := rows.Scan(&t.ID, &t.Name, &t.IsActive, &t.CreatedAt); err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

func (r *TopicRepository) Deactivate(id int) error {
	_, err := r.DB.Exec(`UPDATE topics SET is_active=FALSE WHERE topic_id=$1`, id)
	return err
}

var _ TopicRepositoryInterface = (*TopicRepository)(nil)
