// internal/repository/segment_repository.go
package repository

import (
	"database/sql"
	"encoding/json"

	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/model"
)

type SegmentRepositoryInterface interface {
	Create(s *model.Segment) error
	GetByID(id int) (*model.Segment, error)
	ListAll() ([]model.Segment, error)
}

type SegmentRepository struct {
	DB *sql.DB
}

func (r *SegmentRepository) Create(s *model.Segment) error {
	def, err := json.Marshal(s.Definition)
	if err != nil {
		return err
	}
	query := `
        INSERT INTO segments (name, definition)
        VALUES ($1, $2)
        RETURNING segment_id, is_active, created_at
    `
	return r.DB.QueryRow(query, s.Name, def).Scan(&s.ID, &s.IsActive, &s.CreatedAt)
}

func (r *SegmentRepository) GetByID(id int) (*model.Segment, error) {
	query := `
        SELECT segment_id, name, definition, is_active, created_at, updated_at
        FROM segments WHERE segment_id=$1
    `
	s, err := scanSegment(r.DB.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

func (r *SegmentRepository) ListAll() ([]model.Segment, error) {
	query := `
        SELECT segment_id, name, definition, is_active, created_at, updated_at
        FROM segments ORDER BY segment_id DESC
    `
	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	segments := []model.Segment{}
	for rows.Next() {
		s, err := scanSegment(rows)
		if err != nil {
			return nil, err
		}
		segments = append(segments, *s)
	}
	return segments, rows.Err()
}

func scanSegment(row rowScanner) (*model.Segment, error) {
	var s model.Segment
	var def []byte
	err := row.Scan(&s.ID, &s.Name, &def, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(def) > 0 {
		if err := json.Unmarshal(def, &s.Definition); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

var _ SegmentRepositoryInterface = (*SegmentRepository)(nil)
