// internal/repository/message_repository.go
package repository

import (
	"database/sql"

	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/model"
)

type MessageRepositoryInterface interface {
	Create(m *model.Message) error
	GetByID(id int) (*model.Message, error)
	GetByProviderSID(sid string) (*model.Message, error)
	// CompareAndSetState applies from -> to only if the row is still in
	// from, serializing concurrent dispatch and webhook writes per message.
	CompareAndSetState(id int, from, to model.MessageState) (bool, error)
	// MarkSent moves SENDING -> SENT with the rendered body and provider id.
	MarkSent(id int, body, providerSID string) (bool, error)
	// MarkFailed moves SENDING -> FAILED with the error detail.
	MarkFailed(id int, body, errorDetail string) (bool, error)
	CountByState(campaignID int) (map[model.MessageState]int, error)
	ListFailedErrors(campaignID int) ([]string, error)
	ListByCampaign(campaignID int) ([]model.Message, error)
	ListAll(limit int) ([]model.Message, error)
}

type MessageRepository struct {
	DB *sql.DB
}

const messageColumns = `message_id, campaign_id, phone_number, template_id, body, state, provider_message_sid, error_detail, created_at, updated_at`

func (r *MessageRepository) Create(m *model.Message) error {
	if m.State == "" {
		m.State = model.StateQueued
	}
	query := `
        INSERT INTO messages (campaign_id, phone_number, template_id, body, state, provider_message_sid, error_detail)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING message_id, created_at
    `
	return r.DB.QueryRow(
		query,
		m.CampaignID, m.Phone, m.TemplateID, m.Body, m.State, m.ProviderSID, m.ErrorDetail,
	).Scan(&m.ID, &m.CreatedAt)
}

func (r *MessageRepository) GetByID(id int) (*model.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE message_id=$1`
	m, err := scanMessage(r.DB.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return m, err
}

func (r *MessageRepository) GetByProviderSID(sid string) (*model.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE provider_message_sid=$1`
	m, err := scanMessage(r.DB.QueryRow(query, sid))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return m, err
}

func (r *MessageRepository) CompareAndSetState(id int, from, to model.MessageState) (bool, error) {
	res, err := r.DB.Exec(
		`UPDATE messages SET state=$1, updated_at=NOW() WHERE message_id=$2 AND state=$3`,
		to, id, from,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *MessageRepository) MarkSent(id int, body, providerSID string) (bool, error) {
	res, err := r.DB.Exec(`
        UPDATE messages
        SET state=$1, body=$2, provider_message_sid=$3, error_detail='', updated_at=NOW()
        WHERE message_id=$4 AND state=$5
    `, model.StateSent, body, providerSID, id, model.StateSending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *MessageRepository) MarkFailed(id int, body, errorDetail string) (bool, error) {
	res, err := r.DB.Exec(`
        UPDATE messages
        SET state=$1, body=$2, error_detail=$3, updated_at=NOW()
        WHERE message_id=$4 AND state=$5
    `, model.StateFailed, body, errorDetail, id, model.StateSending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *MessageRepository) CountByState(campaignID int) (map[model.MessageState]int, error) {
	query := `SELECT state, COUNT(*) FROM messages WHERE campaign_id=$1 GROUP BY state`
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[model.MessageState]int{}
	for _, s := range model.AllMessageStates {
		counts[s] = 0
	}
	for rows.Next() {
		var state model.MessageState
		var count int
		if err := rows.Scan(&state, &count); err != nil {
			return nil, err
		}
		counts[state] = count
	}
	return counts, rows.Err()
}

func (r *MessageRepository) ListFailedErrors(campaignID int) ([]string, error) {
	query := `
        SELECT phone_number, error_detail FROM messages
        WHERE campaign_id=$1 AND state=$2 AND error_detail <> ''
        ORDER BY message_id
    `
	rows, err := r.DB.Query(query, campaignID, model.StateFailed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	errs := []string{}
	for rows.Next() {
		var phone, detail string
		if err := rows.Scan(&phone, &detail); err != nil {
			return nil, err
		}
		errs = append(errs, phone+": "+detail)
	}
	return errs, rows.Err()
}

func (r *MessageRepository) ListByCampaign(campaignID int) ([]model.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE campaign_id=$1 ORDER BY message_id`
	return r.list(query, campaignID)
}

func (r *MessageRepository) ListAll(limit int) ([]model.Message, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT ` + messageColumns + ` FROM messages ORDER BY message_id DESC LIMIT $1`
	return r.list(query, limit)
}

func (r *MessageRepository) list(query string, args ...any) ([]model.Message, error) {
	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []model.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *m)
	}
	return messages, rows.Err()
}

func scanMessage(row rowScanner) (*model.Message, error) {
	var m model.Message
	err := row.Scan(
		&m.ID, &m.CampaignID, &m.Phone, &m.TemplateID, &m.Body, &m.State,
		&m.ProviderSID, &m.ErrorDetail, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

var _ MessageRepositoryInterface = (*MessageRepository)(nil)
