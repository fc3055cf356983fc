// internal/repository/event_repository.go
package repository

import (
	"database/sql"
	"encoding/json"

	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/model"
)

// EventRepositoryInterface is append-only: receipts and inbound events are
// evidence rows and are never updated or deleted.
type EventRepositoryInterface interface {
	CreateReceipt(rec *model.DeliveryReceipt) error
	CreateInbound(ev *model.InboundEvent) error
	ListReceiptsBySID(sid string) ([]model.DeliveryReceipt, error)
}

type EventRepository struct {
	DB *sql.DB
}

func (r *EventRepository) CreateReceipt(rec *model.DeliveryReceipt) error {
	raw, err := json.Marshal(rec.RawPayload)
	if err != nil {
		return err
	}
	query := `
        INSERT INTO delivery_receipts (message_sid, message_status, error_code, raw_payload)
        VALUES ($1, $2, $3, $4)
        RETURNING receipt_id, created_at
    `
	return r.DB.QueryRow(query, rec.MessageSID, rec.Status, rec.ErrorCode, raw).
		Scan(&rec.ID, &rec.CreatedAt)
}

func (r *EventRepository) CreateInbound(ev *model.InboundEvent) error {
	raw, err := json.Marshal(ev.RawPayload)
	if err != nil {
		return err
	}
	query := `
        INSERT INTO events_inbound (from_number, body, message_sid, raw_payload)
        VALUES ($1, $2, $3, $4)
        RETURNING inbound_id, created_at
    `
	return r.DB.QueryRow(query, ev.From, ev.Body, ev.MessageSID, raw).
		Scan(&ev.ID, &ev.CreatedAt)
}

func (r *EventRepository) ListReceiptsBySID(sid string) ([]model.DeliveryReceipt, error) {
	query := `
        SELECT receipt_id, message_sid, message_status, error_code, raw_payload, created_at
        FROM delivery_receipts WHERE message_sid=$1 ORDER BY receipt_id
    `
	rows, err := r.DB.Query(query, sid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	receipts := []model.DeliveryReceipt{}
	for rows.Next() {
		var rec model.DeliveryReceipt
		var raw []byte
		if err := rows.Scan(&rec.ID, &rec.MessageSID, &rec.Status, &rec.ErrorCode, &raw, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &rec.RawPayload); err != nil {
				return nil, err
			}
		}
		receipts = append(receipts, rec)
	}
	return receipts, rows.Err()
}

var _ EventRepositoryInterface = (*EventRepository)(nil)
