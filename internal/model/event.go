// internal/model/event.go
package model

import "time"

// DeliveryReceipt is an immutable log entry, one per provider status
// callback. Rows are evidence of what the provider reported, never
// current-state, and are never updated or deleted.
type DeliveryReceipt struct {
	ID         int               `db:"receipt_id" json:"receipt_id"`
	MessageSID string            `db:"message_sid" json:"message_sid"`
	Status     string            `db:"message_status" json:"message_status"`
	ErrorCode  string            `db:"error_code" json:"error_code,omitempty"`
	RawPayload map[string]string `db:"raw_payload" json:"raw_payload"`
	CreatedAt  time.Time         `db:"created_at" json:"created_at"`
}

// InboundEvent is an immutable log entry, one per received inbound message.
type InboundEvent struct {
	ID         int               `db:"inbound_id" json:"inbound_id"`
	From       string            `db:"from_number" json:"from_number"`
	Body       string            `db:"body" json:"body"`
	MessageSID string            `db:"message_sid" json:"message_sid,omitempty"`
	RawPayload map[string]string `db:"raw_payload" json:"raw_payload"`
	CreatedAt  time.Time         `db:"created_at" json:"created_at"`
}
