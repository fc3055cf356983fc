// internal/model/message.go
package model

import "time"

// Message is one dispatch attempt to one recipient. Re-launching a campaign
// creates new rows rather than mutating prior ones. Its State only moves
// forward per the transition table in state.go.
type Message struct {
	ID          int          `db:"message_id" json:"message_id"`
	// CampaignID is nil for ad-hoc sends.
	CampaignID  *int         `db:"campaign_id" json:"campaign_id,omitempty"`
	Phone       string       `db:"phone_number" json:"phone_number"`
	TemplateID  *int         `db:"template_id" json:"template_id,omitempty"`
	Body        string       `db:"body" json:"body"`
	State       MessageState `db:"state" json:"state"`
	// ProviderSID is the provider-assigned identifier, empty until a send
	// succeeds.
	ProviderSID string     `db:"provider_message_sid" json:"provider_message_sid,omitempty"`
	ErrorDetail string     `db:"error_detail" json:"error_detail,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}
