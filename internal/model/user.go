// internal/model/user.go
package model

import "time"

type ConsentState string

const (
	ConsentPending ConsentState = "PENDING"
	ConsentOptIn   ConsentState = "OPT_IN"
	ConsentOptOut  ConsentState = "OPT_OUT"
)

// User is an addressable recipient, keyed by its normalized E.164 phone
// number. Attributes is a free-form bag used by segment predicates and
// template rendering. ConsentState changes only through explicit opt-in or
// opt-out calls and the inbound STOP keyword, never from campaign activity.
type User struct {
	Phone        string         `db:"phone_number" json:"phone_number"`
	Attributes   map[string]any `db:"attributes" json:"attributes"`
	ConsentState ConsentState   `db:"consent_state" json:"consent_state"`
	IsActive     bool           `db:"is_active" json:"is_active"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    *time.Time     `db:"updated_at" json:"updated_at,omitempty"`
}
