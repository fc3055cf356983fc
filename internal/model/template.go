// internal/model/template.go
package model

import "time"

type Template struct {
	ID        int        `db:"template_id" json:"template_id"`
	Channel   string     `db:"channel" json:"channel"`
	Locale    string     `db:"locale" json:"locale"`
	Body      string     `db:"body" json:"body"`
	// Placeholders declares the variable names the body expects, in order.
	// Rendering is driven by the body itself; this list exists for operator
	// tooling and validation.
	Placeholders []string  `db:"placeholders" json:"placeholders"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}
