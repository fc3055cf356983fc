// internal/model/segment.go
package model

import "time"

// Operator is the explicit set of predicate operators a segment filter may
// use. Anything outside this set causes the predicate to not match (fails
// closed), never to error.
type Operator string

const (
	OpEq       Operator = "eq"
	OpNeq      Operator = "neq"
	OpContains Operator = "contains"
	OpGt       Operator = "gt"
	OpLt       Operator = "lt"
	OpExists   Operator = "exists"
)

// Predicate matches one recipient attribute. Path addresses into the
// attribute bag ("attributes.<key>"); Value carries a JSON scalar
// (string, number, bool or null).
type Predicate struct {
	Path  string   `json:"path"`
	Op    Operator `json:"op"`
	Value any      `json:"value"`
}

// FilterDefinition is an ordered predicate list combined with logical AND.
// An empty list matches every recipient.
type FilterDefinition struct {
	Filters []Predicate `json:"filters"`
}

type Segment struct {
	ID         int              `db:"segment_id" json:"segment_id"`
	Name       string           `db:"name" json:"name"`
	Definition FilterDefinition `db:"definition" json:"definition"`
	IsActive   bool             `db:"is_active" json:"is_active"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt  *time.Time       `db:"updated_at" json:"updated_at,omitempty"`
}
