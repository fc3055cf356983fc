// internal/model/topic.go
package model

import "time"

type Topic struct {
	ID        int       `db:"topic_id" json:"topic_id"`
	Name      string    `db:"name" json:"name"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Subscription ties a user to a topic by natural key (phone, topic).
type Subscription struct {
	ID        int       `db:"subscription_id" json:"subscription_id"`
	Phone     string    `db:"phone_number" json:"phone_number"`
	TopicID   int       `db:"topic_id" json:"topic_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
