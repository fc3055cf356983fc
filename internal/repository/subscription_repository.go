// internal/repository/subscription_repository.go
package repository

import (
	"database/sql"

	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/model"
)

type SubscriptionRepositoryInterface interface {
	// Create is idempotent on the (phone, topic) natural key.
	Create(phone string, topicID int) (*model.Subscription, error)
	Delete(phone string, topicID int) error
	ListByPhone(phone string) ([]model.Subscription, error)
	ListByTopic(topicID int) ([]model.Subscription, error)
}

type SubscriptionRepository struct {
	DB *sql.DB
}

func (r *SubscriptionRepository) Create(phone string, topicID int) (*model.Subscription, error) {
	query := `
        INSERT INTO subscriptions (phone_number, topic_id)
        VALUES ($1, $2)
        ON CONFLICT (phone_number, topic_id) DO UPDATE SET topic_id=EXCLUDED.topic_id
        RETURNING subscription_id, phone_number, topic_id, created_at
    `
	var s model.Subscription
	err := r.DB.QueryRow(query, phone, topicID).Scan(&s.ID, &s.Phone, &s.TopicID, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SubscriptionRepository) Delete(phone string, topicID int) error {
	_, err := r.DB.Exec(
		`DELETE FROM subscriptions WHERE phone_number=$1 AND topic_id=$2`,
		phone, topicID,
	)
	return err
}

func (r *SubscriptionRepository) ListByPhone(phone string) ([]model.Subscription, error) {
	return r.list(`
        SELECT subscription_id, phone_number, topic_id, created_at
        FROM subscriptions WHERE phone_number=$1 ORDER BY subscription_id
    `, phone)
}

func (r *SubscriptionRepository) ListByTopic(topicID int) ([]model.Subscription, error) {
	return r.list(`
        SELECT subscription_id, phone_number, topic_id, created_at
        FROM subscriptions WHERE topic_id=$1 ORDER BY subscription_id
    `, topicID)
}

func (r *SubscriptionRepository) list(query string, arg any) ([]model.Subscription, error) {
	rows, err := r.DB.Query(query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := []model.Subscription{}
	for rows.Next() {
		var s model.Subscription
		if err := rows.Scan(&s.ID, &s.Phone, &s.TopicID, &s.CreatedAt); err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

var _ SubscriptionRepositoryInterface = (*SubscriptionRepository)(nil)
