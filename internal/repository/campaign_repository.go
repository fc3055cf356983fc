// internal/repository/campaign_repository.go
package repository

import (
	"database/sql"
	"encoding/json"
	"time"

	appErrors "github.com/ushanirp/messaging-platfor-twilio-poc/internal/errors"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/model"
)

type CampaignRepositoryInterface interface {
	Create(c *model.Campaign) error
	GetByID(id int) (*model.Campaign, error)
	List(offset, limit int) ([]model.Campaign, int, error)
	// MarkRunning atomically moves a launchable campaign to RUNNING; false
	// means the campaign was not in a launchable status. This is the launch
	// lock: of two racing launches only one gets true.
	MarkRunning(campaignID int) (bool, error)
	UpdateStatus(campaignID int, status model.CampaignStatus) error
	// ListDueScheduled returns SCHEDULED campaigns whose schedule.at has
	// passed by now.
	ListDueScheduled(now time.Time) ([]model.Campaign, error)
}

type CampaignRepository struct {
	DB *sql.DB
}

func (r *CampaignRepository) Create(c *model.Campaign) error {
	if c.Status == "" {
		c.Status = model.CampaignDraft
	}
	schedule, err := json.Marshal(c.Schedule)
	if err != nil {
		return err
	}
	quiet, err := json.Marshal(c.QuietHours)
	if err != nil {
		return err
	}
	query := `
        INSERT INTO campaigns (name, topic_id, template_id, segment_id, schedule, rate_limit, quiet_hours, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING campaign_id, created_at
    `
	return r.DB.QueryRow(
		query,
		c.Name, c.TopicID, c.TemplateID, c.SegmentID, schedule, c.RateLimit, quiet, c.Status,
	).Scan(&c.ID, &c.CreatedAt)
}

func (r *CampaignRepository) GetByID(id int) (*model.Campaign, error) {
	query := `
        SELECT campaign_id, name, topic_id, template_id, segment_id, schedule, rate_limit, quiet_hours, status, created_at, updated_at
        FROM campaigns WHERE campaign_id=$1
    `
	c, err := scanCampaign(r.DB.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	return c, err
}

func (r *CampaignRepository) List(offset, limit int) ([]model.Campaign, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	var total int
	if err := r.DB.QueryRow(`SELECT COUNT(*) FROM campaigns`).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `
        SELECT campaign_id, name, topic_id, template_id, segment_id, schedule, rate_limit, quiet_hours, status, created_at, updated_at
        FROM campaigns ORDER BY campaign_id DESC LIMIT $1 OFFSET $2
    `
	campaigns, err := r.list(query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return campaigns, total, nil
}

func (r *CampaignRepository) MarkRunning(campaignID int) (bool, error) {
	res, err := r.DB.Exec(
		`UPDATE campaigns SET status=$1, updated_at=NOW() WHERE campaign_id=$2 AND status IN ($3, $4)`,
		model.CampaignRunning, campaignID, model.CampaignDraft, model.CampaignScheduled,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *CampaignRepository) ListDueScheduled(now time.Time) ([]model.Campaign, error) {
	query := `
        SELECT campaign_id, name, topic_id, template_id, segment_id, schedule, rate_limit, quiet_hours, status, created_at, updated_at
        FROM campaigns
        WHERE status=$1 AND (schedule->>'at') IS NOT NULL AND (schedule->>'at')::timestamptz <= $2
        ORDER BY campaign_id
    `
	return r.list(query, model.CampaignScheduled, now)
}

func (r *CampaignRepository) list(query string, args ...any) ([]model.Campaign, error) {
	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	campaigns := []model.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, *c)
	}
	return campaigns, rows.Err()
}

func (r *CampaignRepository) UpdateStatus(campaignID int, status model.CampaignStatus) error {
	query := `UPDATE campaigns SET status=$1, updated_at=NOW() WHERE campaign_id=$2`
	_, err := r.DB.Exec(query, status, campaignID)
	return err
}

func scanCampaign(row rowScanner) (*model.Campaign, error) {
	var c model.Campaign
	var schedule, quiet []byte
	err := row.Scan(
		&c.ID, &c.Name, &c.TopicID, &c.TemplateID, &c.SegmentID,
		&schedule, &c.RateLimit, &quiet, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(schedule) > 0 {
		if err := json.Unmarshal(schedule, &c.Schedule); err != nil {
			return nil, err
		}
	}
	if len(quiet) > 0 {
		if err := json.Unmarshal(quiet, &c.QuietHours); err != nil {
			return nil, err
		}
	}
	return &c, nil
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
