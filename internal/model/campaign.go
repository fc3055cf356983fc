// internal/model/campaign.go
package model

import (
	"fmt"
	"time"
)

type CampaignStatus string

const (
	CampaignDraft              CampaignStatus = "DRAFT"
	CampaignScheduled          CampaignStatus = "SCHEDULED"
	CampaignRunning            CampaignStatus = "RUNNING"
	CampaignCompleted          CampaignStatus = "COMPLETED"
	CampaignPartiallyCompleted CampaignStatus = "PARTIALLY_COMPLETED"
	CampaignFailed             CampaignStatus = "FAILED"
)

// Launchable reports whether a launch may start from this status.
// Terminal and RUNNING campaigns cannot be re-launched without an explicit
// reset, which is not supported.
func (s CampaignStatus) Launchable() bool {
	return s == CampaignDraft || s == CampaignScheduled
}

const (
	ScheduleImmediate = "immediate"
	ScheduleScheduled = "scheduled"
)

type Schedule struct {
	Type string     `json:"type"`
	At   *time.Time `json:"at,omitempty"`
}

// QuietHours is a daily window, "HH:MM" in UTC, during which launches are
// suppressed. The zero value means no quiet hours.
type QuietHours struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

func (q QuietHours) Configured() bool {
	return q.Start != "" && q.End != ""
}

// Contains reports whether t falls inside the window. Windows may wrap
// midnight (e.g. 22:00-06:00). A malformed window never suppresses.
func (q QuietHours) Contains(t time.Time) bool {
	if !q.Configured() {
		return false
	}
	start, err1 := minutesOfDay(q.Start)
	end, err2 := minutesOfDay(q.End)
	if err1 != nil || err2 != nil {
		return false
	}
	now := t.UTC().Hour()*60 + t.UTC().Minute()
	if start <= end {
		return now >= start && now < end
	}
	return now >= start || now < end
}

func minutesOfDay(hhmm string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(hhmm, "%d:%d", &h, &m); err != nil {
		return 0, err
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("out of range: %s", hhmm)
	}
	return h*60 + m, nil
}

type Campaign struct {
	ID         int            `db:"campaign_id" json:"campaign_id"`
	Name       string         `db:"name" json:"name"`
	TopicID    int            `db:"topic_id" json:"topic_id"`
	TemplateID int            `db:"template_id" json:"template_id"`
	// SegmentID selects the recipient set; nil means all active recipients.
	SegmentID  *int           `db:"segment_id" json:"segment_id,omitempty"`
	Schedule   Schedule       `db:"schedule" json:"schedule"`
	// RateLimit is messages per second for the dispatch pool; <= 0 means
	// unthrottled.
	RateLimit  int            `db:"rate_limit" json:"rate_limit"`
	QuietHours QuietHours     `db:"quiet_hours" json:"quiet_hours"`
	Status     CampaignStatus `db:"status" json:"status"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt  *time.Time     `db:"updated_at" json:"updated_at,omitempty"`
}
