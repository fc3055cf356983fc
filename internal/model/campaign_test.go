package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/model"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, 6, 1, hour, minute, 0, 0, time.UTC)
}

func TestQuietHoursContains(t *testing.T) {
	q := model.QuietHours{Start: "09:00", End: "17:00"}
	assert.False(t, q.Contains(at(8, 59)))
	assert.True(t, q.Contains(at(9, 0)))
	assert.True(t, q.Contains(at(12, 30)))
	assert.False(t, q.Contains(at(17, 0)))
	assert.False(t, q.Contains(at(23, 0)))
}

func TestQuietHoursWrapMidnight(t *testing.T) {
	q := model.QuietHours{Start: "22:00", End: "06:00"}
	assert.True(t, q.Contains(at(23, 30)))
	assert.True(t, q.Contains(at(2, 0)))
	assert.False(t, q.Contains(at(6, 0)))
	assert.False(t, q.Contains(at(12, 0)))
}

func TestQuietHoursUnconfiguredOrMalformed(t *testing.T) {
	assert.False(t, model.QuietHours{}.Contains(at(12, 0)))
	assert.False(t, model.QuietHours{Start: "22:00"}.Contains(at(23, 0)))
	assert.False(t, model.QuietHours{Start: "late", End: "early"}.Contains(at(12, 0)))
	assert.False(t, model.QuietHours{Start: "25:00", End: "26:00"}.Contains(at(12, 0)))
}

func TestCampaignStatusLaunchable(t *testing.T) {
	assert.True(t, model.CampaignDraft.Launchable())
	assert.True(t, model.CampaignScheduled.Launchable())
	assert.False(t, model.CampaignRunning.Launchable())
	assert.False(t, model.CampaignCompleted.Launchable())
	assert.False(t, model.CampaignPartiallyCompleted.Launchable())
	assert.False(t, model.CampaignFailed.Launchable())
}
