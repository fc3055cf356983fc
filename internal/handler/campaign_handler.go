// internal/handler/campaign_handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/ushanirp/messaging-platfor-twilio-poc/internal/errors"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/queue"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/service"
)

type CampaignHandler struct {
	Service *service.CampaignService
	Queue   queue.Queue
}

func (h *CampaignHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name         string     `json:"name"`
		TopicID      int        `json:"topic_id"`
		TemplateID   int        `json:"template_id"`
		SegmentID    *int       `json:"segment_id"`
		ScheduleType string     `json:"schedule_type"`
		ScheduleAt   *time.Time `json:"schedule_at"`
		RateLimit    int        `json:"rate_limit"`
		QuietStart   string     `json:"quiet_hours_start"`
		QuietEnd     string     `json:"quiet_hours_end"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, appErrors.NewValidation("body", err.Error()))
		return
	}

	campaign, err := h.Service.CreateCampaign(service.CreateCampaignParams{
		Name:         body.Name,
		TopicID:      body.TopicID,
		TemplateID:   body.TemplateID,
		SegmentID:    body.SegmentID,
		ScheduleType: body.ScheduleType,
		ScheduleAt:   body.ScheduleAt,
		RateLimit:    body.RateLimit,
		QuietStart:   body.QuietStart,
		QuietEnd:     body.QuietEnd,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, campaign)
}

func (h *CampaignHandler) List(w http.ResponseWriter, r *http.Request) {
	offset, limit := paginationParams(r)
	campaigns, total, err := h.Service.ListWithStats(offset, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"campaigns": campaigns,
		"total":     total,
		"offset":    offset,
		"limit":     limit,
	})
}

func paginationParams(r *http.Request) (int, int) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return offset, limit
}

func (h *CampaignHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignID(w, r)
	if !ok {
		return
	}
	campaign, err := h.Service.GetCampaign(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

// Launch runs the dispatch pipeline synchronously and responds with the
// aggregate. With ?async=true the launch is enqueued instead and the
// response is an immediate 202; the worker picks it up.
func (h *CampaignHandler) Launch(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignID(w, r)
	if !ok {
		return
	}

	if r.URL.Query().Get("async") == "true" && h.Queue != nil {
		// Validate launchability up front so the caller still gets the 4xx
		// instead of a silent dead-letter.
		campaign, err := h.Service.GetCampaign(id)
		if err != nil {
			writeError(w, err)
			return
		}
		if !campaign.Status.Launchable() {
			writeError(w, appErrors.NewInvalidCampaignState(id, string(campaign.Status)))
			return
		}
		if err := h.Queue.PublishLaunch(id); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]any{
			"campaign_id": id,
			"status":      "accepted",
		})
		return
	}

	result, err := h.Service.Launch(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *CampaignHandler) Status(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignID(w, r)
	if !ok {
		return
	}
	report, err := h.Service.Status(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func campaignID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, appErrors.NewValidation("id", "invalid campaign id"))
		return 0, false
	}
	return id, true
}
