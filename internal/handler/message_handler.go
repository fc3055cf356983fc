// internal/handler/message_handler.go
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	appErrors "github.com/ushanirp/messaging-platfor-twilio-poc/internal/errors"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/repository"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/service"
)

const defaultMessageListLimit = 100

type MessageHandler struct {
	MessageRepo     repository.MessageRepositoryInterface
	CampaignService *service.CampaignService
}

func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	if c := r.URL.Query().Get("campaign_id"); c != "" {
		campaignID, err := strconv.Atoi(c)
		if err != nil {
			writeError(w, appErrors.NewValidation("campaign_id", "invalid campaign id"))
			return
		}
		msgs, err := h.MessageRepo.ListByCampaign(campaignID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, msgs)
		return
	}

	limit := defaultMessageListLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 {
			writeError(w, appErrors.NewValidation("limit", "must be a positive integer"))
			return
		}
		limit = n
	}
	msgs, err := h.MessageRepo.ListAll(limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

// TestSend pushes one ad-hoc message through the provider, outside any
// campaign. Useful against the sandbox number before launching for real.
func (h *MessageHandler) TestSend(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Phone   string `json:"phone"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, appErrors.NewValidation("body", err.Error()))
		return
	}

	msg, err := h.CampaignService.SendDirect(r.Context(), body.Phone, body.Message)
	if err != nil {
		var transport *appErrors.TransportError
		if msg != nil && errors.As(err, &transport) {
			// The message row exists in FAILED; surface both.
			writeJSON(w, http.StatusBadGateway, map[string]any{
				"error":   err.Error(),
				"message": msg,
			})
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}
