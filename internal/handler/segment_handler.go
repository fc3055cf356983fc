// internal/handler/segment_handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/ushanirp/messaging-platfor-twilio-poc/internal/errors"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/model"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/repository"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/service"
)

type SegmentHandler struct {
	Service     *service.SegmentService
	SegmentRepo repository.SegmentRepositoryInterface
}

func (h *SegmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name       string                 `json:"name"`
		Definition model.FilterDefinition `json:"definition"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, appErrors.NewValidation("body", err.Error()))
		return
	}
	seg, err := h.Service.CreateSegment(body.Name, body.Definition)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, seg)
}

func (h *SegmentHandler) List(w http.ResponseWriter, r *http.Request) {
	segments, err := h.SegmentRepo.ListAll()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, segments)
}

func (h *SegmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, appErrors.NewValidation("id", "invalid segment id"))
		return
	}
	seg, err := h.SegmentRepo.GetByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if seg == nil {
		writeError(w, appErrors.NewSegmentNotFound(id))
		return
	}
	writeJSON(w, http.StatusOK, seg)
}

// Members evaluates the segment against the current recipient base. Handy
// for sanity-checking a definition before hanging a campaign off it.
func (h *SegmentHandler) Members(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, appErrors.NewValidation("id", "invalid segment id"))
		return
	}
	members, err := h.Service.EvaluateMembers(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"segment_id": id,
		"count":      len(members),
		"members":    members,
	})
}
