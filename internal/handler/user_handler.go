// internal/handler/user_handler.go
package handler

import (
	"encoding/json"
	"net/http"

	appErrors "github.com/ushanirp/messaging-platfor-twilio-poc/internal/errors"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/service"
)

type UserHandler struct {
	Service *service.UserService
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Phone      string           `json:"phone"`
		Attributes map[string]any   `json:"attributes"`
		Consent    *service.Consent `json:"consent"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, appErrors.NewValidation("body", err.Error()))
		return
	}
	if body.Phone == "" {
		writeError(w, appErrors.NewValidation("phone", "missing phone"))
		return
	}

	user, err := h.Service.CreateOrUpdate(body.Phone, body.Attributes, body.Consent)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) Bulk(w http.ResponseWriter, r *http.Request) {
	var entries []service.BulkUserEntry
	if err := json.NewDecoder(r.Body).Decode(&entries); err != nil {
		writeError(w, appErrors.NewValidation("body", err.Error()))
		return
	}
	result, err := h.Service.BulkUpsert(entries)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.List()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}
