// internal/handler/template_handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/ushanirp/messaging-platfor-twilio-poc/internal/errors"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/repository"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/service"
)

type TemplateHandler struct {
	Service      *service.TemplateService
	TemplateRepo repository.TemplateRepositoryInterface
}

func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Channel      string   `json:"channel"`
		Locale       string   `json:"locale"`
		Body         string   `json:"body"`
		Placeholders []string `json:"placeholders"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, appErrors.NewValidation("body", err.Error()))
		return
	}
	tpl, err := h.Service.CreateTemplate(body.Channel, body.Locale, body.Body, body.Placeholders)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tpl)
}

func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	templates, err := h.TemplateRepo.ListAll()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, appErrors.NewValidation("id", "invalid template id"))
		return
	}
	tpl, err := h.TemplateRepo.GetByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if tpl == nil {
		writeError(w, appErrors.NewTemplateNotFound(id))
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

// Preview renders a stored template (or an inline override body) against a
// caller-supplied placeholder map, without touching the provider.
func (h *TemplateHandler) Preview(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, appErrors.NewValidation("id", "invalid template id"))
		return
	}
	var body struct {
		Placeholders map[string]any `json:"placeholders"`
		OverrideBody string         `json:"override_body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, appErrors.NewValidation("body", err.Error()))
		return
	}

	var rendered string
	if body.OverrideBody != "" {
		rendered, err = h.Service.PreviewBody(body.OverrideBody, body.Placeholders)
	} else {
		rendered, err = h.Service.Preview(id, body.Placeholders)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"rendered": rendered})
}
