// internal/handler/topic_handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/ushanirp/messaging-platfor-twilio-poc/internal/errors"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/model"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/phone"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/repository"
)

// TopicHandler is thin enough to work straight against the repositories.
type TopicHandler struct {
	TopicRepo        repository.TopicRepositoryInterface
	SubscriptionRepo repository.SubscriptionRepositoryInterface
}

func (h *TopicHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		writeError(w, appErrors.NewValidation("name", "topic name is required"))
		return
	}
	topic := &model.Topic{Name: body.Name}
	if err := h.TopicRepo.Create(topic); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, topic)
}

func (h *TopicHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("all") != "true"
	topics, err := h.TopicRepo.List(activeOnly)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, topics)
}

func (h *TopicHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, appErrors.NewValidation("id", "invalid topic id"))
		return
	}
	if err := h.TopicRepo.Deactivate(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TopicHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	phoneRaw, topicID, ok := h.subscriptionParams(w, r)
	if !ok {
		return
	}
	topic, err := h.TopicRepo.GetByID(topicID)
	if err != nil {
		writeError(w, err)
		return
	}
	if topic == nil {
		writeError(w, appErrors.NewTopicNotFound(topicID))
		return
	}
	sub, err := h.SubscriptionRepo.Create(phoneRaw, topicID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (h *TopicHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	phoneRaw, topicID, ok := h.subscriptionParams(w, r)
	if !ok {
		return
	}
	if err := h.SubscriptionRepo.Delete(phoneRaw, topicID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TopicHandler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	if p := r.URL.Query().Get("phone"); p != "" {
		normalized, err := phone.Normalize(p)
		if err != nil {
			writeError(w, err)
			return
		}
		subs, err := h.SubscriptionRepo.ListByPhone(normalized)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, subs)
		return
	}
	if t := r.URL.Query().Get("topic_id"); t != "" {
		topicID, err := strconv.Atoi(t)
		if err != nil {
			writeError(w, appErrors.NewValidation("topic_id", "invalid topic id"))
			return
		}
		subs, err := h.SubscriptionRepo.ListByTopic(topicID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, subs)
		return
	}
	writeError(w, appErrors.NewValidation("query", "phone or topic_id is required"))
}

func (h *TopicHandler) subscriptionParams(w http.ResponseWriter, r *http.Request) (string, int, bool) {
	var body struct {
		Phone   string `json:"phone"`
		TopicID int    `json:"topic_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, appErrors.NewValidation("body", err.Error()))
		return "", 0, false
	}
	normalized, err := phone.Normalize(body.Phone)
	if err != nil {
		writeError(w, err)
		return "", 0, false
	}
	if body.TopicID == 0 {
		writeError(w, appErrors.NewValidation("topic_id", "topic is required"))
		return "", 0, false
	}
	return normalized, body.TopicID, true
}
