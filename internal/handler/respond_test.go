package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/ushanirp/messaging-platfor-twilio-poc/internal/errors"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", appErrors.NewCampaignNotFound(7), http.StatusNotFound},
		{"validation", appErrors.NewValidation("phone", "bad"), http.StatusBadRequest},
		{"render", appErrors.NewRenderError("missing variable"), http.StatusBadRequest},
		{"invalid campaign state", appErrors.NewInvalidCampaignState(7, "RUNNING"), http.StatusConflict},
		{"invalid transition", appErrors.NewInvalidTransition("READ", "SENT"), http.StatusConflict},
		{"quiet hours", appErrors.NewQuietHours("22:00", "06:00"), http.StatusConflict},
		{"no recipients", appErrors.NewNoRecipients(7), http.StatusUnprocessableEntity},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeError(w, tc.err)
			assert.Equal(t, tc.want, w.Code)
			assert.Contains(t, w.Body.String(), "error")
		})
	}
}
