// internal/handler/respond.go
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	appErrors "github.com/ushanirp/messaging-platfor-twilio-poc/internal/errors"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the typed error kinds onto HTTP statuses. Anything
// unrecognized (storage failures included) is a 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var notFound *appErrors.NotFoundError
	var validation *appErrors.ValidationError
	var invalidState *appErrors.InvalidCampaignStateError
	var invalidTransition *appErrors.InvalidTransitionError
	var noRecipients *appErrors.NoRecipientsError
	var quietHours *appErrors.QuietHoursError
	var renderErr *appErrors.RenderError

	switch {
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &renderErr):
		status = http.StatusBadRequest
	case errors.As(err, &invalidState), errors.As(err, &invalidTransition), errors.As(err, &quietHours):
		status = http.StatusConflict
	case errors.As(err, &noRecipients):
		status = http.StatusUnprocessableEntity
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}
