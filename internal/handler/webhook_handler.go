// internal/handler/webhook_handler.go
package handler

import (
	"log/slog"
	"net/http"

	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/provider"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/service"
)

// WebhookHandler terminates provider callbacks. Payloads arrive as
// form-encoded POSTs signed with X-Twilio-Signature; an invalid signature
// is a hard 403 before any processing.
type WebhookHandler struct {
	Service   *service.WebhookService
	Validator provider.SignatureValidator

	// PublicBaseURL is the externally visible origin the provider signed
	// against (the app may sit behind a proxy). Empty falls back to the
	// request's own scheme and host.
	PublicBaseURL string
	Logger        *slog.Logger
}

func (h *WebhookHandler) Status(w http.ResponseWriter, r *http.Request) {
	params, ok := h.verify(w, r)
	if !ok {
		return
	}
	if _, err := h.Service.HandleStatus(params); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *WebhookHandler) Inbound(w http.ResponseWriter, r *http.Request) {
	params, ok := h.verify(w, r)
	if !ok {
		return
	}
	if _, err := h.Service.HandleInbound(params); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// verify parses the form body and checks the provider signature against the
// URL the provider actually signed.
func (h *WebhookHandler) verify(w http.ResponseWriter, r *http.Request) (map[string]string, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form body", http.StatusBadRequest)
		return nil, false
	}
	params := make(map[string]string, len(r.PostForm))
	for key := range r.PostForm {
		params[key] = r.PostForm.Get(key)
	}

	signature := r.Header.Get("X-Twilio-Signature")
	if !h.Validator.Validate(h.signedURL(r), params, signature) {
		h.Logger.Warn("rejected webhook with bad signature",
			"path", r.URL.Path, "remote", r.RemoteAddr)
		http.Error(w, "invalid signature", http.StatusForbidden)
		return nil, false
	}
	return params, true
}

func (h *WebhookHandler) signedURL(r *http.Request) string {
	if h.PublicBaseURL != "" {
		return h.PublicBaseURL + r.URL.RequestURI()
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
