// internal/service/webhook_service.go
package service

import (
	"log/slog"
	"strings"

	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/metrics"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/model"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/phone"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/repository"
)

// providerStatusToState is the single mapping table from the provider's
// status vocabulary to the internal state machine. Unrecognized statuses
// default to FAILED — a documented (and debatable) default kept for
// compatibility; change it here if that ever gets corrected.
var providerStatusToState = map[string]model.MessageState{
	"queued":      model.StateQueued,
	"sending":     model.StateSending,
	"sent":        model.StateSent,
	"delivered":   model.StateDelivered,
	"read":        model.StateRead,
	"failed":      model.StateFailed,
	"undelivered": model.StateUndlvd,
}

func mapProviderStatus(status string) model.MessageState {
	if state, ok := providerStatusToState[strings.ToLower(strings.TrimSpace(status))]; ok {
		return state
	}
	return model.StateFailed
}

// WebhookService reconciles asynchronous provider callbacks against message
// records. It runs concurrently with in-flight dispatches for the same
// campaign; per-message writes are serialized through the repository's
// compare-and-set.
type WebhookService struct {
	MessageRepo repository.MessageRepositoryInterface
	EventRepo   repository.EventRepositoryInterface
	UserRepo    repository.UserRepositoryInterface
	Logger      *slog.Logger
}

// HandleStatus records one delivery receipt and, when the referenced
// message exists and the transition is legal, moves the message forward.
// Receipts for unknown SIDs and illegal transitions are logged and kept —
// callbacks race with test traffic and cannot be retried by the caller, so
// nothing here is an error to the provider.
func (s *WebhookService) HandleStatus(payload map[string]string) (*model.DeliveryReceipt, error) {
	sid := payload["MessageSid"]
	if sid == "" {
		sid = payload["SmsSid"]
	}
	status := payload["MessageStatus"]
	if status == "" {
		status = payload["Status"]
	}

	if sid != "" {
		if err := s.applyStatus(sid, status); err != nil {
			return nil, err
		}
	}

	rec := &model.DeliveryReceipt{
		MessageSID: sid,
		Status:     status,
		ErrorCode:  payload["ErrorCode"],
		RawPayload: payload,
	}
	// The receipt row is appended regardless of match outcome.
	if err := s.EventRepo.CreateReceipt(rec); err != nil {
		return nil, err
	}
	metrics.DeliveryReceipts.WithLabelValues(receiptLabel(status)).Inc()
	return rec, nil
}

// receiptLabel keeps the metric's label set bounded: the raw status comes
// from an untrusted callback, so known statuses map to the internal state
// and everything else collapses to "other".
func receiptLabel(status string) string {
	if state, ok := providerStatusToState[strings.ToLower(strings.TrimSpace(status))]; ok {
		return strings.ToLower(string(state))
	}
	return "other"
}

func (s *WebhookService) applyStatus(sid, status string) error {
	target := mapProviderStatus(status)

	// Compare-and-set against a concurrently advancing message; a handful
	// of attempts is plenty since states only move forward.
	for attempt := 0; attempt < 3; attempt++ {
		msg, err := s.MessageRepo.GetByProviderSID(sid)
		if err != nil {
			return err
		}
		if msg == nil {
			s.Logger.Debug("receipt for unknown provider sid", "message_sid", sid)
			return nil
		}
		if msg.State == target {
			return nil // idempotent replay
		}
		if err := model.ValidateTransition(msg.State, target); err != nil {
			// Never force an invalid state; the receipt row still records
			// what the provider said.
			s.Logger.Warn("ignoring illegal status transition",
				"message_sid", sid, "from", msg.State, "to", target)
			return nil
		}
		ok, err := s.MessageRepo.CompareAndSetState(msg.ID, msg.State, target)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	s.Logger.Warn("gave up applying status after races", "message_sid", sid, "status", status)
	return nil
}

var optOutKeywords = map[string]bool{"stop": true, "unsubscribe": true}

// HandleInbound appends one inbound-event row. A STOP/UNSUBSCRIBE body from
// a known recipient opts that recipient out — the only path by which
// consent changes automatically.
func (s *WebhookService) HandleInbound(payload map[string]string) (*model.InboundEvent, error) {
	ev := &model.InboundEvent{
		From:       payload["From"],
		Body:       payload["Body"],
		MessageSID: payload["MessageSid"],
		RawPayload: payload,
	}
	if err := s.EventRepo.CreateInbound(ev); err != nil {
		return nil, err
	}
	metrics.InboundEvents.Inc()

	if optOutKeywords[strings.ToLower(strings.TrimSpace(ev.Body))] {
		s.handleOptOut(ev.From)
	}
	return ev, nil
}

func (s *WebhookService) handleOptOut(from string) {
	normalized, err := phone.Normalize(from)
	if err != nil {
		s.Logger.Warn("opt-out from unparseable number", "from", from)
		return
	}
	user, err := s.UserRepo.GetByPhone(normalized)
	if err != nil {
		s.Logger.Error("opt-out lookup failed", "phone", normalized, "error", err)
		return
	}
	if user == nil {
		// Unknown sender: the event row is kept, consent untouched.
		return
	}
	if err := s.UserRepo.UpdateConsent(normalized, model.ConsentOptOut); err != nil {
		s.Logger.Error("opt-out update failed", "phone", normalized, "error", err)
		return
	}
	s.Logger.Info("recipient opted out", "phone", normalized)
}
