package service_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/metrics"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/model"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/service"
)

type webhookFixture struct {
	svc      *service.WebhookService
	users    *memUserRepo
	messages *memMessageRepo
	events   *memEventRepo
}

func newWebhookFixture() *webhookFixture {
	f := &webhookFixture{
		users:    &memUserRepo{},
		messages: newMemMessageRepo(),
		events:   &memEventRepo{},
	}
	f.svc = &service.WebhookService{
		MessageRepo: f.messages,
		EventRepo:   f.events,
		UserRepo:    f.users,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return f
}

func (f *webhookFixture) addMessage(sid string, state model.MessageState) int {
	m := &model.Message{Phone: "+254711000001", State: state, ProviderSID: sid}
	f.messages.Create(m)
	return m.ID
}

func TestHandleStatusAdvancesMessage(t *testing.T) {
	f := newWebhookFixture()
	id := f.addMessage("SM001", model.StateSent)

	rec, err := f.svc.HandleStatus(map[string]string{
		"MessageSid":    "SM001",
		"MessageStatus": "delivered",
	})
	require.NoError(t, err)
	assert.Equal(t, "SM001", rec.MessageSID)

	m, _ := f.messages.GetByID(id)
	assert.Equal(t, model.StateDelivered, m.State)
}

func TestHandleStatusReplayIsIdempotent(t *testing.T) {
	f := newWebhookFixture()
	id := f.addMessage("SM001", model.StateSent)
	payload := map[string]string{"MessageSid": "SM001", "MessageStatus": "delivered"}

	_, err := f.svc.HandleStatus(payload)
	require.NoError(t, err)
	_, err = f.svc.HandleStatus(payload)
	require.NoError(t, err)

	m, _ := f.messages.GetByID(id)
	assert.Equal(t, model.StateDelivered, m.State)

	// Both callbacks are kept as audit rows.
	receipts, _ := f.events.ListReceiptsBySID("SM001")
	assert.Len(t, receipts, 2)
}

func TestHandleStatusUnknownSIDKeepsReceipt(t *testing.T) {
	f := newWebhookFixture()

	rec, err := f.svc.HandleStatus(map[string]string{
		"MessageSid":    "SMnope",
		"MessageStatus": "delivered",
	})
	require.NoError(t, err)
	assert.Equal(t, "SMnope", rec.MessageSID)

	receipts, _ := f.events.ListReceiptsBySID("SMnope")
	assert.Len(t, receipts, 1)
}

func TestHandleStatusIgnoresIllegalTransition(t *testing.T) {
	f := newWebhookFixture()
	id := f.addMessage("SM001", model.StateRead)

	// A stale "sent" callback arriving after READ must not move the
	// message backward.
	_, err := f.svc.HandleStatus(map[string]string{
		"MessageSid":    "SM001",
		"MessageStatus": "sent",
	})
	require.NoError(t, err)

	m, _ := f.messages.GetByID(id)
	assert.Equal(t, model.StateRead, m.State)

	receipts, _ := f.events.ListReceiptsBySID("SM001")
	assert.Len(t, receipts, 1)
}

func TestHandleStatusUnrecognizedStatusMapsToFailed(t *testing.T) {
	f := newWebhookFixture()
	id := f.addMessage("SM001", model.StateSent)

	_, err := f.svc.HandleStatus(map[string]string{
		"MessageSid":    "SM001",
		"MessageStatus": "something_new",
	})
	require.NoError(t, err)

	m, _ := f.messages.GetByID(id)
	assert.Equal(t, model.StateFailed, m.State)
}

func TestHandleStatusUnrecognizedStatusCountedAsOther(t *testing.T) {
	f := newWebhookFixture()
	f.addMessage("SM001", model.StateSent)

	// Arbitrary provider strings must collapse into the fixed "other"
	// label instead of minting a new series per status.
	other := testutil.ToFloat64(metrics.DeliveryReceipts.WithLabelValues("other"))
	_, err := f.svc.HandleStatus(map[string]string{
		"MessageSid":    "SM001",
		"MessageStatus": "status-" + t.Name(),
	})
	require.NoError(t, err)

	assert.Equal(t, other+1, testutil.ToFloat64(metrics.DeliveryReceipts.WithLabelValues("other")))
}

func TestHandleStatusFallsBackToSmsSid(t *testing.T) {
	f := newWebhookFixture()
	id := f.addMessage("SM001", model.StateSent)

	_, err := f.svc.HandleStatus(map[string]string{
		"SmsSid": "SM001",
		"Status": "undelivered",
	})
	require.NoError(t, err)

	m, _ := f.messages.GetByID(id)
	assert.Equal(t, model.StateUndlvd, m.State)
}

func TestHandleInboundStopOptsOutKnownRecipient(t *testing.T) {
	f := newWebhookFixture()
	f.users.users = []model.User{{
		Phone:        "+254711000001",
		ConsentState: model.ConsentOptIn,
		IsActive:     true,
	}}

	for _, body := range []string{"STOP", "stop", "  Unsubscribe "} {
		f.users.UpdateConsent("+254711000001", model.ConsentOptIn)
		_, err := f.svc.HandleInbound(map[string]string{
			"From": "whatsapp:+254711000001",
			"Body": body,
		})
		require.NoError(t, err)

		u, _ := f.users.GetByPhone("+254711000001")
		assert.Equal(t, model.ConsentOptOut, u.ConsentState, "body %q", body)
	}
}

func TestHandleInboundStopFromUnknownSender(t *testing.T) {
	f := newWebhookFixture()

	ev, err := f.svc.HandleInbound(map[string]string{
		"From": "whatsapp:+254799999999",
		"Body": "STOP",
	})
	require.NoError(t, err)
	assert.Equal(t, "STOP", ev.Body)
	assert.Len(t, f.events.inbound, 1)
}

func TestHandleInboundOrdinaryMessage(t *testing.T) {
	f := newWebhookFixture()
	f.users.users = []model.User{{
		Phone:        "+254711000001",
		ConsentState: model.ConsentOptIn,
		IsActive:     true,
	}}

	_, err := f.svc.HandleInbound(map[string]string{
		"From": "whatsapp:+254711000001",
		"Body": "thanks, got it",
	})
	require.NoError(t, err)

	u, _ := f.users.GetByPhone("+254711000001")
	assert.Equal(t, model.ConsentOptIn, u.ConsentState)
}
