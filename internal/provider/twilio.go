// internal/provider/twilio.go
package provider

import (
	"context"
	"strings"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	appErrors "github.com/ushanirp/messaging-platfor-twilio-poc/internal/errors"
)

// TwilioSender sends WhatsApp/SMS messages through the Twilio REST API.
type TwilioSender struct {
	client *twilio.RestClient
	// allowlist restricts recipients (Twilio trial accounts can only reach
	// verified numbers); empty means unrestricted.
	allowlist []string
}

func NewTwilioSender(accountSID, authToken string, verifiedNumbers []string) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSender{client: client, allowlist: verifiedNumbers}
}

func (s *TwilioSender) Send(ctx context.Context, from, to, body string) (string, error) {
	if from == "" {
		return "", appErrors.NewTransportError(to, "from number not configured")
	}
	if !s.allowed(to) {
		return "", appErrors.NewTransportError(to, "recipient not in verified numbers list")
	}

	// Keep the channel prefix consistent with the configured from address.
	if strings.HasPrefix(from, "whatsapp:") && !strings.HasPrefix(to, "whatsapp:") {
		to = "whatsapp:" + to
	}

	params := &openapi.CreateMessageParams{}
	params.SetFrom(from)
	params.SetTo(to)
	params.SetBody(body)

	type result struct {
		sid string
		err error
	}
	done := make(chan result, 1)

	// The generated Twilio client has no context-aware call; run it in a
	// goroutine so a hung request cannot stall a dispatch worker.
	go func() {
		resp, err := s.client.Api.CreateMessage(params)
		if err != nil {
			done <- result{err: appErrors.NewTransportError(to, err.Error())}
			return
		}
		if resp.Sid == nil || *resp.Sid == "" {
			done <- result{err: appErrors.NewTransportError(to, "Twilio returned no message SID")}
			return
		}
		done <- result{sid: *resp.Sid}
	}()

	select {
	case <-ctx.Done():
		return "", appErrors.NewTransportError(to, "send timed out: "+ctx.Err().Error())
	case r := <-done:
		return r.sid, r.err
	}
}

func (s *TwilioSender) allowed(to string) bool {
	if len(s.allowlist) == 0 {
		return true
	}
	clean := strings.TrimPrefix(to, "whatsapp:")
	for _, n := range s.allowlist {
		if strings.TrimPrefix(strings.TrimSpace(n), "whatsapp:") == clean {
			return true
		}
	}
	return false
}

var _ Sender = (*TwilioSender)(nil)
