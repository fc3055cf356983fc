// internal/provider/validator.go
package provider

import (
	twclient "github.com/twilio/twilio-go/client"
)

// TwilioValidator verifies the X-Twilio-Signature header against the full
// request URL and form parameters. Only explicitly disabled validation is a
// no-op; enabled validation without an auth token rejects everything, since
// accepting unsigned callbacks would let anyone forge delivery statuses.
type TwilioValidator struct {
	validator twclient.RequestValidator
	enabled   bool
	hasToken  bool
}

func NewTwilioValidator(authToken string, enabled bool) *TwilioValidator {
	return &TwilioValidator{
		validator: twclient.NewRequestValidator(authToken),
		enabled:   enabled,
		hasToken:  authToken != "",
	}
}

func (v *TwilioValidator) Validate(url string, params map[string]string, signature string) bool {
	if !v.enabled {
		return true
	}
	if !v.hasToken {
		return false
	}
	return v.validator.Validate(url, params, signature)
}

var _ SignatureValidator = (*TwilioValidator)(nil)
