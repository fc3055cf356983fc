// internal/phone/phone.go
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"

	appErrors "github.com/ushanirp/messaging-platfor-twilio-poc/internal/errors"
)

// Normalize parses a raw phone number (with or without a "whatsapp:"
// channel prefix) and returns it in E.164 form. Numbers that do not parse
// or are not valid fail with a ValidationError.
func Normalize(raw string) (string, error) {
	trimmed := strings.TrimSpace(strings.TrimPrefix(raw, "whatsapp:"))
	if trimmed == "" {
		return "", appErrors.NewValidation("phone", "missing phone number")
	}
	num, err := phonenumbers.Parse(trimmed, "")
	if err != nil {
		return "", appErrors.NewValidation("phone", err.Error())
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", appErrors.NewValidation("phone", "not a valid E.164 number: "+trimmed)
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// Valid reports whether raw normalizes to a valid E.164 number.
func Valid(raw string) bool {
	_, err := Normalize(raw)
	return err == nil
}
