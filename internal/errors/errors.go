// internal/errors/errors.go
package appErrors

import "fmt"

// NotFoundError covers unknown campaign/template/segment/user/message ids.
type NotFoundError struct {
	Entity string
	ID     any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Entity, e.ID)
}

func NewCampaignNotFound(id int) error { return &NotFoundError{Entity: "campaign", ID: id} }
func NewTemplateNotFound(id int) error { return &NotFoundError{Entity: "template", ID: id} }
func NewSegmentNotFound(id int) error  { return &NotFoundError{Entity: "segment", ID: id} }
func NewTopicNotFound(id int) error    { return &NotFoundError{Entity: "topic", ID: id} }
func NewUserNotFound(phone string) error {
	return &NotFoundError{Entity: "user", ID: phone}
}

// ValidationError is malformed input, surfaced as a 400.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewValidation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// InvalidCampaignStateError is returned when a campaign is launched from a
// non-launchable status.
type InvalidCampaignStateError struct {
	CampaignID int
	Status     string
}

func (e *InvalidCampaignStateError) Error() string {
	return fmt.Sprintf("campaign %d cannot be launched in status %s", e.CampaignID, e.Status)
}

func NewInvalidCampaignState(id int, status string) error {
	return &InvalidCampaignStateError{CampaignID: id, Status: status}
}

// InvalidTransitionError is a rejected message state transition.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("illegal message state transition %s -> %s", e.From, e.To)
}

func NewInvalidTransition(from, to string) error {
	return &InvalidTransitionError{From: from, To: to}
}

// NoRecipientsError means the resolved recipient set was empty at launch.
type NoRecipientsError struct {
	CampaignID int
}

func (e *NoRecipientsError) Error() string {
	return fmt.Sprintf("campaign %d resolved zero recipients", e.CampaignID)
}

func NewNoRecipients(id int) error { return &NoRecipientsError{CampaignID: id} }

// QuietHoursError gates launches inside the campaign's quiet-hours window.
type QuietHoursError struct {
	Start string
	End   string
}

func (e *QuietHoursError) Error() string {
	return fmt.Sprintf("launch suppressed inside quiet hours %s-%s", e.Start, e.End)
}

func NewQuietHours(start, end string) error {
	return &QuietHoursError{Start: start, End: end}
}

// RenderError is a template rendering failure, recovered per-recipient
// during dispatch.
type RenderError struct {
	Detail string
}

func (e *RenderError) Error() string {
	return "template rendering error: " + e.Detail
}

func NewRenderError(detail string) error { return &RenderError{Detail: detail} }

// TransportError is a provider send failure, recovered per-recipient.
type TransportError struct {
	To     string
	Detail string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("provider send to %s failed: %s", e.To, e.Detail)
}

func NewTransportError(to, detail string) error {
	return &TransportError{To: to, Detail: detail}
}
