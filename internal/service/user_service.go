// internal/service/user_service.go
package service

import (
	"errors"
	"log/slog"

	appErrors "github.com/ushanirp/messaging-platfor-twilio-poc/internal/errors"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/model"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/phone"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/repository"
)

type UserService struct {
	UserRepo repository.UserRepositoryInterface
	Logger   *slog.Logger
}

// Consent is the explicit opt-in/opt-out payload. Nil Whatsapp leaves the
// stored consent state untouched — consent is never reset implicitly.
type Consent struct {
	Whatsapp *bool `json:"whatsapp,omitempty"`
}

func (c *Consent) state() (model.ConsentState, bool) {
	if c == nil || c.Whatsapp == nil {
		return "", false
	}
	if *c.Whatsapp {
		return model.ConsentOptIn, true
	}
	return model.ConsentOptOut, true
}

// CreateOrUpdate upserts a recipient by normalized phone (the natural key).
func (s *UserService) CreateOrUpdate(phoneRaw string, attrs map[string]any, consent *Consent) (*model.User, error) {
	u, _, err := s.upsert(phoneRaw, attrs, consent)
	return u, err
}

func (s *UserService) upsert(phoneRaw string, attrs map[string]any, consent *Consent) (*model.User, bool, error) {
	normalized, err := phone.Normalize(phoneRaw)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.UserRepo.GetByPhone(normalized)
	if err != nil {
		return nil, false, err
	}

	u := &model.User{
		Phone:        normalized,
		Attributes:   attrs,
		ConsentState: model.ConsentPending,
		IsActive:     true,
	}
	if attrs == nil {
		u.Attributes = map[string]any{}
	}
	if existing != nil {
		u.ConsentState = existing.ConsentState
		if attrs == nil {
			u.Attributes = existing.Attributes
		}
	}
	if state, ok := consent.state(); ok {
		u.ConsentState = state
	}

	created, err := s.UserRepo.Upsert(u)
	if err != nil {
		return nil, false, err
	}
	return u, created, nil
}

type BulkUserEntry struct {
	Phone      string         `json:"phone"`
	Attributes map[string]any `json:"attributes,omitempty"`
	Consent    *Consent       `json:"consent,omitempty"`
}

type BulkUpsertResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// BulkUpsert processes a JSON array of recipients. Invalid entries are
// skipped, not fatal — partial progress is the point of a bulk endpoint.
// The created/updated tally comes from the upsert itself, so it stays
// accurate under concurrent writers.
func (s *UserService) BulkUpsert(entries []BulkUserEntry) (*BulkUpsertResult, error) {
	res := &BulkUpsertResult{}
	for _, entry := range entries {
		_, created, err := s.upsert(entry.Phone, entry.Attributes, entry.Consent)
		if err != nil {
			var validation *appErrors.ValidationError
			if errors.As(err, &validation) {
				s.Logger.Warn("skipping bulk entry", "phone", entry.Phone, "error", err)
				res.Skipped++
				continue
			}
			return nil, err
		}
		if created {
			res.Created++
		} else {
			res.Updated++
		}
	}
	return res, nil
}

func (s *UserService) List() ([]model.User, error) {
	return s.UserRepo.ListAll()
}
