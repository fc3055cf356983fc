package service_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/model"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/service"
)

func newUserService() (*service.UserService, *memUserRepo) {
	repo := &memUserRepo{}
	svc := &service.UserService{
		UserRepo: repo,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return svc, repo
}

func TestCreateOrUpdatePreservesConsent(t *testing.T) {
	svc, repo := newUserService()
	repo.users = []model.User{{
		Phone:        "+254711000001",
		Attributes:   map[string]any{"name": "Amina"},
		ConsentState: model.ConsentOptIn,
		IsActive:     true,
	}}

	// No consent payload: the stored opt-in must survive the update.
	u, err := svc.CreateOrUpdate("+254 711 000001", map[string]any{"city": "Nairobi"}, nil)
	require.NoError(t, err)
	assert.Equal(t, model.ConsentOptIn, u.ConsentState)

	stored, _ := repo.GetByPhone("+254711000001")
	assert.Equal(t, model.ConsentOptIn, stored.ConsentState)
	assert.Equal(t, "Nairobi", stored.Attributes["city"])
}

func TestBulkUpsertTallies(t *testing.T) {
	svc, repo := newUserService()
	repo.users = []model.User{{
		Phone:        "+254711000001",
		Attributes:   map[string]any{"name": "Amina"},
		ConsentState: model.ConsentOptIn,
		IsActive:     true,
	}}

	optIn := true
	res, err := svc.BulkUpsert([]service.BulkUserEntry{
		{Phone: "+254711000001", Attributes: map[string]any{"name": "Amina A."}},
		{Phone: "+254711000002", Consent: &service.Consent{Whatsapp: &optIn}},
		{Phone: "garbage"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 1, res.Skipped)

	all, _ := repo.ListAll()
	assert.Len(t, all, 2)
}
