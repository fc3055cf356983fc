package service_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	appErrors "github.com/ushanirp/messaging-platfor-twilio-poc/internal/errors"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/model"
)

// In-memory repository fakes shared by the service tests. They mirror the
// Postgres implementations' contracts, including the compare-and-set
// semantics the dispatch pipeline and webhook reconciler rely on.

type memUserRepo struct {
	mu    sync.Mutex
	users []model.User
}

func (r *memUserRepo) GetByPhone(phone string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if r.users[i].Phone == phone {
			u := r.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) ListAll() ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.User(nil), r.users...), nil
}

func (r *memUserRepo) ListActive() ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.User
	for _, u := range r.users {
		if u.IsActive {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *memUserRepo) Upsert(u *model.User) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if r.users[i].Phone == u.Phone {
			r.users[i] = *u
			return false, nil
		}
	}
	r.users = append(r.users, *u)
	return true, nil
}

func (r *memUserRepo) UpdateConsent(phone string, state model.ConsentState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if r.users[i].Phone == phone {
			r.users[i].ConsentState = state
			return nil
		}
	}
	return nil
}

type memCampaignRepo struct {
	mu        sync.Mutex
	nextID    int
	campaigns map[int]*model.Campaign
}

func newMemCampaignRepo() *memCampaignRepo {
	return &memCampaignRepo{campaigns: map[int]*model.Campaign{}}
}

func (r *memCampaignRepo) Create(c *model.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c.ID = r.nextID
	c.CreatedAt = time.Now()
	cp := *c
	r.campaigns[c.ID] = &cp
	return nil
}

func (r *memCampaignRepo) GetByID(id int) (*model.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	cp := *c
	return &cp, nil
}

func (r *memCampaignRepo) List(offset, limit int) ([]model.Campaign, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []model.Campaign
	for id := r.nextID; id >= 1; id-- {
		if c, ok := r.campaigns[id]; ok {
			all = append(all, *c)
		}
	}
	total := len(all)
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return all[offset:end], total, nil
}

func (r *memCampaignRepo) MarkRunning(campaignID int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[campaignID]
	if !ok || !c.Status.Launchable() {
		return false, nil
	}
	c.Status = model.CampaignRunning
	return true, nil
}

func (r *memCampaignRepo) UpdateStatus(campaignID int, status model.CampaignStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[campaignID]
	if !ok {
		return appErrors.NewCampaignNotFound(campaignID)
	}
	c.Status = status
	return nil
}

func (r *memCampaignRepo) ListDueScheduled(now time.Time) ([]model.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Campaign
	for _, c := range r.campaigns {
		if c.Status == model.CampaignScheduled && c.Schedule.At != nil && !c.Schedule.At.After(now) {
			out = append(out, *c)
		}
	}
	return out, nil
}

type memTemplateRepo struct {
	mu        sync.Mutex
	nextID    int
	templates map[int]*model.Template
}

func newMemTemplateRepo() *memTemplateRepo {
	return &memTemplateRepo{templates: map[int]*model.Template{}}
}

func (r *memTemplateRepo) Create(t *model.Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	t.ID = r.nextID
	cp := *t
	r.templates[t.ID] = &cp
	return nil
}

func (r *memTemplateRepo) GetByID(id int) (*model.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.templates[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *memTemplateRepo) ListAll() ([]model.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Template
	for _, t := range r.templates {
		out = append(out, *t)
	}
	return out, nil
}

type memSegmentRepo struct {
	mu       sync.Mutex
	nextID   int
	segments map[int]*model.Segment
}

func newMemSegmentRepo() *memSegmentRepo {
	return &memSegmentRepo{segments: map[int]*model.Segment{}}
}

func (r *memSegmentRepo) Create(s *model.Segment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	s.ID = r.nextID
	cp := *s
	r.segments[s.ID] = &cp
	return nil
}

func (r *memSegmentRepo) GetByID(id int) (*model.Segment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.segments[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *memSegmentRepo) ListAll() ([]model.Segment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Segment
	for _, s := range r.segments {
		out = append(out, *s)
	}
	return out, nil
}

type memMessageRepo struct {
	mu     sync.Mutex
	nextID int
	msgs   map[int]*model.Message
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{msgs: map[int]*model.Message{}}
}

func (r *memMessageRepo) Create(m *model.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	m.ID = r.nextID
	m.CreatedAt = time.Now()
	cp := *m
	r.msgs[m.ID] = &cp
	return nil
}

func (r *memMessageRepo) GetByID(id int) (*model.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.msgs[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *memMessageRepo) GetByProviderSID(sid string) (*model.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.msgs {
		if m.ProviderSID == sid {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memMessageRepo) CompareAndSetState(id int, from, to model.MessageState) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.msgs[id]
	if !ok || m.State != from {
		return false, nil
	}
	m.State = to
	return true, nil
}

func (r *memMessageRepo) MarkSent(id int, body, providerSID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.msgs[id]
	if !ok || m.State != model.StateSending {
		return false, nil
	}
	m.State = model.StateSent
	m.Body = body
	m.ProviderSID = providerSID
	return true, nil
}

func (r *memMessageRepo) MarkFailed(id int, body, errorDetail string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.msgs[id]
	if !ok || m.State != model.StateSending {
		return false, nil
	}
	m.State = model.StateFailed
	if body != "" {
		m.Body = body
	}
	m.ErrorDetail = errorDetail
	return true, nil
}

func (r *memMessageRepo) CountByState(campaignID int) (map[model.MessageState]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[model.MessageState]int, len(model.AllMessageStates))
	for _, s := range model.AllMessageStates {
		counts[s] = 0
	}
	for _, m := range r.msgs {
		if m.CampaignID != nil && *m.CampaignID == campaignID {
			counts[m.State]++
		}
	}
	return counts, nil
}

func (r *memMessageRepo) ListFailedErrors(campaignID int) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, m := range r.msgs {
		if m.CampaignID != nil && *m.CampaignID == campaignID && m.State == model.StateFailed {
			out = append(out, fmt.Sprintf("%s: %s", m.Phone, m.ErrorDetail))
		}
	}
	return out, nil
}

func (r *memMessageRepo) ListByCampaign(campaignID int) ([]model.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Message
	for id := 1; id <= r.nextID; id++ {
		if m, ok := r.msgs[id]; ok && m.CampaignID != nil && *m.CampaignID == campaignID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *memMessageRepo) ListAll(limit int) ([]model.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Message
	for id := r.nextID; id >= 1 && len(out) < limit; id-- {
		if m, ok := r.msgs[id]; ok {
			out = append(out, *m)
		}
	}
	return out, nil
}

type memEventRepo struct {
	mu       sync.Mutex
	receipts []model.DeliveryReceipt
	inbound  []model.InboundEvent
}

func (r *memEventRepo) CreateReceipt(rec *model.DeliveryReceipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec.ID = len(r.receipts) + 1
	rec.CreatedAt = time.Now()
	r.receipts = append(r.receipts, *rec)
	return nil
}

func (r *memEventRepo) CreateInbound(ev *model.InboundEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ev.ID = len(r.inbound) + 1
	ev.CreatedAt = time.Now()
	r.inbound = append(r.inbound, *ev)
	return nil
}

func (r *memEventRepo) ListReceiptsBySID(sid string) ([]model.DeliveryReceipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.DeliveryReceipt
	for _, rec := range r.receipts {
		if rec.MessageSID == sid {
			out = append(out, rec)
		}
	}
	return out, nil
}

// fakeSender records every send and fails the phones listed in failFor.
type fakeSender struct {
	mu      sync.Mutex
	nextSID int
	sent    []string
	failFor map[string]string
}

func (s *fakeSender) Send(_ context.Context, _, to, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if detail, ok := s.failFor[to]; ok {
		return "", appErrors.NewTransportError(to, detail)
	}
	s.nextSID++
	sid := fmt.Sprintf("SM%08d", s.nextSID)
	s.sent = append(s.sent, to)
	return sid, nil
}
