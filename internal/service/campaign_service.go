// internal/service/campaign_service.go
package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	appErrors "github.com/ushanirp/messaging-platfor-twilio-poc/internal/errors"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/metrics"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/model"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/phone"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/provider"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/repository"
)

const defaultMaxWorkers = 8

// CampaignService owns the campaign lifecycle end to end: creation,
// launch (the dispatch pipeline) and status aggregation. Once a campaign is
// RUNNING its status is derived solely from the aggregate of its messages'
// final states.
type CampaignService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	TemplateRepo repository.TemplateRepositoryInterface
	SegmentRepo  repository.SegmentRepositoryInterface
	UserRepo     repository.UserRepositoryInterface
	MessageRepo  repository.MessageRepositoryInterface
	Sender       provider.Sender

	// From is the provider sender address (e.g. "whatsapp:+14155238886").
	From        string
	SendTimeout time.Duration
	MaxWorkers  int
	Logger      *slog.Logger

	// Now is swappable for quiet-hours tests.
	Now func() time.Time
}

type CreateCampaignParams struct {
	Name         string
	TopicID      int
	TemplateID   int
	SegmentID    *int
	ScheduleType string
	ScheduleAt   *time.Time
	RateLimit    int
	QuietStart   string
	QuietEnd     string
}

// LaunchResult aggregates one launch run. Queued is the size of the
// resolved recipient set; Sent+Failed always equals Queued.
type LaunchResult struct {
	CampaignID int                  `json:"campaign_id"`
	Queued     int                  `json:"queued"`
	Sent       int                  `json:"sent"`
	Failed     int                  `json:"failed"`
	Status     model.CampaignStatus `json:"campaign_status"`
	Errors     []string             `json:"errors,omitempty"`
}

// StatusReport is the poll-anytime view of a campaign, computed from live
// message counts rather than any in-memory launch result.
type StatusReport struct {
	Campaign     *model.Campaign            `json:"campaign"`
	Total        int                        `json:"total"`
	Counts       map[model.MessageState]int `json:"counts"`
	ErrorDetails []string                   `json:"error_details,omitempty"`
}

type CampaignWithStats struct {
	model.Campaign
	MessageStats map[string]int `json:"message_stats"`
}

func (s *CampaignService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *CampaignService) CreateCampaign(p CreateCampaignParams) (*model.Campaign, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, appErrors.NewValidation("name", "campaign name is required")
	}
	if p.TemplateID == 0 {
		return nil, appErrors.NewValidation("template_id", "template is required")
	}

	status := model.CampaignDraft
	scheduleType := p.ScheduleType
	if scheduleType == "" {
		scheduleType = model.ScheduleImmediate
	}
	switch scheduleType {
	case model.ScheduleImmediate:
	case model.ScheduleScheduled:
		if p.ScheduleAt == nil {
			return nil, appErrors.NewValidation("schedule_at", "scheduled campaigns need a launch time")
		}
		status = model.CampaignScheduled
	default:
		return nil, appErrors.NewValidation("schedule_type", "must be immediate or scheduled")
	}

	c := &model.Campaign{
		Name:       p.Name,
		TopicID:    p.TopicID,
		TemplateID: p.TemplateID,
		SegmentID:  p.SegmentID,
		Schedule:   model.Schedule{Type: scheduleType, At: p.ScheduleAt},
		RateLimit:  p.RateLimit,
		QuietHours: model.QuietHours{Start: p.QuietStart, End: p.QuietEnd},
		Status:     status,
	}
	if err := s.CampaignRepo.Create(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Launch runs the dispatch pipeline for one campaign: resolve recipients,
// create every message row in QUEUED, then drive each one through
// SENDING to SENT or FAILED with a bounded worker pool. A single
// recipient's failure never aborts the batch.
func (s *CampaignService) Launch(ctx context.Context, campaignID int) (*LaunchResult, error) {
	c, err := s.CampaignRepo.GetByID(campaignID)
	if err != nil {
		return nil, err
	}
	if !c.Status.Launchable() {
		return nil, appErrors.NewInvalidCampaignState(campaignID, string(c.Status))
	}

	tpl, err := s.TemplateRepo.GetByID(c.TemplateID)
	if err != nil {
		return nil, err
	}
	if tpl == nil {
		return nil, appErrors.NewTemplateNotFound(c.TemplateID)
	}

	if c.QuietHours.Contains(s.now()) {
		return nil, appErrors.NewQuietHours(c.QuietHours.Start, c.QuietHours.End)
	}

	recipients, err := s.resolveRecipients(c)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		// Status deliberately left unchanged.
		return nil, appErrors.NewNoRecipients(campaignID)
	}

	// Persist RUNNING before the first send so a crash mid-batch shows up
	// as a stuck RUNNING campaign instead of silently reverting to DRAFT.
	// The write is a compare-and-set and doubles as the launch lock: a
	// concurrent launch (scheduler re-enqueue, AMQP redelivery, sync racing
	// async) loses here, before any message row exists.
	won, err := s.CampaignRepo.MarkRunning(campaignID)
	if err != nil {
		return nil, err
	}
	if !won {
		current, err := s.CampaignRepo.GetByID(campaignID)
		if err != nil {
			return nil, err
		}
		return nil, appErrors.NewInvalidCampaignState(campaignID, string(current.Status))
	}
	metrics.CampaignLaunches.Inc()
	s.Logger.Info("campaign launched",
		"campaign_id", campaignID, "recipients", len(recipients))

	// Every row exists in QUEUED before the first send, so partial progress
	// is observable mid-batch.
	msgs := make([]*model.Message, len(recipients))
	for i, u := range recipients {
		m := &model.Message{
			CampaignID: &c.ID,
			Phone:      u.Phone,
			TemplateID: &tpl.ID,
			State:      model.StateQueued,
		}
		if err := s.MessageRepo.Create(m); err != nil {
			return nil, err
		}
		msgs[i] = m
	}

	var limiter *rate.Limiter
	if c.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(c.RateLimit), c.RateLimit)
	}

	workers := s.MaxWorkers
	if workers <= 0 {
		workers = defaultMaxWorkers
	}

	var (
		mu           sync.Mutex
		sent, failed int
		errDetails   []string
	)
	recordFailure := func(phoneNumber, detail string) {
		mu.Lock()
		failed++
		errDetails = append(errDetails, phoneNumber+": "+detail)
		mu.Unlock()
		metrics.MessagesFailed.Inc()
	}

	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i := range msgs {
		m, u := msgs[i], recipients[i]
		g.Go(func() error {
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					recordFailure(u.Phone, "dispatch canceled: "+err.Error())
					s.failMessage(m.ID, "", "dispatch canceled: "+err.Error())
					return nil
				}
			}
			if ok := s.sendOne(ctx, tpl, m, u, recordFailure); ok {
				mu.Lock()
				sent++
				mu.Unlock()
				metrics.MessagesSent.Inc()
			}
			return nil
		})
	}
	// Join point: the aggregate waits for every worker.
	g.Wait()

	status := model.CampaignCompleted
	switch {
	case failed == len(recipients):
		status = model.CampaignFailed
	case failed > 0:
		status = model.CampaignPartiallyCompleted
	}
	if err := s.CampaignRepo.UpdateStatus(campaignID, status); err != nil {
		return nil, err
	}
	s.Logger.Info("campaign dispatch finished",
		"campaign_id", campaignID, "sent", sent, "failed", failed, "status", status)

	return &LaunchResult{
		CampaignID: campaignID,
		Queued:     len(recipients),
		Sent:       sent,
		Failed:     failed,
		Status:     status,
		Errors:     errDetails,
	}, nil
}

// sendOne drives a single message QUEUED -> SENDING -> {SENT|FAILED}.
// Returns true when the provider accepted the message.
func (s *CampaignService) sendOne(
	ctx context.Context,
	tpl *model.Template,
	m *model.Message,
	u model.User,
	recordFailure func(phoneNumber, detail string),
) bool {
	ok, err := s.MessageRepo.CompareAndSetState(m.ID, model.StateQueued, model.StateSending)
	if err != nil || !ok {
		detail := "could not move message to SENDING"
		if err != nil {
			detail += ": " + err.Error()
		}
		recordFailure(u.Phone, detail)
		return false
	}

	body, err := RenderText(tpl.Body, u.Attributes, true)
	if err != nil {
		// A rendering failure for one recipient must not abort the batch.
		recordFailure(u.Phone, err.Error())
		s.failMessage(m.ID, "", err.Error())
		return false
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout())
	defer cancel()
	sid, err := s.Sender.Send(sendCtx, s.From, u.Phone, body)
	if err != nil {
		recordFailure(u.Phone, err.Error())
		s.failMessage(m.ID, body, err.Error())
		return false
	}

	if _, err := s.MessageRepo.MarkSent(m.ID, body, sid); err != nil {
		recordFailure(u.Phone, "persist send result: "+err.Error())
		return false
	}
	return true
}

func (s *CampaignService) failMessage(id int, body, detail string) {
	if _, err := s.MessageRepo.MarkFailed(id, body, detail); err != nil {
		s.Logger.Error("failed to mark message FAILED", "message_id", id, "error", err)
	}
}

func (s *CampaignService) sendTimeout() time.Duration {
	if s.SendTimeout > 0 {
		return s.SendTimeout
	}
	return 15 * time.Second
}

// resolveRecipients evaluates the campaign's segment (nil means everyone
// active) and drops opted-out recipients.
func (s *CampaignService) resolveRecipients(c *model.Campaign) ([]model.User, error) {
	population, err := s.UserRepo.ListActive()
	if err != nil {
		return nil, err
	}

	candidates := population
	if c.SegmentID != nil {
		seg, err := s.SegmentRepo.GetByID(*c.SegmentID)
		if err != nil {
			return nil, err
		}
		if seg == nil {
			return nil, appErrors.NewSegmentNotFound(*c.SegmentID)
		}
		candidates = Resolve(seg.Definition, population)
	}

	recipients := make([]model.User, 0, len(candidates))
	for _, u := range candidates {
		if u.ConsentState == model.ConsentOptOut {
			continue
		}
		recipients = append(recipients, u)
	}
	return recipients, nil
}

// Status aggregates live message counts so it stays correct across process
// restarts and while webhooks keep moving messages forward.
func (s *CampaignService) Status(campaignID int) (*StatusReport, error) {
	c, err := s.CampaignRepo.GetByID(campaignID)
	if err != nil {
		return nil, err
	}
	counts, err := s.MessageRepo.CountByState(campaignID)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	errDetails, err := s.MessageRepo.ListFailedErrors(campaignID)
	if err != nil {
		return nil, err
	}
	return &StatusReport{
		Campaign:     c,
		Total:        total,
		Counts:       counts,
		ErrorDetails: errDetails,
	}, nil
}

func (s *CampaignService) GetCampaign(campaignID int) (*model.Campaign, error) {
	return s.CampaignRepo.GetByID(campaignID)
}

func (s *CampaignService) ListWithStats(offset, limit int) ([]CampaignWithStats, int, error) {
	campaigns, total, err := s.CampaignRepo.List(offset, limit)
	if err != nil {
		return nil, 0, err
	}
	result := make([]CampaignWithStats, 0, len(campaigns))
	for _, c := range campaigns {
		counts, err := s.MessageRepo.CountByState(c.ID)
		if err != nil {
			return nil, 0, err
		}
		total := 0
		for _, n := range counts {
			total += n
		}
		result = append(result, CampaignWithStats{
			Campaign: c,
			MessageStats: map[string]int{
				"total":     total,
				"sent":      counts[model.StateSent],
				"delivered": counts[model.StateDelivered],
				"failed":    counts[model.StateFailed],
			},
		})
	}
	return result, total, nil
}

// SendDirect is the ad-hoc test send: one campaign-less message routed
// through the same state machine as campaign dispatch.
func (s *CampaignService) SendDirect(ctx context.Context, phoneRaw, body string) (*model.Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, appErrors.NewValidation("message", "message body is required")
	}
	to, err := phone.Normalize(phoneRaw)
	if err != nil {
		return nil, err
	}

	m := &model.Message{Phone: to, Body: body, State: model.StateQueued}
	if err := s.MessageRepo.Create(m); err != nil {
		return nil, err
	}
	if _, err := s.MessageRepo.CompareAndSetState(m.ID, model.StateQueued, model.StateSending); err != nil {
		return nil, err
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout())
	defer cancel()
	sid, sendErr := s.Sender.Send(sendCtx, s.From, to, body)
	if sendErr != nil {
		s.failMessage(m.ID, body, sendErr.Error())
		m.State = model.StateFailed
		m.ErrorDetail = sendErr.Error()
		metrics.MessagesFailed.Inc()
		return m, sendErr
	}
	if _, err := s.MessageRepo.MarkSent(m.ID, body, sid); err != nil {
		return nil, err
	}
	m.State = model.StateSent
	m.ProviderSID = sid
	metrics.MessagesSent.Inc()
	return m, nil
}
