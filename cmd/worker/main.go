// cmd/worker/main.go
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/config"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/db"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/provider"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/queue"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/repository"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/service"
)

// The worker consumes launch jobs from AMQP and also runs the scheduler
// loop that promotes due SCHEDULED campaigns into launch jobs.
func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if cfg.AMQPURL == "" {
		logger.Error("worker requires AMQP_URL")
		os.Exit(1)
	}

	database, err := db.Connect(cfg)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	userRepo := &repository.UserRepository{DB: database}
	templateRepo := &repository.TemplateRepository{DB: database}
	segmentRepo := &repository.SegmentRepository{DB: database}
	campaignRepo := &repository.CampaignRepository{DB: database}
	messageRepo := &repository.MessageRepository{DB: database}

	var sender provider.Sender
	switch cfg.Provider {
	case config.ProviderTwilio:
		sender = provider.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.VerifiedNumbers)
	default:
		sender = provider.NewMockSender(0, 0)
	}

	campaignService := &service.CampaignService{
		CampaignRepo: campaignRepo,
		TemplateRepo: templateRepo,
		SegmentRepo:  segmentRepo,
		UserRepo:     userRepo,
		MessageRepo:  messageRepo,
		Sender:       sender,
		From:         cfg.TwilioFrom,
		SendTimeout:  cfg.SendTimeout,
		MaxWorkers:   cfg.MaxWorkers,
		Logger:       logger,
	}

	q, err := queue.NewAMQPQueue(cfg.AMQPURL, logger)
	if err != nil {
		logger.Error("AMQP connection failed", "error", err)
		os.Exit(1)
	}
	defer q.Close()

	go runScheduler(campaignRepo, q, cfg.SchedulerInterval, logger)

	logger.Info("worker consuming launch jobs", "queue", queue.LaunchQueueName)
	if err := q.Consume(func(campaignID int) error {
		_, err := campaignService.Launch(context.Background(), campaignID)
		return err
	}); err != nil {
		logger.Error("consumer stopped", "error", err)
		os.Exit(1)
	}
}

// runScheduler polls for SCHEDULED campaigns whose launch time has passed
// and enqueues them. The queue's delivery counting keeps a campaign from
// looping forever if its launch keeps failing.
func runScheduler(campaignRepo repository.CampaignRepositoryInterface, q queue.Queue, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		due, err := campaignRepo.ListDueScheduled(time.Now())
		if err != nil {
			logger.Error("scheduler poll failed", "error", err)
			continue
		}
		for _, c := range due {
			if err := q.PublishLaunch(c.ID); err != nil {
				logger.Error("scheduler enqueue failed", "campaign_id", c.ID, "error", err)
				continue
			}
			logger.Info("scheduled campaign enqueued", "campaign_id", c.ID, "name", c.Name)
		}
	}
}
