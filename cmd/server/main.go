// cmd/server/main.go
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/config"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/db"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/handler"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/provider"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/queue"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/repository"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/service"
)

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	database, err := db.Connect(cfg)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	userRepo := &repository.UserRepository{DB: database}
	topicRepo := &repository.TopicRepository{DB: database}
	subscriptionRepo := &repository.SubscriptionRepository{DB: database}
	templateRepo := &repository.TemplateRepository{DB: database}
	segmentRepo := &repository.SegmentRepository{DB: database}
	campaignRepo := &repository.CampaignRepository{DB: database}
	messageRepo := &repository.MessageRepository{DB: database}
	eventRepo := &repository.EventRepository{DB: database}

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
	templateService := &service.TemplateService{TemplateRepo: templateRepo}
	segmentService := &service.SegmentService{SegmentRepo: segmentRepo, UserRepo: userRepo}
	userService := &service.UserService{UserRepo: userRepo, Logger: logger}
	webhookService := &service.WebhookService{
		MessageRepo: messageRepo,
		EventRepo:   eventRepo,
		UserRepo:    userRepo,
		Logger:      logger,
	}

	// Async launches go through AMQP when a broker is configured; otherwise
	// an in-process queue keeps the ?async contract working in dev.
	var q queue.Queue
	if cfg.AMQPURL != "" {
		amqpQueue, err := queue.NewAMQPQueue(cfg.AMQPURL, logger)
		if err != nil {
			logger.Error("AMQP connection failed", "error", err)
			os.Exit(1)
		}
		defer amqpQueue.Close()
		q = amqpQueue
	} else {
		memQueue := queue.NewInMemoryQueue(logger)
		memQueue.Subscribe(func(campaignID int) error {
			_, err := campaignService.Launch(context.Background(), campaignID)
			return err
		})
		q = memQueue
	}

	userHandler := &handler.UserHandler{Service: userService}
	topicHandler := &handler.TopicHandler{TopicRepo: topicRepo, SubscriptionRepo: subscriptionRepo}
	templateHandler := &handler.TemplateHandler{Service: templateService, TemplateRepo: templateRepo}
	segmentHandler := &handler.SegmentHandler{Service: segmentService, SegmentRepo: segmentRepo}
	campaignHandler := &handler.CampaignHandler{Service: campaignService, Queue: q}
	messageHandler := &handler.MessageHandler{MessageRepo: messageRepo, CampaignService: campaignService}
	webhookHandler := &handler.WebhookHandler{
		Service:       webhookService,
		Validator:     provider.NewTwilioValidator(cfg.TwilioAuthToken, cfg.ValidateWebhooks),
		PublicBaseURL: cfg.PublicBaseURL,
		Logger:        logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/users", userHandler.Create)
		r.Post("/users/bulk", userHandler.Bulk)
		r.Get("/users", userHandler.List)

		r.Post("/topics", topicHandler.Create)
		r.Get("/topics", topicHandler.List)
		r.Delete("/topics/{id}", topicHandler.Deactivate)
		r.Post("/subscriptions", topicHandler.Subscribe)
		r.Delete("/subscriptions", topicHandler.Unsubscribe)
		r.Get("/subscriptions", topicHandler.ListSubscriptions)

		r.Post("/templates", templateHandler.Create)
		r.Get("/templates", templateHandler.List)
		r.Get("/templates/{id}", templateHandler.Get)
		r.Post("/templates/{id}/preview", templateHandler.Preview)

		r.Post("/segments", segmentHandler.Create)
		r.Get("/segments", segmentHandler.List)
		r.Get("/segments/{id}", segmentHandler.Get)
		r.Get("/segments/{id}/members", segmentHandler.Members)

		r.Post("/campaigns", campaignHandler.Create)
		r.Get("/campaigns", campaignHandler.List)
		r.Get("/campaigns/{id}", campaignHandler.Get)
		r.Post("/campaigns/{id}/launch", campaignHandler.Launch)
		r.Get("/campaigns/{id}/status", campaignHandler.Status)

		r.Get("/messages", messageHandler.List)
		r.Post("/messages/test/send", messageHandler.TestSend)
	})

	r.Post("/webhooks/twilio/status", webhookHandler.Status)
	r.Post("/webhooks/twilio/inbound", webhookHandler.Inbound)

	logger.Info("server listening", "port", cfg.Port, "provider", cfg.Provider)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
