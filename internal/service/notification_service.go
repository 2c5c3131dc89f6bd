package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Songmu/retry"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/incident-intake/internal/config"
	"github.com/spec-kit/incident-intake/internal/events"
)

const (
	forwardTimeout       = 5 * time.Second
	forwardRetryInterval = time.Second
)

// NotificationService forwards created incidents to a downstream webhook.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
	interval   time.Duration
	wg         sync.WaitGroup
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
		interval:   forwardRetryInterval,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventIncidentCreated, n.handleIncidentCreated)
}

// Wait blocks until in-flight forwards finish.
func (n *NotificationService) Wait() {
	n.wg.Wait()
}

func (n *NotificationService) handleIncidentCreated(_ context.Context, event events.Event) error {
	n.logger.Info("IncidentCreated", zap.Int64("incident_id", event.IncidentID), zap.String("event_id", event.ID))
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return nil
	}

	// forwarding outlives the request that triggered it
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		if err := n.forward(event); err != nil {
			n.logger.Warn("incident forward failed",
				zap.String("url", n.cfg.WebhookURL),
				zap.Int64("incident_id", event.IncidentID),
				zap.Error(err))
		}
	}()
	return nil
}

func (n *NotificationService) forward(event events.Event) error {
	attempts := n.cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	return retry.Retry(uint(attempts), n.interval, func() error {
		agent := fiber.Post(n.cfg.WebhookURL)
		agent.Timeout(forwardTimeout)
		agent.JSON(event)

		code, _, errs := agent.Bytes()
		if len(errs) > 0 {
			return errs[0]
		}
		if code >= fiber.StatusBadRequest {
			return fmt.Errorf("webhook responded %d", code)
		}
		n.logger.Debug("incident forwarded",
			zap.Int64("incident_id", event.IncidentID),
			zap.Int("status", code))
		return nil
	})
}
