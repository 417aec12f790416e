package worker

import (
	"context"
	"time"

	"github.com/clinicore/decision-api/internal/model"
	"github.com/clinicore/decision-api/internal/repository"
	"github.com/clinicore/decision-api/pkg/logger"
	"github.com/clinicore/decision-api/pkg/messaging"
	"github.com/clinicore/decision-api/pkg/metrics"
)

type OutboxProcessorConfig struct {
	BatchSize    int           `mapstructure:"batch_size"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	RetentionAge time.Duration `mapstructure:"retention_age"`
}

func DefaultOutboxProcessorConfig() OutboxProcessorConfig {
	return OutboxProcessorConfig{
		BatchSize:    100,
		PollInterval: 5 * time.Second,
		RetentionAge: 7 * 24 * time.Hour,
	}
}

// OutboxProcessor drains pending clinical events from the outbox table
// and publishes them to the broker.
type OutboxProcessor struct {
	repo    repository.OutboxRepository
	broker  messaging.Broker
	config  OutboxProcessorConfig
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewOutboxProcessor(
	repo repository.OutboxRepository,
	broker messaging.Broker,
	config OutboxProcessorConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *OutboxProcessor {
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultOutboxProcessorConfig().BatchSize
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultOutboxProcessorConfig().PollInterval
	}

	return &OutboxProcessor{
		repo:    repo,
		broker:  broker,
		config:  config,
		logger:  logger,
		metrics: metrics,
	}
}

// Start polls until the context is cancelled.
func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.logger.Info("outbox processor started", "poll_interval", p.config.PollInterval.String())

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("outbox processor stopped")
			return
		case <-ticker.C:
			if err := p.processBatch(ctx); err != nil {
				p.logger.Error(err, "failed to process outbox batch")
			}
		}
	}
}

func (p *OutboxProcessor) processBatch(ctx context.Context) error {
	events, err := p.repo.GetPendingEvents(ctx, p.config.BatchSize)
	if err != nil {
		return err
	}

	for _, event := range events {
		start := time.Now()
		err := p.broker.Publish(ctx, messaging.ChannelClinicalEvents, messaging.Message{
			Type:    event.EventType,
			Payload: event.Payload,
		})
		p.metrics.OutboxProcessingLatency.Observe(time.Since(start).Seconds())

		if err != nil {
			p.metrics.OutboxEventsFailed.Inc()
			errMsg := err.Error()
			if updateErr := p.repo.UpdateStatus(ctx, event.ID, model.OutboxStatusFailed, &errMsg); updateErr != nil {
				p.logger.Error(updateErr, "failed to mark outbox event failed", "event_id", event.ID.String())
			}
			continue
		}

		p.metrics.OutboxEventsProcessed.Inc()
		if err := p.repo.UpdateStatus(ctx, event.ID, model.OutboxStatusProcessed, nil); err != nil {
			p.logger.Error(err, "failed to mark outbox event processed", "event_id", event.ID.String())
		}
	}

	if p.config.RetentionAge > 0 {
		if _, err := p.repo.DeleteProcessedBefore(ctx, time.Now().Add(-p.config.RetentionAge)); err != nil {
			p.logger.Error(err, "failed to prune processed outbox events")
		}
	}

	return nil
}
