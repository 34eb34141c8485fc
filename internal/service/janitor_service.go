package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"swappay-be/internal/pkg/logger"
	"swappay-be/internal/pkg/metrics"
	"swappay-be/internal/repository/unitofwork"

	"github.com/robfig/cron/v3"
)

// cronParser accepts 5-field expressions plus descriptors such as @daily.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

type IJanitorService interface {
	// Sweep deletes every message older than the retention window.
	Sweep(ctx context.Context) (int64, error)
	Start() error
	Stop()
}

type janitorService struct {
	uowFactory unitofwork.RepositoryFactory
	schedule   string
	retention  time.Duration
	metrics    *metrics.Metrics
	logger     logger.ILogger

	mu   sync.Mutex
	cron *cron.Cron
}

func NewJanitorService(
	uowFactory unitofwork.RepositoryFactory,
	schedule string,
	retention time.Duration,
	metrics *metrics.Metrics,
	logger logger.ILogger,
) IJanitorService {
	return &janitorService{
		uowFactory: uowFactory,
		schedule:   schedule,
		retention:  retention,
		metrics:    metrics,
		logger:     logger,
	}
}

func (j *janitorService) Sweep(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-j.retention)

	uow := j.uowFactory.NewUnitOfWork(ctx)
	deleted, err := uow.MessageRepository().DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep messages older than %s: %w", cutoff.Format(time.RFC3339), err)
	}

	if j.metrics != nil {
		j.metrics.MessagesSwept.Add(float64(deleted))
	}
	return deleted, nil
}

// runSweep is the scheduled tick. Failures are logged; the next tick retries.
func (j *janitorService) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	deleted, err := j.Sweep(ctx)
	if err != nil {
		j.logger.Error("JANITOR", "Message sweep failed", map[string]interface{}{"error": err.Error()})
		return
	}
	j.logger.Info("JANITOR", "Message sweep finished", map[string]interface{}{
		"deleted":   deleted,
		"retention": j.retention.String(),
	})
}

func (j *janitorService) Start() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.cron != nil {
		return fmt.Errorf("janitor already started")
	}

	c := cron.New(cron.WithParser(cronParser))
	if _, err := c.AddFunc(j.schedule, j.runSweep); err != nil {
		return fmt.Errorf("invalid janitor schedule %q: %w", j.schedule, err)
	}
	c.Start()
	j.cron = c

	j.logger.Info("JANITOR", "Janitor scheduled", map[string]interface{}{
		"schedule":  j.schedule,
		"retention": j.retention.String(),
	})
	return nil
}

// Stop waits for a running sweep to finish.
func (j *janitorService) Stop() {
	j.mu.Lock()
	c := j.cron
	j.cron = nil
	j.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}
