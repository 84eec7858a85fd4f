package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/papajo/clmonetizer-app/internal/common"
	"github.com/papajo/clmonetizer-app/internal/interfaces"
	"github.com/papajo/clmonetizer-app/internal/models"
)

// Service runs configured category scrapes on cron schedules. One batch at
// a time: overlapping triggers wait on the run mutex so a slow category
// page never stacks concurrent browser work.
type Service struct {
	ingest  interfaces.IngestService
	config  *common.SchedulerConfig
	cron    *cron.Cron
	logger  arbor.ILogger
	runMu   sync.Mutex
	running bool
}

// NewService creates the scheduler from the configured job list
func NewService(ingest interfaces.IngestService, config *common.SchedulerConfig, logger arbor.ILogger) interfaces.SchedulerService {
	return &Service{
		ingest: ingest,
		config: config,
		cron:   cron.New(),
		logger: logger,
	}
}

// Start registers the configured schedules and starts the cron loop
func (s *Service) Start() error {
	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	if !s.config.Enabled {
		s.logger.Info().Msg("Scheduler disabled by configuration")
		return nil
	}

	registered := 0
	for _, job := range s.config.Jobs {
		url := job.URL
		if _, err := s.cron.AddFunc(job.Schedule, func() {
			s.runScheduledScrape(url)
		}); err != nil {
			return fmt.Errorf("invalid schedule %q for %s: %w", job.Schedule, url, err)
		}

		s.logger.Info().
			Str("schedule", job.Schedule).
			Str("url", url).
			Msg("Scheduled scrape registered")
		registered++
	}

	if registered == 0 {
		s.logger.Warn().Msg("Scheduler enabled but no jobs configured")
		return nil
	}

	s.cron.Start()
	s.running = true
	s.logger.Info().Int("jobs", registered).Msg("Scheduler started")
	return nil
}

// Stop halts the cron loop. A scrape already handed to the ingest service
// keeps running; only new triggers stop.
func (s *Service) Stop() {
	if !s.running {
		return
	}
	s.cron.Stop()
	s.running = false
	s.logger.Info().Msg("Scheduler stopped")
}

// runScheduledScrape kicks off one batch and waits for it so schedules
// cannot overlap each other
func (s *Service) runScheduledScrape(url string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("url", url).
				Str("panic", fmt.Sprintf("%v", r)).
				Msg("PANIC RECOVERED in scheduled scrape")
		}
	}()

	s.runMu.Lock()
	defer s.runMu.Unlock()

	ctx := context.Background()
	started := time.Now()

	batchID, err := s.ingest.ScrapeCategory(ctx, url, 0)
	if err != nil {
		s.logger.Error().Err(err).Str("url", url).Msg("Scheduled scrape rejected")
		return
	}

	s.logger.Info().
		Str("batch_id", batchID).
		Str("url", url).
		Msg("Scheduled scrape started")

	batch := s.waitForBatch(ctx, batchID)
	if batch == nil {
		s.logger.Warn().Str("batch_id", batchID).Msg("Scheduled scrape did not report completion")
		return
	}

	s.logger.Info().
		Str("batch_id", batchID).
		Str("status", string(batch.Status)).
		Str("summary", batch.Summary()).
		Dur("duration", time.Since(started)).
		Msg("Scheduled scrape finished")
}

// waitForBatch polls until the batch leaves the running state. The hard
// cap keeps a wedged batch from blocking the schedule forever.
func (s *Service) waitForBatch(ctx context.Context, batchID string) *models.BatchOutcome {
	const pollInterval = 5 * time.Second
	const maxWait = 30 * time.Minute

	deadline := time.Now().Add(maxWait)
	for time.Now().Before(deadline) {
		batch, err := s.ingest.GetBatch(ctx, batchID)
		if err != nil {
			s.logger.Warn().Err(err).Str("batch_id", batchID).Msg("Batch status check failed")
			return nil
		}
		if batch.Status != models.BatchStatusRunning {
			return batch
		}
		time.Sleep(pollInterval)
	}
	return nil
}
