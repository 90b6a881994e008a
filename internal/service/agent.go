package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/mtwilk/smart-study-buddy/internal/config"
	"github.com/mtwilk/smart-study-buddy/internal/models"
)

// Agent is the periodic driver: two interval jobs, one pulling the calendar
// into the document store, one mirroring deadlines into assignments and
// notifying. The jobs share no in-process state beyond the stores; runMu
// keeps this process's own runs from overlapping when a run outlasts the
// interval, but two processes pointed at the same stores are not
// coordinated.
type Agent struct {
	mu    sync.Mutex
	runMu sync.Mutex

	cron       *cron.Cron
	pullEntry  cron.EntryID
	checkEntry cron.EntryID
	running    bool
	lastSync   *time.Time

	ingest   IngestService
	sync     SyncService
	notifier NotifierService
	cfg      config.AgentConfig
	logger   zerolog.Logger
}

func NewAgent(ingest IngestService, syncService SyncService, notifier NotifierService, cfg config.AgentConfig, logger zerolog.Logger) *Agent {
	return &Agent{
		ingest:   ingest,
		sync:     syncService,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
	}
}

func (a *Agent) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running {
		return nil
	}

	c := cron.New()
	spec := fmt.Sprintf("@every %s", a.cfg.SyncInterval)

	pullEntry, err := c.AddFunc(spec, a.pullJob)
	if err != nil {
		return fmt.Errorf("failed to schedule calendar pull: %w", err)
	}

	checkEntry, err := c.AddFunc(spec, a.checkJob)
	if err != nil {
		return fmt.Errorf("failed to schedule sync check: %w", err)
	}

	c.Start()

	a.cron = c
	a.pullEntry = pullEntry
	a.checkEntry = checkEntry
	a.running = true

	// First pull runs right away; the first sync check comes one interval
	// later, after the pull has had a chance to land events.
	go a.pullJob()

	a.logger.Info().
		Dur("interval", a.cfg.SyncInterval).
		Str("user_email", a.cfg.UserEmail).
		Msg("Agent started")

	return nil
}

func (a *Agent) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.running {
		return
	}

	a.cron.Stop()
	a.running = false
	a.logger.Info().Msg("Agent stopped")
}

func (a *Agent) Status() models.AgentStatus {
	a.mu.Lock()
	defer a.mu.Unlock()

	status := models.AgentStatus{
		Running:           a.running,
		NotificationsSent: a.notifier.NotificationsSent(),
	}

	if a.lastSync != nil {
		v := a.lastSync.Format(time.RFC3339)
		status.LastSync = &v
	}

	if a.running {
		next := a.cron.Entry(a.pullEntry).Next.Format(time.RFC3339)
		status.NextSync = &next

		check := a.cron.Entry(a.checkEntry).Next.Format(time.RFC3339)
		status.NextCheck = &check
	}

	return status
}

func (a *Agent) pullJob() {
	a.runMu.Lock()
	defer a.runMu.Unlock()

	stats, err := a.ingest.PullCalendar(context.Background(), a.cfg.PullDaysAhead)
	if err != nil {
		a.logger.Error().Err(err).Msg("Calendar pull failed")
		return
	}

	now := time.Now()
	a.mu.Lock()
	a.lastSync = &now
	a.mu.Unlock()

	a.logger.Debug().
		Int("fetched", stats.EventsFetched).
		Int("deadlines", stats.DeadlinesFound).
		Msg("Calendar pull job finished")
}

func (a *Agent) checkJob() {
	a.runMu.Lock()
	defer a.runMu.Unlock()

	report, err := a.sync.SyncForEmail(context.Background(), a.cfg.UserEmail)
	if err != nil {
		a.logger.Error().Err(err).Msg("Sync check failed")
		return
	}

	if report.AssignmentsCount > 0 || report.RemindersCount > 0 {
		a.logger.Info().
			Int("assignments", report.AssignmentsCount).
			Int("reminders", report.RemindersCount).
			Msg("Sync check job finished")
	}
}
