// Package maintenance runs scheduled housekeeping: history pruning and
// session cache cleanup.
package maintenance

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/selectarr/selectarr/internal/config"
	"github.com/selectarr/selectarr/internal/database"
)

// DefaultPruneSchedule runs pruning daily at 04:00.
const DefaultPruneSchedule = "0 4 * * *"

// Manager schedules periodic maintenance jobs.
type Manager struct {
	db     *database.DB
	loader *config.Loader

	cron        *cron.Cron
	cronEntryID cron.EntryID
	mu          sync.Mutex
	running     bool
}

// NewManager creates a maintenance manager.
func NewManager(db *database.DB) *Manager {
	return &Manager{
		db:     db,
		loader: config.NewLoader(db),
		cron:   cron.New(),
	}
}

// Start begins the cron scheduler with the configured prune schedule.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}

	schedule := m.loader.String("history.prune_schedule", DefaultPruneSchedule)
	id, err := m.cron.AddFunc(schedule, m.pruneHistory)
	if err != nil {
		return err
	}
	m.cronEntryID = id

	m.cron.Start()
	m.running = true

	log.Info().Str("schedule", schedule).Msg("Maintenance scheduler started")
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	ctx := m.cron.Stop()
	<-ctx.Done()
	m.running = false
	log.Info().Msg("Maintenance scheduler stopped")
}

// NextRun returns the next scheduled prune time, or nil when not scheduled.
func (m *Manager) NextRun() *time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cronEntryID == 0 {
		return nil
	}
	entry := m.cron.Entry(m.cronEntryID)
	if entry.Next.IsZero() {
		return nil
	}
	next := entry.Next
	return &next
}

// pruneHistory deletes selection history beyond the retention window.
func (m *Manager) pruneHistory() {
	retentionDays := m.loader.Int("history.retention_days", 30)
	if retentionDays <= 0 {
		return
	}

	removed, err := m.db.PruneSelectionHistory(time.Duration(retentionDays) * 24 * time.Hour)
	if err != nil {
		log.Error().Err(err).Msg("Failed to prune selection history")
		return
	}
	if removed > 0 {
		log.Info().Int64("removed", removed).Int("retention_days", retentionDays).Msg("Pruned selection history")
	}
}
