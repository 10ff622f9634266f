package watcher

import (
	"buildwatch/internal/models"
	"buildwatch/internal/providers"
	"buildwatch/internal/watcher/interfaces"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/roylee0704/gron"
)

// ReconcilerInterface is the per-title unit of work a poll cycle runs.
type ReconcilerInterface interface {
	Reconcile(ctx context.Context, titleID string) (models.ReconcileResult, error)
}

type Scheduler struct {
	reconciler ReconcilerInterface
	status     *StatusTracker
	notifier   NotifierInterface
	metrics    providers.MetricsProviderInterface
	logger     providers.Logger
	cron       *gron.Cron
	opsMu      sync.Mutex
	queued     atomic.Bool
	stopped    atomic.Bool
	titleIDs   []string
	now        func() time.Time
}

func NewScheduler(reconciler ReconcilerInterface, status *StatusTracker, notifier NotifierInterface, metrics providers.MetricsProviderInterface, logger providers.Logger) interfaces.SchedulerInterface {
	return &Scheduler{
		reconciler: reconciler,
		status:     status,
		notifier:   notifier,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// Start runs one cycle right away and then one per interval. Cycles never
// overlap: a tick that fires while a cycle runs waits for it, and further
// ticks in that window are folded into the waiting one.
func (s *Scheduler) Start(titleIDs []string, interval time.Duration) {
	s.titleIDs = append([]string(nil), titleIDs...)
	s.status.Configure(s.titleIDs, interval)

	if len(s.titleIDs) == 0 {
		s.logger.Warnf(providers.TypeWatcher, "No title ids configured, watcher will not poll")
		return
	}

	s.cron = gron.New()
	s.cron.AddFunc(gron.Every(interval), s.tick)
	s.cron.Start()
	go s.tick()

	s.logger.Infof(providers.TypeWatcher, "Watcher started for %v every %s", s.titleIDs, interval)
}

func (s *Scheduler) tick() {
	if !s.queued.CompareAndSwap(false, true) {
		return
	}
	s.opsMu.Lock()
	defer s.opsMu.Unlock()
	s.queued.Store(false)

	if s.stopped.Load() {
		return
	}
	s.runCycle(context.Background())
}

// Stop halts the ticker and waits for an in-flight cycle to finish.
func (s *Scheduler) Stop() {
	s.stopped.Store(true)
	if s.cron != nil {
		s.cron.Stop()
	}
	s.opsMu.Lock()
	defer s.opsMu.Unlock()
	s.logger.Infof(providers.TypeWatcher, "Watcher stopped")
}

// RunCycle polls every configured title once, in order.
func (s *Scheduler) RunCycle(ctx context.Context) {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()
	s.runCycle(ctx)
}

func (s *Scheduler) runCycle(ctx context.Context) {
	s.status.CycleStarted(s.now().UTC())
	for _, id := range s.titleIDs {
		s.pollTitle(ctx, id)
	}
}

// pollTitle contains every failure to the one title.
func (s *Scheduler) pollTitle(ctx context.Context, titleID string) {
	s.status.TitleChecked(titleID, s.now().UTC())

	result, err := s.safeReconcile(ctx, titleID)
	if err != nil {
		s.logger.Errorf(providers.TypeWatcher, "Error checking updates for %s: %s", titleID, err)
		s.status.TitleFailed(titleID, s.now().UTC(), err)
		s.metrics.IncPolls(titleID, providers.PollOutcomeError)
		s.notifier.Notify(ctx, fmt.Sprintf("Watcher error for title %s: %s", titleID, err))
		return
	}

	s.status.TitleSucceeded(titleID, s.now().UTC(), result.NewVersionDetected)
	s.metrics.IncPolls(titleID, providers.PollOutcomeOK)
	if !result.NewVersionDetected {
		s.logger.Debugf(providers.TypeWatcher, "No new version for %s", titleID)
	}
}

func (s *Scheduler) safeReconcile(ctx context.Context, titleID string) (result models.ReconcileResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.reconciler.Reconcile(ctx, titleID)
}

func (s *Scheduler) Status() models.WatcherStatus {
	return s.status.Snapshot()
}
