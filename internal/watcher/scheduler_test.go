package watcher

import (
	"buildwatch/internal/models"
	"buildwatch/internal/providers"
	"buildwatch/internal/testutil"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedReconciler struct {
	mu    sync.Mutex
	calls []string
	fn    func(titleID string) (models.ReconcileResult, error)
}

func (s *scriptedReconciler) Reconcile(_ context.Context, titleID string) (models.ReconcileResult, error) {
	s.mu.Lock()
	s.calls = append(s.calls, titleID)
	s.mu.Unlock()
	if s.fn == nil {
		return models.ReconcileResult{}, nil
	}
	return s.fn(titleID)
}

func (s *scriptedReconciler) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (r *recordingNotifier) Notify(_ context.Context, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
}

func newTestScheduler(rec ReconcilerInterface) (*Scheduler, *recordingNotifier, *testutil.MockMetrics, *testutil.MockLogger) {
	notifier := &recordingNotifier{}
	metrics := &testutil.MockMetrics{}
	logger := &testutil.MockLogger{}
	s := NewScheduler(rec, NewStatusTracker(), notifier, metrics, logger).(*Scheduler)
	return s, notifier, metrics, logger
}

func TestRunCycle_FailureIsIsolatedPerTitle(t *testing.T) {
	rec := &scriptedReconciler{fn: func(id string) (models.ReconcileResult, error) {
		if id == "bad" {
			return models.ReconcileResult{}, errors.New("boom")
		}
		return models.ReconcileResult{NewVersionDetected: id == "good"}, nil
	}}
	s, notifier, metrics, _ := newTestScheduler(rec)
	s.titleIDs = []string{"bad", "good", "quiet"}

	s.RunCycle(context.Background())

	assert.Equal(t, []string{"bad", "good", "quiet"}, rec.calls)
	assert.Equal(t, []string{"Watcher error for title bad: boom"}, notifier.messages)
	assert.Equal(t, 1, metrics.Polls["bad:"+providers.PollOutcomeError])
	assert.Equal(t, 1, metrics.Polls["good:"+providers.PollOutcomeOK])

	st := s.Status()
	assert.Equal(t, 1, st.ChecksCount)
	assert.Equal(t, 1, st.UpdatesFound)
	require.NotNil(t, st.LastError)
	assert.Equal(t, "boom", st.LastError.Message)
	require.NotNil(t, st.PerTitle["bad"].LastError)
	assert.Nil(t, st.PerTitle["bad"].LastSuccess)
	assert.NotNil(t, st.PerTitle["good"].LastSuccess)
	assert.Equal(t, 1, st.PerTitle["good"].UpdatesFound)
	assert.Equal(t, 1, st.PerTitle["quiet"].ChecksCount)
}

func TestRunCycle_RecoversFromPanic(t *testing.T) {
	rec := &scriptedReconciler{fn: func(id string) (models.ReconcileResult, error) {
		if id == "p" {
			panic("nil map")
		}
		return models.ReconcileResult{}, nil
	}}
	s, notifier, _, _ := newTestScheduler(rec)
	s.titleIDs = []string{"p", "ok"}

	s.RunCycle(context.Background())

	assert.Equal(t, 2, rec.callCount())
	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "panic: nil map")
}

func TestStart_EmptyTitleIDsWarnsAndIdles(t *testing.T) {
	rec := &scriptedReconciler{}
	s, _, _, logger := newTestScheduler(rec)

	s.Start(nil, time.Minute)
	defer s.Stop()

	assert.True(t, logger.HasEntry("warn", "No title ids configured"))
	assert.Nil(t, s.cron)
	assert.Zero(t, rec.callCount())
}

func TestStart_PollsImmediately(t *testing.T) {
	rec := &scriptedReconciler{}
	s, _, _, _ := newTestScheduler(rec)

	s.Start([]string{"g1", "g2"}, time.Hour)
	require.Eventually(t, func() bool { return rec.callCount() == 2 }, 2*time.Second, 10*time.Millisecond)
	s.Stop()

	st := s.Status()
	assert.Equal(t, []string{"g1", "g2"}, st.TitleIDs)
	assert.Equal(t, "1h0m0s", st.PollInterval)
}

func TestStop_SuppressesLaterTicks(t *testing.T) {
	rec := &scriptedReconciler{}
	s, _, _, _ := newTestScheduler(rec)
	s.titleIDs = []string{"g1"}

	s.Stop()
	s.tick()

	assert.Zero(t, rec.callCount())
}

func TestTick_CyclesNeverOverlap(t *testing.T) {
	var (
		mu      sync.Mutex
		running int
		maxSeen int
	)
	rec := &scriptedReconciler{fn: func(string) (models.ReconcileResult, error) {
		mu.Lock()
		running++
		if running > maxSeen {
			maxSeen = running
		}
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		mu.Lock()
		running--
		mu.Unlock()
		return models.ReconcileResult{}, nil
	}}
	s, _, _, _ := newTestScheduler(rec)
	s.titleIDs = []string{"g1"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.tick()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.GreaterOrEqual(t, rec.callCount(), 1)
}
