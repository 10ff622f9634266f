package watcher

import (
	"buildwatch/internal/models"
	"sync"
	"time"
)

// StatusTracker is the in-memory health record of the watcher, reset on restart.
type StatusTracker struct {
	mu           sync.RWMutex
	lastCheck    *time.Time
	lastSuccess  *time.Time
	lastError    *models.WatcherError
	checksCount  int
	updatesFound int
	perTitle     map[string]*models.TitleStatus
	titleIDs     []string
	interval     time.Duration
}

func NewStatusTracker() *StatusTracker {
	return &StatusTracker{perTitle: make(map[string]*models.TitleStatus)}
}

func (st *StatusTracker) Configure(titleIDs []string, interval time.Duration) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.titleIDs = append([]string(nil), titleIDs...)
	st.interval = interval
}

func (st *StatusTracker) title(id string) *models.TitleStatus {
	ts, ok := st.perTitle[id]
	if !ok {
		ts = &models.TitleStatus{}
		st.perTitle[id] = ts
	}
	return ts
}

func (st *StatusTracker) CycleStarted(at time.Time) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.lastCheck = &at
	st.checksCount++
}

func (st *StatusTracker) TitleChecked(id string, at time.Time) {
	st.mu.Lock()
	defer st.mu.Unlock()
	ts := st.title(id)
	ts.LastCheck = &at
	ts.ChecksCount++
}

func (st *StatusTracker) TitleSucceeded(id string, at time.Time, newVersion bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	ts := st.title(id)
	ts.LastSuccess = &at
	st.lastSuccess = &at
	if newVersion {
		ts.UpdatesFound++
		st.updatesFound++
	}
}

func (st *StatusTracker) TitleFailed(id string, at time.Time, err error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	we := &models.WatcherError{Time: at, Message: err.Error()}
	st.title(id).LastError = we
	st.lastError = we
}

// Snapshot returns a copy that is safe to encode while polling continues.
func (st *StatusTracker) Snapshot() models.WatcherStatus {
	st.mu.RLock()
	defer st.mu.RUnlock()

	out := models.WatcherStatus{
		LastCheck:    copyTime(st.lastCheck),
		LastSuccess:  copyTime(st.lastSuccess),
		ChecksCount:  st.checksCount,
		UpdatesFound: st.updatesFound,
		PerTitle:     make(map[string]*models.TitleStatus, len(st.perTitle)),
		PollInterval: st.interval.String(),
		TitleIDs:     append([]string{}, st.titleIDs...),
	}
	if st.lastError != nil {
		e := *st.lastError
		out.LastError = &e
	}
	for id, ts := range st.perTitle {
		c := *ts
		c.LastCheck = copyTime(ts.LastCheck)
		c.LastSuccess = copyTime(ts.LastSuccess)
		if ts.LastError != nil {
			e := *ts.LastError
			c.LastError = &e
		}
		out.PerTitle[id] = &c
	}
	return out
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
