// Package notify surfaces a one-shot notice when another session grows the
// photo collection. Each connected session keeps a watcher with the last
// photo count it knows about; change events from other sessions are diffed
// against it.
package notify

import "sync"

// Watcher tracks the last known total photo count for one session
type Watcher struct {
	mu        sync.Mutex
	lastCount int64
}

// NewWatcher creates a watcher seeded with the current photo count
func NewWatcher(initial int64) *Watcher {
	return &Watcher{lastCount: initial}
}

// Observe compares an externally reported total against the remembered
// count. When the total grew, it returns the delta, reports true and
// remembers the new total. Shrinking or unchanged totals produce no notice
// and leave the remembered count alone.
func (w *Watcher) Observe(total int64) (delta int64, notify bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if total > w.lastCount {
		delta = total - w.lastCount
		w.lastCount = total
		return delta, true
	}
	return 0, false
}

// UpdatePhotoCount records a total written by this session itself, keeping
// the remembered count in sync without a round-trip event. This is what
// prevents self-notification.
func (w *Watcher) UpdatePhotoCount(total int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastCount = total
}

// LastCount returns the remembered total
func (w *Watcher) LastCount() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastCount
}
