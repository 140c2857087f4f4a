package progress

import (
	"strings"
	"sync"
	"time"

	"conlog/internal/logging"
)

// watchdog is the handle for one stall-check goroutine.
type watchdog struct {
	gen  uint64
	stop chan struct{}
	once sync.Once
}

func (w *watchdog) cancel() {
	w.once.Do(func() { close(w.stop) })
}

func (p *Progress) startWatchdogLocked() {
	p.stopWatchdogLocked()
	p.gen++
	w := &watchdog{gen: p.gen, stop: make(chan struct{})}
	p.watchdog = w
	p.running.Add(1)
	go p.runWatchdog(w, p.tick)
}

// stopWatchdogLocked cancels the current watchdog. A tick that is already
// waiting for the lock sees the bumped generation and exits without drawing.
func (p *Progress) stopWatchdogLocked() {
	if p.watchdog == nil {
		return
	}
	p.watchdog.cancel()
	p.watchdog = nil
	p.gen++
}

func (p *Progress) runWatchdog(w *watchdog, interval time.Duration) {
	defer p.running.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			if !p.checkStall(w) {
				return
			}
		}
	}
}

// checkStall draws the stall marker when the session has been quiet for
// longer than stallAfter. It reports false once w no longer owns the session.
func (p *Progress) checkStall(w *watchdog) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.watchdog != w || p.gen != w.gen || p.session.Max <= 0 {
		return false
	}
	s := &p.session
	if s.Touched || s.LastTime.IsZero() {
		return true
	}
	now := p.clock()
	if now.Sub(s.LastTime) <= p.stallAfter {
		return true
	}

	p.LogRaw(stallMarker(p.randN))
	s.LastTime = now
	s.Touched = true
	p.ReportProgress(logging.ProgressEvent{
		Phase:   logging.ProgressStalled,
		Message: s.Message,
		Current: s.Current,
		Max:     s.Max,
		Percent: float64(s.Current) / float64(s.Max) * 100,
		Elapsed: now.Sub(s.StartTime),
		At:      now,
	})
	return true
}

// stallMarker renders " <0-4 dots><snack>🐢→ ".
func stallMarker(randN func(int) int) string {
	snack := "."
	if randN(100) >= 60 {
		snack = "🍕"
	}
	return " " + strings.Repeat(".", randN(5)) + snack + "🐢→ "
}

// wait blocks until every watchdog goroutine has exited.
func (p *Progress) wait() {
	p.running.Wait()
}
