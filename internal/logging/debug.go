package logging

import "time"

const debugIdentifier = "DEBUG"

// Debug dispatches items regardless of the enable flags.
func (l *Logger) Debug(items ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dispatchLocked(items, deliverLog)
}

// DebugStart emits a START marker and the payload, and starts the debug
// timer. A second call before DebugStop restarts the timer.
func (l *Logger) DebugStart(items ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock()
	l.debugStart = now
	l.dispatchLocked([]any{DurationLog(time.Time{}, now, debugIdentifier)}, deliverLog)
	l.dispatchLocked(append([]any{"DEBUG A:"}, items...), deliverLog)
}

// DebugStop emits the payload followed by an END marker carrying the time
// since DebugStart. Without a running timer the marker is a START marker.
func (l *Logger) DebugStop(items ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dispatchLocked(append([]any{"DEBUG B:"}, items...), deliverLog)
	marker := DurationLog(l.debugStart, l.clock(), debugIdentifier)
	l.debugStart = time.Time{}
	l.dispatchLocked([]any{marker}, deliverLog)
}
