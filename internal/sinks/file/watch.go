package file

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"conlog/internal/logging"
)

func (s *Sink) startWatcherLocked(dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	s.watcher = watcher
	s.done = make(chan struct{})
	s.wg.Add(1)
	go s.watch(watcher, s.done)
	return nil
}

// watch reopens the log file when it is removed or renamed underneath us.
func (s *Sink) watch(watcher *fsnotify.Watcher, done <-chan struct{}) {
	defer s.wg.Done()
	target := filepath.Clean(s.opts.Path)
	for {
		select {
		case <-done:
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := s.reopen(); err != nil {
				s.diag.Warn("log file reopen failed", logging.Error(err))
				continue
			}
			s.diag.Info("log file reopened", logging.String("path", target))

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.diag.Warn("log watcher error", logging.Error(err))
		}
	}
}

func (s *Sink) reopen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return nil
	}
	file, err := openLog(s.opts.Path)
	if err != nil {
		return err
	}
	if s.file != nil {
		_ = s.file.Close()
	}
	s.file = file
	return nil
}
