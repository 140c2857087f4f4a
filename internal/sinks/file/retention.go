package file

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"conlog/internal/logging"
)

// retentionTarget specifies a directory and filename pattern to prune.
type retentionTarget struct {
	Dir     string
	Pattern string
	Exclude []string
}

// pruneOldLogs removes files matching target that were last modified before
// now minus retentionDays. A retentionDays value of 0 disables pruning. It
// returns the number of files removed.
func pruneOldLogs(diag *slog.Logger, now time.Time, retentionDays int, target retentionTarget) int {
	if retentionDays <= 0 {
		return 0
	}
	dir := strings.TrimSpace(target.Dir)
	if dir == "" {
		return 0
	}
	cutoff := now.AddDate(0, 0, -retentionDays)

	exclusions := make(map[string]struct{}, len(target.Exclude))
	for _, path := range target.Exclude {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			if abs, err := filepath.Abs(trimmed); err == nil {
				exclusions[abs] = struct{}{}
			}
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if pat := strings.TrimSpace(target.Pattern); pat != "" {
			matched, err := filepath.Match(pat, name)
			if err != nil || !matched {
				continue
			}
		}
		fullPath := filepath.Join(dir, name)
		if absPath, err := filepath.Abs(fullPath); err == nil {
			fullPath = absPath
		}
		if _, skip := exclusions[fullPath]; skip {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(fullPath); err != nil {
			diag.Warn("log retention remove failed; file remains",
				logging.String("path", fullPath),
				logging.Error(err),
			)
			continue
		}
		removed++
		diag.Info("log pruned", logging.String("path", fullPath))
	}
	return removed
}

// retentionPattern matches the log file and its rotated siblings:
// "conlog.log" yields "conlog*".
func retentionPattern(path string) string {
	base := filepath.Base(path)
	if ext := filepath.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return base + "*"
}
