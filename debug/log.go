// Package debug is the sequencer's diagnostic logging facade: a small,
// always-safe-to-call API (Enable/Log/LogEvery) that every other package
// calls without checking whether logging is currently on. Internally it is
// backed by github.com/sirupsen/logrus, per SPEC_FULL.md's ambient stack —
// the teacher's original hand-rolled file writer is replaced but the call
// shape callers already depend on (sequencer/manager.go's debug.Log calls,
// now the scheduler's) is kept unchanged.
package debug

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu      sync.Mutex
	logger  *logrus.Logger
	file    *os.File
	enabled bool
)

// Enable starts debug logging to ~/.config/seq/debug.log.
func Enable() error {
	mu.Lock()
	defer mu.Unlock()

	if enabled {
		return nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	dir := filepath.Join(homeDir, ".config", "seq")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Join(dir, "debug.log"), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	l := logrus.New()
	l.SetOutput(f)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})
	l.SetLevel(logrus.DebugLevel)

	file = f
	logger = l
	enabled = true

	logger.WithField("category", "debug").Debug("=== Debug logging started ===")
	return nil
}

// Disable stops debug logging and closes the underlying file.
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		file.Close()
		file = nil
	}
	logger = nil
	enabled = false
}

// Log writes a categorized message to the debug log. A no-op when logging
// is disabled, so hot-path callers (the dispatch loop) never pay for
// formatting an unused message.
func Log(category, format string, args ...any) {
	mu.Lock()
	l := logger
	mu.Unlock()

	if l == nil {
		return
	}
	l.WithField("category", category).Debugf(format, args...)
}

// LogEvery logs only every n calls for a given (category, format) key, for
// high-frequency call sites like per-tick dispatch logging.
var (
	counterMu sync.Mutex
	counters  = make(map[string]int)
)

func LogEvery(n int, category, format string, args ...any) {
	if n <= 0 {
		n = 1
	}
	counterMu.Lock()
	key := category + format
	counters[key]++
	count := counters[key]
	counterMu.Unlock()

	if count%n == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}
