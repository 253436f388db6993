package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	logFilePrefix      = "inventory-"
	defaultMaxFileSize = 100 * 1024 * 1024
	pruneInterval      = 24 * time.Hour
)

// RotatingFile is an io.Writer that starts a new file every ISO week and
// whenever the current file would grow past maxSize. Files older than the
// retention period are removed once a day.
//
// Names are inventory-2025-W41.log, then inventory-2025-W41.1.log,
// inventory-2025-W41.2.log and so on within the same week.
type RotatingFile struct {
	dir       string
	retention time.Duration
	maxSize   int64
	now       func() time.Time

	mu   sync.Mutex
	file *os.File
	week string
	seq  int
	size int64

	pruning   bool
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// OpenRotatingFile creates dir if needed and opens the file of the current
// week, appending to it when it still has room. maxSize <= 0 uses 100MB.
func OpenRotatingFile(dir string, retentionWeeks int, maxSize int64) (*RotatingFile, error) {
	rf := newRotatingFile(dir, retentionWeeks, maxSize, time.Now)
	if err := rf.open(); err != nil {
		return nil, err
	}

	rf.pruning = true
	go rf.pruneLoop()
	return rf, nil
}

func newRotatingFile(dir string, retentionWeeks int, maxSize int64, now func() time.Time) *RotatingFile {
	if maxSize <= 0 {
		maxSize = defaultMaxFileSize
	}
	return &RotatingFile{
		dir:       dir,
		retention: time.Duration(retentionWeeks) * 7 * 24 * time.Hour,
		maxSize:   maxSize,
		now:       now,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

func (rf *RotatingFile) open() error {
	if err := os.MkdirAll(rf.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory %s: %w", rf.dir, err)
	}

	rf.mu.Lock()
	defer rf.mu.Unlock()

	week := weekKey(rf.now())
	seq, size := rf.lastFile(week)
	if size >= rf.maxSize {
		seq++
	}
	return rf.switchTo(week, seq)
}

// weekKey returns the ISO week in YYYY-Www form.
func weekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

func fileName(week string, seq int) string {
	if seq == 0 {
		return logFilePrefix + week + ".log"
	}
	return fmt.Sprintf("%s%s.%d.log", logFilePrefix, week, seq)
}

// lastFile finds the highest sequence number already on disk for week and
// the size of that file.
func (rf *RotatingFile) lastFile(week string) (int, int64) {
	matches, _ := filepath.Glob(filepath.Join(rf.dir, logFilePrefix+week+"*.log"))

	seq, size := 0, int64(0)
	for _, m := range matches {
		n, ok := parseSeq(filepath.Base(m), week)
		if !ok || n < seq {
			continue
		}
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		seq, size = n, info.Size()
	}
	return seq, size
}

func parseSeq(name, week string) (int, bool) {
	rest := strings.TrimPrefix(name, logFilePrefix+week)
	if rest == ".log" {
		return 0, true
	}
	if !strings.HasPrefix(rest, ".") || !strings.HasSuffix(rest, ".log") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(rest, "."), ".log"))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// switchTo closes the current file and opens week/seq. Caller holds mu.
func (rf *RotatingFile) switchTo(week string, seq int) error {
	if rf.file != nil {
		_ = rf.file.Close()
		rf.file = nil
	}

	path := filepath.Join(rf.dir, fileName(week, seq))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	rf.file, rf.week, rf.seq, rf.size = f, week, seq, size
	return nil
}

// Write appends p to the current file, rotating first when the week changed
// or p would not fit. A single record larger than maxSize still goes to a
// fresh file rather than being split.
func (rf *RotatingFile) Write(p []byte) (int, error) {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	week := weekKey(rf.now())
	switch {
	case week != rf.week:
		seq, size := rf.lastFile(week)
		if size >= rf.maxSize {
			seq++
		}
		if err := rf.switchTo(week, seq); err != nil {
			return 0, err
		}
	case rf.size > 0 && rf.size+int64(len(p)) > rf.maxSize:
		if err := rf.switchTo(week, rf.seq+1); err != nil {
			return 0, err
		}
	}

	if rf.file == nil {
		return 0, fmt.Errorf("log file is closed")
	}

	n, err := rf.file.Write(p)
	rf.size += int64(n)
	return n, err
}

// Prune removes log files last modified before the retention period. The
// file being written is kept.
func (rf *RotatingFile) Prune() (int, error) {
	entries, err := os.ReadDir(rf.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read log directory: %w", err)
	}

	rf.mu.Lock()
	current := fileName(rf.week, rf.seq)
	rf.mu.Unlock()

	cutoff := rf.now().Add(-rf.retention)
	removed := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == current || !strings.HasPrefix(name, logFilePrefix) || !strings.HasSuffix(name, ".log") {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(rf.dir, name)); err == nil {
			removed++
		}
	}
	return removed, nil
}

func (rf *RotatingFile) pruneLoop() {
	defer close(rf.done)

	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rf.stop:
			return
		case <-ticker.C:
			if n, err := rf.Prune(); err != nil {
				fmt.Fprintf(os.Stderr, "log prune failed: %v\n", err)
			} else if n > 0 {
				fmt.Fprintf(os.Stderr, "removed %d old log files\n", n)
			}
		}
	}
}

// Close stops the prune loop and closes the current file.
func (rf *RotatingFile) Close() error {
	var err error
	rf.closeOnce.Do(func() {
		close(rf.stop)
		if rf.pruning {
			select {
			case <-rf.done:
			case <-time.After(time.Second):
			}
		}

		rf.mu.Lock()
		defer rf.mu.Unlock()
		if rf.file != nil {
			err = rf.file.Close()
			rf.file = nil
		}
	})
	return err
}
