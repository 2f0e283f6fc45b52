package database

import (
	"errors"
	"sync"
	"time"

	"github.com/lawnchairsociety/gameconsole/internal/console"
	"github.com/lawnchairsociety/gameconsole/internal/logger"
)

// ErrWriterClosed is returned by Record after Close.
var ErrWriterClosed = errors.New("history writer closed")

// ErrQueueFull is returned when the writer cannot keep up. The entry is dropped.
var ErrQueueFull = errors.New("history queue full")

// pending is a queued entry, or a flush marker when flushed is set.
type pending struct {
	entry   console.Entry
	at      time.Time
	flushed chan struct{}
}

// Writer records history on a background goroutine so the host loop never
// waits on the database.
type Writer struct {
	db     *Database
	queue  chan pending
	done   chan struct{}
	mu     sync.RWMutex
	closed bool
}

// NewWriter starts a writer with room for buffer queued entries.
func NewWriter(db *Database, buffer int) *Writer {
	if buffer <= 0 {
		buffer = 1
	}
	w := &Writer{
		db:    db,
		queue: make(chan pending, buffer),
		done:  make(chan struct{}),
	}
	go w.run()
	return w
}

// Record implements console.Recorder. It never blocks.
func (w *Writer) Record(entry console.Entry) error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		return ErrWriterClosed
	}
	select {
	case w.queue <- pending{entry: entry, at: time.Now()}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Flush waits until every entry queued before the call is stored.
func (w *Writer) Flush() {
	w.mu.RLock()
	if w.closed {
		w.mu.RUnlock()
		<-w.done
		return
	}
	flushed := make(chan struct{})
	w.queue <- pending{flushed: flushed}
	w.mu.RUnlock()

	<-flushed
}

// Recent flushes the queue and returns up to limit stored entries.
func (w *Writer) Recent(limit int) ([]HistoryEntry, error) {
	w.Flush()
	return w.db.Recent(limit)
}

// RecentBySource flushes the queue and returns up to limit entries
// submitted by source.
func (w *Writer) RecentBySource(source string, limit int) ([]HistoryEntry, error) {
	w.Flush()
	return w.db.RecentBySource(source, limit)
}

// Prune flushes the queue and deletes entries older than cutoff.
func (w *Writer) Prune(cutoff time.Time) (int64, error) {
	w.Flush()
	return w.db.Prune(cutoff)
}

// Close flushes queued entries and stops the goroutine. It does not close
// the database.
func (w *Writer) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.queue)
	w.mu.Unlock()

	<-w.done
}

func (w *Writer) run() {
	defer close(w.done)
	for p := range w.queue {
		if p.flushed != nil {
			close(p.flushed)
			continue
		}
		if _, err := w.db.Append(p.entry, p.at); err != nil {
			logger.Warning("Failed to store console history", "input", p.entry.Input, "error", err)
		}
	}
}
