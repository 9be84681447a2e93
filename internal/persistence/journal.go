package persistence

import (
	"log/slog"

	"github.com/talgya/almanac/internal/herald"
	"github.com/talgya/almanac/internal/metrics"
)

// DefaultJournalBuffer is the number of transitions queued before Record drops.
const DefaultJournalBuffer = 256

// Journal writes transitions to the database off the engine goroutine.
// Record never blocks; when the queue is full the transition is dropped.
type Journal struct {
	db      *DB
	queue   chan herald.Transition
	done    chan struct{}
	metrics *metrics.Metrics
}

// NewJournal starts a Journal writing to db.
func NewJournal(db *DB, buffer int, m *metrics.Metrics) *Journal {
	if buffer <= 0 {
		buffer = DefaultJournalBuffer
	}
	j := &Journal{
		db:      db,
		queue:   make(chan herald.Transition, buffer),
		done:    make(chan struct{}),
		metrics: m,
	}
	go j.run()
	return j
}

// Record queues t for writing.
func (j *Journal) Record(t herald.Transition) {
	select {
	case j.queue <- t:
	default:
		j.metrics.Dropped("journal")
		slog.Warn("journal queue full, dropping transition", "category", t.Category, "key", t.Key)
	}
}

// Close flushes queued transitions and stops the writer. Record must not be
// called after Close.
func (j *Journal) Close() {
	close(j.queue)
	<-j.done
}

func (j *Journal) run() {
	defer close(j.done)
	for t := range j.queue {
		batch := []herald.Transition{t}
	drain:
		for {
			select {
			case next, ok := <-j.queue:
				if !ok {
					break drain
				}
				batch = append(batch, next)
			default:
				break drain
			}
		}
		if err := j.db.SaveBroadcasts(batch); err != nil {
			slog.Error("journal write failed", "count", len(batch), "error", err)
		}
	}
}
