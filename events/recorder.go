package events

import (
	"sync"
	"time"

	"contest-platform/logging"

	"github.com/google/uuid"
)

// Recorder is the in-process event log. Emit hands the record to a single
// dispatcher goroutine which appends it to the log and fans it out to
// subscribers; slow subscribers are skipped, never waited on.
type Recorder struct {
	mu          sync.Mutex
	records     []Record
	subscribers map[uint64]chan Record
	nextSubID   uint64
	incoming    chan Record
}

func NewRecorder() *Recorder {
	r := &Recorder{
		subscribers: make(map[uint64]chan Record),
		incoming:    make(chan Record, 256),
	}
	go r.dispatch()
	return r
}

func (r *Recorder) dispatch() {
	for record := range r.incoming {
		r.mu.Lock()
		r.records = append(r.records, record)
		for id, sub := range r.subscribers {
			select {
			case sub <- record:
			default:
				logging.Warn("Subscriber lagging, dropping record", logging.Events,
					"subscriber", id, "type", record.Type)
			}
		}
		r.mu.Unlock()
	}
}

func (r *Recorder) Emit(e Event) {
	record := Record{
		ID:        uuid.NewString(),
		EmittedAt: time.Now().UTC(),
		Type:      e.EventType(),
		Event:     e,
	}
	logging.Debug("Emitting record", logging.Events, "type", record.Type)
	r.incoming <- record
}

// Subscribe registers a buffered channel for new records. The returned cancel
// func removes the subscription and closes the channel.
func (r *Recorder) Subscribe(buffer int) (<-chan Record, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Record, buffer)
	r.mu.Lock()
	id := r.nextSubID
	r.nextSubID++
	r.subscribers[id] = ch
	r.mu.Unlock()

	cancel := func() {
		r.mu.Lock()
		if sub, ok := r.subscribers[id]; ok {
			delete(r.subscribers, id)
			close(sub)
		}
		r.mu.Unlock()
	}
	return ch, cancel
}

// Records returns a snapshot of everything emitted so far.
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}
