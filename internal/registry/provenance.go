package registry

import (
	"log/slog"
	"sync"
)

// ProvenanceEvent describes a mutation made by someone other than the
// entry's creator.
type ProvenanceEvent struct {
	OwnerID   string `json:"ownerId" yaml:"ownerId"`
	Kind      string `json:"kind" yaml:"kind"`
	NamedID   string `json:"namedId,omitempty" yaml:"namedId,omitempty"`
	GameID    int    `json:"gameId" yaml:"gameId"`
	CreatorID string `json:"creatorId" yaml:"creatorId"`
	Operation string `json:"operation" yaml:"operation"`
}

// ProvenanceSink receives provenance events.
type ProvenanceSink interface {
	Record(ev ProvenanceEvent)
}

// SinkFunc adapts a function to ProvenanceSink.
type SinkFunc func(ev ProvenanceEvent)

func (f SinkFunc) Record(ev ProvenanceEvent) { f(ev) }

// LogSink writes provenance events as structured log records.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Record(ev ProvenanceEvent) {
	s.Logger.Info("Content modified by a bud other than its creator.",
		"owner", ev.OwnerID,
		"kind", ev.Kind,
		"named_id", ev.NamedID,
		"game_id", ev.GameID,
		"creator", ev.CreatorID,
		"operation", ev.Operation,
	)
}

// Collector keeps every event it receives.
type Collector struct {
	mu     sync.Mutex
	events []ProvenanceEvent
}

func (c *Collector) Record(ev ProvenanceEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

// Events returns the collected events in arrival order.
func (c *Collector) Events() []ProvenanceEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ProvenanceEvent, len(c.events))
	copy(out, c.events)
	return out
}

// Tee fans every event out to all sinks.
func Tee(sinks ...ProvenanceSink) ProvenanceSink {
	return SinkFunc(func(ev ProvenanceEvent) {
		for _, s := range sinks {
			s.Record(ev)
		}
	})
}
