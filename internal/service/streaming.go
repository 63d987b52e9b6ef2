package service

import (
	"sync"
	"time"

	"github.com/olegrjumin/threatlens/internal/checker"
	"github.com/olegrjumin/threatlens/internal/logging"
)

// Event types
const (
	EventResult  = "result"
	EventWarning = "warning"
	EventTracker = "tracker"
	EventStats   = "stats"
)

// StreamEvent is one notification pushed to subscribers
type StreamEvent struct {
	Type       string      `json:"type"`
	TargetKey  string      `json:"target_key,omitempty"`
	Generation uint64      `json:"generation,omitempty"`
	Data       interface{} `json:"data"`
	Timestamp  time.Time   `json:"timestamp"`
}

// Hub fans out engine events to subscribers. Each subscriber has a bounded
// buffer; events for a subscriber that is not keeping up are dropped.
type Hub struct {
	logger *logging.Logger
	buffer int

	mu     sync.RWMutex
	nextID int
	subs   map[int]chan StreamEvent
}

// NewHub creates a hub giving each subscriber buffer slots
func NewHub(buffer int, logger *logging.Logger) *Hub {
	if buffer <= 0 {
		buffer = 1
	}
	return &Hub{
		logger: logger,
		buffer: buffer,
		subs:   make(map[int]chan StreamEvent),
	}
}

// Subscribe registers a subscriber. The returned cancel func unregisters it
// and closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe() (<-chan StreamEvent, func()) {
	ch := make(chan StreamEvent, h.buffer)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Subscribers returns the number of active subscribers
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Publish delivers evt to every subscriber without blocking
func (h *Hub) Publish(evt StreamEvent) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, ch := range h.subs {
		select {
		case ch <- evt:
		default:
			h.logger.Warn("Dropping event for slow subscriber", "subscriber", id, "type", evt.Type)
		}
	}
}

// ResultUpdated publishes a result event
func (h *Hub) ResultUpdated(result checker.AnalysisResult) {
	h.Publish(StreamEvent{
		Type:       EventResult,
		TargetKey:  result.TargetKey,
		Generation: result.Generation,
		Data:       result,
	})
}

// WarningRaised publishes an immediate warning
func (h *Hub) WarningRaised(targetKey string, generation uint64, warning checker.Warning) {
	h.Publish(StreamEvent{
		Type:       EventWarning,
		TargetKey:  targetKey,
		Generation: generation,
		Data:       warning,
	})
}

// TrackerBlocked publishes a blocked tracker request
func (h *Hub) TrackerBlocked(targetKey string, decision checker.TrackerDecision) {
	h.Publish(StreamEvent{
		Type:      EventTracker,
		TargetKey: targetKey,
		Data:      decision,
	})
}

// PublishStats publishes a stats snapshot
func (h *Hub) PublishStats(stats checker.Stats) {
	h.Publish(StreamEvent{
		Type: EventStats,
		Data: stats,
	})
}
