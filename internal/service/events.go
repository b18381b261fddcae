package service

import "sync"

// EventType defines the type of event
type EventType string

const (
	EventNodeAdded       EventType = "node_added"
	EventNodeUpdated     EventType = "node_updated"
	EventNodeMoved       EventType = "node_moved"
	EventNodeDeleted     EventType = "node_deleted"
	EventEdgeAdded       EventType = "edge_added"
	EventEdgeUpdated     EventType = "edge_updated"
	EventEdgeDeleted     EventType = "edge_deleted"
	EventSettingsUpdated EventType = "settings_updated"
	EventGraphReplaced   EventType = "graph_replaced"
	EventTelemetryMerged EventType = "telemetry_merged"
	EventSolverStatus    EventType = "solver_status"
	EventConnection      EventType = "connection_state"
	EventOrderChanged    EventType = "order_changed"
)

// Mutation reports whether the event changes data the solver consumes.
// Telemetry, solver status and display-order events do not.
func (t EventType) Mutation() bool {
	switch t {
	case EventTelemetryMerged, EventSolverStatus, EventConnection, EventOrderChanged:
		return false
	}
	return true
}

// Event represents an event that occurred in the system
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload,omitempty"`
}

// EventBus allows publishing and subscribing to events
type EventBus struct {
	mu          sync.RWMutex
	subscribers []chan<- Event
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make([]chan<- Event, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (eb *EventBus) Subscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers = append(eb.subscribers, ch)
}

// Unsubscribe removes a subscriber. The channel is not closed.
func (eb *EventBus) Unsubscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	for i, sub := range eb.subscribers {
		if sub == ch {
			eb.subscribers = append(eb.subscribers[:i], eb.subscribers[i+1:]...)
			return
		}
	}
}

// Publish sends an event to all subscribers
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber is slow, skip
		}
	}
}
