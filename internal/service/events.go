package service

import "github.com/jk278/lifetracker/models"

// EventKind labels a notification.
type EventKind string

const (
	// EventStatusChanged fires at most once per sync state transition.
	EventStatusChanged EventKind = "status_changed"
	// EventDataChanged fires when record data changed as a result of a
	// round or a resolution.
	EventDataChanged EventKind = "data_changed"
)

const (
	ReasonSyncCompleted     = "sync_completed"
	ReasonConflictsResolved = "conflicts_resolved"
)

// Event is one notification. State is set for status events, Reason for
// data events.
type Event struct {
	Kind   EventKind        `json:"kind"`
	State  models.SyncState `json:"state,omitempty"`
	Reason string           `json:"reason,omitempty"`
}

// Notifier fans sync events out to one consumer channel. Sends never block:
// when the buffer is full the event is dropped, and consumers reconcile by
// polling Status.
type Notifier struct {
	ch chan Event
}

func NewNotifier(buffer int) *Notifier {
	if buffer <= 0 {
		buffer = 16
	}
	return &Notifier{ch: make(chan Event, buffer)}
}

func (n *Notifier) Events() <-chan Event {
	return n.ch
}

func (n *Notifier) statusChanged(state models.SyncState) {
	n.publish(Event{Kind: EventStatusChanged, State: state})
}

func (n *Notifier) dataChanged(reason string) {
	n.publish(Event{Kind: EventDataChanged, Reason: reason})
}

func (n *Notifier) publish(e Event) {
	select {
	case n.ch <- e:
	default:
	}
}
