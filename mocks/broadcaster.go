package mocks

import (
	"sync"

	"github.com/stretchr/testify/mock"
)

// Broadcaster is a testify mock of usecase.Broadcaster that also keeps a
// record of every delivered event.
type Broadcaster struct {
	mock.Mock

	mu     sync.Mutex
	events []Event
}

type Event struct {
	ConnIDs []string
	Name    string
	Payload any
}

func NewBroadcaster() *Broadcaster {
	b := &Broadcaster{}
	b.On("ToConnections", mock.Anything, mock.Anything, mock.Anything).Return().Maybe()
	b.On("ToAll", mock.Anything, mock.Anything).Return().Maybe()
	return b
}

func (that *Broadcaster) ToConnections(connIDs []string, event string, payload any) {
	that.Called(connIDs, event, payload)
	that.record(Event{ConnIDs: append([]string{}, connIDs...), Name: event, Payload: payload})
}

func (that *Broadcaster) ToAll(event string, payload any) {
	that.Called(event, payload)
	that.record(Event{Name: event, Payload: payload})
}

func (that *Broadcaster) record(event Event) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.events = append(that.events, event)
}

// Events returns the names of delivered events in order.
func (that *Broadcaster) Events() []string {
	that.mu.Lock()
	defer that.mu.Unlock()

	names := make([]string, 0, len(that.events))
	for _, event := range that.events {
		names = append(names, event.Name)
	}
	return names
}

// Last returns the most recent event with the given name.
func (that *Broadcaster) Last(name string) (Event, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for i := len(that.events) - 1; i >= 0; i-- {
		if that.events[i].Name == name {
			return that.events[i], true
		}
	}
	return Event{}, false
}

// Payloads returns the payloads of every event with the given name, oldest first.
func (that *Broadcaster) Payloads(name string) []any {
	that.mu.Lock()
	defer that.mu.Unlock()

	var payloads []any
	for _, event := range that.events {
		if event.Name == name {
			payloads = append(payloads, event.Payload)
		}
	}
	return payloads
}

func (that *Broadcaster) Reset() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.events = nil
}
