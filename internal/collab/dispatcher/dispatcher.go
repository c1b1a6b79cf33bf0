// Package dispatcher fans lock-state events out to the connections subscribed
// to a resource's room. Delivery is best-effort and never blocks: each Sender
// is expected to enqueue onto a buffered outbound channel and deal with its
// own slow-consumer policy.
package dispatcher

import (
	"sync"

	"github.com/BenZehavi423/smart-dashboard/pkg/logger"
	"github.com/BenZehavi423/smart-dashboard/pkg/model"
)

// Sender is one connection's outbound side. TrySend must not block; it
// reports false when the event could not be enqueued.
type Sender interface {
	TrySend(evt model.ServerEvent) bool
	Close() error
}

// MemberLister resolves a resource's room to its member connection ids. The
// connection registry satisfies this.
type MemberLister interface {
	Members(resourceID string) []string
}

type Dispatcher struct {
	members MemberLister
	log     *logger.Logger

	mu      sync.RWMutex
	senders map[string]Sender
}

func New(members MemberLister, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		members: members,
		log:     log,
		senders: make(map[string]Sender),
	}
}

// Attach binds a connection's outbound side. Replaces any previous sender for
// the same id.
func (d *Dispatcher) Attach(connID string, s Sender) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.senders[connID] = s
}

// Detach removes a connection's outbound side. Safe to call for unknown ids.
func (d *Dispatcher) Detach(connID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.senders, connID)
}

// Broadcast delivers the event to every connection in the resource's room.
func (d *Dispatcher) Broadcast(resourceID string, evt model.ServerEvent) {
	for _, connID := range d.members.Members(resourceID) {
		d.Notify(connID, evt)
	}
}

// Notify delivers the event to exactly one connection. A member whose sender
// is already gone, or whose buffer is full, just misses the event; the lock
// table has already moved on.
func (d *Dispatcher) Notify(connID string, evt model.ServerEvent) {
	d.mu.RLock()
	s, ok := d.senders[connID]
	d.mu.RUnlock()

	if !ok {
		return
	}
	if !s.TrySend(evt) {
		d.log.Warn("Dropped event for slow consumer",
			"connection_id", connID,
			"event", evt.Event,
		)
	}
}

// CloseAll closes every attached sender. Used during graceful shutdown to
// drive the normal disconnect path for all live connections.
func (d *Dispatcher) CloseAll() {
	d.mu.RLock()
	senders := make([]Sender, 0, len(d.senders))
	for _, s := range d.senders {
		senders = append(senders, s)
	}
	d.mu.RUnlock()

	for _, s := range senders {
		if err := s.Close(); err != nil {
			d.log.Warn("Failed to close connection sender", "error", err)
		}
	}
}
