// Package locktable is the authoritative resource -> holder mapping behind
// the collaborative edit lock. Ownership is keyed by connection, with the
// holder identity carried alongside, so a disconnect can release exactly the
// locks the departing connection owned even when one identity edits from
// several tabs.
package locktable

import "sync"

// AcquireOutcome classifies the result of TryAcquire.
type AcquireOutcome int

const (
	// Granted means the lock transitioned from unlocked to held by the caller.
	Granted AcquireOutcome = iota
	// AlreadyHeld means the caller's identity already holds the lock; the
	// table is unchanged and ownership stays with the original connection.
	AlreadyHeld
	// Denied means another identity holds the lock.
	Denied
)

// ReleaseOutcome classifies the result of Release.
type ReleaseOutcome int

const (
	// Released means the caller held the lock and it is now free.
	Released ReleaseOutcome = iota
	// NoOp means the caller did not hold the lock; nothing changed. Late or
	// duplicate releases during network jitter land here and are never errors.
	NoOp
)

// AcquireResult reports the outcome of an acquisition attempt. Holder names
// the current holder identity for AlreadyHeld and Denied.
type AcquireResult struct {
	Outcome AcquireOutcome
	Holder  string
}

type holder struct {
	identity string
	connID   string
}

type Table struct {
	mu    sync.Mutex
	locks map[string]holder
}

func New() *Table {
	return &Table{locks: make(map[string]holder)}
}

// TryAcquire attempts to take the edit lock on resourceID for the given
// identity editing from connID. Callers must have already authorized the
// identity against the resource; the table does not re-derive permissions.
func (t *Table) TryAcquire(resourceID, identity, connID string) AcquireResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	current, ok := t.locks[resourceID]
	if !ok {
		t.locks[resourceID] = holder{identity: identity, connID: connID}
		return AcquireResult{Outcome: Granted, Holder: identity}
	}
	if current.identity == identity {
		// Same identity re-requesting, e.g. a page refresh or a second tab.
		// Still theirs; ownership stays with the original connection.
		return AcquireResult{Outcome: AlreadyHeld, Holder: identity}
	}
	return AcquireResult{Outcome: Denied, Holder: current.identity}
}

// Release frees the lock if the given identity holds it.
func (t *Table) Release(resourceID, identity string) ReleaseOutcome {
	t.mu.Lock()
	defer t.mu.Unlock()

	current, ok := t.locks[resourceID]
	if !ok || current.identity != identity {
		return NoOp
	}
	delete(t.locks, resourceID)
	return Released
}

// ForceReleaseAll frees every lock owned by the departing connection and
// returns the affected resource ids for broadcast. Invoked only by the
// disconnection reconciler.
func (t *Table) ForceReleaseAll(connID string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var released []string
	for resourceID, h := range t.locks {
		if h.connID == connID {
			delete(t.locks, resourceID)
			released = append(released, resourceID)
		}
	}
	return released
}

// Holder returns the identity currently holding the lock, if any.
func (t *Table) Holder(resourceID string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, ok := t.locks[resourceID]
	if !ok {
		return "", false
	}
	return h.identity, true
}
