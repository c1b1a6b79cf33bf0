// Package registry tracks live websocket connections, the identity bound to
// each, and room membership per resource. It is one of the two pieces of
// shared mutable state in the coordinator; every read-modify-write happens
// under a single mutex.
package registry

import (
	"sync"

	collaberrors "github.com/BenZehavi423/smart-dashboard/internal/collab/errors"
)

type connection struct {
	identity  string
	resources map[string]struct{}
}

type Registry struct {
	mu    sync.Mutex
	conns map[string]*connection
	rooms map[string]map[string]struct{}
}

func New() *Registry {
	return &Registry{
		conns: make(map[string]*connection),
		rooms: make(map[string]map[string]struct{}),
	}
}

// Register creates a connection record. Returns ErrDuplicateConnection if the
// id is already live; callers should log it and Forget the stale record before
// retrying, rather than leaving the registry inconsistent.
func (r *Registry) Register(connID, identity string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[connID]; ok {
		return collaberrors.ErrDuplicateConnection
	}
	r.conns[connID] = &connection{
		identity:  identity,
		resources: make(map[string]struct{}),
	}
	return nil
}

// Join subscribes the connection to the resource's room. Joining twice is a
// no-op.
func (r *Registry) Join(connID, resourceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.conns[connID]
	if !ok {
		return collaberrors.ErrUnknownConnection
	}
	conn.resources[resourceID] = struct{}{}

	room := r.rooms[resourceID]
	if room == nil {
		room = make(map[string]struct{})
		r.rooms[resourceID] = room
	}
	room[connID] = struct{}{}
	return nil
}

// Leave unsubscribes the connection from the resource's room. Leaving a room
// never joined is a no-op.
func (r *Registry) Leave(connID, resourceID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if conn, ok := r.conns[connID]; ok {
		delete(conn.resources, resourceID)
	}
	if room, ok := r.rooms[resourceID]; ok {
		delete(room, connID)
	}
}

// Forget removes the connection record entirely and returns the resources it
// was subscribed to, for the disconnection reconciler to act on. Forgetting an
// unknown connection returns nil.
func (r *Registry) Forget(connID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.conns[connID]
	if !ok {
		return nil
	}
	delete(r.conns, connID)

	resources := make([]string, 0, len(conn.resources))
	for resourceID := range conn.resources {
		resources = append(resources, resourceID)
		if room, ok := r.rooms[resourceID]; ok {
			delete(room, connID)
		}
	}
	return resources
}

// Identity returns the identity bound to the connection.
func (r *Registry) Identity(connID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.conns[connID]
	if !ok {
		return "", false
	}
	return conn.identity, true
}

// Members returns the connection ids currently subscribed to the resource's
// room.
func (r *Registry) Members(resourceID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	room := r.rooms[resourceID]
	members := make([]string, 0, len(room))
	for connID := range room {
		members = append(members, connID)
	}
	return members
}
