// Package service wires the connection registry, lock table and dispatcher
// into the collaborative edit-lock coordinator. Every lock transition and the
// broadcast that announces it happen under one mutex, so room members always
// observe events in the order the table actually changed.
package service

import (
	"context"
	"errors"
	"sync"

	"github.com/BenZehavi423/smart-dashboard/internal/businesses/repository"
	"github.com/BenZehavi423/smart-dashboard/internal/collab/audit"
	"github.com/BenZehavi423/smart-dashboard/internal/collab/dispatcher"
	collaberrors "github.com/BenZehavi423/smart-dashboard/internal/collab/errors"
	"github.com/BenZehavi423/smart-dashboard/internal/collab/locktable"
	"github.com/BenZehavi423/smart-dashboard/internal/collab/registry"
	apperrors "github.com/BenZehavi423/smart-dashboard/pkg/errors"
	"github.com/BenZehavi423/smart-dashboard/pkg/logger"
	"github.com/BenZehavi423/smart-dashboard/pkg/model"
)

// Authorizer decides whether an identity may edit a resource. Implemented by
// the business repository; must return repository.ErrNotFound for resources
// that do not exist.
type Authorizer interface {
	CanEdit(ctx context.Context, resourceID, identity string) (bool, error)
}

type Coordinator struct {
	registry   *registry.Registry
	table      *locktable.Table
	dispatcher *dispatcher.Dispatcher
	authorizer Authorizer
	audit      *audit.Publisher
	log        *logger.Logger

	// mu serializes table transitions together with the enqueue of their
	// broadcasts. Enqueues never block, so the critical section stays short.
	mu sync.Mutex
}

func NewCoordinator(
	reg *registry.Registry,
	table *locktable.Table,
	disp *dispatcher.Dispatcher,
	authorizer Authorizer,
	auditPublisher *audit.Publisher,
	log *logger.Logger,
) *Coordinator {
	return &Coordinator{
		registry:   reg,
		table:      table,
		dispatcher: disp,
		authorizer: authorizer,
		audit:      auditPublisher,
		log:        log,
	}
}

// Connect registers a freshly authenticated connection and attaches its
// outbound sender. A duplicate id means the transport layer misbehaved; the
// stale record is reconciled away and replaced rather than left inconsistent.
func (c *Coordinator) Connect(connID, identity string, sender dispatcher.Sender) {
	if err := c.registry.Register(connID, identity); err != nil {
		if errors.Is(err, collaberrors.ErrDuplicateConnection) {
			c.log.Error("Duplicate connection id, replacing stale record",
				"connection_id", connID,
				"identity", identity,
			)
			c.OnDisconnect(connID)
			_ = c.registry.Register(connID, identity)
		}
	}
	c.dispatcher.Attach(connID, sender)

	c.log.Info("Connection established",
		"connection_id", connID,
		"identity", identity,
	)
}

// StartEditing joins the resource's room and attempts to acquire its edit
// lock. A denial is answered to the requester only; a fresh grant is
// broadcast to the whole room. The returned error, if any, is an *AppError
// for the transport layer to relay to the requester.
func (c *Coordinator) StartEditing(ctx context.Context, connID, resourceID string) error {
	identity, ok := c.registry.Identity(connID)
	if !ok {
		return apperrors.Internal("connection not registered", collaberrors.ErrUnknownConnection)
	}

	// Authorization happens before any lock-table access, outside the
	// transition mutex since it may hit the database.
	allowed, err := c.authorizer.CanEdit(ctx, resourceID, identity)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFoundWithID("Business", resourceID)
		}
		c.log.Error("Authorization check failed",
			"resource_id", resourceID,
			"identity", identity,
			"error", err,
		)
		return apperrors.Internal("Failed to check edit permission", err)
	}
	if !allowed {
		c.log.Warn("Unauthorized edit attempt",
			"resource_id", resourceID,
			"identity", identity,
		)
		return apperrors.Unauthorized("You are not permitted to edit this business")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.registry.Join(connID, resourceID); err != nil {
		return apperrors.Internal("connection not registered", err)
	}

	result := c.table.TryAcquire(resourceID, identity, connID)
	switch result.Outcome {
	case locktable.Granted:
		c.dispatcher.Broadcast(resourceID, model.ServerEvent{
			Event: model.EventResourceLocked,
			Data:  model.LockedPayload{Holder: identity},
		})
		c.audit.Publish(ctx, audit.Entry{
			ResourceID: resourceID,
			Action:     audit.ActionGranted,
			Holder:     identity,
		})
		c.log.Info("Edit lock granted",
			"resource_id", resourceID,
			"identity", identity,
			"connection_id", connID,
		)

	case locktable.AlreadyHeld:
		// Idempotent re-acquire (page refresh, second tab). Only the
		// requester needs to converge; the room saw the original grant.
		c.dispatcher.Notify(connID, model.ServerEvent{
			Event: model.EventResourceLocked,
			Data:  model.LockedPayload{Holder: result.Holder},
		})

	case locktable.Denied:
		c.dispatcher.Notify(connID, model.ServerEvent{
			Event: model.EventLockFailed,
			Data:  model.LockedPayload{Holder: result.Holder},
		})
		c.log.Info("Edit lock denied",
			"resource_id", resourceID,
			"identity", identity,
			"holder", result.Holder,
		)
	}

	return nil
}

// StopEditing leaves the resource's room and releases the lock if the caller
// holds it. Releasing a lock not held is a silent no-op.
func (c *Coordinator) StopEditing(ctx context.Context, connID, resourceID string) error {
	identity, ok := c.registry.Identity(connID)
	if !ok {
		return apperrors.Internal("connection not registered", collaberrors.ErrUnknownConnection)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Leave first so the departing editor does not receive its own unlocked
	// broadcast.
	c.registry.Leave(connID, resourceID)

	if c.table.Release(resourceID, identity) == locktable.Released {
		c.dispatcher.Broadcast(resourceID, model.ServerEvent{
			Event: model.EventResourceUnlocked,
			Data:  model.UnlockedPayload{},
		})
		c.audit.Publish(ctx, audit.Entry{
			ResourceID: resourceID,
			Action:     audit.ActionReleased,
			Holder:     identity,
		})
		c.log.Info("Edit lock released",
			"resource_id", resourceID,
			"identity", identity,
		)
	}

	return nil
}

// OnDisconnect is the disconnection reconciler. It runs exactly once per
// connection, purely on in-memory state, and must never be skipped: it is
// what guarantees no resource stays locked by a dead connection.
func (c *Coordinator) OnDisconnect(connID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dispatcher.Detach(connID)
	subscribed := c.registry.Forget(connID)
	released := c.table.ForceReleaseAll(connID)

	for _, resourceID := range released {
		c.dispatcher.Broadcast(resourceID, model.ServerEvent{
			Event: model.EventResourceUnlocked,
			Data:  model.UnlockedPayload{},
		})
		c.audit.Publish(context.Background(), audit.Entry{
			ResourceID: resourceID,
			Action:     audit.ActionForceReleased,
		})
	}

	if len(subscribed) > 0 || len(released) > 0 {
		c.log.Info("Connection reconciled",
			"connection_id", connID,
			"rooms_left", len(subscribed),
			"locks_released", len(released),
		)
	}
}
