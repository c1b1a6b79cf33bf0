package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"github.com/BenZehavi423/smart-dashboard/internal/auth"
	"github.com/BenZehavi423/smart-dashboard/internal/collab/service"
	"github.com/BenZehavi423/smart-dashboard/internal/collab/validator"
	"github.com/BenZehavi423/smart-dashboard/pkg/config"
	apperrors "github.com/BenZehavi423/smart-dashboard/pkg/errors"
	httputil "github.com/BenZehavi423/smart-dashboard/pkg/http"
	"github.com/BenZehavi423/smart-dashboard/pkg/logger"
	"github.com/BenZehavi423/smart-dashboard/pkg/model"
)

const sessionCookieName = "session_token"

type SocketHandler struct {
	coordinator *service.Coordinator
	resolver    auth.Resolver
	validator   *validator.EventValidator
	cfg         *config.Config
	log         *logger.Logger
	upgrader    websocket.Upgrader
}

func NewSocketHandler(coordinator *service.Coordinator, resolver auth.Resolver, cfg *config.Config) *SocketHandler {
	return &SocketHandler{
		coordinator: coordinator,
		resolver:    resolver,
		validator:   validator.NewEventValidator(),
		cfg:         cfg,
		log:         cfg.Log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The dashboard is served same-origin behind the gateway, which
			// enforces origin policy before traffic reaches this service.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *SocketHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/ws", h.Serve)
}

// Serve resolves the caller's identity, upgrades the connection and runs the
// read loop until the transport dies. Disconnect reconciliation always runs
// when the loop exits, whatever the reason.
func (h *SocketHandler) Serve(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity, err := h.resolveIdentity(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Serve", "error", writeErr)
		}
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		h.log.Warn("Websocket upgrade failed", "identity", identity, "error", err)
		return
	}

	connID := uuid.NewString()
	client := newWSClient(
		connID,
		conn,
		h.cfg.SendBufferSize,
		h.cfg.MaxMessageSize,
		h.cfg.WriteWait,
		h.cfg.PongWait,
		h.log,
	)

	h.coordinator.Connect(connID, identity, client)
	go client.writePump()

	ctx := r.Context()
	client.readPump(func(raw []byte) {
		h.handleMessage(ctx, connID, client, raw)
	})

	h.coordinator.OnDisconnect(connID)
	h.log.Info("Connection closed", "connection_id", connID, "identity", identity)
}

func (h *SocketHandler) resolveIdentity(r *http.Request) (string, error) {
	token := ""
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		token = cookie.Value
	}
	if token == "" {
		// Fallback for clients that cannot carry cookies across the upgrade.
		token = r.URL.Query().Get("token")
	}

	identity, err := h.resolver.Resolve(r.Context(), token)
	if err != nil {
		if errors.Is(err, auth.ErrNoToken) || errors.Is(err, auth.ErrSessionExpired) {
			return "", apperrors.Unauthorized("Valid session required")
		}
		h.log.Error("Identity resolution failed", "error", err)
		return "", apperrors.Internal("Failed to resolve session", err)
	}
	return identity, nil
}

// handleMessage decodes and dispatches one inbound frame. Malformed frames
// are protocol errors answered to this connection only; they never touch the
// lock table.
func (h *SocketHandler) handleMessage(ctx context.Context, connID string, client *wsClient, raw []byte) {
	var env model.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		h.replyError(client, apperrors.InvalidInput("Malformed event envelope"))
		return
	}

	switch env.Event {
	case model.EventStartEditing, model.EventStopEditing:
		var req model.EditRequest
		if err := json.Unmarshal(env.Data, &req); err != nil {
			h.replyError(client, apperrors.InvalidInput("Malformed event payload"))
			return
		}
		if err := h.validator.ValidateEditRequest(&req); err != nil {
			h.replyError(client, apperrors.InvalidInput(err.Error()))
			return
		}

		var err error
		if env.Event == model.EventStartEditing {
			err = h.coordinator.StartEditing(ctx, connID, req.ResourceID)
		} else {
			err = h.coordinator.StopEditing(ctx, connID, req.ResourceID)
		}
		if err != nil {
			h.replyError(client, err)
		}

	default:
		h.replyError(client, apperrors.InvalidInput("Unknown event: "+env.Event))
	}
}

func (h *SocketHandler) replyError(client *wsClient, err error) {
	appErr := apperrors.AsAppError(err)
	client.TrySend(model.ServerEvent{
		Event: model.EventError,
		Data: model.ErrorPayload{
			Code:    appErr.Code,
			Message: appErr.Message,
		},
	})
}
