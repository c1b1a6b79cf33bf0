package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"github.com/BenZehavi423/smart-dashboard/internal/auth"
	"github.com/BenZehavi423/smart-dashboard/internal/collab/dispatcher"
	"github.com/BenZehavi423/smart-dashboard/internal/collab/locktable"
	"github.com/BenZehavi423/smart-dashboard/internal/collab/registry"
	"github.com/BenZehavi423/smart-dashboard/internal/collab/service"
	"github.com/BenZehavi423/smart-dashboard/pkg/config"
	"github.com/BenZehavi423/smart-dashboard/pkg/logger"
	"github.com/BenZehavi423/smart-dashboard/pkg/model"
)

type allowListAuthorizer struct {
	editors map[string]bool
}

func (a *allowListAuthorizer) CanEdit(_ context.Context, _, identity string) (bool, error) {
	return a.editors[identity], nil
}

type wireEvent struct {
	Event string `json:"event"`
	Data  struct {
		Holder  string `json:"holder"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"data"`
}

func newTestServer(t *testing.T, authorizer service.Authorizer) *httptest.Server {
	t.Helper()

	log := logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard, Service: "test"})
	cfg := &config.Config{
		SendBufferSize: 8,
		MaxMessageSize: 4096,
		WriteWait:      time.Second,
		PongWait:       time.Minute,
		Log:            log,
	}

	reg := registry.New()
	table := locktable.New()
	disp := dispatcher.New(reg, log)
	coordinator := service.NewCoordinator(reg, table, disp, authorizer, nil, log)

	resolver := auth.NewMemoryResolver()
	resolver.Put("tok-owner", "owner")
	resolver.Put("tok-editor", "editor")
	resolver.Put("tok-intruder", "intruder")

	router := httprouter.New()
	NewSocketHandler(coordinator, resolver, cfg).RegisterRoutes(router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server, token string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	header := http.Header{}
	if token != "" {
		header.Set("Cookie", sessionCookieName+"="+token)
	}

	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial failed: %v (resp=%v)", err, resp)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, event, resourceID string) {
	t.Helper()

	env := model.Envelope{
		Event: event,
		Data:  json.RawMessage(`{"resource_id":"` + resourceID + `"}`),
	}
	if err := conn.WriteJSON(env); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func readEvent(t *testing.T, conn *websocket.Conn) wireEvent {
	t.Helper()

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var evt wireEvent
	if err := conn.ReadJSON(&evt); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	return evt
}

func TestSocket_RejectsWithoutSession(t *testing.T) {
	server := newTestServer(t, &allowListAuthorizer{editors: map[string]bool{}})

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected the handshake to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", resp)
	}
	resp.Body.Close()
}

func TestSocket_LockLifecycle(t *testing.T) {
	server := newTestServer(t, &allowListAuthorizer{
		editors: map[string]bool{"owner": true, "editor": true},
	})

	ownerConn := dial(t, server, "tok-owner")
	editorConn := dial(t, server, "tok-editor")

	// Owner acquires on an empty table; the room hears resource_locked.
	send(t, ownerConn, model.EventStartEditing, "biz1")
	evt := readEvent(t, ownerConn)
	if evt.Event != model.EventResourceLocked || evt.Data.Holder != "owner" {
		t.Fatalf("expected resource_locked{owner}, got %+v", evt)
	}

	// Editor is denied and told who holds the lock.
	send(t, editorConn, model.EventStartEditing, "biz1")
	evt = readEvent(t, editorConn)
	if evt.Event != model.EventLockFailed || evt.Data.Holder != "owner" {
		t.Fatalf("expected lock_failed{owner}, got %+v", evt)
	}

	// Owner releases; the editor, still in the room, hears resource_unlocked.
	send(t, ownerConn, model.EventStopEditing, "biz1")
	evt = readEvent(t, editorConn)
	if evt.Event != model.EventResourceUnlocked {
		t.Fatalf("expected resource_unlocked, got %+v", evt)
	}

	// Editor can now take the lock.
	send(t, editorConn, model.EventStartEditing, "biz1")
	evt = readEvent(t, editorConn)
	if evt.Event != model.EventResourceLocked || evt.Data.Holder != "editor" {
		t.Fatalf("expected resource_locked{editor}, got %+v", evt)
	}
}

func TestSocket_DisconnectReleasesLock(t *testing.T) {
	server := newTestServer(t, &allowListAuthorizer{
		editors: map[string]bool{"owner": true, "editor": true},
	})

	ownerConn := dial(t, server, "tok-owner")
	editorConn := dial(t, server, "tok-editor")

	send(t, ownerConn, model.EventStartEditing, "biz1")
	if evt := readEvent(t, ownerConn); evt.Event != model.EventResourceLocked {
		t.Fatalf("expected resource_locked, got %+v", evt)
	}

	send(t, editorConn, model.EventStartEditing, "biz1")
	if evt := readEvent(t, editorConn); evt.Event != model.EventLockFailed {
		t.Fatalf("expected lock_failed, got %+v", evt)
	}

	// Owner vanishes without stop_editing; reconciliation frees the lock and
	// the room is told.
	_ = ownerConn.Close()
	evt := readEvent(t, editorConn)
	if evt.Event != model.EventResourceUnlocked {
		t.Fatalf("expected resource_unlocked after disconnect, got %+v", evt)
	}
}

func TestSocket_UnauthorizedIdentity(t *testing.T) {
	server := newTestServer(t, &allowListAuthorizer{
		editors: map[string]bool{"owner": true},
	})

	conn := dial(t, server, "tok-intruder")
	send(t, conn, model.EventStartEditing, "biz1")

	evt := readEvent(t, conn)
	if evt.Event != model.EventError || evt.Data.Code != "UNAUTHORIZED" {
		t.Fatalf("expected error{UNAUTHORIZED}, got %+v", evt)
	}
}

func TestSocket_ProtocolErrors(t *testing.T) {
	server := newTestServer(t, &allowListAuthorizer{
		editors: map[string]bool{"owner": true},
	})

	conn := dial(t, server, "tok-owner")

	// Malformed JSON.
	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	evt := readEvent(t, conn)
	if evt.Event != model.EventError || evt.Data.Code != "INVALID_INPUT" {
		t.Fatalf("expected error{INVALID_INPUT}, got %+v", evt)
	}

	// Missing resource_id.
	if err := conn.WriteJSON(model.Envelope{
		Event: model.EventStartEditing,
		Data:  json.RawMessage(`{}`),
	}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	evt = readEvent(t, conn)
	if evt.Event != model.EventError || evt.Data.Code != "INVALID_INPUT" {
		t.Fatalf("expected error{INVALID_INPUT}, got %+v", evt)
	}

	// Unknown event name.
	if err := conn.WriteJSON(model.Envelope{
		Event: "dance",
		Data:  json.RawMessage(`{}`),
	}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	evt = readEvent(t, conn)
	if evt.Event != model.EventError {
		t.Fatalf("expected error event, got %+v", evt)
	}
}
