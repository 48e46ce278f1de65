package realtime

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/LeylaVieira/merntasks-backend/services"
	"github.com/LeylaVieira/merntasks-backend/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/net/websocket"
)

type fakeMembershipChecker struct {
	allowed map[string]bool
}

func (f fakeMembershipChecker) CheckMembership(_ context.Context, projectID string, _ primitive.ObjectID) error {
	if f.allowed[projectID] {
		return nil
	}
	return services.ErrForbidden
}

func dialWS(t *testing.T, serverURL, token string) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(serverURL, "http") + "?token=" + token
	conn, err := websocket.Dial(wsURL, "", serverURL)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sessionToken(t *testing.T, name string) string {
	t.Helper()
	token, err := utils.GenerateToken(primitive.NewObjectID().Hex(), name+"@example.com", name)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func sendFrame(t *testing.T, conn *websocket.Conn, frame Frame) {
	t.Helper()
	if err := websocket.JSON.Send(conn, frame); err != nil {
		t.Fatalf("send frame: %v", err)
	}
}

func receiveFrame(t *testing.T, conn *websocket.Conn) (Frame, bool) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame Frame
	if err := websocket.JSON.Receive(conn, &frame); err != nil {
		return Frame{}, false
	}
	return frame, true
}

func TestWebsocketRelay(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	handler := NewHandler(NewHub(), fakeMembershipChecker{allowed: map[string]bool{"p1": true}})
	srv := httptest.NewServer(handler.WebsocketHandler())
	t.Cleanup(srv.Close)

	creator := dialWS(t, srv.URL, sessionToken(t, "alice"))
	collaborator := dialWS(t, srv.URL, sessionToken(t, "bob"))

	sendFrame(t, creator, Frame{Event: EventJoinProject, Project: "p1"})
	sendFrame(t, collaborator, Frame{Event: EventJoinProject, Project: "p1"})

	// Joins are processed asynchronously by the read loops.
	time.Sleep(100 * time.Millisecond)

	payload, _ := json.Marshal(map[string]string{"project": "p1", "name": "deploy"})
	sendFrame(t, creator, Frame{Event: EventTaskCreated, Task: payload})

	frame, ok := receiveFrame(t, collaborator)
	if !ok {
		t.Fatal("collaborator should receive the relayed event")
	}
	if frame.Event != EventTaskCreated {
		t.Fatalf("relayed event should keep its name, got %q", frame.Event)
	}

	var task struct {
		Project string `json:"project"`
		Name    string `json:"name"`
	}
	if err := json.Unmarshal(frame.Task, &task); err != nil {
		t.Fatalf("decode relayed payload: %v", err)
	}
	if task.Project != "p1" || task.Name != "deploy" {
		t.Fatalf("payload should be relayed verbatim, got %+v", task)
	}
}

func TestWebsocketSenderDoesNotEchoItself(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	handler := NewHandler(NewHub(), fakeMembershipChecker{allowed: map[string]bool{"p1": true}})
	srv := httptest.NewServer(handler.WebsocketHandler())
	t.Cleanup(srv.Close)

	creator := dialWS(t, srv.URL, sessionToken(t, "alice"))
	sendFrame(t, creator, Frame{Event: EventJoinProject, Project: "p1"})
	time.Sleep(100 * time.Millisecond)

	payload, _ := json.Marshal(map[string]string{"project": "p1"})
	sendFrame(t, creator, Frame{Event: EventTaskStateChanged, Task: payload})

	creator.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	var frame Frame
	if err := websocket.JSON.Receive(creator, &frame); err == nil {
		t.Fatalf("sender must not receive its own event, got %+v", frame)
	}
}

func TestWebsocketJoinDeniedForNonMember(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	handler := NewHandler(NewHub(), fakeMembershipChecker{allowed: map[string]bool{"p1": true}})
	srv := httptest.NewServer(handler.WebsocketHandler())
	t.Cleanup(srv.Close)

	member := dialWS(t, srv.URL, sessionToken(t, "alice"))
	intruder := dialWS(t, srv.URL, sessionToken(t, "mallory"))

	sendFrame(t, member, Frame{Event: EventJoinProject, Project: "p1"})
	// p2 is not allowed, so the join is ignored; neither is the intruder
	// in p1's room.
	sendFrame(t, intruder, Frame{Event: EventJoinProject, Project: "p2"})
	time.Sleep(100 * time.Millisecond)

	payload, _ := json.Marshal(map[string]string{"project": "p1"})
	sendFrame(t, member, Frame{Event: EventTaskUpdated, Task: payload})

	intruder.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	var frame Frame
	if err := websocket.JSON.Receive(intruder, &frame); err == nil {
		t.Fatalf("non-member must not receive project events, got %+v", frame)
	}
}

func TestWebsocketHandshakeRequiresToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	handler := NewHandler(NewHub(), fakeMembershipChecker{})
	srv := httptest.NewServer(handler.WebsocketHandler())
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	if _, err := websocket.Dial(wsURL, "", srv.URL); err == nil {
		t.Fatal("handshake without a token should be rejected")
	}
	if _, err := websocket.Dial(wsURL+"?token=garbage", "", srv.URL); err == nil {
		t.Fatal("handshake with an invalid token should be rejected")
	}
}
