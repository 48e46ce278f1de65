package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/LeylaVieira/merntasks-backend/logging"
	"github.com/LeylaVieira/merntasks-backend/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/net/websocket"
)

// MembershipChecker answers whether a user participates in a project.
// *services.ProjectService satisfies it.
type MembershipChecker interface {
	CheckMembership(ctx context.Context, projectID string, userID primitive.ObjectID) error
}

// Handler upgrades authenticated clients to websocket sessions and
// relays their project lifecycle events.
type Handler struct {
	Hub      *Hub
	Projects MembershipChecker
}

func NewHandler(hub *Hub, projects MembershipChecker) *Handler {
	return &Handler{Hub: hub, Projects: projects}
}

// bearerToken accepts the session token from the Authorization header
// or, for browser websocket clients that cannot set headers, a "token"
// query parameter.
func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// WebsocketHandler authenticates the handshake before upgrading; the
// realtime surface requires the same bearer token as the HTTP surface.
func (h *Handler) WebsocketHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := utils.ValidateToken(bearerToken(r))
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}
		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		websocket.Handler(func(conn *websocket.Conn) {
			h.serve(conn, userID)
		}).ServeHTTP(w, r)
	})
}

func (h *Handler) serve(conn *websocket.Conn, userID primitive.ObjectID) {
	session := NewSession(userID.Hex())

	// Writer goroutine: the read loop never blocks on slow delivery.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for frame := range session.Outbox() {
			if err := websocket.JSON.Send(conn, frame); err != nil {
				return
			}
		}
	}()

	defer func() {
		h.Hub.Unregister(session)
		session.Close()
		<-done
		conn.Close()
	}()

	for {
		var frame Frame
		if err := websocket.JSON.Receive(conn, &frame); err != nil {
			if !errors.Is(err, io.EOF) {
				logging.Logger.Warnf("Event ID: WS_READ_FAILED, Description: Websocket read failed for user %s: %v", userID.Hex(), err)
			}
			return
		}
		h.dispatch(conn, session, userID, frame)
	}
}

func (h *Handler) dispatch(conn *websocket.Conn, session *Session, userID primitive.ObjectID, frame Frame) {
	switch frame.Event {
	case EventJoinProject:
		// Joining a room requires actual project membership; the relay
		// itself does not re-validate individual events afterwards.
		if err := h.Projects.CheckMembership(conn.Request().Context(), frame.Project, userID); err != nil {
			logging.Logger.Warnf("Event ID: WS_JOIN_DENIED, Description: User %s denied joining project room %s: %v", userID.Hex(), frame.Project, err)
			return
		}
		h.Hub.Join(session, frame.Project)

	case EventTaskCreated, EventTaskDeleted, EventTaskUpdated, EventTaskStateChanged:
		projectID, err := taskProject(frame.Task)
		if err != nil {
			logging.Logger.Warnf("Event ID: WS_BAD_TASK_FRAME, Description: Discarding %s frame from user %s: %v", frame.Event, userID.Hex(), err)
			return
		}
		h.Hub.Broadcast(projectID, session, Frame{Event: frame.Event, Task: frame.Task})

	default:
		logging.Logger.Warnf("Event ID: WS_UNKNOWN_EVENT, Description: Unknown event %q from user %s", frame.Event, userID.Hex())
	}
}

// taskProject extracts the routing key from a task payload. The wire
// schema requires task.project to be the hex project id.
func taskProject(payload json.RawMessage) (string, error) {
	var task struct {
		Project string `json:"project"`
	}
	if err := json.Unmarshal(payload, &task); err != nil {
		return "", err
	}
	if task.Project == "" {
		return "", errors.New("task payload is missing the project id")
	}
	return task.Project, nil
}
