package realtime

import (
	"encoding/json"
	"sync"

	"github.com/LeylaVieira/merntasks-backend/logging"
)

// Realtime event names. The server relays task events under the same
// name the submitting client used.
const (
	EventJoinProject      = "join-project"
	EventTaskCreated      = "task-created"
	EventTaskDeleted      = "task-deleted"
	EventTaskUpdated      = "task-updated"
	EventTaskStateChanged = "task-state-changed"
)

// Frame is the wire format for both directions. Project carries the
// room id for join-project; task events carry the task payload whose
// "project" field is always the hex project id.
type Frame struct {
	Event   string          `json:"event"`
	Project string          `json:"project,omitempty"`
	Task    json.RawMessage `json:"task,omitempty"`
}

const outboxSize = 32

// Session is one connected client. Frames queued for delivery go
// through a buffered outbox drained by the connection's writer, so a
// slow subscriber never stalls a broadcaster; when the outbox is full
// the frame is dropped (delivery is best effort).
type Session struct {
	UserID string

	mu     sync.Mutex
	closed bool
	outbox chan Frame
}

func NewSession(userID string) *Session {
	return &Session{
		UserID: userID,
		outbox: make(chan Frame, outboxSize),
	}
}

// Outbox is drained by the connection writer.
func (s *Session) Outbox() <-chan Frame {
	return s.outbox
}

// Close stops delivery to this session. A broadcast may still hold a
// room snapshot containing this session, so the closed flag and the
// channel close share the mutex deliver takes.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.outbox)
}

func (s *Session) deliver(frame Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.outbox <- frame:
	default:
		logging.Logger.Warnf("Event ID: RELAY_FRAME_DROPPED, Description: Dropped %s frame for a slow subscriber (user %s)", frame.Event, s.UserID)
	}
}

// Hub is the process-wide registry of sessions and the project rooms
// they joined. Join, Leave, Broadcast and Unregister are the only
// mutators of room membership.
type Hub struct {
	mu          sync.Mutex
	rooms       map[string]map[*Session]struct{}
	memberships map[*Session]map[string]struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms:       make(map[string]map[*Session]struct{}),
		memberships: make(map[*Session]map[string]struct{}),
	}
}

// Join subscribes the session to a project room. A session may be in
// any number of rooms at once.
func (h *Hub) Join(session *Session, projectID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[projectID]
	if !ok {
		room = make(map[*Session]struct{})
		h.rooms[projectID] = room
	}
	room[session] = struct{}{}

	joined, ok := h.memberships[session]
	if !ok {
		joined = make(map[string]struct{})
		h.memberships[session] = joined
	}
	joined[projectID] = struct{}{}
}

// Leave unsubscribes the session from one room.
func (h *Hub) Leave(session *Session, projectID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(session, projectID)
}

func (h *Hub) leaveLocked(session *Session, projectID string) {
	if room, ok := h.rooms[projectID]; ok {
		delete(room, session)
		if len(room) == 0 {
			delete(h.rooms, projectID)
		}
	}
	if joined, ok := h.memberships[session]; ok {
		delete(joined, projectID)
		if len(joined) == 0 {
			delete(h.memberships, session)
		}
	}
}

// Unregister removes a disconnected session from every room it joined.
func (h *Hub) Unregister(session *Session) {
	h.mu.Lock()
	for projectID := range h.memberships[session] {
		h.leaveLocked(session, projectID)
	}
	delete(h.memberships, session)
	h.mu.Unlock()
}

// Broadcast queues a frame for every session in the project's room
// except the sender. Sessions outside the room never see it.
func (h *Hub) Broadcast(projectID string, sender *Session, frame Frame) {
	h.mu.Lock()
	recipients := make([]*Session, 0, len(h.rooms[projectID]))
	for session := range h.rooms[projectID] {
		if session != sender {
			recipients = append(recipients, session)
		}
	}
	h.mu.Unlock()

	for _, session := range recipients {
		session.deliver(frame)
	}
}
