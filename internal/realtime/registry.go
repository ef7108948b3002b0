package realtime

import (
	"sync"

	"github.com/printhub/realtime-api/pkg/logger"
)

// RoomRegistry tracks which live sessions are listening to which logical
// rooms. Membership is volatile: it is rebuilt from live connections after a
// restart and is never the source of truth for anything.
type RoomRegistry struct {
	mu       sync.RWMutex
	rooms    map[string]map[*Session]struct{}
	sessions map[*Session]map[string]struct{}
	logger   logger.Logger
}

// NewRoomRegistry creates an empty registry
func NewRoomRegistry(logger logger.Logger) *RoomRegistry {
	return &RoomRegistry{
		rooms:    make(map[string]map[*Session]struct{}),
		sessions: make(map[*Session]map[string]struct{}),
		logger:   logger,
	}
}

// Join adds a session to a room. Adding an already-present session is a no-op.
func (r *RoomRegistry) Join(roomID string, session *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[roomID]
	if !ok {
		members = make(map[*Session]struct{})
		r.rooms[roomID] = members
	}

	if _, present := members[session]; present {
		return
	}

	members[session] = struct{}{}

	joined, ok := r.sessions[session]
	if !ok {
		joined = make(map[string]struct{})
		r.sessions[session] = joined
	}
	joined[roomID] = struct{}{}

	r.logger.Debug("Session joined room", "sessionID", session.ID, "room", roomID)
}

// Leave removes a session from a room. Removing an absent session is a no-op.
func (r *RoomRegistry) Leave(roomID string, session *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.removeLocked(roomID, session)
}

// DropSession removes the session from every room it belongs to. Cost is
// proportional to the rooms the session joined, not to all rooms. Idempotent.
func (r *RoomRegistry) DropSession(session *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for roomID := range r.sessions[session] {
		r.removeLocked(roomID, session)
	}
}

// MembersOf returns a snapshot of the room's current members. Callers own the
// returned slice and never see live registry state.
func (r *RoomRegistry) MembersOf(roomID string) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.rooms[roomID]
	if len(members) == 0 {
		return nil
	}

	snapshot := make([]*Session, 0, len(members))
	for session := range members {
		snapshot = append(snapshot, session)
	}

	return snapshot
}

// Rooms returns the rooms a session currently belongs to
func (r *RoomRegistry) Rooms(session *Session) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	joined := r.sessions[session]
	if len(joined) == 0 {
		return nil
	}

	rooms := make([]string, 0, len(joined))
	for roomID := range joined {
		rooms = append(rooms, roomID)
	}

	return rooms
}

func (r *RoomRegistry) removeLocked(roomID string, session *Session) {
	members, ok := r.rooms[roomID]
	if !ok {
		return
	}

	if _, present := members[session]; !present {
		return
	}

	delete(members, session)
	if len(members) == 0 {
		delete(r.rooms, roomID)
	}

	joined := r.sessions[session]
	delete(joined, roomID)
	if len(joined) == 0 {
		delete(r.sessions, session)
	}

	r.logger.Debug("Session left room", "sessionID", session.ID, "room", roomID)
}
