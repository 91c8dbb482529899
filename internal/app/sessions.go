package app

import (
	"context"
	"sync"

	"github.com/hushcall/hush/internal/core"
	"github.com/hushcall/hush/internal/domain"
	"github.com/rs/zerolog/log"
)

// sessionEntry is everything the server tracks for one connected client:
// its capability token, room binding, mute toggles and transports.
type sessionEntry struct {
	ParticipantID domain.ParticipantID
	RoomID        domain.RoomID
	Call          *core.CallSession
	Signal        core.SignalConnection
	Media         core.MediaConnection
	Cancel        context.CancelFunc
}

type SessionManager struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*sessionEntry
}

func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[core.SessionID]*sessionEntry)}
}

func (m *SessionManager) entryLocked(sid core.SessionID) *sessionEntry {
	e, ok := m.sessions[sid]
	if !ok {
		e = &sessionEntry{Call: core.NewCallSession()}
		m.sessions[sid] = e
	}
	return e
}

func (m *SessionManager) BindSignal(sid core.SessionID, conn core.SignalConnection, cancel context.CancelFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.entryLocked(sid)
	e.Signal = conn
	e.Cancel = cancel
	log.Info().Str("module", "app.sessions").Str("sid", string(sid)).Msg("bound signal")
}

func (m *SessionManager) BindRoom(sid core.SessionID, pid domain.ParticipantID, roomID domain.RoomID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.entryLocked(sid)
	e.ParticipantID = pid
	e.RoomID = roomID
	log.Info().Str("module", "app.sessions").Str("sid", string(sid)).Str("room", string(roomID)).Msg("bound room")
}

func (m *SessionManager) ClearRoom(sid core.SessionID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.sessions[sid]; ok {
		e.RoomID = ""
		e.ParticipantID = ""
	}
}

func (m *SessionManager) RoomOf(sid core.SessionID) (domain.RoomID, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.sessions[sid]
	if !ok || e.RoomID == "" {
		return "", false
	}
	return e.RoomID, true
}

// Call returns the client's toggle state, creating it on first use.
func (m *SessionManager) Call(sid core.SessionID) *core.CallSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entryLocked(sid).Call
}

func (m *SessionManager) Signal(sid core.SessionID) (core.SignalConnection, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.sessions[sid]
	if !ok || e.Signal == nil {
		return nil, false
	}
	return e.Signal, true
}

func (m *SessionManager) UpdateMedia(sid core.SessionID, mc core.MediaConnection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entryLocked(sid).Media = mc
}

func (m *SessionManager) Media(sid core.SessionID) core.MediaConnection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.sessions[sid]; ok {
		return e.Media
	}
	return nil
}

func (m *SessionManager) Unbind(sid core.SessionID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sid)
	log.Info().Str("module", "app.sessions").Str("sid", string(sid)).Msg("unbind session")
}

type memberSnap struct {
	SID    core.SessionID
	Signal core.SignalConnection
	Media  core.MediaConnection
}

// MembersOfRoom snapshots every session currently bound to the room.
func (m *SessionManager) MembersOfRoom(roomID domain.RoomID) []memberSnap {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]memberSnap, 0, len(m.sessions))
	for sid, e := range m.sessions {
		if e.RoomID == roomID {
			out = append(out, memberSnap{SID: sid, Signal: e.Signal, Media: e.Media})
		}
	}
	return out
}

func (m *SessionManager) Cancel(sid core.SessionID) bool {
	m.mu.RLock()
	e, ok := m.sessions[sid]
	m.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	return true
}
