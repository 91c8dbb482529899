package core

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hushcall/hush/internal/domain"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultRoomTTL is how long a room may sit idle before the sweep
	// evicts it, ended or not.
	DefaultRoomTTL = 30 * time.Minute
	// DefaultSweepPeriod is how often the background sweep wakes up.
	DefaultSweepPeriod = 5 * time.Minute
)

// registryImpl is a threadsafe in-memory room table. One coarse mutex covers
// every operation, foreground and sweep alike; rooms are few and operations
// are cheap.
type registryImpl struct {
	mu    sync.Mutex
	rooms map[domain.RoomID]*domain.Room
	ttl   time.Duration
	now   func() time.Time
}

func NewRegistry(ttl time.Duration) RoomRegistry {
	if ttl <= 0 {
		ttl = DefaultRoomTTL
	}
	return &registryImpl{
		rooms: make(map[domain.RoomID]*domain.Room),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (r *registryImpl) CreateRoom(displayName string) (domain.RoomID, domain.ParticipantID, string, error) {
	name, err := domain.CleanDisplayName(displayName)
	if err != nil {
		return "", "", "", err
	}

	id := domain.RoomID(newToken(roomTokenBytes))
	pid := domain.ParticipantID(newToken(participantTokenBytes))

	r.mu.Lock()
	r.rooms[id] = domain.NewRoom(id, pid, name, r.now())
	r.mu.Unlock()

	log.Info().Str("module", "core.registry").Str("room", string(id)).Msg("room created")
	return id, pid, fmt.Sprintf("Room created! Share this ID: %s", id), nil
}

func (r *registryImpl) RequestJoin(id domain.RoomID, displayName string) (domain.ParticipantID, domain.RoomID, string, error) {
	name, err := domain.CleanDisplayName(displayName)
	if err != nil {
		return "", "", "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[id]
	if !ok {
		// Never-issued and already-swept identifiers are indistinguishable
		// on purpose: no information leak about past rooms.
		return "", "", "", domain.ErrRoomNotFound
	}
	if room.Ended {
		return "", "", "", domain.ErrCallEnded
	}
	if room.Full() {
		return "", "", "", domain.ErrRoomFull
	}

	pid := domain.ParticipantID(newToken(participantTokenBytes))
	room.AddParticipant(pid, name, r.now())

	log.Info().Str("module", "core.registry").Str("room", string(id)).Int("count", len(room.Participants)).Msg("participant joined")
	return pid, id, fmt.Sprintf("Joined room %s", id), nil
}

// EndCall flips the room to its terminal state. Idempotent; the transition
// never reverses, so a join racing an end always loses once end commits.
func (r *registryImpl) EndCall(id domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	if !ok || room.Ended {
		return
	}
	room.Ended = true
	log.Info().Str("module", "core.registry").Str("room", string(id)).Msg("call ended permanently")
}

func (r *registryImpl) CanStartCall(id domain.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	return ok && !room.Ended
}

// Status is read-only; it does not bump LastActivity.
func (r *registryImpl) Status(id domain.RoomID) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[id]
	if !ok {
		return "Room not found"
	}
	if room.Ended {
		return "Call has ended permanently"
	}
	return fmt.Sprintf("Room Active | Participants: %d\nParticipants: %s",
		len(room.Participants), strings.Join(room.Names(), ", "))
}

func (r *registryImpl) CleanupRoom(id domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[id]; !ok {
		return
	}
	delete(r.rooms, id)
	log.Info().Str("module", "core.registry").Str("room", string(id)).Msg("room removed")
}

func (r *registryImpl) SweepExpired(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, room := range r.rooms {
		if now.Sub(room.LastActivity) <= r.ttl {
			continue
		}
		delete(r.rooms, id)
		evicted++
		log.Info().Str("module", "core.registry").Str("room", string(id)).Time("last_activity", room.LastActivity).Msg("stale room swept")
	}
	return evicted
}

func (r *registryImpl) Clear() {
	r.mu.Lock()
	n := len(r.rooms)
	r.rooms = make(map[domain.RoomID]*domain.Room)
	r.mu.Unlock()
	if n > 0 {
		log.Info().Str("module", "core.registry").Int("count", n).Msg("emergency clear")
	}
}

func (r *registryImpl) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}
