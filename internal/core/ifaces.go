package core

import (
	"time"

	"github.com/hushcall/hush/internal/domain"
)

// Frame is a raw binary payload.
type Frame []byte

// SessionID identifies one connected client (cookie token), not a participant.
type SessionID string

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	// TrySendMedia queues a raw media frame. Transports must keep media
	// distinguishable from control messages on the wire.
	TrySendMedia(Frame) error
	Close()
}

// RoomRegistry owns the room table and its lifecycle rules. All access goes
// through it by identifier; it never hands out references into the table.
type RoomRegistry interface {
	CreateRoom(displayName string) (domain.RoomID, domain.ParticipantID, string, error)
	RequestJoin(id domain.RoomID, displayName string) (domain.ParticipantID, domain.RoomID, string, error)
	EndCall(id domain.RoomID)
	CanStartCall(id domain.RoomID) bool
	Status(id domain.RoomID) string
	CleanupRoom(id domain.RoomID)

	// SweepExpired removes every room idle longer than the TTL at the given
	// instant and reports how many were evicted.
	SweepExpired(now time.Time) int
	// Clear empties the whole table. Shutdown path; idempotent and safe
	// to race with the sweep.
	Clear()
	Count() int
}
