// Package domain contains entity without logic, just meta-data
package domain

import "time"

type (
	RoomID        string
	ParticipantID string
)

const MaxParticipants = 10

// Room is one ephemeral call session. The registry is the only owner;
// nobody else holds a reference into the table.
type Room struct {
	ID           RoomID
	CreatorID    ParticipantID
	Participants []ParticipantID
	DisplayNames map[ParticipantID]string
	CreatedAt    time.Time
	LastActivity time.Time
	Ended        bool
}

func NewRoom(id RoomID, creator ParticipantID, displayName string, now time.Time) *Room {
	return &Room{
		ID:           id,
		CreatorID:    creator,
		Participants: []ParticipantID{creator},
		DisplayNames: map[ParticipantID]string{creator: displayName},
		CreatedAt:    now,
		LastActivity: now,
	}
}

func (r *Room) Full() bool {
	return len(r.Participants) >= MaxParticipants
}

// AddParticipant appends in join order and bumps activity.
// Capacity and ended checks belong to the registry, not here.
func (r *Room) AddParticipant(pid ParticipantID, displayName string, now time.Time) {
	r.Participants = append(r.Participants, pid)
	r.DisplayNames[pid] = displayName
	r.LastActivity = now
}

// Names returns display names in join order.
func (r *Room) Names() []string {
	out := make([]string, 0, len(r.Participants))
	for _, pid := range r.Participants {
		out = append(out, r.DisplayNames[pid])
	}
	return out
}
