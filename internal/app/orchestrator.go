package app

import (
	"github.com/rs/zerolog/log"

	"github.com/hushcall/hush/internal/app/sfu"
	"github.com/hushcall/hush/internal/core"
	"github.com/hushcall/hush/internal/domain"
)

// Orchestrator mediates between the adapters and the core: room admission,
// the all-or-nothing leave policy, toggle fan-out and frame substitution.
type Orchestrator struct {
	Registry core.RoomRegistry
	Sessions *SessionManager
	Policy   Policy
	Relays   *sfu.RelayManager
}

func (o *Orchestrator) CreateRoom(sid core.SessionID, displayName string) (domain.RoomID, domain.ParticipantID, string, error) {
	if _, ok := o.Sessions.RoomOf(sid); ok {
		o.Leave(sid)
	}
	roomID, pid, msg, err := o.Registry.CreateRoom(displayName)
	if err != nil {
		return "", "", "", err
	}
	o.Sessions.BindRoom(sid, pid, roomID)
	return roomID, pid, msg, nil
}

func (o *Orchestrator) Join(sid core.SessionID, roomID domain.RoomID, displayName string) (domain.ParticipantID, string, error) {
	if cur, ok := o.Sessions.RoomOf(sid); ok && cur != roomID {
		o.Leave(sid)
	}
	pid, _, msg, err := o.Registry.RequestJoin(roomID, displayName)
	if err != nil {
		return "", "", err
	}
	o.Sessions.BindRoom(sid, pid, roomID)
	o.OnMediaReady(sid)
	return pid, msg, nil
}

// Leave implements the all-or-nothing session policy: any departure ends the
// room permanently for everyone. Returns the room the client left, if any.
func (o *Orchestrator) Leave(sid core.SessionID) (domain.RoomID, bool) {
	roomID, ok := o.Sessions.RoomOf(sid)
	if !ok {
		return "", false
	}
	o.EndCall(roomID)
	o.cleanupMedia(sid)
	o.Sessions.ClearRoom(sid)
	log.Info().Str("module", "app.orchestrator").Str("sid", string(sid)).Str("room", string(roomID)).Msg("left room, call ended")
	return roomID, true
}

// EndCall flips the room terminal and resets the toggles of everyone in it.
func (o *Orchestrator) EndCall(roomID domain.RoomID) {
	o.Registry.EndCall(roomID)
	for _, snap := range o.Sessions.MembersOfRoom(roomID) {
		o.Sessions.Call(snap.SID).Reset()
	}
}

func (o *Orchestrator) Status(roomID domain.RoomID) string {
	return o.Registry.Status(roomID)
}

func (o *Orchestrator) CanStartCall(roomID domain.RoomID) bool {
	return o.Registry.CanStartCall(roomID)
}

// ToggleAudio flips the client's audio and mirrors it onto the RTP relay.
func (o *Orchestrator) ToggleAudio(sid core.SessionID) bool {
	enabled := o.Sessions.Call(sid).ToggleAudio()
	if o.Relays != nil {
		o.Relays.SetMuted(sid, !enabled)
	}
	return enabled
}

func (o *Orchestrator) ToggleVideo(sid core.SessionID) bool {
	return o.Sessions.Call(sid).ToggleVideo()
}

// OnFrame handles one raw video frame pushed over the signal socket: applies
// the sender's substitution, then fans out to room mates. Slow consumers go
// through the backpressure policy.
func (o *Orchestrator) OnFrame(sid core.SessionID, data core.Frame) {
	roomID, ok := o.Sessions.RoomOf(sid)
	if !ok {
		return
	}
	if !o.Registry.CanStartCall(roomID) {
		return
	}

	processed := core.Frame(o.Sessions.Call(sid).ApplyVideo(core.VideoFrame(data)))

	var dropped []core.SessionID
	for _, snap := range o.Sessions.MembersOfRoom(roomID) {
		if snap.SID == sid || snap.Signal == nil {
			continue
		}
		if err := snap.Signal.TrySendMedia(processed); err != nil {
			dropped = append(dropped, snap.SID)
		}
	}

	if o.Policy == nil {
		return
	}
	for _, slow := range dropped {
		switch o.Policy.OnBackPressure(slow) {
		case KickMember:
			o.Leave(slow)
		case MarkSlow, DropFrame, NoAction:
		}
	}
}

// OnDisconnect treats a dropped connection as a departure.
func (o *Orchestrator) OnDisconnect(sid core.SessionID) {
	o.Leave(sid)
	o.Sessions.Unbind(sid)
}
