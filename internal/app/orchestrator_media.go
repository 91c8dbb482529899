package app

import (
	"context"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/hushcall/hush/internal/core"
)

func (o *Orchestrator) BindMediaHandlers(ctx context.Context, mc core.MediaConnection, sid core.SessionID) {
	mc.OnTrack(func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) {
		o.OnTrack(ctx, sid, track)
	})
	mc.OnClosed(func() { o.cleanupMedia(sid) })
}

// OnTrack is called when a new remote media track appears for a given session.
func (o *Orchestrator) OnTrack(ctx context.Context, sid core.SessionID, track *webrtc.TrackRemote) {
	if o.Relays == nil {
		return
	}
	roomID, ok := o.Sessions.RoomOf(sid)
	if !ok || !o.Registry.CanStartCall(roomID) {
		log.Info().Str("module", "sfu").Str("sid", string(sid)).Msg("OnTrack: no live room for sid")
		return
	}
	if o.Sessions.Media(sid) == nil {
		return
	}
	o.Relays.StartRelay(ctx, sid, track)

	// Mirror the current audio toggle onto the fresh relay.
	o.Relays.SetMuted(sid, !o.Sessions.Call(sid).AudioEnabled())

	// Subscribe all existing members in the room to this speaker.
	for _, snap := range o.Sessions.MembersOfRoom(roomID) {
		if snap.SID == sid || snap.Media == nil {
			continue
		}
		o.Relays.Subscribe(sid, snap.SID, snap.Media, track)
	}
}

// OnMediaReady is called once the offer/answer handshake is done. It
// subscribes this session to every speaker already publishing in the room.
func (o *Orchestrator) OnMediaReady(sid core.SessionID) {
	if o.Relays == nil {
		return
	}
	roomID, ok := o.Sessions.RoomOf(sid)
	if !ok {
		return
	}
	mc := o.Sessions.Media(sid)
	if mc == nil {
		return
	}

	for _, snap := range o.Sessions.MembersOfRoom(roomID) {
		if snap.SID == sid {
			continue
		}
		src, ok := o.Relays.SrcTrack(snap.SID)
		if !ok {
			continue
		}
		o.Relays.Subscribe(snap.SID, sid, mc, src)
	}
}

func (o *Orchestrator) cleanupMedia(sid core.SessionID) {
	if o.Relays != nil {
		o.Relays.StopRelay(sid)
		if roomID, ok := o.Sessions.RoomOf(sid); ok {
			for _, snap := range o.Sessions.MembersOfRoom(roomID) {
				o.Relays.MarkSubscriberDelete(snap.SID, sid)
			}
		}
	}
	if mc := o.Sessions.Media(sid); mc != nil {
		mc.Close()
	}
}
