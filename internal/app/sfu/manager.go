package sfu

import (
	"context"
	"sync"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/hushcall/hush/internal/core"
)

// RelayManager keys one relay per publishing session.
type RelayManager struct {
	mu     sync.RWMutex
	relays map[core.SessionID]*Relay
}

func NewRelayManager() *RelayManager {
	return &RelayManager{relays: make(map[core.SessionID]*Relay)}
}

// StartRelay creates a relay for the publisher and starts its pump loop,
// replacing any previous relay for the same session.
func (m *RelayManager) StartRelay(ctx context.Context, sid core.SessionID, track *webrtc.TrackRemote) {
	logger := log.With().
		Str("module", "sfu").
		Str("sid", string(sid)).
		Logger()

	relayCtx, cancel := context.WithCancel(ctx)
	relay := NewRelay(track, cancel)

	m.mu.Lock()
	if old, ok := m.relays[sid]; ok {
		logger.Info().Msg("replacing existing relay for sid")
		old.markAllDelete()
		if old.cancel != nil {
			old.cancel()
		}
	}
	m.relays[sid] = relay
	m.mu.Unlock()

	go relay.loop(relayCtx, &logger)
}

// Subscribe attaches dst's peer connection as a consumer of src's relay.
func (m *RelayManager) Subscribe(srcSID, dstSID core.SessionID, mc core.MediaConnection, src *webrtc.TrackRemote) {
	m.mu.RLock()
	relay, ok := m.relays[srcSID]
	m.mu.RUnlock()
	if !ok {
		return
	}

	local, err := webrtc.NewTrackLocalStaticRTP(src.Codec().RTPCodecCapability, src.ID(), src.StreamID())
	if err != nil {
		log.Error().Err(err).Str("module", "sfu").Str("dst_sid", string(dstSID)).Msg("create local track")
		return
	}
	if _, err := mc.AddLocalTrack(local); err != nil {
		log.Error().Err(err).Str("module", "sfu").Str("dst_sid", string(dstSID)).Msg("add local track")
		return
	}
	relay.AddOutTrack(dstSID, NewOutTrack(local))
}

// SetMuted mutes or unmutes everything the publisher is sending.
func (m *RelayManager) SetMuted(srcSID core.SessionID, muted bool) {
	m.mu.RLock()
	relay, ok := m.relays[srcSID]
	m.mu.RUnlock()
	if !ok {
		return
	}
	relay.SetMutedAll(muted)
}

// MarkSubscriberDelete detaches one subscriber from a publisher's relay.
func (m *RelayManager) MarkSubscriberDelete(srcSID, dstSID core.SessionID) {
	m.mu.RLock()
	relay, ok := m.relays[srcSID]
	m.mu.RUnlock()
	if !ok {
		return
	}
	relay.mu.RLock()
	ot, ok := relay.outTracks[dstSID]
	relay.mu.RUnlock()
	if !ok {
		return
	}
	ot.MarkDelete()
}

// StopRelay stops a publisher's relay and forgets it.
func (m *RelayManager) StopRelay(srcSID core.SessionID) {
	m.mu.Lock()
	relay, ok := m.relays[srcSID]
	if ok {
		delete(m.relays, srcSID)
	}
	m.mu.Unlock()
	if !ok {
		return
	}
	relay.markAllDelete()
	if relay.cancel != nil {
		relay.cancel()
	}
}

// SrcTrack returns the publisher's source track, if it is publishing.
func (m *RelayManager) SrcTrack(sid core.SessionID) (*webrtc.TrackRemote, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	relay, ok := m.relays[sid]
	if !ok {
		return nil, false
	}
	return relay.Src, true
}
