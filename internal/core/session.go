package core

import "sync/atomic"

// CallSession is the per-client mute state, independent of any room. The two
// flags may be touched from the frame-delivery callback concurrently with a
// toggle, so they are atomics to rule out torn reads; there is no cross-client
// sharing and no further locking.
type CallSession struct {
	video atomic.Bool
	audio atomic.Bool
}

func NewCallSession() *CallSession {
	s := &CallSession{}
	s.video.Store(true)
	s.audio.Store(true)
	return s
}

func (s *CallSession) ToggleVideo() bool {
	for {
		old := s.video.Load()
		if s.video.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

func (s *CallSession) ToggleAudio() bool {
	for {
		old := s.audio.Load()
		if s.audio.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

func (s *CallSession) VideoEnabled() bool { return s.video.Load() }
func (s *CallSession) AudioEnabled() bool { return s.audio.Load() }

// Reset restores both flags to enabled. Called when the owning room's
// call ends.
func (s *CallSession) Reset() {
	s.video.Store(true)
	s.audio.Store(true)
}

// ApplyVideo passes the frame through when video is on, otherwise substitutes
// the blank frame. Cannot fail.
func (s *CallSession) ApplyVideo(frame VideoFrame) VideoFrame {
	if len(frame) > 0 && s.video.Load() {
		return frame
	}
	return BlankFrame()
}

// ApplyAudio passes samples through when audio is on, otherwise substitutes
// silence of the agreed shape.
func (s *CallSession) ApplyAudio(block AudioBlock) AudioBlock {
	if len(block.Samples) > 0 && s.audio.Load() {
		return block
	}
	return Silence()
}
