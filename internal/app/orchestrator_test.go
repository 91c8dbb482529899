package app

import (
	"errors"
	"strings"
	"testing"

	"github.com/hushcall/hush/internal/core"
	"github.com/hushcall/hush/internal/domain"
)

// fakeSignal records delivered payloads, media apart from control messages;
// failing simulates backpressure.
type fakeSignal struct {
	texts   []core.Frame
	media   []core.Frame
	failing bool
}

func (f *fakeSignal) TrySend(frame core.Frame) error {
	if f.failing {
		return errors.New("backpressure")
	}
	f.texts = append(f.texts, frame)
	return nil
}

func (f *fakeSignal) TrySendMedia(frame core.Frame) error {
	if f.failing {
		return errors.New("backpressure")
	}
	f.media = append(f.media, frame)
	return nil
}

func (f *fakeSignal) Close() {}

func newTestOrchestrator() *Orchestrator {
	return &Orchestrator{
		Registry: core.NewRegistry(0),
		Sessions: NewSessionManager(),
		Policy:   SimplePolicy{},
	}
}

func TestCreateThenJoin(t *testing.T) {
	o := newTestOrchestrator()

	roomID, pid, msg, err := o.CreateRoom("sid-a", "Alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if pid == "" || !strings.Contains(msg, string(roomID)) {
		t.Errorf("create result pid=%q msg=%q", pid, msg)
	}
	if got, ok := o.Sessions.RoomOf("sid-a"); !ok || got != roomID {
		t.Errorf("creator not bound to room, got %q", got)
	}

	if _, _, err := o.Join("sid-b", roomID, "Bob"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if !strings.Contains(o.Status(roomID), "Participants: 2") {
		t.Errorf("status = %q", o.Status(roomID))
	}
}

func TestLeaveEndsCallForEveryone(t *testing.T) {
	o := newTestOrchestrator()

	roomID, _, _, _ := o.CreateRoom("sid-a", "Alice")
	o.Join("sid-b", roomID, "Bob")

	// Alice muted herself mid-call.
	o.ToggleAudio("sid-a")

	left, ok := o.Leave("sid-b")
	if !ok || left != roomID {
		t.Fatalf("leave = (%q, %v)", left, ok)
	}
	if o.CanStartCall(roomID) {
		t.Error("room must be ended after any departure")
	}
	if _, _, err := o.Join("sid-c", roomID, "Carol"); !errors.Is(err, domain.ErrCallEnded) {
		t.Errorf("join after leave err = %v, want ErrCallEnded", err)
	}
	// End of call resets every remaining member's toggles.
	if !o.Sessions.Call("sid-a").AudioEnabled() {
		t.Error("audio toggle should reset to enabled when the call ends")
	}
	// Leaving again is a no-op.
	if _, ok := o.Leave("sid-b"); ok {
		t.Error("second leave reported a room")
	}
}

func TestOnFrameFanOut(t *testing.T) {
	o := newTestOrchestrator()

	roomID, _, _, _ := o.CreateRoom("sid-a", "Alice")
	o.Join("sid-b", roomID, "Bob")

	connB := &fakeSignal{}
	o.Sessions.BindSignal("sid-b", connB, nil)

	frame := core.Frame{9, 9, 9}
	o.OnFrame("sid-a", frame)
	if len(connB.media) != 1 {
		t.Fatalf("delivered %d frames, want 1", len(connB.media))
	}
	if len(connB.media[0]) != 3 {
		t.Errorf("frame passed through should keep its size, got %d", len(connB.media[0]))
	}
	if len(connB.texts) != 0 {
		t.Errorf("media must not travel on the control path, got %d control payloads", len(connB.texts))
	}

	// With video off the room mates still get a well-formed frame,
	// just the blank one.
	o.ToggleVideo("sid-a")
	o.OnFrame("sid-a", frame)
	if len(connB.media) != 2 {
		t.Fatalf("delivered %d frames, want 2", len(connB.media))
	}
	if len(connB.media[1]) == 3 {
		t.Error("disabled video must be substituted, not passed through")
	}
}

func TestOnFrameStopsAfterEnd(t *testing.T) {
	o := newTestOrchestrator()

	roomID, _, _, _ := o.CreateRoom("sid-a", "Alice")
	o.Join("sid-b", roomID, "Bob")

	connB := &fakeSignal{}
	o.Sessions.BindSignal("sid-b", connB, nil)

	o.EndCall(roomID)
	o.OnFrame("sid-a", core.Frame{1})
	if len(connB.media) != 0 {
		t.Errorf("ended room delivered %d frames, want 0", len(connB.media))
	}
}

func TestBackpressureKicksSlowMember(t *testing.T) {
	o := newTestOrchestrator()

	roomID, _, _, _ := o.CreateRoom("sid-a", "Alice")
	o.Join("sid-b", roomID, "Bob")

	o.Sessions.BindSignal("sid-b", &fakeSignal{failing: true}, nil)

	o.OnFrame("sid-a", core.Frame{1})

	// The kick is a departure, so the whole room ends.
	if _, ok := o.Sessions.RoomOf("sid-b"); ok {
		t.Error("slow member should have been kicked")
	}
	if o.CanStartCall(roomID) {
		t.Error("kick counts as a departure; the room must be ended")
	}
}

func TestOnDisconnectEndsRoom(t *testing.T) {
	o := newTestOrchestrator()

	roomID, _, _, _ := o.CreateRoom("sid-a", "Alice")
	o.OnDisconnect("sid-a")

	if o.CanStartCall(roomID) {
		t.Error("disconnect of a participant must end the room")
	}
	if _, ok := o.Sessions.RoomOf("sid-a"); ok {
		t.Error("session should be unbound after disconnect")
	}
}

func TestToggleAudioWithoutRoom(t *testing.T) {
	o := newTestOrchestrator()

	// Toggles are per client and work before any room exists.
	if o.ToggleAudio("sid-x") {
		t.Error("first toggle should disable")
	}
	if !o.ToggleAudio("sid-x") {
		t.Error("second toggle should re-enable")
	}
}
