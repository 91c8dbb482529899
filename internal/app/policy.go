package app

import "github.com/hushcall/hush/internal/core"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	MarkSlow
	KickMember
	DropFrame
)

// Policy decides what to do with a consumer that cannot keep up with
// frame fan-out.
type Policy interface {
	OnBackPressure(sid core.SessionID) BackpressureAction
}

type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(sid core.SessionID) BackpressureAction {
	return KickMember
}
