package domain

import "errors"

var (
	ErrInvalidInput = errors.New("display name is empty")
	ErrRoomNotFound = errors.New("room not found or expired")
	ErrCallEnded    = errors.New("call has ended permanently")
	ErrRoomFull     = errors.New("room is full")
)
