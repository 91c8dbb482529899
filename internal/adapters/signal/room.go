package signal

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/hushcall/hush/internal/core"
	"github.com/hushcall/hush/internal/domain"
)

func (ctl *Controller) sendError(c *wsConn, err error) {
	ctl.sendJSON(c, map[string]any{
		"type":  "error",
		"error": userMessage(err),
	})
}

// userMessage maps the registry's sentinel errors onto the strings the
// presentation layer shows.
func userMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrInvalidInput):
		return "Please enter your name"
	case errors.Is(err, domain.ErrRoomNotFound):
		return "Room not found or expired"
	case errors.Is(err, domain.ErrCallEnded):
		return "Call has ended permanently"
	case errors.Is(err, domain.ErrRoomFull):
		return "Room is full"
	default:
		return err.Error()
	}
}

func (ctl *Controller) handleCreate(
	sid core.SessionID,
	conn *wsConn,
	data []byte,
) {
	type createPayload struct {
		Type string `json:"type"`
		Name string `json:"name"`
	}
	var p createPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad create payload")
		ctl.sendJSON(conn, map[string]any{"type": "error", "error": "bad_payload"})
		return
	}

	roomID, pid, msg, err := ctl.Orch.CreateRoom(sid, p.Name)
	if err != nil {
		ctl.sendError(conn, err)
		return
	}

	resp := struct {
		Type        string               `json:"type"`
		Room        domain.RoomID        `json:"room"`
		Participant domain.ParticipantID `json:"participant"`
		Message     string               `json:"message"`
	}{
		Type:        "room_created",
		Room:        roomID,
		Participant: pid,
		Message:     msg,
	}
	ctl.sendJSON(conn, resp)
}

func (ctl *Controller) handleJoin(
	sid core.SessionID,
	conn *wsConn,
	data []byte,
) {
	type joinPayload struct {
		Type string `json:"type"`
		Room string `json:"room"`
		Name string `json:"name"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendJSON(conn, map[string]any{"type": "error", "error": "bad_payload"})
		return
	}

	roomID := domain.RoomID(p.Room)
	pid, msg, err := ctl.Orch.Join(sid, roomID, p.Name)
	if err != nil {
		log.Info().Err(err).Str("module", "signal").Str("sid", string(sid)).Str("room", p.Room).Msg("join rejected")
		ctl.sendError(conn, err)
		return
	}

	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", p.Room).Msg("join")
	resp := struct {
		Type        string               `json:"type"`
		Room        domain.RoomID        `json:"room"`
		Participant domain.ParticipantID `json:"participant"`
		Message     string               `json:"message"`
		Status      string               `json:"status"`
	}{
		Type:        "room_joined",
		Room:        roomID,
		Participant: pid,
		Message:     msg,
		Status:      ctl.Orch.Status(roomID),
	}
	ctl.sendJSON(conn, resp)

	ctl.BroadcastRoom(roomID, map[string]any{
		"type": "member_joined",
		"name": p.Name,
	})
}

// handleLeave ends the call for the whole room; leaving is permanent.
func (ctl *Controller) handleLeave(sid core.SessionID, conn *wsConn) {
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("leave")
	roomID, ok := ctl.Orch.Leave(sid)
	ctl.sendJSON(conn, map[string]any{"type": "left"})
	if ok {
		ctl.BroadcastRoom(roomID, map[string]any{"type": "call_ended"})
	}
}

func (ctl *Controller) handleStatus(sid core.SessionID, conn *wsConn, data []byte) {
	type statusPayload struct {
		Type string `json:"type"`
		Room string `json:"room"`
	}
	var p statusPayload
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendJSON(conn, map[string]any{"type": "error", "error": "bad_payload"})
		return
	}
	roomID := domain.RoomID(p.Room)
	if p.Room == "" {
		if cur, ok := ctl.Orch.Sessions.RoomOf(sid); ok {
			roomID = cur
		}
	}
	ctl.sendJSON(conn, map[string]any{
		"type":   "room_status",
		"room":   roomID,
		"status": ctl.Orch.Status(roomID),
	})
}
