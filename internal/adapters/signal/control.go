package signal

import "github.com/hushcall/hush/internal/core"

func (ctl *Controller) handlePing(conn *wsConn) {
	resp := struct {
		Type string `json:"type"`
	}{
		Type: "pong",
	}
	ctl.sendJSON(conn, resp)
}

func (ctl *Controller) handleToggleAudio(sid core.SessionID, conn *wsConn) {
	enabled := ctl.Orch.ToggleAudio(sid)
	ctl.sendJSON(conn, map[string]any{
		"type":    "audio_state",
		"enabled": enabled,
	})
}

func (ctl *Controller) handleToggleVideo(sid core.SessionID, conn *wsConn) {
	enabled := ctl.Orch.ToggleVideo(sid)
	ctl.sendJSON(conn, map[string]any{
		"type":    "video_state",
		"enabled": enabled,
	})
}
