package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hushcall/hush/internal/app"
	"github.com/hushcall/hush/internal/core"
	"github.com/hushcall/hush/internal/domain"
)

type RoomHandlers struct {
	Orch *app.Orchestrator
}

type NameRequest struct {
	Name string `json:"name"`
}

type RoomResponse struct {
	Room        domain.RoomID        `json:"room_id"`
	Participant domain.ParticipantID `json:"participant_id"`
	Message     string               `json:"message"`
}

// errStatus maps the registry's sentinel errors onto HTTP codes; the body
// always carries the user-facing message the caller is expected to present.
func errStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRoomNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRoomFull):
		return http.StatusConflict
	case errors.Is(err, domain.ErrCallEnded):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

func errMessage(err error) string {
	switch {
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

func sid(c *gin.Context) core.SessionID {
	return core.SessionID(c.GetString("client_token"))
}

func (h *RoomHandlers) CreateRoom(c *gin.Context) {
	var req NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please enter your name"})
		return
	}

	roomID, pid, msg, err := h.Orch.CreateRoom(sid(c), req.Name)
	if err != nil {
		c.JSON(errStatus(err), gin.H{"message": errMessage(err)})
		return
	}
	c.JSON(http.StatusOK, RoomResponse{Room: roomID, Participant: pid, Message: msg})
}

func (h *RoomHandlers) JoinRoom(c *gin.Context) {
	var req NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please enter your name"})
		return
	}

	roomID := domain.RoomID(c.Param("id"))
	pid, msg, err := h.Orch.Join(sid(c), roomID, req.Name)
	if err != nil {
		c.JSON(errStatus(err), gin.H{"message": errMessage(err)})
		return
	}
	c.JSON(http.StatusOK, RoomResponse{Room: roomID, Participant: pid, Message: msg})
}

func (h *RoomHandlers) RoomStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": h.Orch.Status(domain.RoomID(c.Param("id"))),
	})
}

func (h *RoomHandlers) CanStart(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"can_start": h.Orch.CanStartCall(domain.RoomID(c.Param("id"))),
	})
}

// EndRoom is idempotent: ending a gone or already-ended room is a no-op.
func (h *RoomHandlers) EndRoom(c *gin.Context) {
	h.Orch.EndCall(domain.RoomID(c.Param("id")))
	c.JSON(http.StatusOK, gin.H{"message": "Call has ended permanently"})
}

func (h *RoomHandlers) DeleteRoom(c *gin.Context) {
	h.Orch.Registry.CleanupRoom(domain.RoomID(c.Param("id")))
	c.Status(http.StatusNoContent)
}

func (h *RoomHandlers) ToggleAudio(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"enabled": h.Orch.ToggleAudio(sid(c))})
}

func (h *RoomHandlers) ToggleVideo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"enabled": h.Orch.ToggleVideo(sid(c))})
}
