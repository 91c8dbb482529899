package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/hushcall/hush/internal/app"
	"github.com/hushcall/hush/internal/config"
	"github.com/hushcall/hush/internal/core"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	orch := &app.Orchestrator{
		Registry: core.NewRegistry(0),
		Sessions: app.NewSessionManager(),
		Policy:   app.SimplePolicy{},
	}
	cfg := &config.Config{Mode: "release", Secret: "test-secret"}
	return SetupRouter(context.Background(), cfg, orch)
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode response %q: %v", w.Body.String(), err)
		}
	}
	return w, out
}

func TestRoomLifecycleOverHTTP(t *testing.T) {
	r := newTestRouter()

	w, created := doJSON(t, r, http.MethodPost, "/api/rooms", gin.H{"name": "Alice"})
	if w.Code != http.StatusOK {
		t.Fatalf("create code = %d, body %s", w.Code, w.Body.String())
	}
	roomID, _ := created["room_id"].(string)
	if roomID == "" {
		t.Fatal("create returned no room_id")
	}
	if msg, _ := created["message"].(string); !strings.Contains(msg, roomID) {
		t.Errorf("create message = %q, should embed room id", msg)
	}

	w, joined := doJSON(t, r, http.MethodPost, "/api/rooms/"+roomID+"/join", gin.H{"name": "Bob"})
	if w.Code != http.StatusOK {
		t.Fatalf("join code = %d, body %s", w.Code, w.Body.String())
	}
	if joined["participant_id"] == "" {
		t.Error("join returned no participant_id")
	}

	w, status := doJSON(t, r, http.MethodGet, "/api/rooms/"+roomID+"/status", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status code = %d", w.Code)
	}
	text, _ := status["status"].(string)
	for _, want := range []string{"Participants: 2", "Alice", "Bob"} {
		if !strings.Contains(text, want) {
			t.Errorf("status = %q, missing %q", text, want)
		}
	}

	w, canStart := doJSON(t, r, http.MethodGet, "/api/rooms/"+roomID+"/can-start", nil)
	if w.Code != http.StatusOK || canStart["can_start"] != true {
		t.Errorf("can-start = %v (code %d), want true", canStart["can_start"], w.Code)
	}

	w, _ = doJSON(t, r, http.MethodPost, "/api/rooms/"+roomID+"/end", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("end code = %d", w.Code)
	}
	// Ending twice must look the same.
	w, _ = doJSON(t, r, http.MethodPost, "/api/rooms/"+roomID+"/end", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("second end code = %d", w.Code)
	}

	w, rejected := doJSON(t, r, http.MethodPost, "/api/rooms/"+roomID+"/join", gin.H{"name": "Carol"})
	if w.Code != http.StatusGone {
		t.Errorf("join after end code = %d, want 410", w.Code)
	}
	if rejected["message"] != "Call has ended permanently" {
		t.Errorf("join after end message = %v", rejected["message"])
	}

	w, canStart = doJSON(t, r, http.MethodGet, "/api/rooms/"+roomID+"/can-start", nil)
	if canStart["can_start"] != false {
		t.Errorf("can-start after end = %v, want false", canStart["can_start"])
	}
}

func TestCreateRoomRejectsEmptyName(t *testing.T) {
	r := newTestRouter()
	w, resp := doJSON(t, r, http.MethodPost, "/api/rooms", gin.H{"name": "   "})
	if w.Code != http.StatusBadRequest {
		t.Errorf("code = %d, want 400", w.Code)
	}
	if resp["message"] != "Please enter your name" {
		t.Errorf("message = %v", resp["message"])
	}
}

func TestJoinUnknownRoom(t *testing.T) {
	r := newTestRouter()
	w, resp := doJSON(t, r, http.MethodPost, "/api/rooms/never-issued/join", gin.H{"name": "Bob"})
	if w.Code != http.StatusNotFound {
		t.Errorf("code = %d, want 404", w.Code)
	}
	if resp["message"] != "Room not found or expired" {
		t.Errorf("message = %v", resp["message"])
	}
}

func TestStatusUnknownRoom(t *testing.T) {
	r := newTestRouter()
	_, resp := doJSON(t, r, http.MethodGet, "/api/rooms/never-issued/status", nil)
	if resp["status"] != "Room not found" {
		t.Errorf("status = %v", resp["status"])
	}
}

func TestDeleteRoom(t *testing.T) {
	r := newTestRouter()
	_, created := doJSON(t, r, http.MethodPost, "/api/rooms", gin.H{"name": "Alice"})
	roomID, _ := created["room_id"].(string)

	w, _ := doJSON(t, r, http.MethodDelete, "/api/rooms/"+roomID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete code = %d", w.Code)
	}
	_, resp := doJSON(t, r, http.MethodGet, "/api/rooms/"+roomID+"/status", nil)
	if resp["status"] != "Room not found" {
		t.Errorf("status after delete = %v", resp["status"])
	}
}

func TestToggleEndpoints(t *testing.T) {
	r := newTestRouter()

	// Each request carries no cookie, so it gets a fresh client token and a
	// fresh session; the first toggle always lands on defaults.
	w, resp := doJSON(t, r, http.MethodPost, "/api/call/audio", nil)
	if w.Code != http.StatusOK || resp["enabled"] != false {
		t.Errorf("audio toggle = %v (code %d), want disabled", resp["enabled"], w.Code)
	}
	w, resp = doJSON(t, r, http.MethodPost, "/api/call/video", nil)
	if w.Code != http.StatusOK || resp["enabled"] != false {
		t.Errorf("video toggle = %v (code %d), want disabled", resp["enabled"], w.Code)
	}
}
