// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/waypoint/internal/geo"
	"github.com/tomtom215/waypoint/internal/locations"
	"github.com/tomtom215/waypoint/internal/mapview"
)

type fakeViewer struct {
	err   error
	calls atomic.Int32
}

func (f *fakeViewer) View(_ context.Context, req mapview.Request) (mapview.Response, error) {
	f.calls.Add(1)
	if f.err != nil {
		return mapview.Response{}, f.err
	}
	return mapview.Response{Version: 7, Zoom: req.Viewport.Zoom, Clusters: []mapview.ClusterView{}}, nil
}

type received struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// startHub runs a hub and a test server that attaches every connection to it.
func startHub(t *testing.T, viewer Viewer) (*Hub, *httptest.Server, context.CancelFunc) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = hub.Serve(ctx)
	}()

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		NewClient(context.Background(), hub, conn, viewer).Start()
	}))

	t.Cleanup(func() {
		cancel()
		<-done
		server.Close()
	})
	return hub, server, cancel
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, v interface{}) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
}

func read(t *testing.T, conn *websocket.Conn) received {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	var msg received
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Unmarshal(%s) error = %v", data, err)
	}
	return msg
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("ClientCount() = %d, want %d", hub.ClientCount(), want)
}

func viewportMessage(width float64) map[string]interface{} {
	return map[string]interface{}{
		"type": MessageTypeViewport,
		"data": mapview.Request{Viewport: geo.Viewport{
			Center: geo.LatLon{Lat: 48.85, Lon: 2.35},
			Zoom:   6,
			Width:  width,
			Height: 600,
		}},
	}
}

func errorCode(t *testing.T, msg received) string {
	t.Helper()
	if msg.Type != MessageTypeError {
		t.Fatalf("message type = %q, want error", msg.Type)
	}
	var body struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(msg.Data, &body); err != nil {
		t.Fatalf("Unmarshal error body: %v", err)
	}
	return body.Code
}

func TestClient_PingPong(t *testing.T) {
	_, server, _ := startHub(t, &fakeViewer{})
	conn := dial(t, server)

	send(t, conn, map[string]string{"type": MessageTypePing})
	if msg := read(t, conn); msg.Type != MessageTypePong {
		t.Errorf("reply type = %q, want pong", msg.Type)
	}
}

func TestClient_ViewportReturnsView(t *testing.T) {
	viewer := &fakeViewer{}
	_, server, _ := startHub(t, viewer)
	conn := dial(t, server)

	send(t, conn, viewportMessage(800))
	msg := read(t, conn)
	if msg.Type != MessageTypeView {
		t.Fatalf("reply type = %q, want view (data %s)", msg.Type, msg.Data)
	}
	var resp mapview.Response
	if err := json.Unmarshal(msg.Data, &resp); err != nil {
		t.Fatalf("Unmarshal view: %v", err)
	}
	if resp.Version != 7 || resp.Zoom != 6 {
		t.Errorf("view = %+v, want version 7 zoom 6", resp)
	}
	if viewer.calls.Load() != 1 {
		t.Errorf("viewer called %d times, want 1", viewer.calls.Load())
	}
}

func TestClient_InvalidViewport(t *testing.T) {
	viewer := &fakeViewer{}
	_, server, _ := startHub(t, viewer)
	conn := dial(t, server)

	send(t, conn, viewportMessage(0))
	if code := errorCode(t, read(t, conn)); code != "VALIDATION_ERROR" {
		t.Errorf("error code = %q, want VALIDATION_ERROR", code)
	}
	if viewer.calls.Load() != 0 {
		t.Error("viewer called for an invalid viewport")
	}
}

func TestClient_ErrorReplies(t *testing.T) {
	tests := []struct {
		name     string
		viewer   *fakeViewer
		payload  string
		wantCode string
	}{
		{"malformed json", &fakeViewer{}, `{"type":`, "BAD_REQUEST"},
		{"unknown type", &fakeViewer{}, `{"type":"teleport"}`, "BAD_REQUEST"},
		{"viewport without data", &fakeViewer{}, `{"type":"viewport"}`, "BAD_REQUEST"},
		{"dataset not loaded", &fakeViewer{err: locations.ErrNotLoaded},
			`{"type":"viewport","data":{"viewport":{"center":{"lat":1,"lon":1},"zoom":3,"width":100,"height":100}}}`,
			"SERVICE_UNAVAILABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, server, _ := startHub(t, tt.viewer)
			conn := dial(t, server)

			if err := conn.WriteMessage(websocket.TextMessage, []byte(tt.payload)); err != nil {
				t.Fatalf("WriteMessage() error = %v", err)
			}
			if code := errorCode(t, read(t, conn)); code != tt.wantCode {
				t.Errorf("error code = %q, want %q", code, tt.wantCode)
			}
		})
	}
}

func TestHub_BroadcastReload(t *testing.T) {
	hub, server, _ := startHub(t, &fakeViewer{})
	a := dial(t, server)
	b := dial(t, server)
	waitForClients(t, hub, 2)

	hub.BroadcastReload(ReloadNotice{Version: 3, Locations: 12, LoadedAt: time.Now()})

	for _, conn := range []*websocket.Conn{a, b} {
		msg := read(t, conn)
		if msg.Type != MessageTypeDatasetReloaded {
			t.Fatalf("message type = %q, want dataset_reloaded", msg.Type)
		}
		var notice ReloadNotice
		if err := json.Unmarshal(msg.Data, &notice); err != nil {
			t.Fatalf("Unmarshal notice: %v", err)
		}
		if notice.Version != 3 || notice.Locations != 12 {
			t.Errorf("notice = %+v", notice)
		}
	}
}

func TestHub_ClientLeaves(t *testing.T) {
	hub, server, _ := startHub(t, &fakeViewer{})
	conn := dial(t, server)
	waitForClients(t, hub, 1)

	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
	_ = conn.Close()
	waitForClients(t, hub, 0)
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	hub, server, cancel := startHub(t, &fakeViewer{})
	conn := dial(t, server)
	waitForClients(t, hub, 1)

	cancel()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	waitForClients(t, hub, 0)
}

func TestHub_String(t *testing.T) {
	if got := NewHub().String(); got != "websocket-hub" {
		t.Errorf("String() = %q", got)
	}
}
