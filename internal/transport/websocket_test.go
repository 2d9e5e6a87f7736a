package transport

import (
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type testReading struct {
	Type     string  `json:"type"`
	PeakDBFS float32 `json:"peak_dbfs"`
}

func dialTransport(t *testing.T, wst *WebSocketTransport) *websocket.Conn {
	t.Helper()
	url := "ws://" + wst.Addr().String() + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })

	deadline := time.Now().Add(2 * time.Second)
	for wst.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client was never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	return conn
}

func TestWebSocketTransportBroadcast(t *testing.T) {
	wst, err := NewWebSocketTransport("127.0.0.1:0")
	if err != nil {
		t.Fatalf("NewWebSocketTransport: %v", err)
	}
	defer wst.Close()

	conns := []*websocket.Conn{dialTransport(t, wst), dialTransport(t, wst)}
	deadline := time.Now().Add(2 * time.Second)
	for wst.ClientCount() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("ClientCount() = %d, want 2", wst.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := wst.Send(testReading{Type: "level", PeakDBFS: -6}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	for i, conn := range conns {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var got testReading
		if err := conn.ReadJSON(&got); err != nil {
			t.Fatalf("client %d ReadJSON: %v", i, err)
		}
		if got.Type != "level" || got.PeakDBFS != -6 {
			t.Errorf("client %d got %+v", i, got)
		}
	}
}

func TestWebSocketTransportClose(t *testing.T) {
	wst, err := NewWebSocketTransport("127.0.0.1:0")
	if err != nil {
		t.Fatalf("NewWebSocketTransport: %v", err)
	}
	conn := dialTransport(t, wst)

	if err := wst.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := wst.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if wst.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d after Close, want 0", wst.ClientCount())
	}
	if err := wst.Send("late"); err == nil {
		t.Error("Send after Close should fail")
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("client connection should be closed by the server")
	}
}

func TestWebSocketTransportListenError(t *testing.T) {
	wst, err := NewWebSocketTransport("127.0.0.1:0")
	if err != nil {
		t.Fatalf("NewWebSocketTransport: %v", err)
	}
	defer wst.Close()

	if _, err := NewWebSocketTransport(wst.Addr().String()); err == nil {
		t.Error("expected an error listening on an address in use")
	}
}

func TestLoggingTransport(t *testing.T) {
	lt := NewLoggingTransport()
	if err := lt.Send(testReading{Type: "level"}); err != nil {
		t.Errorf("Send: %v", err)
	}
	// Values json cannot encode are still accepted.
	if err := lt.Send(make(chan int)); err != nil {
		t.Errorf("Send(chan): %v", err)
	}
	if err := lt.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
