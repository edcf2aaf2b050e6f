// SPDX-License-Identifier: MIT
package transport

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"wavemath/pkg/utils"
)

type plotFrame struct {
	Kind   string    `json:"kind"`
	Values []float64 `json:"values"`
}

func TestMultiFansOut(t *testing.T) {
	a, b := &utils.MockTransport{}, &utils.MockTransport{}
	m := Multi{a, b}

	if err := m.Send("frame"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(a.Sent) != 1 || len(b.Sent) != 1 {
		t.Fatalf("sent = %d, %d; want 1, 1", len(a.Sent), len(b.Sent))
	}

	b.Err = errors.New("boom")
	err := m.Send("second")
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("expected joined error, got %v", err)
	}
	if len(a.Sent) != 2 {
		t.Errorf("healthy transport skipped after a failure: %d frames", len(a.Sent))
	}

	if err := m.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if !a.Closed || !b.Closed {
		t.Error("Close did not reach every transport")
	}
}

func TestLoggingTransport(t *testing.T) {
	lt := NewLoggingTransport()
	if err := lt.Send(plotFrame{Kind: "waveform", Values: []float64{1, 2}}); err != nil {
		t.Errorf("Send: %v", err)
	}
	// Unencodable frames are logged, not returned.
	if err := lt.Send(func() {}); err != nil {
		t.Errorf("Send(func) = %v, want nil", err)
	}
	if err := lt.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestWebSocketTransportBroadcast(t *testing.T) {
	wst, err := NewWebSocketTransport("127.0.0.1:0")
	if err != nil {
		t.Fatalf("NewWebSocketTransport: %v", err)
	}
	defer wst.Close()

	url := "ws://" + wst.Addr().String() + PlotPath
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial %s: %v", url, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for wst.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	want := plotFrame{Kind: "spectrum", Values: []float64{0.5, 0.25}}
	if err := wst.Send(want); err != nil {
		t.Fatalf("Send: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got plotFrame
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if got.Kind != want.Kind || len(got.Values) != 2 || got.Values[0] != 0.5 {
		t.Errorf("received %+v, want %+v", got, want)
	}
}

func TestWebSocketTransportClose(t *testing.T) {
	wst, err := NewWebSocketTransport("127.0.0.1:0")
	if err != nil {
		t.Fatalf("NewWebSocketTransport: %v", err)
	}
	if err := wst.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := wst.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if err := wst.Send("late"); !errors.Is(err, ErrClosed) {
		t.Errorf("Send after Close = %v, want ErrClosed", err)
	}
}

func TestWebSocketTransportListenError(t *testing.T) {
	wst, err := NewWebSocketTransport("127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer wst.Close()

	if _, err := NewWebSocketTransport(wst.Addr().String()); err == nil {
		t.Error("expected error listening on an address in use")
	}
}
