package wire

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/lux/pkg/surface"
)

func dial(t *testing.T, s *Surface) (*websocket.Conn, func()) {
	t.Helper()
	srv := httptest.NewServer(Router(s))
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		srv.Close()
		t.Fatalf("dial: %v", err)
	}
	return conn, func() {
		conn.Close()
		srv.Close()
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var f Frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read: %v", err)
	}
	return f
}

func TestFlushWithoutChanges(t *testing.T) {
	s := NewSurface()
	if _, ok := s.Flush(); ok {
		t.Error("expected nothing to flush")
	}
	p := s.CreateUnit(surface.UnitElement, "p")
	s.InsertAfter(s.Root(), 0, p)

	f, ok := s.Flush()
	if !ok || f.Type != FrameOps || len(f.Ops) != 2 || f.Seq != 1 {
		t.Fatalf("unexpected frame %+v", f)
	}
	if _, ok := s.Flush(); ok {
		t.Error("ops should be sent once")
	}
	if n := s.Count(); n != 0 {
		t.Errorf("flushed ops should leave the log, got %d", n)
	}
	if n := s.Total(); n != 2 {
		t.Errorf("expected a total of 2 ops, got %d", n)
	}
}

func TestClientReceivesSnapshotThenOps(t *testing.T) {
	s := NewSurface()
	p := s.CreateUnit(surface.UnitElement, "p")
	s.InsertAfter(s.Root(), 0, p)

	conn, done := dial(t, s)
	defer done()

	first := readFrame(t, conn)
	if first.Type != FrameSnapshot || len(first.Snapshot.Children) != 1 {
		t.Fatalf("expected snapshot with one child, got %+v", first)
	}

	s.SetAttribute(p, "id", "x")
	s.Flush()

	next := readFrame(t, conn)
	if next.Type != FrameOps || len(next.Ops) != 1 || next.Ops[0].Kind != surface.OpSetAttr {
		t.Fatalf("expected one SetAttr, got %+v", next)
	}
	if next.Seq <= first.Seq {
		t.Errorf("seq should grow, got %d after %d", next.Seq, first.Seq)
	}
}

func TestClientEvents(t *testing.T) {
	got := make(chan surface.Event, 1)
	s := NewSurface()
	b := s.CreateUnit(surface.UnitElement, "button")
	s.InsertAfter(s.Root(), 0, b)
	s.Listen(b, "click", func(e surface.Event) { got <- e })

	conn, done := dial(t, s)
	defer done()
	readFrame(t, conn)

	err := conn.WriteJSON(Frame{Type: FrameEvent, Event: &surface.Event{Type: "click", Target: b}})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	select {
	case e := <-got:
		if e.Target != b {
			t.Errorf("expected target %d, got %d", b, e.Target)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("event not delivered")
	}

	conn.WriteJSON(Frame{Type: FrameOps})
	if f := readFrame(t, conn); f.Type != FrameError {
		t.Errorf("expected error frame, got %+v", f)
	}
}

func TestCustomDispatcher(t *testing.T) {
	var got []surface.Event
	s := NewSurface(WithDispatcher(func(e surface.Event) { got = append(got, e) }))
	if err := s.receive(Frame{Type: FrameEvent, Event: &surface.Event{Type: "input", Value: "x"}}); err != nil {
		t.Fatalf("receive: %v", err)
	}
	if len(got) != 1 || got[0].Value != "x" {
		t.Errorf("expected the event, got %v", got)
	}
}

func TestMergeFrames(t *testing.T) {
	s := NewSurface(WithMergeFrames())
	p := s.CreateUnit(surface.UnitElement, "p")
	s.InsertAfter(s.Root(), 0, p)

	f, ok := s.Flush()
	if !ok || f.Type != FrameMerge {
		t.Fatalf("expected merge frame, got %+v", f)
	}
	doc, err := jsonpatch.MergePatch([]byte("{}"), f.Merge)
	if err != nil {
		t.Fatalf("MergePatch: %v", err)
	}

	s.SetAttribute(p, "id", "x")
	f, _ = s.Flush()
	doc, err = jsonpatch.MergePatch(doc, f.Merge)
	if err != nil {
		t.Fatalf("MergePatch: %v", err)
	}

	want, _ := s.SnapshotJSON()
	if !jsonpatch.Equal(doc, want) {
		t.Errorf("merged document differs:\n%s\n%s", doc, want)
	}
}

func TestRouterEndpoints(t *testing.T) {
	s := NewSurface()
	p := s.CreateUnit(surface.UnitElement, "p")
	s.InsertAfter(s.Root(), 0, p)
	r := Router(s)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("healthz: %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/snapshot", nil))
	var f Frame
	if err := json.Unmarshal(rec.Body.Bytes(), &f); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if f.Type != FrameSnapshot || f.Snapshot == nil || len(f.Snapshot.Children) != 1 {
		t.Errorf("unexpected snapshot %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/html", nil))
	if rec.Body.String() != "<p></p>" {
		t.Errorf("unexpected html %s", rec.Body.String())
	}
}

func TestCheckOrigin(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"no origin", nil, "", true},
		{"same host", nil, "http://example.com", true},
		{"same host other case", nil, "https://EXAMPLE.com", true},
		{"foreign", nil, "https://evil.test", false},
		{"port differs", nil, "http://example.com:8080", false},
		{"listed", []string{"https://app.test"}, "https://app.test", true},
		{"listed other scheme", []string{"https://app.test"}, "http://app.test", false},
		{"wildcard", []string{"*"}, "https://evil.test", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSurface(WithAllowedOrigins(tt.allowed...))
			req := httptest.NewRequest("GET", "/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if got := s.checkOrigin(req); got != tt.want {
				t.Errorf("checkOrigin(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}

func TestForeignOriginRejected(t *testing.T) {
	s := NewSurface()
	srv := httptest.NewServer(Router(s))
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	header := http.Header{"Origin": []string{"https://evil.test"}}
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err == nil {
		conn.Close()
		t.Fatal("expected the handshake to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403, got %v", resp)
	}

	header = http.Header{"Origin": []string{srv.URL}}
	conn, _, err = websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("same-host dial: %v", err)
	}
	conn.Close()
}
