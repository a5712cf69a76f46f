package live

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func recv(t *testing.T, ch <-chan Frame) (Frame, bool) {
	t.Helper()
	select {
	case f, ok := <-ch:
		return f, ok
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame")
		return Frame{}, false
	}
}

func TestHub_FansOutToOthersOnly(t *testing.T) {
	hub := NewHub(8, zap.NewNop())
	a := hub.Join("wb-1", "u-a")
	b := hub.Join("wb-1", "u-b")
	other := hub.Join("wb-2", "u-c")
	defer a.Close()
	defer b.Close()
	defer other.Close()

	// a hears about b joining.
	if f, _ := recv(t, a.Messages()); f.Type != TypeJoin || f.UserID != "u-b" {
		t.Fatalf("a: got %+v, want join of u-b", f)
	}

	f, _ := NewFrame(TypeStroke, "", "", map[string]any{"points": []int{1, 2, 3, 4}})
	if err := a.Send(context.Background(), f); err != nil {
		t.Fatalf("Send: %v", err)
	}

	got, _ := recv(t, b.Messages())
	if got.Type != TypeStroke || got.UserID != "u-a" || got.Room != "wb-1" {
		t.Errorf("b: got %+v", got)
	}
	select {
	case f := <-a.Messages():
		t.Errorf("sender received its own frame: %+v", f)
	case f := <-other.Messages():
		t.Errorf("other room received frame: %+v", f)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_SlowPeerIsDisconnected(t *testing.T) {
	hub := NewHub(1, zap.NewNop())
	fast := hub.Join("n-1", "u-fast")
	slow := hub.Join("n-1", "u-slow")
	defer fast.Close()

	// fast's buffer holds slow's join; drain it so fast keeps up.
	recv(t, fast.Messages())

	for i := 0; i < 3; i++ {
		f, _ := NewFrame(TypeNoteText, "", "", TextPayload{Content: "x"})
		_ = fast.Send(context.Background(), f)
	}

	// slow got one frame, then was dropped and its channel closed.
	if _, ok := recv(t, slow.Messages()); !ok {
		t.Fatal("expected one buffered frame before close")
	}
	if _, ok := recv(t, slow.Messages()); ok {
		t.Fatal("expected slow peer channel to be closed")
	}
	if err := slow.Send(context.Background(), Frame{Type: TypeNoteText}); err != ErrClosed {
		t.Errorf("Send on dropped peer: got %v, want ErrClosed", err)
	}
	if got := hub.Peers("n-1"); got != 1 {
		t.Errorf("peers: got %d, want 1", got)
	}
}

func TestHub_CloseRemovesEmptyRoom(t *testing.T) {
	hub := NewHub(4, zap.NewNop())
	p := hub.Join("wb-9", "u-1")
	if hub.Rooms() != 1 {
		t.Fatalf("rooms: got %d, want 1", hub.Rooms())
	}
	_ = p.Close()
	_ = p.Close()
	if hub.Rooms() != 0 {
		t.Errorf("rooms after close: got %d, want 0", hub.Rooms())
	}
}

func TestIntercept(t *testing.T) {
	hub := NewHub(4, zap.NewNop())
	a := hub.Join("n-1", "u-a")
	b := hub.Join("n-1", "u-b")
	defer a.Close()
	defer b.Close()
	recv(t, a.Messages())

	var persisted []string
	s := Intercept(a, func(ctx context.Context, f Frame) (Frame, bool, error) {
		var p TextPayload
		_ = f.Decode(&p)
		persisted = append(persisted, p.Content)
		if p.Content == "draft" {
			return f, false, nil
		}
		f.Type = TypeNoteUpdated
		return f, true, nil
	})

	f1, _ := NewFrame(TypeNoteText, "", "u-a", TextPayload{Content: "draft"})
	f2, _ := NewFrame(TypeNoteText, "", "u-a", TextPayload{Content: "final"})
	_ = s.Send(context.Background(), f1)
	_ = s.Send(context.Background(), f2)

	got, _ := recv(t, b.Messages())
	if got.Type != TypeNoteUpdated {
		t.Errorf("type: got %q", got.Type)
	}
	var p TextPayload
	_ = got.Decode(&p)
	if p.Content != "final" {
		t.Errorf("content: got %q", p.Content)
	}
	if len(persisted) != 2 {
		t.Errorf("intercept calls: got %d", len(persisted))
	}
}

func TestInteractionKind(t *testing.T) {
	if got := InteractionKind(TypeStroke); got != "stroke" {
		t.Errorf("got %q", got)
	}
	if got := InteractionKind(TypeNoteText); got != "" {
		t.Errorf("got %q", got)
	}
}
