package ws

import (
	"testing"
)

func testClient(userID, gameID string) *Client {
	return NewClient(userID, gameID, nil)
}

func drain(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg := <-c.send:
		return msg
	default:
		t.Fatalf("no frame queued for %s", c.UserID)
		return nil
	}
}

func TestAttachLookupDetach(t *testing.T) {
	r := NewRegistry()
	c := testClient("u1", "g1")

	r.Attach(c)
	if r.Lookup("g1", "u1") != c {
		t.Fatal("attached client not found")
	}
	if r.Connected("g1") != 1 {
		t.Errorf("Connected = %d, want 1", r.Connected("g1"))
	}

	r.Detach(c)
	if r.Lookup("g1", "u1") != nil {
		t.Error("detached client still found")
	}
	if r.Connected("g1") != 0 {
		t.Errorf("Connected = %d, want 0", r.Connected("g1"))
	}
}

func TestAttachReplacesStaleChannel(t *testing.T) {
	r := NewRegistry()
	stale := testClient("u1", "g1")
	fresh := testClient("u1", "g1")

	r.Attach(stale)
	r.Attach(fresh)

	if r.Lookup("g1", "u1") != fresh {
		t.Fatal("fresh channel did not replace stale one")
	}
	select {
	case <-stale.done:
	default:
		t.Error("stale channel was not closed")
	}
	if r.Connected("g1") != 1 {
		t.Errorf("Connected = %d, want 1", r.Connected("g1"))
	}
}

func TestDetachIgnoresReplacedClient(t *testing.T) {
	r := NewRegistry()
	old := testClient("u1", "g1")
	current := testClient("u1", "g1")

	r.Attach(old)
	r.Attach(current)
	// The old read pump detaching late must not evict the new channel.
	r.Detach(old)

	if r.Lookup("g1", "u1") != current {
		t.Error("late detach of a replaced client evicted the live one")
	}
}

func TestBroadcastReachesAllClients(t *testing.T) {
	r := NewRegistry()
	clients := []*Client{
		testClient("u1", "g1"),
		testClient("u2", "g1"),
		testClient("u3", "g1"),
	}
	for _, c := range clients {
		r.Attach(c)
	}
	other := testClient("u9", "g2")
	r.Attach(other)

	r.Broadcast("g1", []byte("hello"))

	for _, c := range clients {
		if string(drain(t, c)) != "hello" {
			t.Errorf("client %s got wrong frame", c.UserID)
		}
	}
	select {
	case <-other.send:
		t.Error("broadcast leaked to another table")
	default:
	}
}

func TestBroadcastFuncPersonalizesFrames(t *testing.T) {
	r := NewRegistry()
	a := testClient("u1", "g1")
	b := testClient("u2", "g1")
	r.Attach(a)
	r.Attach(b)

	r.BroadcastFunc("g1", func(userID string) []byte {
		if userID == "u2" {
			return nil
		}
		return []byte("for " + userID)
	})

	if string(drain(t, a)) != "for u1" {
		t.Error("personalized frame wrong for u1")
	}
	select {
	case <-b.send:
		t.Error("skipped recipient still received a frame")
	default:
	}
}

func TestSendToClosedClientDetaches(t *testing.T) {
	r := NewRegistry()
	c := testClient("u1", "g1")
	r.Attach(c)
	c.close()

	if r.Send(c, []byte("x")) {
		t.Error("send to closed client reported success")
	}
	if r.Lookup("g1", "u1") != nil {
		t.Error("closed client still attached after failed send")
	}
}

func TestSendFullBufferDetaches(t *testing.T) {
	r := NewRegistry()
	c := testClient("u1", "g1")
	r.Attach(c)

	for i := 0; i < sendBuffer; i++ {
		if !r.Send(c, []byte("fill")) {
			t.Fatalf("send %d failed before the buffer filled", i)
		}
	}
	if r.Send(c, []byte("overflow")) {
		t.Error("send beyond buffer reported success")
	}
	if r.Lookup("g1", "u1") != nil {
		t.Error("overflowing client was not detached")
	}
}
