package realtime

import (
	"testing"

	"github.com/google/uuid"
)

func newTestSession(userID uuid.UUID, staff bool) *Session {
	return &Session{
		UserID: userID,
		Staff:  staff,
		send:   make(chan Event, sendBuffer),
	}
}

func TestHubRegistryAndPush(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	if hub.Online(userID) {
		t.Errorf("user online before registering")
	}

	first := newTestSession(userID, false)
	second := newTestSession(userID, false)
	if !hub.register(first) || !hub.register(second) {
		t.Fatalf("register failed on open hub")
	}
	if !hub.Online(userID) {
		t.Errorf("user offline with two sessions open")
	}

	hub.PushToUser(userID, Event{Name: EventNotificationOrder, Payload: "hello"})
	for i, s := range []*Session{first, second} {
		select {
		case ev := <-s.send:
			if ev.Name != EventNotificationOrder {
				t.Errorf("session %d got event %q, want %q", i, ev.Name, EventNotificationOrder)
			}
		default:
			t.Errorf("session %d received nothing", i)
		}
	}

	// Pushes to other users do not leak here.
	hub.PushToUser(uuid.New(), Event{Name: EventChatMessage})
	select {
	case ev := <-first.send:
		t.Errorf("unexpected event %q for unrelated push", ev.Name)
	default:
	}

	hub.unregister(first)
	if !hub.Online(userID) {
		t.Errorf("user offline while one session remains")
	}
	hub.unregister(second)
	if hub.Online(userID) {
		t.Errorf("user still online after both sessions closed")
	}

	// Unregistering twice must not double-close the send channel.
	hub.unregister(second)
}

func TestHubPushToStaff(t *testing.T) {
	hub := NewHub()

	staff := newTestSession(uuid.New(), true)
	customer := newTestSession(uuid.New(), false)
	hub.register(staff)
	hub.register(customer)

	hub.PushToStaff(Event{Name: EventStaffNewOrder})

	select {
	case ev := <-staff.send:
		if ev.Name != EventStaffNewOrder {
			t.Errorf("staff got %q, want %q", ev.Name, EventStaffNewOrder)
		}
	default:
		t.Errorf("staff session received nothing")
	}
	select {
	case ev := <-customer.send:
		t.Errorf("customer received staff event %q", ev.Name)
	default:
	}
}

func TestHubDropsFramesForSlowSession(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	s := newTestSession(userID, false)
	hub.register(s)

	// Fill the buffer and push one more; the extra frame is dropped rather
	// than blocking the sender.
	for i := 0; i < sendBuffer+10; i++ {
		hub.PushToUser(userID, Event{Name: EventChatMessage})
	}

	if got := len(s.send); got != sendBuffer {
		t.Errorf("buffered frames = %d, want %d", got, sendBuffer)
	}
}

func TestHubShutdownRejectsRegistrations(t *testing.T) {
	hub := NewHub()
	hub.Shutdown()

	if hub.register(newTestSession(uuid.New(), false)) {
		t.Errorf("register succeeded on a shut-down hub")
	}
}
