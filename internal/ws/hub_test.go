package ws

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"hamsterhub/internal/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubGetOrCreateIsIdempotent(t *testing.T) {
	hub := NewHub(time.Hour)

	r1 := hub.GetOrCreate("room-1")
	r2 := hub.GetOrCreate("room-1")

	assert.Same(t, r1, r2)
	assert.Equal(t, 1, hub.RoomCount())
}

func TestHubRemove(t *testing.T) {
	hub := NewHub(time.Hour)
	hub.GetOrCreate("room-1")
	hub.GetOrCreate("room-2")

	hub.Remove("room-1")
	assert.Nil(t, hub.Get("room-1"))
	assert.NotNil(t, hub.Get("room-2"))
	assert.Equal(t, 1, hub.RoomCount())

	// removing twice is harmless
	hub.Remove("room-1")
	assert.Equal(t, 1, hub.RoomCount())
}

func TestHubEvictsIdleRooms(t *testing.T) {
	hub := NewHub(time.Minute)
	stale := hub.GetOrCreate("stale")
	fresh := hub.GetOrCreate("fresh")

	stale.mu.Lock()
	stale.lastActivity = time.Now().Add(-2 * time.Minute)
	stale.mu.Unlock()

	hub.evictIdle()

	assert.Nil(t, hub.Get("stale"))
	assert.Same(t, fresh, hub.Get("fresh"))
}

// testClient attaches a connection-less client, events go straight through
// HandleMessage the way the read pump would deliver them
func testClient(room *Room, id string) *Client {
	c := NewClient(id, 1, nil, room)
	room.Attach(c)
	return c
}

func event(t *testing.T, typ string, payload interface{}) []byte {
	t.Helper()
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		raw = b
	}
	msg, err := json.Marshal(Event{Type: typ, Value: raw})
	require.NoError(t, err)
	return msg
}

func drain(c *Client) []map[string]json.RawMessage {
	var out []map[string]json.RawMessage
	for {
		select {
		case msg := <-c.Send:
			var m map[string]json.RawMessage
			_ = json.Unmarshal(msg, &m)
			out = append(out, m)
		default:
			return out
		}
	}
}

func lastMessageType(t *testing.T, c *Client) string {
	t.Helper()
	msgs := drain(c)
	require.NotEmpty(t, msgs)
	var typ string
	require.NoError(t, json.Unmarshal(msgs[len(msgs)-1]["type"], &typ))
	return typ
}

func TestRoomGameFlowOverMessages(t *testing.T) {
	hub := NewHub(time.Hour)
	room := hub.GetOrCreate("room-1")

	host := testClient(room, "c1")
	guest := testClient(room, "c2")

	room.HandleMessage(host, event(t, "joinGame", joinGamePayload{Name: "alice"}))
	room.HandleMessage(guest, event(t, "joinGame", joinGamePayload{Name: "bob"}))
	room.HandleMessage(host, event(t, "addCompany", addCompanyPayload{Name: "AcmeCorp"}))
	room.HandleMessage(host, event(t, "startGame", nil))

	assert.Equal(t, game.PhaseInvestment, room.game.Phase)
	assert.Equal(t, "c1", room.game.HostID)

	room.HandleMessage(host, event(t, "submitInvestment", investPayload{Company: "AcmeCorp", Amount: 5000}))
	room.HandleMessage(host, event(t, "readyForNext", nil))
	room.HandleMessage(guest, event(t, "readyForNext", nil))

	// last ready flips the room into results
	assert.Equal(t, game.PhaseResults, room.game.Phase)
	assert.Equal(t, "gameState", lastMessageType(t, host))
	assert.Equal(t, "gameState", lastMessageType(t, guest))
}

func TestRoomRejectsGuestCompany(t *testing.T) {
	hub := NewHub(time.Hour)
	room := hub.GetOrCreate("room-1")

	host := testClient(room, "c1")
	guest := testClient(room, "c2")

	room.HandleMessage(host, event(t, "joinGame", joinGamePayload{Name: "alice"}))
	room.HandleMessage(guest, event(t, "joinGame", joinGamePayload{Name: "bob"}))
	drain(guest)

	room.HandleMessage(guest, event(t, "addCompany", addCompanyPayload{Name: "AcmeCorp"}))

	assert.Equal(t, "error", lastMessageType(t, guest))
	assert.Empty(t, room.game.Companies)
}

func TestRoomUnknownEvent(t *testing.T) {
	hub := NewHub(time.Hour)
	room := hub.GetOrCreate("room-1")
	c := testClient(room, "c1")
	drain(c)

	room.HandleMessage(c, event(t, "doBarrelRoll", nil))
	assert.Equal(t, "error", lastMessageType(t, c))
}

func TestRoomHostHandoffOnDisconnect(t *testing.T) {
	hub := NewHub(time.Hour)
	room := hub.GetOrCreate("room-1")

	host := testClient(room, "c1")
	guest := testClient(room, "c2")
	room.HandleMessage(host, event(t, "joinGame", joinGamePayload{Name: "alice"}))
	room.HandleMessage(guest, event(t, "joinGame", joinGamePayload{Name: "bob"}))

	room.Disconnect(host)

	assert.Equal(t, "c2", room.game.HostID)
	assert.NotNil(t, hub.Get("room-1"))
}

func TestBroadcastDuringClientChurn(t *testing.T) {
	hub := NewHub(time.Hour)
	room := hub.GetOrCreate("room-1")

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				room.broadcastState()
			}
		}
	}()

	// clients come and go while broadcasts are in flight; a departed
	// client's Send must stay safe to deliver into
	for i := 0; i < 500; i++ {
		c := NewClient(fmt.Sprintf("c%d", i), 1, nil, room)
		room.Attach(c)
		room.Disconnect(c)
	}

	close(stop)
	wg.Wait()
}

func TestRoomTornDownWhenEmpty(t *testing.T) {
	hub := NewHub(time.Hour)
	room := hub.GetOrCreate("room-1")

	only := testClient(room, "c1")
	room.HandleMessage(only, event(t, "joinGame", joinGamePayload{Name: "alice"}))

	room.Disconnect(only)

	assert.Nil(t, hub.Get("room-1"))
	assert.Equal(t, 0, hub.RoomCount())
}
