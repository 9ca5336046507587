package ws

import (
	"errors"
	"sync"
	"time"

	"hamsterhub/internal/logger"
	"hamsterhub/internal/metrics"
)

var errUnknownEvent = errors.New("unknown event type")

// Hub owns the live game rooms
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	ttl   time.Duration
}

func NewHub(ttl time.Duration) *Hub {
	return &Hub{
		rooms: make(map[string]*Room),
		ttl:   ttl,
	}
}

// GetOrCreate returns the room, creating it when it does not exist yet
func (h *Hub) GetOrCreate(roomID string) *Room {
	h.mu.Lock()
	defer h.mu.Unlock()

	if room, ok := h.rooms[roomID]; ok {
		return room
	}
	room := NewRoom(roomID, h)
	h.rooms[roomID] = room
	metrics.ActiveRooms.Set(float64(len(h.rooms)))
	logger.Info("room created", "room", roomID)
	return room
}

// Get returns the room or nil
func (h *Hub) Get(roomID string) *Room {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rooms[roomID]
}

// Remove drops a room from the hub
func (h *Hub) Remove(roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[roomID]; !ok {
		return
	}
	delete(h.rooms, roomID)
	metrics.ActiveRooms.Set(float64(len(h.rooms)))
	logger.Info("room removed", "room", roomID)
}

// RoomCount reports how many rooms are live
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// StartCleanup runs the idle room sweep until the stop channel closes.
// Rooms with no activity past the ttl are evicted and their clients cut.
func (h *Hub) StartCleanup(stop <-chan struct{}) {
	interval := h.ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				h.evictIdle()
			case <-stop:
				return
			}
		}
	}()
}

func (h *Hub) evictIdle() {
	cutoff := time.Now().Add(-h.ttl)

	h.mu.Lock()
	var stale []*Room
	for id, room := range h.rooms {
		if room.LastActivity().Before(cutoff) {
			stale = append(stale, room)
			delete(h.rooms, id)
		}
	}
	metrics.ActiveRooms.Set(float64(len(h.rooms)))
	h.mu.Unlock()

	for _, room := range stale {
		logger.Info("evicting idle room", "room", room.ID)
		for _, c := range room.Clients() {
			c.Conn.Close()
		}
	}
}
