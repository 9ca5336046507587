package ws

import (
	"encoding/json"
	"sync"
	"time"

	"hamsterhub/internal/game"
	"hamsterhub/internal/logger"
	"hamsterhub/internal/metrics"
)

// Event is the envelope for every client -> server message
type Event struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}

type joinGamePayload struct {
	Name string `json:"name"`
}

type addCompanyPayload struct {
	Name string `json:"name"`
}

type investPayload struct {
	Company string  `json:"company"`
	Amount  float64 `json:"amount"`
}

// Room couples a set of websocket clients to one investment game. All game
// mutation goes through the room mutex.
type Room struct {
	ID  string
	hub *Hub

	mu           sync.RWMutex
	game         *game.Game
	clients      map[string]*Client
	lastActivity time.Time
}

func NewRoom(id string, hub *Hub) *Room {
	return &Room{
		ID:           id,
		hub:          hub,
		game:         game.New(id),
		clients:      make(map[string]*Client),
		lastActivity: time.Now(),
	}
}

// Attach registers the connection with the room. The client becomes a player
// only once it sends joinGame.
func (r *Room) Attach(c *Client) {
	r.mu.Lock()
	r.clients[c.ID] = c
	r.lastActivity = time.Now()
	r.mu.Unlock()

	r.sendTo(c, "roomJoined", map[string]interface{}{
		"room_id":   r.ID,
		"client_id": c.ID,
	})
	r.broadcastState()
}

// Disconnect drops the client, reassigns the host if needed and tears the
// room down when the last player leaves. The Send channel is never closed
// here: a broadcast that raced the removal may still deliver into its buffer,
// and the write pump shuts down via the client's Done signal instead.
func (r *Room) Disconnect(c *Client) {
	r.mu.Lock()
	delete(r.clients, c.ID)
	_, empty := r.game.RemovePlayer(c.ID)
	r.lastActivity = time.Now()
	remaining := len(r.clients)
	r.mu.Unlock()

	if empty && remaining == 0 {
		r.hub.Remove(r.ID)
		return
	}
	r.broadcastState()
}

// HandleMessage dispatches one client event
func (r *Room) HandleMessage(c *Client, raw []byte) {
	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		r.sendError(c, "bad message")
		return
	}

	r.mu.Lock()
	r.lastActivity = time.Now()
	err := r.apply(c, ev)
	r.mu.Unlock()

	if err != nil {
		r.sendError(c, err.Error())
		return
	}
	r.broadcastState()
}

// apply runs one event against the game, caller holds the lock
func (r *Room) apply(c *Client, ev Event) error {
	switch ev.Type {
	case "joinGame":
		var p joinGamePayload
		if err := json.Unmarshal(ev.Value, &p); err != nil {
			return err
		}
		return r.game.AddPlayer(c.ID, p.Name)

	case "addCompany":
		var p addCompanyPayload
		if err := json.Unmarshal(ev.Value, &p); err != nil {
			return err
		}
		return r.game.AddCompany(c.ID, p.Name)

	case "startGame":
		return r.game.Start(c.ID)

	case "submitInvestment":
		var p investPayload
		if err := json.Unmarshal(ev.Value, &p); err != nil {
			return err
		}
		return r.game.SubmitInvestment(c.ID, p.Company, p.Amount)

	case "readyForNext":
		if err := r.game.Ready(c.ID); err != nil {
			return err
		}
		if r.game.AllReady() {
			if err := r.game.CalculateResults(); err != nil {
				return err
			}
			metrics.GameRounds.Inc()
			logger.Info("game round settled", "room", r.ID, "players", len(r.game.Players))
		}
		return nil

	default:
		return errUnknownEvent
	}
}

// broadcastState pushes the full game snapshot to every client
func (r *Room) broadcastState() {
	r.mu.RLock()
	snapshot := r.game.Snapshot()
	clients := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}
	r.mu.RUnlock()

	msg, err := json.Marshal(map[string]interface{}{
		"type":    "gameState",
		"payload": snapshot,
	})
	if err != nil {
		logger.Error("snapshot marshal failed", "room", r.ID, "error", err)
		return
	}

	for _, c := range clients {
		select {
		case c.Send <- msg:
		default:
			logger.Warn("dropping slow client", "room", r.ID, "client", c.ID)
		}
	}
}

func (r *Room) sendTo(c *Client, msgType string, payload interface{}) {
	msg, err := json.Marshal(map[string]interface{}{
		"type":    msgType,
		"payload": payload,
	})
	if err != nil {
		return
	}
	select {
	case c.Send <- msg:
	default:
	}
}

func (r *Room) sendError(c *Client, message string) {
	r.sendTo(c, "error", map[string]string{"message": message})
}

// Clients returns a stable copy of the connected clients
func (r *Room) Clients() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c)
	}
	return out
}

// LastActivity is used by the hub's idle sweep
func (r *Room) LastActivity() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastActivity
}
