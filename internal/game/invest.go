package game

import (
	"crypto/rand"
	"errors"
	"math/big"
)

type Phase string

const (
	PhaseWaiting    Phase = "waiting"
	PhaseInvestment Phase = "investment"
	PhaseResults    Phase = "results"
)

// StartingMoney every player enters the room with
const StartingMoney = 100000.0

var (
	ErrNotHost          = errors.New("only the host can do that")
	ErrWrongPhase       = errors.New("not allowed in this phase")
	ErrUnknownPlayer    = errors.New("player not in room")
	ErrUnknownCompany   = errors.New("company not in room")
	ErrDuplicateCompany = errors.New("company already added")
	ErrDuplicatePlayer  = errors.New("player already joined")
	ErrInvalidAmount    = errors.New("invalid investment amount")
	ErrInsufficientCash = errors.New("amount exceeds remaining money")
	ErrNotReadyToStart  = errors.New("need at least one player and one company")
)

type Player struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	RemainingMoney float64            `json:"remaining_money"`
	Investments    map[string]float64 `json:"investments"`
	Ready          bool               `json:"ready"`
	FinalValue     float64            `json:"final_value"`
}

type Company struct {
	Name            string  `json:"name"`
	Growth          float64 `json:"growth"` // seeded on add, recomputed at results
	TotalInvestment float64 `json:"total_investment"`
}

// RandFloat returns a cryptographically secure random float64 in [0.0, 1.0).
// Shared by every draw in the app (company growth, gacha pulls).
func RandFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(1<<53))
	return float64(n.Int64()) / float64(1<<53)
}

// Game is the investment room state machine: waiting -> investment ->
// results, no way back. All mutation happens under the owning room's lock;
// the struct itself is not goroutine safe.
type Game struct {
	RoomID    string
	HostID    string
	Phase     Phase
	Players   map[string]*Player
	Companies []*Company

	randFloat func() float64
}

func New(roomID string) *Game {
	return &Game{
		RoomID:    roomID,
		Phase:     PhaseWaiting,
		Players:   make(map[string]*Player),
		randFloat: RandFloat,
	}
}

// NewWithRand injects the random source, used by tests for determinism
func NewWithRand(roomID string, randFloat func() float64) *Game {
	g := New(roomID)
	g.randFloat = randFloat
	return g
}

// AddPlayer joins a player during the waiting phase. The first player
// becomes host.
func (g *Game) AddPlayer(id, name string) error {
	if g.Phase != PhaseWaiting {
		return ErrWrongPhase
	}
	if _, ok := g.Players[id]; ok {
		return ErrDuplicatePlayer
	}

	g.Players[id] = &Player{
		ID:             id,
		Name:           name,
		RemainingMoney: StartingMoney,
		Investments:    make(map[string]float64),
	}
	if g.HostID == "" {
		g.HostID = id
	}
	return nil
}

// RemovePlayer drops a player. When the host leaves, an arbitrary remaining
// player inherits the role. Returns the new host id and whether the room is
// now empty.
func (g *Game) RemovePlayer(id string) (newHostID string, empty bool) {
	delete(g.Players, id)
	if len(g.Players) == 0 {
		g.HostID = ""
		return "", true
	}
	if g.HostID == id {
		for pid := range g.Players {
			g.HostID = pid
			break
		}
	}
	return g.HostID, false
}

// AddCompany registers a company for the coming round, host only
func (g *Game) AddCompany(callerID, name string) error {
	if callerID != g.HostID {
		return ErrNotHost
	}
	if g.Phase != PhaseWaiting {
		return ErrWrongPhase
	}
	if name == "" {
		return ErrUnknownCompany
	}
	for _, c := range g.Companies {
		if c.Name == name {
			return ErrDuplicateCompany
		}
	}

	g.Companies = append(g.Companies, &Company{
		Name:   name,
		Growth: g.randFloat()*2 - 1, // seed, replaced when results are rolled
	})
	return nil
}

// Start moves the room into the investment phase, host only
func (g *Game) Start(callerID string) error {
	if callerID != g.HostID {
		return ErrNotHost
	}
	if g.Phase != PhaseWaiting {
		return ErrWrongPhase
	}
	if len(g.Players) < 1 || len(g.Companies) < 1 {
		return ErrNotReadyToStart
	}
	g.Phase = PhaseInvestment
	return nil
}

// SubmitInvestment stakes an amount on a company. Resubmitting for the same
// company replaces the prior stake: the old amount is returned to the
// player's pool before the new one is checked against it.
func (g *Game) SubmitInvestment(playerID, company string, amount float64) error {
	if g.Phase != PhaseInvestment {
		return ErrWrongPhase
	}
	p, ok := g.Players[playerID]
	if !ok {
		return ErrUnknownPlayer
	}
	if !g.hasCompany(company) {
		return ErrUnknownCompany
	}
	if amount < 0 {
		return ErrInvalidAmount
	}

	available := p.RemainingMoney + p.Investments[company]
	if amount > available {
		return ErrInsufficientCash
	}

	p.RemainingMoney = available - amount
	if amount == 0 {
		delete(p.Investments, company)
	} else {
		p.Investments[company] = amount
	}
	return nil
}

// Ready marks a player done with the investment phase
func (g *Game) Ready(playerID string) error {
	if g.Phase != PhaseInvestment {
		return ErrWrongPhase
	}
	p, ok := g.Players[playerID]
	if !ok {
		return ErrUnknownPlayer
	}
	p.Ready = true
	return nil
}

// AllReady reports whether every connected player has signaled ready
func (g *Game) AllReady() bool {
	if len(g.Players) == 0 {
		return false
	}
	for _, p := range g.Players {
		if !p.Ready {
			return false
		}
	}
	return true
}

// CalculateResults rolls each company's growth and settles every player's
// final value. Growth is a uniform draw in [-1, 1) nudged upward by the size
// of the total stake: heavier investment makes a company more likely to grow.
// Only reachable from the investment phase; afterwards the room is frozen in
// results.
func (g *Game) CalculateResults() error {
	if g.Phase != PhaseInvestment {
		return ErrWrongPhase
	}

	for _, c := range g.Companies {
		c.TotalInvestment = 0
		for _, p := range g.Players {
			c.TotalInvestment += p.Investments[c.Name]
		}
		c.Growth = (g.randFloat()*2 - 1) + (c.TotalInvestment/10000)*0.5
	}

	for _, p := range g.Players {
		final := p.RemainingMoney
		for _, c := range g.Companies {
			final += p.Investments[c.Name] * (1 + c.Growth)
		}
		p.FinalValue = final
	}

	g.Phase = PhaseResults
	return nil
}

func (g *Game) hasCompany(name string) bool {
	for _, c := range g.Companies {
		if c.Name == name {
			return true
		}
	}
	return false
}

// State is the full room snapshot broadcast to every client after each
// mutation
type State struct {
	RoomID    string     `json:"room_id"`
	HostID    string     `json:"host_id"`
	Phase     Phase      `json:"phase"`
	Players   []*Player  `json:"players"`
	Companies []*Company `json:"companies"`
}

// Snapshot serializes the room for the gameState broadcast
func (g *Game) Snapshot() *State {
	players := make([]*Player, 0, len(g.Players))
	for _, p := range g.Players {
		players = append(players, p)
	}
	return &State{
		RoomID:    g.RoomID,
		HostID:    g.HostID,
		Phase:     g.Phase,
		Players:   players,
		Companies: g.Companies,
	}
}
