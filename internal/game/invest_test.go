package game

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedRand returns the given values in order, then repeats the last one
func fixedRand(values ...float64) func() float64 {
	i := 0
	return func() float64 {
		v := values[i]
		if i < len(values)-1 {
			i++
		}
		return v
	}
}

func TestFirstPlayerBecomesHost(t *testing.T) {
	g := New("room-1")

	require.NoError(t, g.AddPlayer("p1", "alice"))
	require.NoError(t, g.AddPlayer("p2", "bob"))

	assert.Equal(t, "p1", g.HostID)
	assert.Equal(t, StartingMoney, g.Players["p1"].RemainingMoney)
}

func TestDuplicatePlayerRejected(t *testing.T) {
	g := New("room-1")

	require.NoError(t, g.AddPlayer("p1", "alice"))
	assert.ErrorIs(t, g.AddPlayer("p1", "alice again"), ErrDuplicatePlayer)
}

func TestJoinAfterStartRejected(t *testing.T) {
	g := New("room-1")
	require.NoError(t, g.AddPlayer("p1", "alice"))
	require.NoError(t, g.AddCompany("p1", "AcmeCorp"))
	require.NoError(t, g.Start("p1"))

	assert.ErrorIs(t, g.AddPlayer("p2", "late bob"), ErrWrongPhase)
}

func TestHostReassignedOnLeave(t *testing.T) {
	g := New("room-1")
	require.NoError(t, g.AddPlayer("p1", "alice"))
	require.NoError(t, g.AddPlayer("p2", "bob"))

	newHost, empty := g.RemovePlayer("p1")
	assert.False(t, empty)
	assert.Equal(t, "p2", newHost)
	assert.Equal(t, "p2", g.HostID)

	_, empty = g.RemovePlayer("p2")
	assert.True(t, empty)
	assert.Empty(t, g.HostID)
}

func TestOnlyHostAddsCompanies(t *testing.T) {
	g := New("room-1")
	require.NoError(t, g.AddPlayer("p1", "alice"))
	require.NoError(t, g.AddPlayer("p2", "bob"))

	assert.ErrorIs(t, g.AddCompany("p2", "AcmeCorp"), ErrNotHost)
	require.NoError(t, g.AddCompany("p1", "AcmeCorp"))
	assert.ErrorIs(t, g.AddCompany("p1", "AcmeCorp"), ErrDuplicateCompany)
}

func TestStartRequirements(t *testing.T) {
	g := New("room-1")
	require.NoError(t, g.AddPlayer("p1", "alice"))

	assert.ErrorIs(t, g.Start("p1"), ErrNotReadyToStart)

	require.NoError(t, g.AddCompany("p1", "AcmeCorp"))
	assert.ErrorIs(t, g.Start("p2"), ErrNotHost)
	require.NoError(t, g.Start("p1"))
	assert.Equal(t, PhaseInvestment, g.Phase)

	assert.ErrorIs(t, g.Start("p1"), ErrWrongPhase)
}

func TestSubmitInvestment(t *testing.T) {
	g := New("room-1")
	require.NoError(t, g.AddPlayer("p1", "alice"))
	require.NoError(t, g.AddCompany("p1", "AcmeCorp"))

	assert.ErrorIs(t, g.SubmitInvestment("p1", "AcmeCorp", 100), ErrWrongPhase)

	require.NoError(t, g.Start("p1"))

	assert.ErrorIs(t, g.SubmitInvestment("ghost", "AcmeCorp", 100), ErrUnknownPlayer)
	assert.ErrorIs(t, g.SubmitInvestment("p1", "NoSuchCo", 100), ErrUnknownCompany)
	assert.ErrorIs(t, g.SubmitInvestment("p1", "AcmeCorp", -1), ErrInvalidAmount)
	assert.ErrorIs(t, g.SubmitInvestment("p1", "AcmeCorp", StartingMoney+1), ErrInsufficientCash)

	require.NoError(t, g.SubmitInvestment("p1", "AcmeCorp", 30000))
	assert.Equal(t, StartingMoney-30000, g.Players["p1"].RemainingMoney)
}

func TestResubmitReplacesStake(t *testing.T) {
	g := New("room-1")
	require.NoError(t, g.AddPlayer("p1", "alice"))
	require.NoError(t, g.AddCompany("p1", "AcmeCorp"))
	require.NoError(t, g.Start("p1"))

	require.NoError(t, g.SubmitInvestment("p1", "AcmeCorp", 90000))

	// prior stake frees up before the new amount is checked
	require.NoError(t, g.SubmitInvestment("p1", "AcmeCorp", 95000))
	assert.Equal(t, StartingMoney-95000, g.Players["p1"].RemainingMoney)
	assert.Equal(t, 95000.0, g.Players["p1"].Investments["AcmeCorp"])

	// zero withdraws the stake entirely
	require.NoError(t, g.SubmitInvestment("p1", "AcmeCorp", 0))
	assert.Equal(t, StartingMoney, g.Players["p1"].RemainingMoney)
	assert.NotContains(t, g.Players["p1"].Investments, "AcmeCorp")
}

func TestAllReadyGating(t *testing.T) {
	g := New("room-1")
	require.NoError(t, g.AddPlayer("p1", "alice"))
	require.NoError(t, g.AddPlayer("p2", "bob"))
	require.NoError(t, g.AddCompany("p1", "AcmeCorp"))

	assert.False(t, g.AllReady())
	assert.ErrorIs(t, g.Ready("p1"), ErrWrongPhase)

	require.NoError(t, g.Start("p1"))
	require.NoError(t, g.Ready("p1"))
	assert.False(t, g.AllReady())

	require.NoError(t, g.Ready("p2"))
	assert.True(t, g.AllReady())
}

func TestAllReadyEmptyRoom(t *testing.T) {
	g := New("room-1")
	assert.False(t, g.AllReady())
}

func TestCalculateResultsDeterministic(t *testing.T) {
	// every draw returns 0.75, so base growth is 0.75*2-1 = 0.5
	g := NewWithRand("room-1", fixedRand(0.75))
	require.NoError(t, g.AddPlayer("p1", "alice"))
	require.NoError(t, g.AddPlayer("p2", "bob"))
	require.NoError(t, g.AddCompany("p1", "AcmeCorp"))
	require.NoError(t, g.Start("p1"))

	require.NoError(t, g.SubmitInvestment("p1", "AcmeCorp", 10000))
	require.NoError(t, g.SubmitInvestment("p2", "AcmeCorp", 10000))

	require.NoError(t, g.CalculateResults())
	assert.Equal(t, PhaseResults, g.Phase)

	// growth = 0.5 + (20000/10000)*0.5 = 1.5
	acme := g.Companies[0]
	assert.InDelta(t, 20000.0, acme.TotalInvestment, 1e-9)
	assert.InDelta(t, 1.5, acme.Growth, 1e-9)

	// final = 90000 remaining + 10000*(1+1.5) = 115000
	assert.InDelta(t, 115000.0, g.Players["p1"].FinalValue, 1e-9)
	assert.InDelta(t, 115000.0, g.Players["p2"].FinalValue, 1e-9)
}

func TestCalculateResultsHeavierStakeLiftsGrowth(t *testing.T) {
	g := NewWithRand("room-1", fixedRand(0.5)) // base growth 0
	require.NoError(t, g.AddPlayer("p1", "alice"))
	require.NoError(t, g.AddCompany("p1", "Small"))
	require.NoError(t, g.AddCompany("p1", "Big"))
	require.NoError(t, g.Start("p1"))

	require.NoError(t, g.SubmitInvestment("p1", "Small", 1000))
	require.NoError(t, g.SubmitInvestment("p1", "Big", 50000))

	require.NoError(t, g.CalculateResults())

	var small, big *Company
	for _, c := range g.Companies {
		switch c.Name {
		case "Small":
			small = c
		case "Big":
			big = c
		}
	}
	require.NotNil(t, small)
	require.NotNil(t, big)
	assert.Greater(t, big.Growth, small.Growth)
	assert.InDelta(t, 0.05, small.Growth, 1e-9)
	assert.InDelta(t, 2.5, big.Growth, 1e-9)
}

func TestResultsPhaseIsTerminal(t *testing.T) {
	g := NewWithRand("room-1", fixedRand(0.5))
	require.NoError(t, g.AddPlayer("p1", "alice"))
	require.NoError(t, g.AddCompany("p1", "AcmeCorp"))
	require.NoError(t, g.Start("p1"))
	require.NoError(t, g.CalculateResults())

	assert.ErrorIs(t, g.CalculateResults(), ErrWrongPhase)
	assert.ErrorIs(t, g.SubmitInvestment("p1", "AcmeCorp", 10), ErrWrongPhase)
	assert.ErrorIs(t, g.Ready("p1"), ErrWrongPhase)
	assert.ErrorIs(t, g.AddCompany("p1", "Another"), ErrWrongPhase)
}

func TestGrowthStaysInExpectedRange(t *testing.T) {
	g := New("room-1")
	require.NoError(t, g.AddPlayer("p1", "alice"))
	require.NoError(t, g.AddCompany("p1", "AcmeCorp"))
	require.NoError(t, g.Start("p1"))
	require.NoError(t, g.SubmitInvestment("p1", "AcmeCorp", 10000))
	require.NoError(t, g.CalculateResults())

	// uniform [-1,1) plus the 0.5 stake nudge for 10000 invested
	growth := g.Companies[0].Growth
	assert.GreaterOrEqual(t, growth, -1.0+0.5)
	assert.Less(t, growth, 1.0+0.5)
	assert.False(t, math.IsNaN(growth))
}

func TestRandFloatRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		v := RandFloat()
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

func TestSnapshotCarriesFullState(t *testing.T) {
	g := New("room-1")
	require.NoError(t, g.AddPlayer("p1", "alice"))
	require.NoError(t, g.AddCompany("p1", "AcmeCorp"))

	s := g.Snapshot()
	assert.Equal(t, "room-1", s.RoomID)
	assert.Equal(t, "p1", s.HostID)
	assert.Equal(t, PhaseWaiting, s.Phase)
	assert.Len(t, s.Players, 1)
	assert.Len(t, s.Companies, 1)
}
