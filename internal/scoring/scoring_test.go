package scoring

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/thirteenlanes/internal/arrange"
	"github.com/lox/thirteenlanes/poker"
)

func lanes(top, middle, bottom string) arrange.Arrangement {
	return arrange.Arrangement{
		Top:    poker.MustParseCards(top),
		Middle: poker.MustParseCards(middle),
		Bottom: poker.MustParseCards(bottom),
	}
}

var (
	strong = lanes("Ac Ad Ah", "Kc Kd Kh Ks 2c", "9s Ts Js Qs Ks")
	weak   = lanes("2d 3d 5h", "4c 4d 7h 8s 9c", "6c 6d 6h 8c 8d")
	// Wins the top lane against weak and loses the other two.
	mixed = lanes("Qc Qd 3s", "4h 4s 5c 6s 7d", "2h 2s 2c Jd Jh")
)

func TestScoreSweep(t *testing.T) {
	t.Parallel()
	res, err := Score([]Seat{
		{ID: "a", Arrangement: strong},
		{ID: "b", Arrangement: weak},
	})
	require.NoError(t, err)
	assert.Equal(t, 6, res.Deltas["a"])
	assert.Equal(t, -6, res.Deltas["b"])

	m, ok := res.For("a", "b")
	require.True(t, ok)
	assert.True(t, m.Sweep)
	assert.Equal(t, [3]int{1, 1, 1}, m.Lanes)

	back, ok := res.For("b", "a")
	require.True(t, ok)
	assert.Equal(t, -6, back.Delta)
	assert.Equal(t, [3]int{-1, -1, -1}, back.Lanes)
}

func TestScoreSplitLanes(t *testing.T) {
	t.Parallel()
	res, err := Score([]Seat{
		{ID: "mixed", Arrangement: mixed},
		{ID: "weak", Arrangement: weak},
	})
	require.NoError(t, err)
	// Top: QQ beats 5-high. Middle: fours with 9 kicker beat fours with 7.
	// Bottom: full house of twos loses to sixes full.
	m, _ := res.For("mixed", "weak")
	assert.Equal(t, [3]int{1, -1, -1}, m.Lanes)
	assert.False(t, m.Sweep)
	assert.Equal(t, -1, res.Deltas["mixed"])
	assert.Equal(t, 1, res.Deltas["weak"])
}

func TestScoreTiesAreZero(t *testing.T) {
	t.Parallel()
	other := lanes("2c 3c 5s", "4h 4s 7c 8h 9d", "6s 6c 6h 8d 8h")
	res, err := Score([]Seat{
		{ID: "a", Arrangement: weak},
		{ID: "b", Arrangement: other},
	})
	require.NoError(t, err)
	m, _ := res.For("a", "b")
	assert.Equal(t, [3]int{0, 0, 0}, m.Lanes)
	assert.Equal(t, 0, res.Deltas["a"])
	assert.Equal(t, 0, res.Deltas["b"])
}

func TestScoreFouls(t *testing.T) {
	t.Parallel()

	res, err := Score([]Seat{
		{ID: "a", Arrangement: weak, Fouled: true},
		{ID: "b", Arrangement: weak},
	})
	require.NoError(t, err)
	assert.Equal(t, -6, res.Deltas["a"])
	assert.Equal(t, 6, res.Deltas["b"])

	// A fouled player loses 6 even when their lanes would have swept.
	res, err = Score([]Seat{
		{ID: "a", Arrangement: strong, Fouled: true},
		{ID: "b", Arrangement: weak},
	})
	require.NoError(t, err)
	assert.Equal(t, -6, res.Deltas["a"])

	res, err = Score([]Seat{
		{ID: "a", Fouled: true},
		{ID: "b", Fouled: true},
		{ID: "c", Arrangement: weak},
	})
	require.NoError(t, err)
	assert.Equal(t, -6, res.Deltas["a"])
	assert.Equal(t, -6, res.Deltas["b"])
	assert.Equal(t, 12, res.Deltas["c"])
	m, _ := res.For("a", "b")
	assert.True(t, m.Foul)
	assert.Equal(t, 0, m.Delta)
}

func TestScoreFourPlayers(t *testing.T) {
	t.Parallel()
	res, err := Score([]Seat{
		{ID: "strong", Arrangement: strong},
		{ID: "weak", Arrangement: weak},
		{ID: "mixed", Arrangement: mixed},
		{ID: "fouled", Arrangement: mixed, Fouled: true},
	})
	require.NoError(t, err)
	assert.Len(t, res.Matchups, 6)

	// strong sweeps weak (+6) and mixed (+6), collects 6 from the foul.
	assert.Equal(t, 18, res.Deltas["strong"])
	// weak: -6 vs strong, +1 vs mixed, +6 from the foul.
	assert.Equal(t, 1, res.Deltas["weak"])
	// mixed: -6 vs strong, -1 vs weak, +6 from the foul.
	assert.Equal(t, -1, res.Deltas["mixed"])
	assert.Equal(t, -18, res.Deltas["fouled"])
}

func TestScoreCustomRules(t *testing.T) {
	t.Parallel()
	rules := Rules{FoulPenalty: 4, SweepBonus: 1}
	res, err := rules.Score([]Seat{
		{ID: "a", Arrangement: strong},
		{ID: "b", Arrangement: weak},
		{ID: "c", Fouled: true},
	})
	require.NoError(t, err)
	assert.Equal(t, 4+4, res.Deltas["a"])
	assert.Equal(t, -4+4, res.Deltas["b"])
	assert.Equal(t, -8, res.Deltas["c"])
}

func TestScoreContractViolations(t *testing.T) {
	t.Parallel()

	_, err := Score([]Seat{{ID: "solo", Arrangement: weak}})
	assert.True(t, errors.Is(err, ErrPlayerCount))

	five := make([]Seat, 5)
	for i := range five {
		five[i] = Seat{ID: fmt.Sprint(i), Arrangement: weak}
	}
	_, err = Score(five)
	assert.True(t, errors.Is(err, ErrPlayerCount))

	_, err = Score([]Seat{{ID: "x", Arrangement: weak}, {ID: "x", Arrangement: strong}})
	assert.True(t, errors.Is(err, ErrDuplicatePlayer))

	_, err = Score([]Seat{{ID: "x", Arrangement: weak}, {ID: "y", Arrangement: arrange.Arrangement{}}})
	assert.True(t, errors.Is(err, ErrUnvalidated))
	assert.True(t, errors.Is(err, poker.ErrInvalidHandSize))
}

func randomSeats(rng *rand.Rand, n int) []Seat {
	deck := poker.NewDeck(rng)
	seats := make([]Seat, n)
	for i := range seats {
		hand := deck.Deal(arrange.HandSize)
		seats[i] = Seat{
			ID:          fmt.Sprintf("p%d", i),
			Arrangement: arrange.SortedSplit(hand),
			Fouled:      rng.IntN(4) == 0,
		}
	}
	return seats
}

func TestScoreZeroSumAndOrderIndependent(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewPCG(9, 9))
	for round := 0; round < 500; round++ {
		n := MinPlayers + round%(MaxPlayers-MinPlayers+1)
		seats := randomSeats(rng, n)

		res, err := Score(seats)
		require.NoError(t, err)

		total := 0
		for _, d := range res.Deltas {
			total += d
		}
		require.Equal(t, 0, total, "round %d not zero-sum: %v", round, res.Deltas)

		for _, m := range res.Matchups {
			back, ok := res.For(m.B, m.A)
			require.True(t, ok)
			require.Equal(t, -m.Delta, back.Delta)
			require.Contains(t, []int{-9, -6, -3, -2, -1, 0, 1, 2, 3, 6, 9}, m.Delta)
		}

		shuffled := append([]Seat(nil), seats...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		again, err := Score(shuffled)
		require.NoError(t, err)
		require.Equal(t, res.Deltas, again.Deltas)

		// Re-scoring the same input is idempotent.
		twice, err := Score(seats)
		require.NoError(t, err)
		require.Equal(t, res, twice)
	}
}
