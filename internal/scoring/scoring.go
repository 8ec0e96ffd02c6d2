// Package scoring settles a round: every pair of seated players is compared
// lane by lane, with a sweep bonus for winning all three lanes and a flat
// penalty against a fouled player.
package scoring

import (
	"errors"
	"fmt"

	"github.com/lox/thirteenlanes/internal/arrange"
	"github.com/lox/thirteenlanes/poker"
)

// Player count limits.
const (
	MinPlayers = 2
	MaxPlayers = 4
)

var (
	// ErrPlayerCount is returned when fewer than 2 or more than 4 players are scored.
	ErrPlayerCount = errors.New("scoring needs 2 to 4 players")
	// ErrDuplicatePlayer is returned when two seats share an id.
	ErrDuplicatePlayer = errors.New("duplicate player id")
	// ErrUnvalidated is returned when an arrangement that is not flagged
	// fouled cannot be evaluated, meaning it never went through Validate.
	ErrUnvalidated = errors.New("arrangement not validated")
)

// Rules are the scoring constants.
type Rules struct {
	// FoulPenalty is paid by a fouled player to each unfouled opponent.
	FoulPenalty int
	// SweepBonus is added when one player wins all three lanes against an opponent.
	SweepBonus int
}

// DefaultRules are the standard thirteen lanes constants.
var DefaultRules = Rules{FoulPenalty: 6, SweepBonus: 3}

// Seat is one player's validated input to scoring.
type Seat struct {
	ID          string
	Arrangement arrange.Arrangement
	Fouled      bool
}

// Matchup is the outcome of one pair, always from A's point of view.
type Matchup struct {
	A string `json:"a"`
	B string `json:"b"`
	// Lanes holds +1 when A won the lane, -1 when B won, 0 for a tie,
	// indexed by arrange.Lane. Zero when either player fouled.
	Lanes [3]int `json:"lanes"`
	// Foul is set when exactly one or both players fouled and lane
	// comparison was skipped.
	Foul  bool `json:"foul,omitempty"`
	Sweep bool `json:"sweep,omitempty"`
	// Delta is A's gain (B's loss) for this pair.
	Delta int `json:"delta"`
}

// Result is a scored round.
type Result struct {
	Deltas   map[string]int `json:"deltas"`
	Matchups []Matchup      `json:"matchups"`
}

// Score computes each player's delta using DefaultRules.
func Score(seats []Seat) (Result, error) {
	return DefaultRules.Score(seats)
}

// Score computes each player's delta. The sum of all deltas is zero, and
// the result does not depend on seat order.
func (r Rules) Score(seats []Seat) (Result, error) {
	if len(seats) < MinPlayers || len(seats) > MaxPlayers {
		return Result{}, fmt.Errorf("%w: got %d", ErrPlayerCount, len(seats))
	}

	evals := make([]arrange.Evaluations, len(seats))
	deltas := make(map[string]int, len(seats))
	for i, s := range seats {
		if _, dup := deltas[s.ID]; dup {
			return Result{}, fmt.Errorf("%w: %q", ErrDuplicatePlayer, s.ID)
		}
		deltas[s.ID] = 0
		if s.Fouled {
			continue
		}
		e, err := s.Arrangement.Evaluate()
		if err != nil {
			return Result{}, fmt.Errorf("%w: player %q: %w", ErrUnvalidated, s.ID, err)
		}
		evals[i] = e
	}

	matchups := make([]Matchup, 0, len(seats)*(len(seats)-1)/2)
	for i := 0; i < len(seats); i++ {
		for j := i + 1; j < len(seats); j++ {
			m := r.pair(seats[i], seats[j], evals[i], evals[j])
			deltas[m.A] += m.Delta
			deltas[m.B] -= m.Delta
			matchups = append(matchups, m)
		}
	}

	return Result{Deltas: deltas, Matchups: matchups}, nil
}

func (r Rules) pair(a, b Seat, ea, eb arrange.Evaluations) Matchup {
	m := Matchup{A: a.ID, B: b.ID}
	switch {
	case a.Fouled && b.Fouled:
		m.Foul = true
		return m
	case a.Fouled:
		m.Foul = true
		m.Delta = -r.FoulPenalty
		return m
	case b.Fouled:
		m.Foul = true
		m.Delta = r.FoulPenalty
		return m
	}

	sum := 0
	for _, lane := range arrange.Lanes {
		s := poker.Compare(ea.Lane(lane), eb.Lane(lane))
		m.Lanes[lane] = s
		sum += s
	}
	m.Delta = sum
	if sum == len(arrange.Lanes) || sum == -len(arrange.Lanes) {
		m.Sweep = true
		if sum > 0 {
			m.Delta += r.SweepBonus
		} else {
			m.Delta -= r.SweepBonus
		}
	}
	return m
}

// For returns the matchup between two players from a's point of view.
func (res Result) For(a, b string) (Matchup, bool) {
	for _, m := range res.Matchups {
		switch {
		case m.A == a && m.B == b:
			return m, true
		case m.A == b && m.B == a:
			return m.flip(), true
		}
	}
	return Matchup{}, false
}

func (m Matchup) flip() Matchup {
	out := Matchup{A: m.B, B: m.A, Foul: m.Foul, Sweep: m.Sweep, Delta: -m.Delta}
	for i, s := range m.Lanes {
		out.Lanes[i] = -s
	}
	return out
}
