// Package table owns the per-round records of one game: who is seated,
// the hands dealt, the arrangements submitted, and cumulative totals.
// The core packages never keep state between calls; this is where it lives.
package table

import (
	"context"
	"errors"
	"fmt"
	"io"
	rand "math/rand/v2"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lox/thirteenlanes/internal/arrange"
	"github.com/lox/thirteenlanes/internal/engine"
	"github.com/lox/thirteenlanes/internal/scoring"
	"github.com/lox/thirteenlanes/poker"
)

var (
	ErrSeatCount        = errors.New("table needs 2 to 4 seats")
	ErrDuplicateSeat    = errors.New("duplicate seat id")
	ErrUnknownPlayer    = errors.New("unknown player")
	ErrNoRound          = errors.New("no round in progress")
	ErrRoundInProgress  = errors.New("round already in progress")
	ErrAlreadySubmitted = errors.New("arrangement already submitted")
	ErrPending          = errors.New("arrangements still pending")
)

// Seat is a player at the table. Bots are arranged by the search with
// their objective; everyone else must submit.
type Seat struct {
	ID        string
	Bot       bool
	Objective string
}

// PlayerResult is one player's line in a settled round.
type PlayerResult struct {
	ID          string              `json:"id"`
	Arrangement arrange.Arrangement `json:"arrangement"`
	Fouled      bool                `json:"fouled"`
	Reason      arrange.FoulReason  `json:"reason,omitempty"`
	Delta       int                 `json:"delta"`
	Total       int                 `json:"total"`
}

// RoundResult is a settled round, ready to broadcast.
type RoundResult struct {
	RoundID  string            `json:"round_id"`
	Number   int               `json:"number"`
	Players  []PlayerResult    `json:"players"`
	Matchups []scoring.Matchup `json:"matchups"`
}

type submission struct {
	arrangement arrange.Arrangement
	verdict     arrange.Verdict
}

type round struct {
	id        string
	number    int
	hands     map[string][]poker.Card
	submitted map[string]submission
}

// Table is safe for concurrent use.
type Table struct {
	id     string
	engine *engine.Engine
	logger *log.Logger

	mu     sync.Mutex
	seats  []Seat
	totals map[string]int
	rounds int
	round  *round
}

// New seats players at a table.
func New(id string, seats []Seat, eng *engine.Engine, logger *log.Logger) (*Table, error) {
	if len(seats) < scoring.MinPlayers || len(seats) > scoring.MaxPlayers {
		return nil, fmt.Errorf("%w: got %d", ErrSeatCount, len(seats))
	}
	totals := make(map[string]int, len(seats))
	for _, s := range seats {
		if _, dup := totals[s.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateSeat, s.ID)
		}
		totals[s.ID] = 0
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Table{
		id:     id,
		engine: eng,
		logger: logger.With("table", id),
		seats:  append([]Seat(nil), seats...),
		totals: totals,
	}, nil
}

// ID returns the table id.
func (t *Table) ID() string {
	return t.id
}

// Seats returns a copy of the seating.
func (t *Table) Seats() []Seat {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Seat(nil), t.seats...)
}

// Deal shuffles a fresh deck and deals 13 cards to every seat, starting a
// new round. It returns the round id. The same rng state always deals the
// same hand to the same seat position.
func (t *Table) Deal(rng *rand.Rand) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.round != nil {
		return "", ErrRoundInProgress
	}

	hands, err := poker.NewDeck(rng).DealHands(len(t.seats), arrange.HandSize)
	if err != nil {
		return "", err
	}
	t.rounds++
	r := &round{
		id:        uuid.NewString(),
		number:    t.rounds,
		hands:     make(map[string][]poker.Card, len(t.seats)),
		submitted: make(map[string]submission, len(t.seats)),
	}
	for i, s := range t.seats {
		r.hands[s.ID] = hands[i]
	}
	t.round = r
	t.logger.Debug("Dealt round", "round", r.id, "number", r.number)
	return r.id, nil
}

// Hand returns a copy of a player's hand in the current round.
func (t *Table) Hand(playerID string) ([]poker.Card, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.round == nil {
		return nil, ErrNoRound
	}
	hand, ok := t.round.hands[playerID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlayer, playerID)
	}
	return append([]poker.Card(nil), hand...), nil
}

// Submit records a player's arrangement after validating it against the
// hand that was dealt. A fouled arrangement is accepted and reported in
// the verdict. Submissions are final.
func (t *Table) Submit(playerID string, a arrange.Arrangement) (arrange.Verdict, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.round == nil {
		return arrange.Verdict{}, ErrNoRound
	}
	return t.submitLocked(t.round, playerID, a)
}

func (t *Table) submitLocked(r *round, playerID string, a arrange.Arrangement) (arrange.Verdict, error) {
	hand, ok := r.hands[playerID]
	if !ok {
		return arrange.Verdict{}, fmt.Errorf("%w: %q", ErrUnknownPlayer, playerID)
	}
	if _, done := r.submitted[playerID]; done {
		return arrange.Verdict{}, fmt.Errorf("%w: %q", ErrAlreadySubmitted, playerID)
	}
	v := t.engine.Validate(hand, a)
	r.submitted[playerID] = submission{arrangement: a.Clone(), verdict: v}
	t.logger.Debug("Arrangement submitted", "player", playerID, "fouled", v.Fouled)
	return v, nil
}

// Pending lists players who have not submitted, in seat order.
func (t *Table) Pending() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.round == nil {
		return nil
	}
	var out []string
	for _, s := range t.seats {
		if _, done := t.round.submitted[s.ID]; !done {
			out = append(out, s.ID)
		}
	}
	return out
}

// AutoArrange searches arrangements for every bot seat that has not
// submitted. Searches run outside the table lock.
func (t *Table) AutoArrange(ctx context.Context) error {
	t.mu.Lock()
	r := t.round
	if r == nil {
		t.mu.Unlock()
		return ErrNoRound
	}
	type job struct {
		seat Seat
		hand []poker.Card
	}
	var jobs []job
	for _, s := range t.seats {
		if _, done := r.submitted[s.ID]; s.Bot && !done {
			jobs = append(jobs, job{seat: s, hand: append([]poker.Card(nil), r.hands[s.ID]...)})
		}
	}
	t.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, j := range jobs {
		g.Go(func() error {
			a, _, err := t.engine.AutoArrange(gctx, j.hand, j.seat.Objective)
			if err != nil {
				return fmt.Errorf("auto-arrange %s: %w", j.seat.ID, err)
			}

			t.mu.Lock()
			defer t.mu.Unlock()
			if t.round != r {
				return nil
			}
			_, err = t.submitLocked(r, j.seat.ID, a)
			if errors.Is(err, ErrAlreadySubmitted) {
				return nil
			}
			return err
		})
	}
	return g.Wait()
}

// Settle scores the round, adds the deltas to the running totals and
// closes the round. Every seat must have submitted.
func (t *Table) Settle() (RoundResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := t.round
	if r == nil {
		return RoundResult{}, ErrNoRound
	}

	seats := make([]scoring.Seat, 0, len(t.seats))
	for _, s := range t.seats {
		sub, done := r.submitted[s.ID]
		if !done {
			return RoundResult{}, fmt.Errorf("%w: %q", ErrPending, s.ID)
		}
		seats = append(seats, scoring.Seat{ID: s.ID, Arrangement: sub.arrangement, Fouled: sub.verdict.Fouled})
	}

	scored, err := t.engine.Score(seats)
	if err != nil {
		return RoundResult{}, err
	}

	result := RoundResult{RoundID: r.id, Number: r.number, Matchups: scored.Matchups}
	for _, s := range t.seats {
		sub := r.submitted[s.ID]
		t.totals[s.ID] += scored.Deltas[s.ID]
		result.Players = append(result.Players, PlayerResult{
			ID:          s.ID,
			Arrangement: sub.arrangement.Clone(),
			Fouled:      sub.verdict.Fouled,
			Reason:      sub.verdict.Reason,
			Delta:       scored.Deltas[s.ID],
			Total:       t.totals[s.ID],
		})
	}
	t.round = nil
	t.logger.Info("Round settled", "round", r.id, "number", r.number)
	return result, nil
}

// Totals returns a copy of the cumulative scores.
func (t *Table) Totals() map[string]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]int, len(t.totals))
	for id, total := range t.totals {
		out[id] = total
	}
	return out
}

// Play runs one full round for a table of bots: deal, auto-arrange, settle.
func (t *Table) Play(ctx context.Context, rng *rand.Rand) (RoundResult, error) {
	if _, err := t.Deal(rng); err != nil {
		return RoundResult{}, err
	}
	if err := t.AutoArrange(ctx); err != nil {
		t.Abandon()
		return RoundResult{}, err
	}
	return t.Settle()
}

// Abandon discards the current round without scoring it.
func (t *Table) Abandon() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.round != nil {
		t.logger.Warn("Round abandoned", "round", t.round.id)
		t.round = nil
	}
}
