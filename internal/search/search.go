// Package search finds the best legal arrangement of a 13 card hand for an
// objective by exhaustive enumeration: every 5 card bottom (1287 subsets),
// every 5 card middle from the remaining 8 (56 subsets), the last 3 cards on
// top. Fouled candidates are skipped and the first maximum found wins.
package search

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/lox/thirteenlanes/internal/arrange"
	"github.com/lox/thirteenlanes/poker"
)

// ErrInvalidHand is returned when the hand is not 13 distinct valid cards.
var ErrInvalidHand = errors.New("search needs 13 distinct cards")

// Candidates is the number of partitions enumerated per hand.
const Candidates = 1287 * 56

var (
	bottomCombos = combinations(arrange.HandSize, arrange.BottomSize)
	middleCombos = combinations(arrange.HandSize-arrange.BottomSize, arrange.MiddleSize)
	topRests     = complements(arrange.HandSize-arrange.BottomSize, middleCombos)
)

// combinations lists every k-subset of 0..n-1 in lexicographic order.
func combinations(n, k int) [][]uint8 {
	var out [][]uint8
	idx := make([]uint8, k)
	var rec func(pos int, start uint8)
	rec = func(pos int, start uint8) {
		if pos == k {
			out = append(out, append([]uint8(nil), idx...))
			return
		}
		for i := start; int(i) <= n-(k-pos); i++ {
			idx[pos] = i
			rec(pos+1, i+1)
		}
	}
	rec(0, 0)
	return out
}

func complements(n int, combos [][]uint8) [][]uint8 {
	out := make([][]uint8, len(combos))
	for ci, c := range combos {
		var used uint32
		for _, i := range c {
			used |= 1 << i
		}
		for i := 0; i < n; i++ {
			if used&(1<<i) == 0 {
				out[ci] = append(out[ci], uint8(i))
			}
		}
	}
	return out
}

// Result is the outcome of a search.
type Result struct {
	Arrangement arrange.Arrangement
	Evaluations arrange.Evaluations
	Value       float64
	// Considered counts the legal candidates the objective scored.
	Considered int
	// Fallback is set when the rank-sorted split was returned instead of a
	// searched arrangement, either because nothing legal was found or the
	// search ran out of time.
	Fallback bool
}

// best tracks the maximum of one slice of the enumeration. ordinal is the
// candidate's position in the sequential order, used to break ties between
// slices the same way a single pass would.
type best struct {
	found      bool
	value      float64
	ordinal    int
	fixed      arrange.Fixed
	evals      arrange.Evaluations
	considered int
}

func (b *best) merge(o best) {
	b.considered += o.considered
	if !o.found {
		return
	}
	if !b.found || o.value > b.value || (o.value == b.value && o.ordinal < b.ordinal) {
		b.found, b.value, b.ordinal, b.fixed, b.evals = true, o.value, o.ordinal, o.fixed, o.evals
	}
}

func fixedHand(hand []poker.Card) ([arrange.HandSize]poker.Card, error) {
	var out [arrange.HandSize]poker.Card
	if len(hand) != arrange.HandSize {
		return out, fmt.Errorf("%w: got %d cards", ErrInvalidHand, len(hand))
	}
	var seen poker.Hand
	for i, c := range hand {
		if !c.Valid() || seen.HasCard(c) {
			return out, fmt.Errorf("%w: bad or repeated card at %d", ErrInvalidHand, i)
		}
		seen.AddCard(c)
		out[i] = c
	}
	return out, nil
}

// scan searches bottom combinations [lo, hi). ctx is checked once per
// bottom combination.
func scan(ctx context.Context, hand *[arrange.HandSize]poker.Card, obj Objective, lo, hi int) (best, error) {
	var b best
	var f arrange.Fixed
	var rest [arrange.HandSize - arrange.BottomSize]poker.Card

	for bi := lo; bi < hi; bi++ {
		if err := ctx.Err(); err != nil {
			return b, err
		}

		var used uint16
		for i, ci := range bottomCombos[bi] {
			f.Bottom[i] = hand[ci]
			used |= 1 << ci
		}
		n := 0
		for i := range hand {
			if used&(1<<i) == 0 {
				rest[n] = hand[i]
				n++
			}
		}
		bottom := poker.Eval5(&f.Bottom)

		for mi, mc := range middleCombos {
			for i, ci := range mc {
				f.Middle[i] = rest[ci]
			}
			middle := poker.Eval5(&f.Middle)
			if poker.Compare(bottom, middle) < 0 {
				continue
			}
			for i, ci := range topRests[mi] {
				f.Top[i] = rest[ci]
			}
			top := poker.Eval3(&f.Top)
			if poker.Compare(middle, top) < 0 {
				continue
			}

			evals := arrange.Evaluations{Top: top, Middle: middle, Bottom: bottom}
			v := obj(evals)
			b.considered++
			if !b.found || v > b.value {
				b.found = true
				b.value = v
				b.ordinal = bi*len(middleCombos) + mi
				b.fixed = f
				b.evals = evals
			}
		}
	}
	return b, nil
}

func (b best) result(hand []poker.Card) Result {
	if !b.found {
		return Result{
			Arrangement: arrange.SortedSplit(hand),
			Considered:  b.considered,
			Fallback:    true,
		}
	}
	return Result{
		Arrangement: b.fixed.Arrangement(),
		Evaluations: b.evals,
		Value:       b.value,
		Considered:  b.considered,
	}
}

// Arrange runs the search on the calling goroutine.
func Arrange(hand []poker.Card, obj Objective) (Result, error) {
	h, err := fixedHand(hand)
	if err != nil {
		return Result{}, err
	}
	b, err := scan(context.Background(), &h, obj, 0, len(bottomCombos))
	if err != nil {
		return Result{}, err
	}
	return b.result(hand), nil
}

// ArrangeParallel splits the bottom combinations across workers and merges
// their maxima. The result equals Arrange's. workers <= 0 uses GOMAXPROCS.
// It returns ctx.Err() if ctx is cancelled before every worker finishes.
func ArrangeParallel(ctx context.Context, hand []poker.Card, obj Objective, workers int) (Result, error) {
	h, err := fixedHand(hand)
	if err != nil {
		return Result{}, err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, len(bottomCombos))

	g, gctx := errgroup.WithContext(ctx)
	results := make(chan best, workers)

	chunk := len(bottomCombos) / workers
	remainder := len(bottomCombos) % workers
	lo := 0
	for w := 0; w < workers; w++ {
		hi := lo + chunk
		if w < remainder {
			hi++
		}
		start, end := lo, hi
		lo = hi

		g.Go(func() error {
			b, err := scan(gctx, &h, obj, start, end)
			if err != nil {
				return err
			}
			select {
			case results <- b:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}

	go func() {
		defer close(results)
		_ = g.Wait()
	}()

	var merged best
	for b := range results {
		merged.merge(b)
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	return merged.result(hand), nil
}
