package search

import (
	"errors"
	"fmt"
	"slices"

	"github.com/lox/thirteenlanes/internal/arrange"
	"github.com/lox/thirteenlanes/poker"
)

// ErrUnknownObjective is returned by ObjectiveByName for names it does not know.
var ErrUnknownObjective = errors.New("unknown objective")

// Objective scores an arrangement that has already passed the order rule.
// Larger is better.
type Objective func(arrange.Evaluations) float64

// Aggressive lane weights. The gap penalty only separates candidates whose
// weighted sums are otherwise equal; it must stay far below the difference
// between the bottom and middle weights.
const (
	AggressiveBottomWeight = 1.0
	AggressiveMiddleWeight = 0.92
	AggressiveTopWeight    = 0.75
	AggressiveGapPenalty   = 1e-5
)

// Balanced ranks arrangements lexicographically by bottom, then middle, then
// top strength. Each lane's dense ordinal is weighted by the number of
// distinct values below it, so the result is exact in a float64 and any
// bottom improvement outweighs every middle and top combination.
func Balanced(e arrange.Evaluations) float64 {
	const (
		middleWeight = poker.Distinct3
		bottomWeight = poker.Distinct5 * poker.Distinct3
	)
	return float64(poker.Ordinal(e.Bottom))*bottomWeight +
		float64(poker.Ordinal(e.Middle))*middleWeight +
		float64(poker.Ordinal(e.Top))
}

// Aggressive sums the lanes' weighted positions on the 5 card strength
// scale, less a small penalty for bottom strength in excess of the middle.
func Aggressive(e arrange.Evaluations) float64 {
	pb := poker.Percentile(e.Bottom)
	pm := poker.Percentile(e.Middle)
	pt := poker.Percentile(e.Top)
	return AggressiveBottomWeight*pb +
		AggressiveMiddleWeight*pm +
		AggressiveTopWeight*pt -
		AggressiveGapPenalty*max(0, pb-pm)
}

var objectives = map[string]Objective{
	"balanced":   Balanced,
	"aggressive": Aggressive,
}

// Bot difficulty levels accepted in place of objective names.
var levels = map[string]string{
	"normal":      "balanced",
	"competitive": "aggressive",
}

// ObjectiveByName resolves "balanced" or "aggressive", or the difficulty
// levels "normal" and "competitive" that select them.
func ObjectiveByName(name string) (Objective, error) {
	if objective, ok := levels[name]; ok {
		name = objective
	}
	obj, ok := objectives[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownObjective, name)
	}
	return obj, nil
}

// ObjectiveNames lists the registered objective names in sorted order.
func ObjectiveNames() []string {
	names := make([]string, 0, len(objectives))
	for name := range objectives {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
