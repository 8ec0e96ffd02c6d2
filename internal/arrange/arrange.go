// Package arrange holds the three-lane arrangement of a 13 card hand and the
// rule that decides whether an arrangement fouls.
//
// An arrangement submitted by a remote player is untrusted input. Validate
// re-derives everything from the dealt hand and never reports an error: a
// bad arrangement is a foul, which is an ordinary game outcome.
package arrange

import (
	"fmt"

	"github.com/lox/thirteenlanes/poker"
)

// Lane sizes.
const (
	TopSize    = 3
	MiddleSize = 5
	BottomSize = 5
	HandSize   = TopSize + MiddleSize + BottomSize
)

// Lane identifies one of the three card groups.
type Lane int

const (
	Top Lane = iota
	Middle
	Bottom
)

// Lanes lists the lanes from top to bottom.
var Lanes = [...]Lane{Top, Middle, Bottom}

func (l Lane) String() string {
	switch l {
	case Top:
		return "top"
	case Middle:
		return "middle"
	case Bottom:
		return "bottom"
	default:
		return fmt.Sprintf("lane(%d)", int(l))
	}
}

// Arrangement is a partition of a dealt hand into top (3), middle (5) and
// bottom (5) lanes. Lane slices may have any length when the arrangement
// comes from outside; Validate checks them.
type Arrangement struct {
	Top    []poker.Card `json:"top"`
	Middle []poker.Card `json:"middle"`
	Bottom []poker.Card `json:"bottom"`
}

// Lane returns the cards of one lane.
func (a Arrangement) Lane(l Lane) []poker.Card {
	switch l {
	case Top:
		return a.Top
	case Middle:
		return a.Middle
	default:
		return a.Bottom
	}
}

// Clone returns a deep copy.
func (a Arrangement) Clone() Arrangement {
	return Arrangement{
		Top:    append([]poker.Card(nil), a.Top...),
		Middle: append([]poker.Card(nil), a.Middle...),
		Bottom: append([]poker.Card(nil), a.Bottom...),
	}
}

// Cards returns every card of the arrangement, top lane first.
func (a Arrangement) Cards() []poker.Card {
	out := make([]poker.Card, 0, len(a.Top)+len(a.Middle)+len(a.Bottom))
	out = append(out, a.Top...)
	out = append(out, a.Middle...)
	return append(out, a.Bottom...)
}

// String renders the lanes as card codes.
func (a Arrangement) String() string {
	return fmt.Sprintf("top[%s] middle[%s] bottom[%s]",
		poker.FormatCards(a.Top), poker.FormatCards(a.Middle), poker.FormatCards(a.Bottom))
}

// Evaluations holds the strength of each lane.
type Evaluations struct {
	Top    poker.Evaluation
	Middle poker.Evaluation
	Bottom poker.Evaluation
}

// Lane returns the evaluation of one lane.
func (e Evaluations) Lane(l Lane) poker.Evaluation {
	switch l {
	case Top:
		return e.Top
	case Middle:
		return e.Middle
	default:
		return e.Bottom
	}
}

// Ordered reports whether bottom >= middle >= top.
func (e Evaluations) Ordered() bool {
	return poker.Compare(e.Bottom, e.Middle) >= 0 && poker.Compare(e.Middle, e.Top) >= 0
}

// Evaluate classifies each lane. It fails only when a lane has the wrong
// size or holds an invalid or repeated card.
func (a Arrangement) Evaluate() (Evaluations, error) {
	top, err := poker.Evaluate3(a.Top)
	if err != nil {
		return Evaluations{}, fmt.Errorf("top lane: %w", err)
	}
	middle, err := poker.Evaluate5(a.Middle)
	if err != nil {
		return Evaluations{}, fmt.Errorf("middle lane: %w", err)
	}
	bottom, err := poker.Evaluate5(a.Bottom)
	if err != nil {
		return Evaluations{}, fmt.Errorf("bottom lane: %w", err)
	}
	return Evaluations{Top: top, Middle: middle, Bottom: bottom}, nil
}

// Fixed is the array form of an arrangement used on the search hot path.
type Fixed struct {
	Top    [TopSize]poker.Card
	Middle [MiddleSize]poker.Card
	Bottom [BottomSize]poker.Card
}

// Arrangement copies the lanes into slices.
func (f *Fixed) Arrangement() Arrangement {
	return Arrangement{
		Top:    append([]poker.Card(nil), f.Top[:]...),
		Middle: append([]poker.Card(nil), f.Middle[:]...),
		Bottom: append([]poker.Card(nil), f.Bottom[:]...),
	}
}

// Evaluate classifies the lanes without size checks.
func (f *Fixed) Evaluate() Evaluations {
	return Evaluations{
		Top:    poker.Eval3(&f.Top),
		Middle: poker.Eval5(&f.Middle),
		Bottom: poker.Eval5(&f.Bottom),
	}
}

// SortedSplit is the deterministic fallback arrangement: the hand sorted
// by rank (then suit) descending, the five highest to bottom, the next
// five to middle, the last three to top. It is not guaranteed to be legal.
func SortedSplit(hand []poker.Card) Arrangement {
	sorted := append([]poker.Card(nil), hand...)
	poker.SortCards(sorted)

	var a Arrangement
	for i, c := range sorted {
		switch {
		case i < BottomSize:
			a.Bottom = append(a.Bottom, c)
		case i < BottomSize+MiddleSize:
			a.Middle = append(a.Middle, c)
		default:
			a.Top = append(a.Top, c)
		}
	}
	return a
}
