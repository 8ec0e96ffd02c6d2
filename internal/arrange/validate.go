package arrange

import (
	"github.com/lox/thirteenlanes/poker"
)

// FoulReason says why an arrangement fouled.
type FoulReason string

const (
	NoFoul         FoulReason = ""
	WrongLaneSizes FoulReason = "wrong lane sizes"
	HandMismatch   FoulReason = "hand mismatch"
	OrderViolation FoulReason = "order violation"
)

// Verdict is the outcome of validating an arrangement against a dealt hand.
type Verdict struct {
	Fouled bool       `json:"fouled"`
	Reason FoulReason `json:"reason,omitempty"`
	// Lanes is populated whenever every lane could be evaluated, including
	// order violations, so callers can show what went wrong.
	Lanes *Evaluations `json:"-"`
}

func foul(reason FoulReason) Verdict {
	return Verdict{Fouled: true, Reason: reason}
}

// Validate checks an arrangement against the dealt hand. Checks run in
// order and the first failure decides the reason:
//
//  1. lanes are exactly 3/5/5 cards
//  2. the lanes use every dealt card exactly once and nothing else
//  3. bottom >= middle >= top
func Validate(hand []poker.Card, a Arrangement) Verdict {
	if len(a.Top) != TopSize || len(a.Middle) != MiddleSize || len(a.Bottom) != BottomSize {
		return foul(WrongLaneSizes)
	}

	if !sameCards(hand, a) {
		return foul(HandMismatch)
	}

	evals, err := a.Evaluate()
	if err != nil {
		// Unreachable once the set check passed; treat as a mismatch.
		return foul(HandMismatch)
	}
	if !evals.Ordered() {
		v := foul(OrderViolation)
		v.Lanes = &evals
		return v
	}
	return Verdict{Lanes: &evals}
}

// sameCards reports whether the lanes are exactly the dealt hand: 13
// distinct valid dealt cards, each used once.
func sameCards(hand []poker.Card, a Arrangement) bool {
	if len(hand) != HandSize {
		return false
	}
	var dealt poker.Hand
	for _, c := range hand {
		if !c.Valid() || dealt.HasCard(c) {
			return false
		}
		dealt.AddCard(c)
	}

	var used poker.Hand
	for _, lane := range [][]poker.Card{a.Top, a.Middle, a.Bottom} {
		for _, c := range lane {
			if !c.Valid() || used.HasCard(c) || !dealt.HasCard(c) {
				return false
			}
			used.AddCard(c)
		}
	}
	return used == dealt
}
