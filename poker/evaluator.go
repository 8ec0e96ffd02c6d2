package poker

import (
	"errors"
	"fmt"
	"math/bits"
)

// Category enumerates the classes of poker hands ordered from weakest to strongest.
type Category uint8

const (
	HighCard Category = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

// String returns a human-readable category name.
func (c Category) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return "Unknown"
	}
}

// ErrInvalidHandSize is returned when an evaluator receives the wrong number of cards.
var ErrInvalidHandSize = errors.New("invalid input size")

// ErrDuplicateCard is returned when the same card appears twice in one lane.
var ErrDuplicateCard = errors.New("duplicate card")

// Evaluation is the strength of a 3 or 5 card lane: a category plus a
// descending tie-break sequence of ranks.
type Evaluation struct {
	Category Category
	size     uint8
	n        uint8
	ranks    [5]Rank
}

// Size returns the number of cards that produced the evaluation (3 or 5).
func (e Evaluation) Size() int {
	return int(e.size)
}

// Tiebreak returns a copy of the tie-break ranks, most significant first.
func (e Evaluation) Tiebreak() []Rank {
	out := make([]Rank, e.n)
	copy(out, e.ranks[:e.n])
	return out
}

// Score packs the evaluation into a key whose natural order is the
// evaluation order: category in bits 20-23, then one nibble per tie-break
// entry holding rank+1. Absent entries are zero and sort below every rank,
// so 3 and 5 card scores are directly comparable.
func (e Evaluation) Score() uint32 {
	s := uint32(e.Category) << 20
	for i := 0; i < int(e.n); i++ {
		s |= uint32(e.ranks[i]+1) << (16 - 4*uint(i))
	}
	return s
}

// String describes the evaluation, e.g. "Full House, Kings over Twos".
func (e Evaluation) String() string {
	return Describe(e)
}

// Compare returns 1 if a is stronger, -1 if b is stronger, 0 for an exact tie.
func Compare(a, b Evaluation) int {
	sa, sb := a.Score(), b.Score()
	switch {
	case sa > sb:
		return 1
	case sa < sb:
		return -1
	default:
		return 0
	}
}

// Evaluate5 classifies a 5 card lane.
func Evaluate5(cards []Card) (Evaluation, error) {
	h, err := checkedHand(cards, 5)
	if err != nil {
		return Evaluation{}, err
	}
	return evaluate5Unchecked(h), nil
}

// Evaluate3 classifies a 3 card lane. Straights and flushes are not
// recognised at this size.
func Evaluate3(cards []Card) (Evaluation, error) {
	h, err := checkedHand(cards, 3)
	if err != nil {
		return Evaluation{}, err
	}
	return evaluate3Unchecked(h), nil
}

// Eval5 evaluates five distinct valid cards without checking them.
func Eval5(c *[5]Card) Evaluation {
	return evaluate5Unchecked(Hand(c[0] | c[1] | c[2] | c[3] | c[4]))
}

// Eval3 evaluates three distinct valid cards without checking them.
func Eval3(c *[3]Card) Evaluation {
	return evaluate3Unchecked(Hand(c[0] | c[1] | c[2]))
}

func checkedHand(cards []Card, want int) (Hand, error) {
	if len(cards) != want {
		return 0, fmt.Errorf("%w: want %d cards, got %d", ErrInvalidHandSize, want, len(cards))
	}
	var h Hand
	for _, c := range cards {
		if !c.Valid() {
			return 0, fmt.Errorf("%w: bit pattern %#x", ErrInvalidCard, uint64(c))
		}
		if h.HasCard(c) {
			return 0, fmt.Errorf("%w: %s", ErrDuplicateCard, c)
		}
		h.AddCard(c)
	}
	return h, nil
}

func evaluate5Unchecked(h Hand) Evaluation {
	s0, s1, s2, s3 := h.SuitMask(Clubs), h.SuitMask(Diamonds), h.SuitMask(Hearts), h.SuitMask(Spades)
	rankMask := s0 | s1 | s2 | s3

	quads := s0 & s1 & s2 & s3
	tripCandidates := (s0 & s1 & s2) | (s0 & s1 & s3) | (s0 & s2 & s3) | (s1 & s2 & s3)
	trips := tripCandidates &^ quads
	pairs := ((s0 & s1) | (s0 & s2) | (s0 & s3) | (s1 & s2) | (s1 & s3) | (s2 & s3)) &^ tripCandidates

	e := Evaluation{size: 5}
	flush := bits.OnesCount16(rankMask) == 5 &&
		(s0 == rankMask || s1 == rankMask || s2 == rankMask || s3 == rankMask)
	high, straight := straightHigh(rankMask)

	switch {
	case straight && flush:
		e.Category = StraightFlush
		e.push(high)
	case quads != 0:
		e.Category = FourOfAKind
		e.pushDesc(quads)
		e.pushDesc(rankMask &^ quads)
	case trips != 0 && pairs != 0:
		e.Category = FullHouse
		e.pushDesc(trips)
		e.pushDesc(pairs)
	case flush:
		e.Category = Flush
		e.pushDesc(rankMask)
	case straight:
		e.Category = Straight
		e.push(high)
	case trips != 0:
		e.Category = ThreeOfAKind
		e.pushDesc(trips)
		e.pushDesc(rankMask &^ trips)
	case bits.OnesCount16(pairs) == 2:
		e.Category = TwoPair
		e.pushDesc(pairs)
		e.pushDesc(rankMask &^ pairs)
	case pairs != 0:
		e.Category = Pair
		e.pushDesc(pairs)
		e.pushDesc(rankMask &^ pairs)
	default:
		e.Category = HighCard
		e.pushDesc(rankMask)
	}
	return e
}

func evaluate3Unchecked(h Hand) Evaluation {
	s0, s1, s2, s3 := h.SuitMask(Clubs), h.SuitMask(Diamonds), h.SuitMask(Hearts), h.SuitMask(Spades)
	rankMask := s0 | s1 | s2 | s3

	trips := (s0 & s1 & s2) | (s0 & s1 & s3) | (s0 & s2 & s3) | (s1 & s2 & s3)
	pairs := ((s0 & s1) | (s0 & s2) | (s0 & s3) | (s1 & s2) | (s1 & s3) | (s2 & s3)) &^ trips

	e := Evaluation{size: 3}
	switch {
	case trips != 0:
		e.Category = ThreeOfAKind
		e.pushDesc(trips)
	case pairs != 0:
		e.Category = Pair
		e.pushDesc(pairs)
		e.pushDesc(rankMask &^ pairs)
	default:
		e.Category = HighCard
		e.pushDesc(rankMask)
	}
	return e
}

func (e *Evaluation) push(r Rank) {
	e.ranks[e.n] = r
	e.n++
}

// pushDesc appends the ranks set in mask, highest first.
func (e *Evaluation) pushDesc(mask uint16) {
	for mask != 0 {
		top := bits.Len16(mask) - 1
		e.push(Rank(top))
		mask &^= 1 << top
	}
}

// straightHigh returns the high rank of a five-rank straight in mask.
// The wheel (A-2-3-4-5) plays as Five high.
func straightHigh(mask uint16) (Rank, bool) {
	const wheelMask = 0x100F // Ace + 2-3-4-5
	if bits.OnesCount16(mask) != 5 {
		return 0, false
	}
	if seq := mask & (mask >> 1) & (mask >> 2) & (mask >> 3) & (mask >> 4); seq != 0 {
		return Rank(bits.Len16(seq) - 1 + 4), true
	}
	if mask == wheelMask {
		return Five, true
	}
	return 0, false
}
