package poker

import "fmt"

// Describe returns a human-readable description of an evaluation.
func Describe(e Evaluation) string {
	tb := e.ranks[:e.n]
	if len(tb) == 0 {
		return e.Category.String()
	}
	switch e.Category {
	case StraightFlush:
		if tb[0] == Ace {
			return "Royal Flush"
		}
		return fmt.Sprintf("Straight Flush, %s high", tb[0].Name())
	case FourOfAKind:
		return fmt.Sprintf("Four of a Kind, %s", tb[0].Plural())
	case FullHouse:
		return fmt.Sprintf("Full House, %s over %s", tb[0].Plural(), tb[1].Plural())
	case Flush:
		return fmt.Sprintf("Flush, %s high", tb[0].Name())
	case Straight:
		return fmt.Sprintf("Straight, %s high", tb[0].Name())
	case ThreeOfAKind:
		return fmt.Sprintf("Three of a Kind, %s", tb[0].Plural())
	case TwoPair:
		return fmt.Sprintf("Two Pair, %s and %s", tb[0].Plural(), tb[1].Plural())
	case Pair:
		return fmt.Sprintf("Pair of %s", tb[0].Plural())
	default:
		return fmt.Sprintf("High Card, %s", tb[0].Name())
	}
}
