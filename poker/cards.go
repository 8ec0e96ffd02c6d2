package poker

import (
	"errors"
	"fmt"
	"math/bits"
	"sort"
	"strings"
)

// Card represents a single card as a bit position in a uint64.
// Layout: [13 clubs][13 diamonds][13 hearts][13 spades], ranks ascending.
type Card uint64

// Hand is a set of cards, one bit per card.
type Hand uint64

// Rank is a card rank from Two (0) to Ace (12).
type Rank uint8

// Suit is a card suit. Suits never break ties.
type Suit uint8

// Rank constants (0-12 for 2-A)
const (
	Two Rank = iota
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// Suit constants
const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

const (
	// NumRanks is the number of distinct ranks in a standard deck.
	NumRanks = 13
	// NumSuits is the number of suits in a standard deck.
	NumSuits = 4
	// DeckSize is the number of cards in a standard deck.
	DeckSize = NumRanks * NumSuits

	rankChars = "23456789TJQKA"
	suitChars = "cdhs"
)

// ErrInvalidCard is returned when a card code cannot be parsed.
var ErrInvalidCard = errors.New("invalid card")

// NewCard creates a card from rank and suit.
func NewCard(rank Rank, suit Suit) Card {
	return Card(1) << (uint(suit)*NumRanks + uint(rank))
}

// CardFromIndex returns the card at position 0-51 (suit-major).
func CardFromIndex(i int) Card {
	return Card(1) << uint(i)
}

// Index returns which bit position this card occupies (0-51), or -1 if invalid.
func (c Card) Index() int {
	if c == 0 || bits.OnesCount64(uint64(c)) != 1 || bits.TrailingZeros64(uint64(c)) >= DeckSize {
		return -1
	}
	return bits.TrailingZeros64(uint64(c))
}

// Valid reports whether c is exactly one card of a 52-card deck.
func (c Card) Valid() bool {
	return c.Index() >= 0
}

// Rank returns the rank of the card.
func (c Card) Rank() Rank {
	return Rank(bits.TrailingZeros64(uint64(c)) % NumRanks)
}

// Suit returns the suit of the card.
func (c Card) Suit() Suit {
	return Suit(bits.TrailingZeros64(uint64(c)) / NumRanks)
}

// String returns the two character code (e.g. "As", "Td").
func (c Card) String() string {
	if !c.Valid() {
		return "??"
	}
	return string(rankChars[c.Rank()]) + string(suitChars[c.Suit()])
}

// Less orders cards by rank, then suit.
func (c Card) Less(o Card) bool {
	if c.Rank() != o.Rank() {
		return c.Rank() < o.Rank()
	}
	return c.Suit() < o.Suit()
}

// MarshalText encodes the card as its two character code.
func (c Card) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: bit pattern %#x", ErrInvalidCard, uint64(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText decodes a two character card code.
func (c *Card) UnmarshalText(text []byte) error {
	parsed, err := ParseCard(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// String returns the rank character.
func (r Rank) String() string {
	if r > Ace {
		return "?"
	}
	return string(rankChars[r])
}

// Name returns the long rank name used in hand descriptions.
func (r Rank) Name() string {
	if r > Ace {
		return "?"
	}
	return rankNames[r]
}

// Plural returns the plural rank name ("Sixes", "Aces").
func (r Rank) Plural() string {
	if r == Six {
		return "Sixes"
	}
	return r.Name() + "s"
}

var rankNames = [NumRanks]string{
	"Two", "Three", "Four", "Five", "Six", "Seven", "Eight",
	"Nine", "Ten", "Jack", "Queen", "King", "Ace",
}

// String returns the suit character.
func (s Suit) String() string {
	if s > Spades {
		return "?"
	}
	return string(suitChars[s])
}

// Symbol returns the unicode suit symbol.
func (s Suit) Symbol() string {
	switch s {
	case Clubs:
		return "♣"
	case Diamonds:
		return "♦"
	case Hearts:
		return "♥"
	case Spades:
		return "♠"
	default:
		return "?"
	}
}

// IsRed returns true for hearts and diamonds.
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// ParseCard parses a string like "As" into a Card.
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}

	r := strings.IndexByte(rankChars, upper(s[0]))
	if r < 0 {
		return 0, fmt.Errorf("%w: rank %q", ErrInvalidCard, s[0])
	}
	su := strings.IndexByte(suitChars, lower(s[1]))
	if su < 0 {
		return 0, fmt.Errorf("%w: suit %q", ErrInvalidCard, s[1])
	}

	return NewCard(Rank(r), Suit(su)), nil
}

// ParseCards parses whitespace or comma separated codes, or a packed string
// such as "AsKsQs".
func ParseCards(s string) ([]Card, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t' || r == '\n'
	})
	if len(fields) == 1 && len(fields[0]) > 2 {
		packed := fields[0]
		if len(packed)%2 != 0 {
			return nil, fmt.Errorf("%w: odd length %q", ErrInvalidCard, packed)
		}
		fields = fields[:0]
		for i := 0; i < len(packed); i += 2 {
			fields = append(fields, packed[i:i+2])
		}
	}

	cards := make([]Card, 0, len(fields))
	for i, f := range fields {
		c, err := ParseCard(f)
		if err != nil {
			return nil, fmt.Errorf("card %d: %w", i, err)
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// MustParseCards parses cards and panics on error (for tests).
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(fmt.Sprintf("failed to parse cards %q: %v", s, err))
	}
	return cards
}

// FormatCards joins card codes with single spaces.
func FormatCards(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

// SortCards sorts cards descending by rank, then suit.
func SortCards(cards []Card) {
	sort.Slice(cards, func(i, j int) bool {
		return cards[j].Less(cards[i])
	})
}

// NewHand creates a hand from multiple cards.
func NewHand(cards ...Card) Hand {
	var h Hand
	for _, c := range cards {
		h |= Hand(c)
	}
	return h
}

// AddCard adds a card to the hand.
func (h *Hand) AddCard(c Card) {
	*h |= Hand(c)
}

// HasCard checks if the hand contains a specific card.
func (h Hand) HasCard(c Card) bool {
	return h&Hand(c) != 0
}

// CountCards returns the number of cards in the hand.
func (h Hand) CountCards() int {
	return bits.OnesCount64(uint64(h))
}

// SuitMask returns the ranks held in one suit as a 13 bit mask.
func (h Hand) SuitMask(s Suit) uint16 {
	return uint16(h>>(uint(s)*NumRanks)) & 0x1FFF
}

// RankMask returns which ranks are present in any suit.
func (h Hand) RankMask() uint16 {
	return h.SuitMask(Clubs) | h.SuitMask(Diamonds) | h.SuitMask(Hearts) | h.SuitMask(Spades)
}

// Cards expands the set into a slice ordered by bit position.
func (h Hand) Cards() []Card {
	cards := make([]Card, 0, h.CountCards())
	for rest := uint64(h); rest != 0; rest &= rest - 1 {
		cards = append(cards, Card(rest&-rest))
	}
	return cards
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}
	return b
}
