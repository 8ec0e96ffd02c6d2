package poker

import (
	"encoding/json"
	"errors"
	"math/bits"
	rand "math/rand/v2"
	"testing"
)

func TestCardCreation(t *testing.T) {
	t.Parallel()
	aceSpades := NewCard(Ace, Spades)
	if aceSpades.Rank() != Ace {
		t.Errorf("Expected rank Ace, got %d", aceSpades.Rank())
	}
	if aceSpades.Suit() != Spades {
		t.Errorf("Expected suit Spades, got %d", aceSpades.Suit())
	}
	if aceSpades.String() != "As" {
		t.Errorf("Expected 'As', got %s", aceSpades.String())
	}

	twoClubs := NewCard(Two, Clubs)
	if twoClubs.String() != "2c" {
		t.Errorf("Expected '2c', got %s", twoClubs.String())
	}
	if twoClubs.Index() != 0 {
		t.Errorf("Expected 2c at index 0, got %d", twoClubs.Index())
	}
}

func TestParseCard(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    string
		wantCard Card
		wantErr  bool
	}{
		{name: "ace of spades", input: "As", wantCard: NewCard(Ace, Spades)},
		{name: "two of hearts", input: "2h", wantCard: NewCard(Two, Hearts)},
		{name: "king of diamonds", input: "Kd", wantCard: NewCard(King, Diamonds)},
		{name: "ten of clubs", input: "Tc", wantCard: NewCard(Ten, Clubs)},
		{name: "lower case rank", input: "qS", wantCard: NewCard(Queen, Spades)},
		{name: "invalid rank", input: "Xs", wantErr: true},
		{name: "invalid suit", input: "Ax", wantErr: true},
		{name: "empty string", input: "", wantErr: true},
		{name: "too short", input: "A", wantErr: true},
		{name: "too long", input: "Asd", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			card, err := ParseCard(tc.input)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidCard) {
					t.Errorf("ParseCard(%q) error = %v, want ErrInvalidCard", tc.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCard(%q) unexpected error: %v", tc.input, err)
			}
			if card != tc.wantCard {
				t.Errorf("ParseCard(%q) = %v, want %v", tc.input, card, tc.wantCard)
			}
		})
	}
}

func TestParseCardsFormats(t *testing.T) {
	t.Parallel()
	want := []Card{NewCard(Ace, Spades), NewCard(King, Hearts), NewCard(Two, Clubs)}
	for _, input := range []string{"As Kh 2c", "As,Kh,2c", "AsKh2c", " As  Kh\t2c "} {
		got, err := ParseCards(input)
		if err != nil {
			t.Fatalf("ParseCards(%q): %v", input, err)
		}
		if len(got) != len(want) {
			t.Fatalf("ParseCards(%q) returned %d cards", input, len(got))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("ParseCards(%q)[%d] = %s, want %s", input, i, got[i], want[i])
			}
		}
	}

	if _, err := ParseCards("AsK"); err == nil {
		t.Error("expected error for odd packed string")
	}
}

func TestAll52Cards(t *testing.T) {
	t.Parallel()
	cards := make(map[string]bool)

	for suit := Clubs; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			card := NewCard(rank, suit)
			str := card.String()

			if cards[str] {
				t.Errorf("Duplicate card: %s", str)
			}
			cards[str] = true

			parsed, err := ParseCard(str)
			if err != nil {
				t.Errorf("Failed to parse %s: %v", str, err)
			}
			if parsed != card {
				t.Errorf("Round-trip failed for %s", str)
			}
			if CardFromIndex(card.Index()) != card {
				t.Errorf("Index round-trip failed for %s", str)
			}
		}
	}

	if len(cards) != DeckSize {
		t.Errorf("Expected 52 unique cards, got %d", len(cards))
	}
}

func TestCardValidity(t *testing.T) {
	t.Parallel()
	if Card(0).Valid() {
		t.Error("zero card should be invalid")
	}
	if Card(3).Valid() {
		t.Error("two bits should not be a valid card")
	}
	if Card(1 << 60).Valid() {
		t.Error("bit beyond the deck should be invalid")
	}
	if Card(0).String() != "??" {
		t.Errorf("invalid card string = %q", Card(0).String())
	}
}

func TestCardJSON(t *testing.T) {
	t.Parallel()
	in := []Card{NewCard(Ace, Spades), NewCard(Ten, Diamonds)}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `["As","Td"]` {
		t.Errorf("json = %s", data)
	}

	var out []Card
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[0] != in[0] || out[1] != in[1] {
		t.Errorf("round trip = %v", out)
	}

	if err := json.Unmarshal([]byte(`["Zz"]`), &out); err == nil {
		t.Error("expected error for bad card code")
	}
}

func TestHandOperations(t *testing.T) {
	t.Parallel()
	aceSpades, _ := ParseCard("As")
	kingHearts, _ := ParseCard("Kh")
	queenDiamonds, _ := ParseCard("Qd")

	hand := NewHand(aceSpades, kingHearts)

	if !hand.HasCard(aceSpades) {
		t.Error("Hand should contain Ace of Spades")
	}
	if !hand.HasCard(kingHearts) {
		t.Error("Hand should contain King of Hearts")
	}
	if hand.HasCard(queenDiamonds) {
		t.Error("Hand should not contain Queen of Diamonds")
	}
	if hand.CountCards() != 2 {
		t.Errorf("Hand should have 2 cards, got %d", hand.CountCards())
	}

	hand.AddCard(queenDiamonds)
	if hand.CountCards() != 3 {
		t.Errorf("Hand should have 3 cards, got %d", hand.CountCards())
	}
	if got := len(hand.Cards()); got != 3 {
		t.Errorf("Cards() returned %d cards", got)
	}
}

func TestHandBitset(t *testing.T) {
	t.Parallel()
	aceSpades, _ := ParseCard("As")
	aceHearts, _ := ParseCard("Ah")
	twoClubs, _ := ParseCard("2c")

	if bits.OnesCount64(uint64(aceSpades)) != 1 {
		t.Error("Card should be a single bit")
	}
	if aceSpades&aceHearts != 0 || aceSpades&twoClubs != 0 || aceHearts&twoClubs != 0 {
		t.Error("Different cards should not share bits")
	}

	combined := NewHand(aceSpades, aceHearts, twoClubs)
	if combined.CountCards() != 3 {
		t.Errorf("Combined hand should have 3 cards, got %d", combined.CountCards())
	}
	if combined.RankMask() != 1<<Ace|1<<Two {
		t.Errorf("RankMask = %013b", combined.RankMask())
	}
}

func TestSuitMask(t *testing.T) {
	t.Parallel()
	var hand Hand
	for rank := Two; rank <= Ace; rank++ {
		hand.AddCard(NewCard(rank, Spades))
	}

	if mask := hand.SuitMask(Spades); mask != 0x1FFF {
		t.Errorf("Expected all spades, got mask %016b", mask)
	}
	if hand.SuitMask(Hearts) != 0 {
		t.Error("Hearts should be empty")
	}
}

func TestSortCards(t *testing.T) {
	t.Parallel()
	cards := MustParseCards("2c As Td Ah 9s")
	SortCards(cards)
	if got := FormatCards(cards); got != "As Ah Td 9s 2c" {
		t.Errorf("SortCards = %s", got)
	}
}

func TestDeck(t *testing.T) {
	t.Parallel()
	deck := NewDeck(rand.New(rand.NewPCG(42, 42)))

	cards1 := deck.Deal(13)
	if len(cards1) != 13 {
		t.Errorf("Expected 13 cards, got %d", len(cards1))
	}

	cards2 := deck.Deal(13)
	seen := NewHand(cards1...)
	for _, c := range cards2 {
		if seen.HasCard(c) {
			t.Error("Dealt same card twice")
		}
	}

	remaining := deck.Deal(26)
	if len(remaining) != 26 {
		t.Errorf("Expected 26 remaining cards, got %d", len(remaining))
	}
	if extra := deck.Deal(1); extra != nil {
		t.Error("Should not be able to deal from empty deck")
	}

	all := NewHand(append(append(cards1, cards2...), remaining...)...)
	if all.CountCards() != DeckSize {
		t.Errorf("deck produced %d distinct cards", all.CountCards())
	}

	deck.Shuffle()
	if deck.CardsRemaining() != DeckSize {
		t.Error("Should have a full deck after shuffle")
	}
}

func TestDealHands(t *testing.T) {
	t.Parallel()
	deck := NewDeck(rand.New(rand.NewPCG(3, 3)))
	hands, err := deck.DealHands(4, 13)
	if err != nil {
		t.Fatalf("DealHands: %v", err)
	}
	var all Hand
	for i, h := range hands {
		if len(h) != 13 {
			t.Errorf("hand %d has %d cards", i, len(h))
		}
		for _, c := range h {
			all.AddCard(c)
		}
	}
	if all.CountCards() != DeckSize {
		t.Errorf("hands hold %d distinct cards", all.CountCards())
	}
	if _, err := deck.DealHands(1, 1); !errors.Is(err, ErrNotEnoughCards) {
		t.Errorf("expected ErrNotEnoughCards, got %v", err)
	}

	// Cards go round the table one at a time.
	top := NewDeck(rand.New(rand.NewPCG(9, 9))).Deal(6)
	dealt, err := NewDeck(rand.New(rand.NewPCG(9, 9))).DealHands(2, 3)
	if err != nil {
		t.Fatalf("DealHands: %v", err)
	}
	if dealt[0][0] != top[0] || dealt[1][0] != top[1] || dealt[0][1] != top[2] || dealt[1][2] != top[5] {
		t.Errorf("unexpected deal order: %v from %v", dealt, top)
	}
}

func TestDeckDeterministic(t *testing.T) {
	t.Parallel()
	a := NewDeck(rand.New(rand.NewPCG(7, 7))).Deal(13)
	b := NewDeck(rand.New(rand.NewPCG(7, 7))).Deal(13)
	if FormatCards(a) != FormatCards(b) {
		t.Errorf("same seed dealt %v and %v", a, b)
	}
}

func BenchmarkParseCard(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = ParseCard("As")
	}
}

func BenchmarkHandOperations(b *testing.B) {
	c1 := NewCard(Ace, Spades)
	c2 := NewCard(King, Hearts)
	c3 := NewCard(Queen, Diamonds)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		hand := NewHand(c1, c2)
		hand.AddCard(c3)
		_ = hand.CountCards()
		_ = hand.HasCard(c1)
	}
}
