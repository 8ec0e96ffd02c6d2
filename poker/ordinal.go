package poker

import (
	"slices"
	"sort"
	"sync"
)

const (
	// Distinct5 is the number of distinct 5 card evaluations.
	Distinct5 = 7462
	// Distinct3 is the number of distinct 3 card evaluations.
	Distinct3 = 455
)

var (
	scoreTablesOnce sync.Once
	scores5         []uint32
	scores3         []uint32
)

// Ordinal returns the dense strength index of e among every distinct
// evaluation of the same size: 0 is the weakest, Distinct5-1 (or
// Distinct3-1) the strongest.
func Ordinal(e Evaluation) int {
	table := scoreTable(e.Size())
	score := e.Score()
	return sort.Search(len(table), func(i int) bool { return table[i] >= score })
}

// Percentile places e on the 5 card strength scale in [0, 1]. Three card
// evaluations map to where they would sort among 5 card evaluations, so the
// value is comparable across lanes.
func Percentile(e Evaluation) float64 {
	table := scoreTable(5)
	score := e.Score()
	idx := sort.Search(len(table), func(i int) bool { return table[i] >= score })
	if idx >= len(table) {
		return 1
	}
	return float64(idx) / float64(len(table)-1)
}

func scoreTable(size int) []uint32 {
	scoreTablesOnce.Do(buildScoreTables)
	if size == 3 {
		return scores3
	}
	return scores5
}

// buildScoreTables enumerates every rank multiset (plus the suited variant
// of each five distinct ranks) once and keeps the sorted distinct scores.
func buildScoreTables() {
	seen5 := make(map[uint32]struct{}, Distinct5)
	forEachRankMultiset(5, func(ranks []Rank) {
		seen5[evaluate5Unchecked(offsuitHand(ranks)).Score()] = struct{}{}
		if distinctRanks(ranks) {
			seen5[evaluate5Unchecked(suitedHand(ranks)).Score()] = struct{}{}
		}
	})

	seen3 := make(map[uint32]struct{}, Distinct3)
	forEachRankMultiset(3, func(ranks []Rank) {
		seen3[evaluate3Unchecked(offsuitHand(ranks)).Score()] = struct{}{}
	})

	scores5 = sortedKeys(seen5)
	scores3 = sortedKeys(seen3)
}

// forEachRankMultiset visits non-decreasing rank sequences of length n in
// which no rank repeats more than four times.
func forEachRankMultiset(n int, fn func([]Rank)) {
	ranks := make([]Rank, n)
	var rec func(pos int, lo Rank)
	rec = func(pos int, lo Rank) {
		if pos == n {
			fn(ranks)
			return
		}
		for r := lo; r <= Ace; r++ {
			if pos >= NumSuits && ranks[pos-NumSuits] == r {
				continue
			}
			ranks[pos] = r
			rec(pos+1, r)
		}
	}
	rec(0, Two)
}

// offsuitHand assigns suits by position, which keeps repeated ranks on
// distinct suits and never produces five of one suit.
func offsuitHand(ranks []Rank) Hand {
	var h Hand
	for i, r := range ranks {
		h.AddCard(NewCard(r, Suit(i%NumSuits)))
	}
	return h
}

func suitedHand(ranks []Rank) Hand {
	var h Hand
	for _, r := range ranks {
		h.AddCard(NewCard(r, Clubs))
	}
	return h
}

func distinctRanks(ranks []Rank) bool {
	for i := 1; i < len(ranks); i++ {
		if ranks[i] == ranks[i-1] {
			return false
		}
	}
	return true
}

func sortedKeys(m map[uint32]struct{}) []uint32 {
	out := make([]uint32, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
