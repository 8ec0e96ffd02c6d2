package statistics

import (
	"fmt"
	"math"
	"sort"
)

// RoundResult is one player's outcome from a single simulated round.
type RoundResult struct {
	Delta      int   // Points won or lost this round
	Seed       int64 // Deal seed (for replay)
	Seat       int   // Seat index (0-3)
	Fouled     bool  // Player's own arrangement fouled
	SweepsWon  int   // Opponents this player swept
	SweepsLost int   // Opponents that swept this player
	LanesWon   int   // Lanes won across all matchups
	LanesLost  int   // Lanes lost across all matchups
}

// SeatStats tracks results for one seat index.
type SeatStats struct {
	Rounds int
	Sum    float64
}

// MaxSeats bounds the per-seat breakdown.
const MaxSeats = 4

// Statistics accumulates simulated round results for one player or
// objective.
type Statistics struct {
	Rounds int
	Sum    float64
	Sum2   float64   // Sum of squares for variance calculation
	Values []float64 // All deltas for median/percentile calculation

	Wins   int // Rounds with a positive delta
	Losses int // Rounds with a negative delta
	Pushes int // Rounds with a zero delta

	Fouls      int
	SweepsWon  int
	SweepsLost int
	LanesWon   int
	LanesLost  int

	SeatResults [MaxSeats]SeatStats

	Best  int // Best single round
	Worst int // Worst single round
}

// Mean returns the average delta per round.
func (s *Statistics) Mean() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.Sum / float64(s.Rounds)
}

// Variance returns the sample variance of the deltas.
func (s *Statistics) Variance() float64 {
	if s.Rounds < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.Sum2 - float64(s.Rounds)*mean*mean) / float64(s.Rounds-1)
}

// StdDev returns the sample standard deviation.
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(math.Max(s.Variance(), 0))
}

// StdError returns the standard error of the mean.
func (s *Statistics) StdError() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Rounds))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean.
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Add incorporates a round result.
func (s *Statistics) Add(result RoundResult) {
	d := float64(result.Delta)
	if s.Rounds == 0 || result.Delta > s.Best {
		s.Best = result.Delta
	}
	if s.Rounds == 0 || result.Delta < s.Worst {
		s.Worst = result.Delta
	}
	s.Rounds++
	s.Sum += d
	s.Sum2 += d * d
	s.Values = append(s.Values, d)

	switch {
	case result.Delta > 0:
		s.Wins++
	case result.Delta < 0:
		s.Losses++
	default:
		s.Pushes++
	}

	if result.Fouled {
		s.Fouls++
	}
	s.SweepsWon += result.SweepsWon
	s.SweepsLost += result.SweepsLost
	s.LanesWon += result.LanesWon
	s.LanesLost += result.LanesLost

	if result.Seat >= 0 && result.Seat < MaxSeats {
		s.SeatResults[result.Seat].Rounds++
		s.SeatResults[result.Seat].Sum += d
	}
}

// Merge folds other into s.
func (s *Statistics) Merge(other *Statistics) {
	if other.Rounds == 0 {
		return
	}
	if s.Rounds == 0 || other.Best > s.Best {
		s.Best = other.Best
	}
	if s.Rounds == 0 || other.Worst < s.Worst {
		s.Worst = other.Worst
	}
	s.Rounds += other.Rounds
	s.Sum += other.Sum
	s.Sum2 += other.Sum2
	s.Values = append(s.Values, other.Values...)
	s.Wins += other.Wins
	s.Losses += other.Losses
	s.Pushes += other.Pushes
	s.Fouls += other.Fouls
	s.SweepsWon += other.SweepsWon
	s.SweepsLost += other.SweepsLost
	s.LanesWon += other.LanesWon
	s.LanesLost += other.LanesLost
	for i := range s.SeatResults {
		s.SeatResults[i].Rounds += other.SeatResults[i].Rounds
		s.SeatResults[i].Sum += other.SeatResults[i].Sum
	}
}

// Median returns the median delta.
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the value at the given percentile (0.0 to 1.0),
// interpolating between neighbours.
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// FoulRate returns the fraction of rounds that fouled.
func (s *Statistics) FoulRate() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return float64(s.Fouls) / float64(s.Rounds)
}

// SeatMean returns the mean delta for a seat index.
func (s *Statistics) SeatMean(seat int) float64 {
	if seat < 0 || seat >= MaxSeats {
		return 0
	}
	ss := s.SeatResults[seat]
	if ss.Rounds == 0 {
		return 0
	}
	return ss.Sum / float64(ss.Rounds)
}

// Validate checks the counters agree with each other.
func (s *Statistics) Validate() error {
	if s.Rounds <= 0 {
		return fmt.Errorf("invalid rounds count: %d", s.Rounds)
	}
	if len(s.Values) != s.Rounds {
		return fmt.Errorf("values length (%d) does not match rounds (%d)", len(s.Values), s.Rounds)
	}
	if s.Wins+s.Losses+s.Pushes != s.Rounds {
		return fmt.Errorf("outcomes (%d) do not match rounds (%d)", s.Wins+s.Losses+s.Pushes, s.Rounds)
	}
	if s.Fouls > s.Rounds {
		return fmt.Errorf("fouls (%d) exceed rounds (%d)", s.Fouls, s.Rounds)
	}
	seated := 0
	for _, ss := range s.SeatResults {
		seated += ss.Rounds
	}
	if seated != s.Rounds {
		return fmt.Errorf("seat rounds total (%d) does not match rounds (%d)", seated, s.Rounds)
	}
	return nil
}
