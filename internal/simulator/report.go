package simulator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ContestantSummary is the saved form of one contestant's statistics.
type ContestantSummary struct {
	Name       string  `json:"name"`
	Rounds     int     `json:"rounds"`
	Mean       float64 `json:"mean"`
	StdDev     float64 `json:"stddev"`
	CILow      float64 `json:"ci95_low"`
	CIHigh     float64 `json:"ci95_high"`
	Fouls      int     `json:"fouls"`
	SweepsWon  int     `json:"sweeps_won"`
	SweepsLost int     `json:"sweeps_lost"`
	LanesWon   int     `json:"lanes_won"`
	LanesLost  int     `json:"lanes_lost"`
}

// Summary is the saved form of a report, best mean first.
type Summary struct {
	Deals       int                 `json:"deals"`
	Rounds      int                 `json:"rounds"`
	Seed        int64               `json:"seed"`
	Contestants []ContestantSummary `json:"contestants"`
}

// Summarize flattens the report for saving.
func (r *Report) Summarize(seed int64) Summary {
	out := Summary{Deals: r.Deals, Rounds: r.Rounds, Seed: seed}
	for _, name := range r.Ranking() {
		s := r.Results[name]
		low, high := s.ConfidenceInterval95()
		out.Contestants = append(out.Contestants, ContestantSummary{
			Name:       name,
			Rounds:     s.Rounds,
			Mean:       s.Mean(),
			StdDev:     s.StdDev(),
			CILow:      low,
			CIHigh:     high,
			Fouls:      s.Fouls,
			SweepsWon:  s.SweepsWon,
			SweepsLost: s.SweepsLost,
			LanesWon:   s.LanesWon,
			LanesLost:  s.LanesLost,
		})
	}
	return out
}

// Save writes the summary as JSON. The file is written to a temporary
// sibling and renamed into place, so readers see either the old file or
// the complete new one.
func (s Summary) Save(filename string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(filename, append(data, '\n'), 0o644)
}

func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), filepath.Base(filename)+".tmp.*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmp != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	tmp = nil

	if err := os.Chmod(tmpPath, perm); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, filename); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
