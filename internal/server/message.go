package server

import (
	"encoding/json"
	"time"

	"github.com/lox/thirteenlanes/internal/arrange"
	"github.com/lox/thirteenlanes/internal/scoring"
	"github.com/lox/thirteenlanes/poker"
)

// Message is the envelope for every websocket frame. Cards inside Data are
// text codes such as "As" and "Td".
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a message with the current timestamp.
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server

type HelloData struct {
	Name string `json:"name"`
}

type EvaluateData struct {
	Cards []poker.Card `json:"cards"`
}

type ValidateData struct {
	Hand        []poker.Card        `json:"hand"`
	Arrangement arrange.Arrangement `json:"arrangement"`
}

type ScorePlayer struct {
	ID          string              `json:"id"`
	Arrangement arrange.Arrangement `json:"arrangement"`
	Fouled      bool                `json:"fouled"`
}

type ScoreData struct {
	Players []ScorePlayer `json:"players"`
}

type SearchData struct {
	Hand      []poker.Card `json:"hand"`
	Objective string       `json:"objective"`
}

type SubmitData struct {
	Arrangement arrange.Arrangement `json:"arrangement"`
}

// Server → Client

type SeatInfo struct {
	ID        string `json:"id"`
	Bot       bool   `json:"bot"`
	Objective string `json:"objective,omitempty"`
}

type WelcomeData struct {
	PlayerID   string     `json:"playerId"`
	TableID    string     `json:"tableId"`
	Seats      []SeatInfo `json:"seats"`
	Objectives []string   `json:"objectives"`
}

type EvaluationData struct {
	Category    string   `json:"category"`
	Tiebreak    []string `json:"tiebreak"`
	Description string   `json:"description"`
	Score       uint32   `json:"score"`
}

type VerdictData struct {
	Fouled bool   `json:"fouled"`
	Reason string `json:"reason,omitempty"`
	// Lanes describes each lane when all three could be evaluated.
	Lanes map[string]EvaluationData `json:"lanes,omitempty"`
}

type ArrangementData struct {
	Arrangement arrange.Arrangement `json:"arrangement"`
	Objective   string              `json:"objective"`
	Value       float64             `json:"value"`
	Considered  int                 `json:"considered"`
	Fallback    bool                `json:"fallback"`
	ElapsedMS   int64               `json:"elapsedMs"`
}

type DealtData struct {
	RoundID string       `json:"roundId"`
	Hand    []poker.Card `json:"hand"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Conversions from core types

func evaluationData(e poker.Evaluation) EvaluationData {
	tiebreak := e.Tiebreak()
	ranks := make([]string, len(tiebreak))
	for i, r := range tiebreak {
		ranks[i] = r.String()
	}
	return EvaluationData{
		Category:    e.Category.String(),
		Tiebreak:    ranks,
		Description: poker.Describe(e),
		Score:       e.Score(),
	}
}

func verdictData(v arrange.Verdict) VerdictData {
	out := VerdictData{Fouled: v.Fouled, Reason: string(v.Reason)}
	if v.Lanes != nil {
		out.Lanes = make(map[string]EvaluationData, len(arrange.Lanes))
		for _, lane := range arrange.Lanes {
			out.Lanes[lane.String()] = evaluationData(v.Lanes.Lane(lane))
		}
	}
	return out
}

func scoringSeats(players []ScorePlayer) []scoring.Seat {
	seats := make([]scoring.Seat, len(players))
	for i, p := range players {
		seats[i] = scoring.Seat{ID: p.ID, Arrangement: p.Arrangement, Fouled: p.Fouled}
	}
	return seats
}
