package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/thirteenlanes/internal/arrange"
	"github.com/lox/thirteenlanes/internal/randutil"
	"github.com/lox/thirteenlanes/internal/search"
	"github.com/lox/thirteenlanes/internal/table"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

// ErrConnectionClosed is returned when sending on a closed connection.
var ErrConnectionClosed = errors.New("connection closed")

// Connection is one websocket client. After hello it owns a table where
// the client sits against the configured bots.
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	server    *Server
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	mu       sync.RWMutex
	playerID string
	table    *table.Table
}

// NewConnection wraps an upgraded websocket.
func NewConnection(conn *websocket.Conn, server *Server) *Connection {
	ctx, cancel := context.WithCancel(server.ctx)
	return &Connection{
		conn:   conn,
		send:   make(chan *Message, 64),
		server: server,
		logger: server.logger.WithPrefix("conn"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the client.
func (c *Connection) SendMessage(msg *Message) error {
	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

func (c *Connection) player() (string, *table.Table) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID, c.table
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}
		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

func decode[T any](c *Connection, msg *Message) (T, bool) {
	var data T
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		c.sendError(msg, "invalid_message", fmt.Sprintf("Failed to parse %s data: %v", msg.Type, err))
		return data, false
	}
	return data, true
}

// handleMessage dispatches one client message. Searches run on their own
// goroutine so the read loop keeps serving this client.
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "requestId", msg.RequestID)

	switch msg.Type {
	case MessageTypeHello:
		if data, ok := decode[HelloData](c, msg); ok {
			c.handleHello(msg, data)
		}

	case MessageTypeEvaluate:
		if data, ok := decode[EvaluateData](c, msg); ok {
			c.handleEvaluate(msg, data)
		}

	case MessageTypeValidate:
		if data, ok := decode[ValidateData](c, msg); ok {
			v := c.server.engine.Validate(data.Hand, data.Arrangement)
			c.reply(msg, MessageTypeVerdict, verdictData(v))
		}

	case MessageTypeScore:
		if data, ok := decode[ScoreData](c, msg); ok {
			res, err := c.server.engine.Score(scoringSeats(data.Players))
			if err != nil {
				c.sendError(msg, "score_failed", err.Error())
				return
			}
			c.reply(msg, MessageTypeScoreResult, res)
		}

	case MessageTypeSearch:
		if data, ok := decode[SearchData](c, msg); ok {
			go c.handleSearch(msg, data)
		}

	case MessageTypeDeal:
		c.handleDeal(msg)

	case MessageTypeSubmit:
		if data, ok := decode[SubmitData](c, msg); ok {
			go c.handleSubmit(msg, data)
		}

	default:
		c.sendError(msg, "unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) reply(req *Message, t MessageType, data any) {
	msg, err := NewMessage(t, data)
	if err != nil {
		c.logger.Error("Failed to create message", "type", t, "error", err)
		return
	}
	if req != nil {
		msg.RequestID = req.RequestID
	}
	_ = c.SendMessage(msg)
}

func (c *Connection) sendError(req *Message, code, message string) {
	c.reply(req, MessageTypeError, ErrorData{Code: code, Message: message})
}

func (c *Connection) handleHello(msg *Message, data HelloData) {
	if data.Name == "" {
		c.sendError(msg, "invalid_hello", "Player name required")
		return
	}
	c.mu.Lock()
	if c.table != nil {
		c.mu.Unlock()
		c.sendError(msg, "already_seated", "Already seated as "+c.playerID)
		return
	}
	tbl, err := c.server.newTable(data.Name)
	if err != nil {
		c.mu.Unlock()
		c.sendError(msg, "invalid_hello", err.Error())
		return
	}
	c.playerID, c.table = data.Name, tbl
	c.mu.Unlock()

	c.logger.Info("Player seated", "player", data.Name, "table", tbl.ID())

	welcome := WelcomeData{PlayerID: data.Name, TableID: tbl.ID(), Objectives: search.ObjectiveNames()}
	for _, s := range tbl.Seats() {
		welcome.Seats = append(welcome.Seats, SeatInfo{ID: s.ID, Bot: s.Bot, Objective: s.Objective})
	}
	c.reply(msg, MessageTypeWelcome, welcome)
}

func (c *Connection) handleEvaluate(msg *Message, data EvaluateData) {
	evaluate := c.server.engine.Evaluate5
	if len(data.Cards) == arrange.TopSize {
		evaluate = c.server.engine.Evaluate3
	}
	e, err := evaluate(data.Cards)
	if err != nil {
		c.sendError(msg, "invalid_cards", err.Error())
		return
	}
	c.reply(msg, MessageTypeEvaluation, evaluationData(e))
}

func (c *Connection) handleSearch(msg *Message, data SearchData) {
	report, err := c.server.engine.Search(c.ctx, data.Hand, data.Objective)
	if err != nil {
		c.sendError(msg, "search_failed", err.Error())
		return
	}
	c.reply(msg, MessageTypeArrangement, ArrangementData{
		Arrangement: report.Arrangement,
		Objective:   report.Objective,
		Value:       report.Value,
		Considered:  report.Considered,
		Fallback:    report.Fallback,
		ElapsedMS:   report.Elapsed.Milliseconds(),
	})
}

func (c *Connection) handleDeal(msg *Message) {
	playerID, tbl := c.player()
	if tbl == nil {
		c.sendError(msg, "not_seated", "Send hello first")
		return
	}
	roundID, err := tbl.Deal(randutil.ForDeal(c.server.seed, c.server.nextDeal()))
	if err != nil {
		c.sendError(msg, "deal_failed", err.Error())
		return
	}
	hand, err := tbl.Hand(playerID)
	if err != nil {
		c.sendError(msg, "deal_failed", err.Error())
		return
	}
	c.reply(msg, MessageTypeDealt, DealtData{RoundID: roundID, Hand: hand})

	go func() {
		if err := tbl.AutoArrange(c.ctx); err != nil {
			c.logger.Error("Bots failed to arrange", "table", tbl.ID(), "error", err)
			tbl.Abandon()
			c.sendError(nil, "round_abandoned", err.Error())
			return
		}
		c.settleIfReady(tbl)
	}()
}

func (c *Connection) handleSubmit(msg *Message, data SubmitData) {
	playerID, tbl := c.player()
	if tbl == nil {
		c.sendError(msg, "not_seated", "Send hello first")
		return
	}
	v, err := tbl.Submit(playerID, data.Arrangement)
	if err != nil {
		code := "submit_failed"
		if errors.Is(err, table.ErrAlreadySubmitted) {
			code = "already_submitted"
		}
		c.sendError(msg, code, err.Error())
		return
	}
	c.reply(msg, MessageTypeVerdict, verdictData(v))
	c.settleIfReady(tbl)
}

// settleIfReady settles once nobody is pending. Both the bot goroutine and
// the submit handler call it; the table lets only one of them settle.
func (c *Connection) settleIfReady(tbl *table.Table) {
	if len(tbl.Pending()) > 0 {
		return
	}
	res, err := tbl.Settle()
	if err != nil {
		if !errors.Is(err, table.ErrNoRound) && !errors.Is(err, table.ErrPending) {
			c.logger.Error("Failed to settle round", "error", err)
		}
		return
	}
	c.reply(nil, MessageTypeRoundResult, res)
}
