package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lox/pokerequity/analysis"
	"github.com/lox/pokerequity/ev"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Equity requests computed concurrently per connection
	maxInFlight = 4
)

// ErrConnectionClosed is returned when sending on a closed connection
var ErrConnectionClosed = errors.New("connection closed")

// Connection represents a WebSocket connection to a client
type Connection struct {
	conn      *websocket.Conn
	server    *Server
	send      chan *Message
	slots     chan struct{}
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, server *Server, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:   conn,
		server: server,
		send:   make(chan *Message, 64),
		slots:  make(chan struct{}, maxInFlight),
		logger: logger.WithPrefix("conn"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close cancels in-flight requests and closes the socket
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the client
func (c *Connection) SendMessage(msg *Message) error {
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

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(c.server.maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				c.sendError("", "invalid_message", "Failed to parse message")
				continue
			}
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
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	requestID := msg.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.logger.Debug("Received message", "type", msg.Type, "request", requestID)

	switch msg.Type {
	case MessageTypeEquity:
		var data EquityRequest
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(requestID, "invalid_message", "Failed to parse equity request")
			return
		}
		select {
		case c.slots <- struct{}{}:
		case <-c.ctx.Done():
			return
		}
		go func() {
			defer func() { <-c.slots }()
			c.handleEquity(requestID, data)
		}()

	case MessageTypeListPresets:
		c.reply(MessageTypePresetList, requestID, PresetListData{Presets: c.server.presets})

	default:
		c.sendError(requestID, "invalid_message", "Unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) handleEquity(requestID string, req EquityRequest) {
	text := req.ScenarioText
	betting := req.Betting
	if req.Preset != "" {
		p, ok := c.server.preset(req.Preset)
		if !ok {
			c.sendError(requestID, "validation", "Unknown preset: "+req.Preset)
			return
		}
		if text.Hero == "" {
			text = p.ScenarioText()
		}
		if betting == nil {
			betting = p.BettingContext()
		}
	}

	tuning, err := req.Tuning.Tuning()
	if err != nil {
		c.sendFailure(requestID, err)
		return
	}
	scenario, err := text.Scenario(tuning)
	if err != nil {
		c.sendFailure(requestID, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.ctx, c.server.timeout)
	defer cancel()
	res, err := c.server.calc.Compute(ctx, scenario)
	if err != nil {
		c.sendFailure(requestID, err)
		return
	}

	out := EquityResultData{Scenario: scenario.String(), Result: res}
	if betting != nil {
		r, err := ev.Analyze(res, *betting)
		if err != nil {
			c.sendFailure(requestID, err)
			return
		}
		out.EV = &r
	}
	c.logger.Debug("Computed equity", "request", requestID, "method", res.Method, "samples", res.Samples)
	c.reply(MessageTypeEquityResult, requestID, out)
}

func (c *Connection) reply(t MessageType, requestID string, data any) {
	msg, err := NewMessage(t, requestID, data)
	if err != nil {
		c.logger.Error("Failed to create message", "type", t, "error", err)
		return
	}
	_ = c.SendMessage(msg)
}

func (c *Connection) sendFailure(requestID string, err error) {
	c.sendError(requestID, analysis.ErrorKind(err), err.Error())
}

func (c *Connection) sendError(requestID, kind, message string) {
	c.reply(MessageTypeError, requestID, ErrorData{Kind: kind, Message: message})
}
