// Package gateway is the websocket transport: it upgrades HTTP connections,
// decodes and encodes internal/wire envelopes, and routes commands to the
// right room actor via the session manager and room registry.
package gateway

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"pokerroom/internal/session"
	"pokerroom/internal/wire"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
)

// connection wraps one live websocket, with a buffered outbound queue so a
// slow reader can't block the room actor that's trying to broadcast to it.
type connection struct {
	id     session.ConnID
	ws     *websocket.Conn
	send   chan wire.Envelope
	logger *log.Logger

	ctx    context.Context
	cancel context.CancelFunc

	closeOnce sync.Once

	gw *Gateway
}

func newConnection(id session.ConnID, ws *websocket.Conn, gw *Gateway) *connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &connection{
		id:     id,
		ws:     ws,
		send:   make(chan wire.Envelope, 256),
		logger: gw.logger.WithPrefix("conn").With("conn", string(id)),
		ctx:    ctx,
		cancel: cancel,
		gw:     gw,
	}
}

func (c *connection) start() {
	go c.writePump()
	go c.readPump()
}

func (c *connection) close() {
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		_ = c.ws.Close()
		c.gw.handleDisconnect(c.id)
	})
}

// Push enqueues an outbound envelope, dropping the connection if its buffer
// is already full rather than letting one slow client back-pressure a
// whole room's broadcast.
func (c *connection) Push(env wire.Envelope) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Debug("push on closed connection", "recovered", r)
		}
	}()
	select {
	case c.send <- env:
	case <-c.ctx.Done():
	default:
		c.logger.Warn("send buffer full, dropping connection")
		go c.close()
	}
}

func (c *connection) readPump() {
	defer c.close()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var cmd wire.ClientCommand
		if err := c.ws.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket read error", "error", err)
			}
			return
		}
		c.gw.dispatch(c, cmd)
	}
}

func (c *connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case env, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteJSON(env); err != nil {
				c.logger.Error("websocket write error", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

func (c *connection) ack(cmd wire.ClientCommand, err error, payload any) {
	ack := wire.Ack{Type: cmd.Type, ID: cmd.ID, Success: err == nil}
	if err != nil {
		ack.Error = err.Error()
	}
	if payload != nil {
		if data, marshalErr := json.Marshal(payload); marshalErr == nil {
			ack.Payload = data
		}
	}
	env, encErr := wire.Encode("ack", ack)
	if encErr != nil {
		return
	}
	c.Push(env)
}
