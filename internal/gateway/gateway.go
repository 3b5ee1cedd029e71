package gateway

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"pokerroom/card"
	"pokerroom/engine"
	"pokerroom/internal/registry"
	"pokerroom/internal/roomactor"
	"pokerroom/internal/session"
	"pokerroom/internal/wire"
)

// Gateway upgrades HTTP connections to websockets, decodes client commands,
// and fans room-actor broadcasts back out to every connection that cares.
type Gateway struct {
	registry *registry.Registry
	sessions *session.Manager
	logger   *log.Logger

	privilegedSecret string

	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[session.ConnID]*connection
}

// New creates a gateway. privilegedSecret gates the privileged-mode
// commands; an empty secret disables privileged mode outright.
func New(reg *registry.Registry, sessions *session.Manager, logger *log.Logger, privilegedSecret string) *Gateway {
	return &Gateway{
		registry:         reg,
		sessions:         sessions,
		logger:           logger,
		privilegedSecret: privilegedSecret,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		conns: map[session.ConnID]*connection{},
	}
}

// ServeHTTP upgrades the request to a websocket and starts pumping.
func (gw *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := gw.upgrader.Upgrade(w, r, nil)
	if err != nil {
		gw.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	id := session.ConnID(uuid.NewString())
	conn := newConnection(id, ws, gw)

	gw.mu.Lock()
	gw.conns[id] = conn
	gw.mu.Unlock()

	conn.start()
}

func (gw *Gateway) handleDisconnect(id session.ConnID) {
	gw.mu.Lock()
	delete(gw.conns, id)
	gw.mu.Unlock()

	sess, room, empty, ok := gw.sessions.Unbind(id)
	if !ok {
		return
	}
	if actor, found := gw.registry.Get(room); found {
		_ = actor.LeaveRoom(sess)
	}
	if empty {
		gw.registry.NotifyEmpty(room)
	}
}

// dispatch decodes one inbound command and routes it to the bound room
// actor, acking the result back on the same connection.
func (gw *Gateway) dispatch(c *connection, cmd wire.ClientCommand) {
	if cmd.Type == wire.CmdJoinRoom {
		gw.handleJoinRoom(c, cmd)
		return
	}

	room, ok := gw.sessions.RoomOf(c.id)
	if !ok {
		c.ack(cmd, engine.ErrNotInRoom, nil)
		return
	}
	sess, ok := gw.sessions.SessionOf(c.id)
	if !ok {
		c.ack(cmd, engine.ErrNotInRoom, nil)
		return
	}
	actor, ok := gw.registry.Get(room)
	if !ok {
		c.ack(cmd, engine.ErrNotInRoom, nil)
		return
	}

	var err error
	switch cmd.Type {
	case wire.CmdRequestSeat:
		var data wire.RequestSeatData
		if err = json.Unmarshal(cmd.Data, &data); err == nil {
			_, err = actor.RequestSeat(sess, data.SeatIndex, data.BuyIn)
		}

	case wire.CmdApproveSeat:
		var data wire.SeatRequestIDData
		if err = json.Unmarshal(cmd.Data, &data); err == nil {
			err = actor.ApproveSeat(sess, engine.RequestID(data.RequestID))
		}

	case wire.CmdDenySeat:
		var data wire.SeatRequestIDData
		if err = json.Unmarshal(cmd.Data, &data); err == nil {
			err = actor.DenySeat(sess, engine.RequestID(data.RequestID))
		}

	case wire.CmdCancelSeatRequest:
		var data wire.SeatRequestIDData
		if err = json.Unmarshal(cmd.Data, &data); err == nil {
			err = actor.CancelSeatRequest(sess, engine.RequestID(data.RequestID))
		}

	case wire.CmdLeaveSeat:
		err = actor.LeaveSeat(sess)

	case wire.CmdStartGame:
		err = actor.StartGame()

	case wire.CmdPauseGame:
		err = actor.PauseGame()

	case wire.CmdResumeGame:
		err = actor.ResumeGame()

	case wire.CmdStopGame:
		err = actor.StopGame()

	case wire.CmdPlayerAction:
		var data wire.PlayerActionData
		if err = json.Unmarshal(cmd.Data, &data); err == nil {
			var action engine.ActionType
			if action, err = parseAction(data.Action); err == nil {
				err = actor.PlayerAction(sess, action, data.Amount)
			}
		}

	case wire.CmdShowHand:
		err = actor.ShowHand(sess)

	case wire.CmdMuckHand:
		err = actor.MuckHand(sess)

	case wire.CmdRunItTwiceVote:
		var data wire.RunItTwiceVoteData
		if err = json.Unmarshal(cmd.Data, &data); err == nil {
			err = actor.RunItTwiceVote(sess, data.Accept)
		}

	case wire.CmdLeaveRoom:
		err = actor.LeaveRoom(sess)
		if err == nil {
			gw.sessions.Unbind(c.id)
		}

	case wire.CmdPrivilegedEnable:
		var data wire.PrivilegedEnableData
		if err = json.Unmarshal(cmd.Data, &data); err == nil {
			if gw.privilegedSecret == "" || subtle.ConstantTimeCompare([]byte(data.Secret), []byte(gw.privilegedSecret)) != 1 {
				err = engine.ErrWrongSecret
			} else {
				err = actor.EnablePrivileged()
			}
		}

	case wire.CmdPrivilegedDisable:
		var data wire.PrivilegedDisableData
		if err = json.Unmarshal(cmd.Data, &data); err == nil {
			if gw.privilegedSecret == "" || subtle.ConstantTimeCompare([]byte(data.Secret), []byte(gw.privilegedSecret)) != 1 {
				err = engine.ErrWrongSecret
			} else {
				err = actor.DisablePrivileged()
			}
		}

	case wire.CmdSetRiggedHand:
		data := wire.SetRiggedHandData{DealerSeat: -1}
		if err = json.Unmarshal(cmd.Data, &data); err == nil {
			if gw.privilegedSecret == "" || subtle.ConstantTimeCompare([]byte(data.Secret), []byte(gw.privilegedSecret)) != 1 {
				err = engine.ErrWrongSecret
			} else {
				var cards []card.Card
				cards, err = parseCards(data.Cards)
				if err == nil {
					err = actor.SetRiggedHand(cards, data.DealerSeat)
				}
			}
		}

	default:
		err = engine.ErrNotInRoom
	}

	c.ack(cmd, err, nil)

	var invalid *engine.InvalidStateError
	if errors.As(err, &invalid) {
		c.logger.Error("internal invariant violation, closing connection", "error", err)
		go c.close()
	}
}

func (gw *Gateway) handleJoinRoom(c *connection, cmd wire.ClientCommand) {
	var data wire.JoinRoomData
	if err := json.Unmarshal(cmd.Data, &data); err != nil {
		c.ack(cmd, err, nil)
		return
	}

	roomID := engine.RoomID(data.RoomID)
	sess := engine.SessionID(data.SessionID)

	actor, found := gw.registry.Get(roomID)
	if !found {
		actor = gw.registry.GetOrCreate(roomID, data.RoomID, sess)
	} else {
		gw.registry.RoomOccupied(roomID)
	}

	reconnecting := data.PrevConnID != ""
	if reconnecting {
		if err := gw.sessions.Rebind(session.ConnID(data.PrevConnID), c.id); err != nil {
			c.ack(cmd, err, nil)
			return
		}
	} else if err := gw.sessions.Bind(c.id, sess, roomID); err != nil {
		c.ack(cmd, err, nil)
		return
	}

	if err := actor.JoinRoom(sess, data.Username); err != nil {
		c.ack(cmd, err, nil)
		return
	}
	c.ack(cmd, nil, nil)

	if reconnecting {
		gw.sendCatchUp(c, actor)
	}
}

// sendCatchUp replays the bounded tail of game-events a reconnecting
// client missed while disconnected. The fresh room-state/player-state
// broadcasts actor.JoinRoom already triggered remain authoritative; this
// is purely to save the client from guessing what happened in between.
func (gw *Gateway) sendCatchUp(c *connection, actor *roomactor.Actor) {
	events, err := actor.RecentEvents()
	if err != nil {
		return
	}
	env, err := wire.Encode(wire.EventCatchUp, wire.CatchUpData{Events: events})
	if err != nil {
		return
	}
	c.Push(env)
}

func parseAction(s string) (engine.ActionType, error) {
	switch s {
	case "fold":
		return engine.ActionFold, nil
	case "check":
		return engine.ActionCheck, nil
	case "call":
		return engine.ActionCall, nil
	case "bet":
		return engine.ActionBet, nil
	case "raise":
		return engine.ActionRaise, nil
	case "all-in":
		return engine.ActionAllIn, nil
	default:
		return 0, engine.ErrMustCallOrRaise
	}
}

func parseCards(strs []string) ([]card.Card, error) {
	cards := make([]card.Card, 0, len(strs))
	for _, s := range strs {
		c, err := card.ParseCard(s)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// --- roomactor.Broadcaster ---

func (gw *Gateway) RoomState(room engine.RoomID, snapshot engine.RoomSnapshot) {
	env, err := wire.Encode(wire.EventRoomState, snapshot)
	if err != nil {
		return
	}
	for _, connID := range gw.sessions.ConnsInRoom(room) {
		gw.pushTo(connID, env)
	}
}

func (gw *Gateway) PlayerState(room engine.RoomID, target engine.SessionID, view engine.PlayerView) {
	connID, ok := gw.sessions.ConnOf(target)
	if !ok {
		return
	}
	if actualRoom, ok := gw.sessions.RoomOf(connID); !ok || actualRoom != room {
		return
	}
	env, err := wire.Encode(wire.EventPlayerState, view)
	if err != nil {
		return
	}
	gw.pushTo(connID, env)
}

func (gw *Gateway) GameEvent(room engine.RoomID, evt wire.GameEvent) {
	env, err := wire.Encode(wire.EventGameEvent, evt)
	if err != nil {
		return
	}
	for _, connID := range gw.sessions.ConnsInRoom(room) {
		gw.pushTo(connID, env)
	}
}

func (gw *Gateway) pushTo(id session.ConnID, env wire.Envelope) {
	gw.mu.Lock()
	c, ok := gw.conns[id]
	gw.mu.Unlock()
	if !ok {
		return
	}
	c.Push(env)
}
