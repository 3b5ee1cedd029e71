// Package wire defines the JSON envelopes exchanged over the websocket
// transport. Each envelope carries a Type discriminator selecting which
// payload struct its raw JSON payload decodes into, mirroring the
// command/event tables.
package wire

import "encoding/json"

// ClientCommand is one inbound message from a connection.
type ClientCommand struct {
	Type string          `json:"type"`
	ID   string          `json:"id,omitempty"` // echoed back on the ack, client-chosen
	Data json.RawMessage `json:"data,omitempty"`
}

// Ack is the reply to every client command.
type Ack struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Command type discriminators, matching the external-interface command table.
const (
	CmdJoinRoom           = "join-room"
	CmdRequestSeat        = "request-seat"
	CmdApproveSeat        = "approve-seat"
	CmdDenySeat           = "deny-seat"
	CmdCancelSeatRequest  = "cancel-seat-request"
	CmdLeaveSeat          = "leave-seat"
	CmdStartGame          = "start-game"
	CmdPauseGame          = "pause-game"
	CmdResumeGame         = "resume-game"
	CmdStopGame           = "stop-game"
	CmdPlayerAction       = "player-action"
	CmdShowHand           = "show-hand"
	CmdMuckHand           = "muck-hand"
	CmdRunItTwiceVote     = "run-it-twice-vote"
	CmdLeaveRoom          = "leave-room"
	CmdPrivilegedEnable   = "privileged-mode-enable"
	CmdSetRiggedHand      = "set-rigged-hand"
	CmdPrivilegedDisable  = "privileged-mode-disable"
)

// Broadcast event type discriminators.
const (
	EventRoomState   = "room-state"
	EventPlayerState = "player-state"
	EventGameEvent   = "game-event"
	EventCatchUp     = "catch-up"
)

// game-event sub-types, carried in GameEvent.Kind.
const (
	GameEventNewHand           = "new-hand"
	GameEventFlop               = "flop"
	GameEventTurn                = "turn"
	GameEventRiver                = "river"
	GameEventPlayerAction        = "player-action"
	GameEventHandWon             = "hand-won"
	GameEventShowdown            = "showdown"
	GameEventPlayersBusted       = "players-busted"
	GameEventHostChanged         = "host-changed"
	GameEventYouAreHost          = "you-are-host"
	GameEventSeatRequested       = "seat-requested"
	GameEventSeatApproved        = "seat-approved"
	GameEventSeatDenied          = "seat-denied"
	GameEventRunItTwiceOffered   = "run-it-twice-offered"
	GameEventRunItTwiceResult    = "run-it-twice-result"
	GameEventRunItTwiceVote      = "run-it-twice-vote"
)

// JoinRoomData is the payload of a join-room command. PrevConnID, if set,
// names the connection this client previously held in the room (e.g. after
// a dropped websocket); the gateway rebinds its session onto the new
// connection and replies with a catch-up of missed game-events instead of
// treating the join as brand new.
type JoinRoomData struct {
	RoomID     string `json:"roomId"`
	Username   string `json:"username"`
	SessionID  string `json:"sessionId"`
	PrevConnID string `json:"prevConnId,omitempty"`
}

// CatchUpData carries the bounded tail of game-events a reconnecting client
// missed while disconnected. The room-state/player-state snapshot sent
// alongside it remains authoritative; this is purely for UI continuity.
type CatchUpData struct {
	Events []GameEvent `json:"events"`
}

type RequestSeatData struct {
	SeatIndex int `json:"seatIndex"`
	BuyIn     int `json:"buyIn"`
}

type SeatRequestIDData struct {
	RequestID string `json:"requestId"`
}

type PlayerActionData struct {
	Action string `json:"action"`
	Amount int    `json:"amount"`
}

type RunItTwiceVoteData struct {
	Accept bool `json:"accept"`
}

type PrivilegedEnableData struct {
	Secret string `json:"secret"`
}

type PrivilegedDisableData struct {
	Secret string `json:"secret"`
}

// SetRiggedHandData pins the next hand's deck order. DealerSeat of -1 (the
// default when the field is omitted) leaves the button rotation unchanged.
type SetRiggedHandData struct {
	Secret     string   `json:"secret"`
	HandType   string   `json:"handType,omitempty"`
	Cards      []string `json:"cards,omitempty"`
	DealerSeat int      `json:"dealerSeat"`
}

// Event payloads, one per GameEvent kind.
type (
	NewHandData struct {
		HandNumber     int `json:"handNumber"`
		DealerSeat     int `json:"dealerSeat"`
		SmallBlindSeat int `json:"smallBlindSeat"`
		BigBlindSeat   int `json:"bigBlindSeat"`
	}

	StreetData struct {
		Board []string `json:"board"`
	}

	PlayerActionEventData struct {
		Seat   int    `json:"seat"`
		Action string `json:"action"`
		Amount int    `json:"amount"`
	}

	PotResultData struct {
		Level           int      `json:"level"`
		Amount          int      `json:"amount"`
		Board           int      `json:"board"`
		EligibleSeats   []int    `json:"eligibleSeats"`
		WinningSeats    []int    `json:"winningSeats"`
		AmountPerWinner int      `json:"amountPerWinner"`
		Remainder       int      `json:"remainder"`
		RemainderSeat   int      `json:"remainderSeat"`
	}

	HandWonData struct {
		NoShowdown bool            `json:"noShowdown"`
		PotResults []PotResultData `json:"potResults"`
	}

	ShowdownEntryData struct {
		Seat      int      `json:"seat"`
		MustShow  bool     `json:"mustShow"`
		Shown     bool     `json:"shown"`
		Won       bool     `json:"won"`
		HoleCards []string `json:"holeCards,omitempty"`
	}

	ShowdownData struct {
		Entries []ShowdownEntryData `json:"entries"`
	}

	PlayersBustedData struct {
		Seats []int `json:"seats"`
	}

	HostChangedData struct {
		NewHost string `json:"newHost"`
	}

	YouAreHostData struct{}

	SeatRequestedData struct {
		RequestID string `json:"requestId"`
		SeatIndex int    `json:"seatIndex"`
		BuyIn     int    `json:"buyIn"`
	}

	SeatApprovedData struct {
		SeatIndex int `json:"seatIndex"`
	}

	SeatDeniedData struct{}

	RunItTwiceOfferedData struct {
		EligibleSeats []int `json:"eligibleSeats"`
	}

	RunItTwiceResultData struct {
		Accepted bool `json:"accepted"`
	}

	RunItTwiceVoteEventData struct {
		Seat   int  `json:"seat"`
		Accept bool `json:"accept"`
	}
)

// GameEvent is one discrete transition broadcast to a room.
type GameEvent struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Envelope wraps any outbound broadcast.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Encode marshals v into payload and wraps it in an Envelope of the given type.
func Encode(eventType string, v any) (Envelope, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: eventType, Payload: data}, nil
}
