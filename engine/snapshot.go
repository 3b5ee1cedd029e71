package engine

import "pokerroom/card"

// SeatView is the public view of one seat.
type SeatView struct {
	Index              int
	Occupied           bool
	SessionID          SessionID
	DisplayName        string
	Bankroll           int
	RoundBet           int
	HandBet            int
	Folded             bool
	AllIn              bool
	WaitingForNextHand bool
}

// RoomSnapshot is the public, broadcast-to-everyone view of a room.
type RoomSnapshot struct {
	ID          RoomID
	DisplayName string
	Host        SessionID

	GameRunning bool
	Paused      bool

	HandNumber int
	Phase      Phase

	Seats []SeatView

	Board  []card.Card
	Board2 []card.Card

	Pot             int
	CurrentBet      int
	MinRaise        int
	DealerSeat      int
	SmallBlindSeat  int
	BigBlindSeat    int
	CurrentTurnSeat int

	PendingRequests []SeatRequest

	RunItTwiceOffered  bool
	RunItTwiceDecided  bool
	RunItTwiceAccepted bool

	Showdown *ShowdownSnapshot
}

// Snapshot builds the public room view.
func (r *Room) Snapshot() RoomSnapshot {
	seats := make([]SeatView, len(r.Seats))
	for i, session := range r.Seats {
		if session == "" {
			seats[i] = SeatView{Index: i}
			continue
		}
		p := r.Players[session]
		seats[i] = SeatView{
			Index:              i,
			Occupied:           true,
			SessionID:          session,
			DisplayName:        p.DisplayName,
			Bankroll:           p.Bankroll,
			RoundBet:           p.RoundBet,
			HandBet:            p.HandBet,
			Folded:             p.Folded,
			AllIn:              p.AllIn,
			WaitingForNextHand: p.WaitingForNextHand,
		}
	}

	requests := make([]SeatRequest, 0, len(r.PendingRequests))
	for _, req := range r.PendingRequests {
		requests = append(requests, *req)
	}

	return RoomSnapshot{
		ID:                 r.ID,
		DisplayName:        r.DisplayName,
		Host:               r.Host,
		GameRunning:        r.GameRunning,
		Paused:             r.Paused,
		HandNumber:         r.HandNumber,
		Phase:              r.Phase,
		Seats:              seats,
		Board:              append([]card.Card{}, r.Board...),
		Board2:             append([]card.Card{}, r.Board2...),
		Pot:                r.Pot,
		CurrentBet:         r.CurrentBet,
		MinRaise:           r.MinRaise,
		DealerSeat:         r.DealerSeat,
		SmallBlindSeat:     r.SmallBlindSeat,
		BigBlindSeat:       r.BigBlindSeat,
		CurrentTurnSeat:    r.CurrentTurnSeat,
		PendingRequests:    requests,
		RunItTwiceOffered:  r.RunItTwice.Offered,
		RunItTwiceDecided:  r.RunItTwice.Decided,
		RunItTwiceAccepted: r.RunItTwice.Accepted,
		Showdown:           r.Showdown,
	}
}

// PlayerView is the unicast view sent to one session: the public snapshot
// plus that session's private hole cards, legal actions and hints.
type PlayerView struct {
	RoomSnapshot

	HoleCards        []card.Card
	LegalActions     []ActionType
	AmountToCall     int
	MinRaiseIncrement int
	PendingRequestID RequestID
	BestHandHint     *HandValue
}

// PlayerSnapshot builds the private view for session. It is safe to call
// for a spectator (no seat): HoleCards and legal-action fields stay empty.
func (r *Room) PlayerSnapshot(session SessionID) PlayerView {
	view := PlayerView{RoomSnapshot: r.Snapshot()}

	p, ok := r.Players[session]
	if !ok || p.SeatIndex == noSeat {
		return view
	}

	view.HoleCards = append([]card.Card{}, p.HoleCards...)

	for id, req := range r.PendingRequests {
		if req.SessionID == session {
			view.PendingRequestID = id
			break
		}
	}

	if r.Phase >= PhasePreFlop && r.Phase <= PhaseRiver && r.CurrentTurnSeat == p.SeatIndex {
		actions, toCall, minRaise, err := r.LegalActions(p.SeatIndex)
		if err == nil {
			view.LegalActions = actions
			view.AmountToCall = toCall
			view.MinRaiseIncrement = minRaise
		}
	}

	if len(p.HoleCards) > 0 {
		hand := append(append([]card.Card{}, p.HoleCards...), r.Board...)
		hv := Evaluate(hand)
		view.BestHandHint = &hv
	}

	return view
}
