package engine

import (
	"time"

	mathrand "math/rand"

	"pokerroom/card"
)

// SeatRequest is a pending request to sit down, awaiting host approval.
type SeatRequest struct {
	ID        RequestID
	SessionID SessionID
	SeatIndex int
	BuyIn     int
	Timestamp time.Time
}

// RunItTwiceState tracks the run-it-twice offer/vote sub-state of a hand.
// The actual wall-clock deadline is owned by the room actor's scheduler, not
// by the engine, so that the engine stays free of real time.
type RunItTwiceState struct {
	Offered        bool
	Decided        bool
	Accepted       bool
	Votes          map[int]bool // seat -> accept
	EligibleVoters map[int]bool
}

func (r *RunItTwiceState) reset() {
	r.Offered = false
	r.Decided = false
	r.Accepted = false
	r.Votes = map[int]bool{}
	r.EligibleVoters = map[int]bool{}
}

// Room is the passive state of one table: seats, players, pot bookkeeping,
// phase, blinds, deck remainder, community board(s), seat-request queue and
// showdown snapshot. All mutation happens through the engine's exported
// methods, invoked one at a time by the owning room actor.
type Room struct {
	ID          RoomID
	DisplayName string
	Host        SessionID

	Config Config

	Seats   []SessionID // "" marks an empty seat
	Players map[SessionID]*Player

	// insertion order of Players, oldest first — used as the deterministic
	// host-succession tiebreaker by TransferHostIfNeeded.
	JoinOrder []SessionID

	HandNumber int
	Phase      Phase

	Deck   card.CardList
	Board  []card.Card
	Board2 []card.Card // populated only when run-it-twice is active

	Pot        int
	CurrentBet int
	MinRaise   int

	DealerSeat      int
	SmallBlindSeat  int
	BigBlindSeat    int
	CurrentTurnSeat int
	LastAggressor   int // seat index, noSeat if none yet

	ActedThisRound map[int]bool

	GameRunning bool
	Paused      bool

	PendingRequests map[RequestID]*SeatRequest

	RunItTwice RunItTwiceState
	Showdown   *ShowdownSnapshot

	Privileged       bool
	riggedDeckOrder  []card.Card
	riggedDealerSeat int // noSeat if unset

	rng *mathrand.Rand
}

// NewRoom creates an empty room ready to accept seat requests.
func NewRoom(id RoomID, displayName string, host SessionID, cfg Config, rng *mathrand.Rand) (*Room, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	r := &Room{
		ID:               id,
		DisplayName:      displayName,
		Host:             host,
		Config:           cfg,
		Seats:            make([]SessionID, cfg.MaxSeats),
		Players:          map[SessionID]*Player{},
		HandNumber:       0,
		Phase:            PhaseWaiting,
		DealerSeat:       noSeat,
		SmallBlindSeat:   noSeat,
		BigBlindSeat:     noSeat,
		CurrentTurnSeat:  noSeat,
		LastAggressor:    noSeat,
		ActedThisRound:   map[int]bool{},
		PendingRequests:  map[RequestID]*SeatRequest{},
		riggedDealerSeat: noSeat,
		rng:              rng,
	}
	r.RunItTwice.reset()
	return r, nil
}

func (r *Room) minBuyIn() int {
	return r.Config.MinBuyInBBs * r.Config.BigBlind
}

// Join registers a spectator (no seat) under the given session, or is a
// no-op if the session is already known to the room.
func (r *Room) Join(session SessionID, displayName string) *Player {
	if p, ok := r.Players[session]; ok {
		return p
	}
	p := newPlayer(session, displayName, 0)
	r.Players[session] = p
	r.JoinOrder = append(r.JoinOrder, session)
	return p
}

// RequestSeat queues a seat request. The engine does not approve it here,
// not even for the host; the caller approves a host's request at once
// through ApproveSeat.
func (r *Room) RequestSeat(session SessionID, seatIndex, buyIn int, now time.Time, newID func() RequestID) (*SeatRequest, error) {
	if seatIndex < 0 || seatIndex >= len(r.Seats) {
		return nil, ErrInvalidSeat
	}
	if r.Seats[seatIndex] != "" {
		return nil, ErrSeatTaken
	}
	if p, ok := r.Players[session]; ok && p.SeatIndex != noSeat {
		return nil, ErrAlreadySeated
	}
	if buyIn < r.minBuyIn() {
		return nil, ErrBuyInTooSmall
	}
	req := &SeatRequest{
		ID:        newID(),
		SessionID: session,
		SeatIndex: seatIndex,
		BuyIn:     buyIn,
		Timestamp: now,
	}
	r.PendingRequests[req.ID] = req
	return req, nil
}

// ApproveSeat seats the requester with their proposed buy-in.
func (r *Room) ApproveSeat(approver SessionID, requestID RequestID) (*SeatRequest, error) {
	if approver != r.Host {
		return nil, ErrHostOnly
	}
	req, ok := r.PendingRequests[requestID]
	if !ok {
		return nil, ErrNoSuchRequest
	}
	delete(r.PendingRequests, requestID)
	if r.Seats[req.SeatIndex] != "" {
		return req, ErrSeatTaken
	}
	p := r.Join(req.SessionID, string(req.SessionID))
	p.SeatIndex = req.SeatIndex
	p.Bankroll += req.BuyIn
	if r.Phase != PhaseWaiting {
		p.WaitingForNextHand = true
	}
	r.Seats[req.SeatIndex] = req.SessionID
	return req, nil
}

func (r *Room) DenySeat(approver SessionID, requestID RequestID) error {
	if approver != r.Host {
		return ErrHostOnly
	}
	if _, ok := r.PendingRequests[requestID]; !ok {
		return ErrNoSuchRequest
	}
	delete(r.PendingRequests, requestID)
	return nil
}

func (r *Room) CancelSeatRequest(session SessionID, requestID RequestID) error {
	req, ok := r.PendingRequests[requestID]
	if !ok {
		return ErrNoSuchRequest
	}
	if req.SessionID != session {
		return ErrNoSuchRequest
	}
	delete(r.PendingRequests, requestID)
	return nil
}

// LeaveSeat vacates the player's seat. If they were active in the current
// hand, they are auto-folded first.
func (r *Room) LeaveSeat(session SessionID) error {
	p, ok := r.Players[session]
	if !ok || p.SeatIndex == noSeat {
		return ErrInvalidSeat
	}
	if r.Phase != PhaseWaiting && r.Phase != PhaseShowdown && p.canAct() {
		if err := r.fold(p.SeatIndex); err != nil {
			return err
		}
	}
	r.Seats[p.SeatIndex] = ""
	p.SeatIndex = noSeat
	return nil
}

// RemovePlayer drops session from the room entirely: vacates (and auto-folds)
// any seat they hold, then forgets them. Host succession is a separate step
// the caller takes via TransferHostIfNeeded before or after calling this.
func (r *Room) RemovePlayer(session SessionID) error {
	p, ok := r.Players[session]
	if !ok {
		return ErrNotInRoom
	}
	if p.SeatIndex != noSeat {
		if err := r.LeaveSeat(session); err != nil {
			return err
		}
	}
	delete(r.Players, session)
	for i, s := range r.JoinOrder {
		if s == session {
			r.JoinOrder = append(r.JoinOrder[:i], r.JoinOrder[i+1:]...)
			break
		}
	}
	for id, req := range r.PendingRequests {
		if req.SessionID == session {
			delete(r.PendingRequests, id)
		}
	}
	return nil
}

func (r *Room) occupiedSeats() []int {
	var out []int
	for i, s := range r.Seats {
		if s != "" {
			out = append(out, i)
		}
	}
	return out
}

func (r *Room) playerAt(seat int) *Player {
	if seat < 0 || seat >= len(r.Seats) || r.Seats[seat] == "" {
		return nil
	}
	return r.Players[r.Seats[seat]]
}

// nextOccupiedSeat finds the next occupied seat clockwise from (but not
// including) from, wrapping around. Returns noSeat if none found.
func (r *Room) nextOccupiedSeat(from int) int {
	n := len(r.Seats)
	for i := 1; i <= n; i++ {
		seat := (from + i) % n
		if r.Seats[seat] != "" {
			return seat
		}
	}
	return noSeat
}

// nextActingSeat finds the next seat clockwise from (not including) from
// whose player can currently act (not folded, not all-in, not waiting).
func (r *Room) nextActingSeat(from int) int {
	n := len(r.Seats)
	for i := 1; i <= n; i++ {
		seat := (from + i) % n
		p := r.playerAt(seat)
		if p != nil && p.canAct() {
			return seat
		}
	}
	return noSeat
}

// handSeats returns occupied, non-waiting seats participating in the
// current hand (folded or not — used for contribution accounting).
func (r *Room) handSeats() []int {
	var out []int
	for _, seat := range r.occupiedSeats() {
		p := r.playerAt(seat)
		if p != nil && !p.WaitingForNextHand {
			out = append(out, seat)
		}
	}
	return out
}

func (r *Room) nonFoldedHandSeats() []int {
	var out []int
	for _, seat := range r.handSeats() {
		if !r.playerAt(seat).Folded {
			out = append(out, seat)
		}
	}
	return out
}
