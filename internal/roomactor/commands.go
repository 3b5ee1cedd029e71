package roomactor

import (
	"time"

	"pokerroom/card"
	"pokerroom/engine"
	"pokerroom/internal/wire"
)

// JoinRoom registers session as a spectator, or is a no-op if already known.
func (a *Actor) JoinRoom(session engine.SessionID, displayName string) error {
	return a.submit(func() error {
		a.room.Join(session, displayName)
		a.afterMutation()
		return nil
	})
}

// RequestSeat queues a seat request, auto-approving it if the requester is
// the host. Returns the request id (even when auto-approved, so the caller
// has a stable handle to reference in logs).
func (a *Actor) RequestSeat(session engine.SessionID, seatIndex, buyIn int) (engine.RequestID, error) {
	var id engine.RequestID
	err := a.submit(func() error {
		req, err := a.room.RequestSeat(session, seatIndex, buyIn, time.Now(), a.newRequestID)
		if err != nil {
			return err
		}
		id = req.ID

		if session == a.room.Host {
			if _, err := a.room.ApproveSeat(a.room.Host, req.ID); err != nil {
				return err
			}
			a.publishGameEvent(wire.GameEventSeatApproved, wire.SeatApprovedData{SeatIndex: seatIndex})
		} else {
			a.publishGameEvent(wire.GameEventSeatRequested, wire.SeatRequestedData{
				RequestID: string(id), SeatIndex: seatIndex, BuyIn: buyIn,
			})
		}
		a.afterMutation()
		return nil
	})
	return id, err
}

func (a *Actor) ApproveSeat(approver engine.SessionID, requestID engine.RequestID) error {
	return a.submit(func() error {
		req, err := a.room.ApproveSeat(approver, requestID)
		if err != nil {
			return err
		}
		a.publishGameEvent(wire.GameEventSeatApproved, wire.SeatApprovedData{SeatIndex: req.SeatIndex})
		a.afterMutation()
		return nil
	})
}

func (a *Actor) DenySeat(approver engine.SessionID, requestID engine.RequestID) error {
	return a.submit(func() error {
		if err := a.room.DenySeat(approver, requestID); err != nil {
			return err
		}
		a.publishGameEvent(wire.GameEventSeatDenied, wire.SeatDeniedData{})
		a.afterMutation()
		return nil
	})
}

func (a *Actor) CancelSeatRequest(session engine.SessionID, requestID engine.RequestID) error {
	return a.submit(func() error {
		if err := a.room.CancelSeatRequest(session, requestID); err != nil {
			return err
		}
		a.afterMutation()
		return nil
	})
}

func (a *Actor) LeaveSeat(session engine.SessionID) error {
	return a.submit(func() error {
		if err := a.room.LeaveSeat(session); err != nil {
			return err
		}
		a.afterMutation()
		return nil
	})
}

func (a *Actor) StartGame() error {
	return a.submit(func() error {
		if err := a.room.StartGame(); err != nil {
			return err
		}
		if err := a.room.StartHand(); err != nil {
			// not enough seated players yet; game stays "running" and
			// waits for the next seat to fill before the first hand.
			a.afterMutation()
			return nil
		}
		a.afterMutation()
		return nil
	})
}

func (a *Actor) PauseGame() error {
	return a.submit(func() error {
		if err := a.room.PauseGame(); err != nil {
			return err
		}
		a.afterMutation()
		return nil
	})
}

func (a *Actor) ResumeGame() error {
	return a.submit(func() error {
		if err := a.room.ResumeGame(); err != nil {
			return err
		}
		a.afterMutation()
		return nil
	})
}

func (a *Actor) StopGame() error {
	return a.submit(func() error {
		if err := a.room.StopGame(); err != nil {
			return err
		}
		a.afterMutation()
		return nil
	})
}

// PlayerAction submits a betting action from the session currently seated
// at the seat to act. The seat is resolved from the session, not passed by
// the caller, so a stale or forged seat index can never be submitted.
func (a *Actor) PlayerAction(session engine.SessionID, action engine.ActionType, raiseAmount int) error {
	return a.submit(func() error {
		p, ok := a.room.Players[session]
		if !ok || p.SeatIndex == engine.NoSeat {
			return engine.ErrInvalidSeat
		}
		seat := p.SeatIndex
		if err := a.room.Act(seat, action, raiseAmount); err != nil {
			return err
		}
		a.publishGameEvent(wire.GameEventPlayerAction, wire.PlayerActionEventData{
			Seat: seat, Action: action.String(), Amount: raiseAmount,
		})
		if a.room.RunItTwice.Offered && !a.room.RunItTwice.Decided && len(a.room.RunItTwice.Votes) == 0 {
			eligible := make([]int, 0, len(a.room.RunItTwice.EligibleVoters))
			for seat := range a.room.RunItTwice.EligibleVoters {
				eligible = append(eligible, seat)
			}
			a.publishGameEvent(wire.GameEventRunItTwiceOffered, wire.RunItTwiceOfferedData{EligibleSeats: eligible})
		}
		a.afterMutation()
		return nil
	})
}

func (a *Actor) ShowHand(session engine.SessionID) error {
	return a.submit(func() error {
		p, ok := a.room.Players[session]
		if !ok || p.SeatIndex == engine.NoSeat {
			return engine.ErrInvalidSeat
		}
		if err := a.room.ShowHand(p.SeatIndex); err != nil {
			return err
		}
		a.afterMutation()
		return nil
	})
}

func (a *Actor) MuckHand(session engine.SessionID) error {
	return a.submit(func() error {
		p, ok := a.room.Players[session]
		if !ok || p.SeatIndex == engine.NoSeat {
			return engine.ErrInvalidSeat
		}
		if err := a.room.MuckHand(p.SeatIndex); err != nil {
			return err
		}
		a.afterMutation()
		return nil
	})
}

func (a *Actor) RunItTwiceVote(session engine.SessionID, accept bool) error {
	return a.submit(func() error {
		p, ok := a.room.Players[session]
		if !ok || p.SeatIndex == engine.NoSeat {
			return engine.ErrInvalidSeat
		}
		seat := p.SeatIndex
		decidedBefore := a.room.RunItTwice.Decided
		if err := a.room.RunItTwiceVote(seat, accept); err != nil {
			return err
		}
		a.publishGameEvent(wire.GameEventRunItTwiceVote, wire.RunItTwiceVoteEventData{Seat: seat, Accept: accept})
		if a.room.RunItTwice.Decided && !decidedBefore {
			a.publishGameEvent(wire.GameEventRunItTwiceResult, wire.RunItTwiceResultData{Accepted: a.room.RunItTwice.Accepted})
		}
		a.afterMutation()
		return nil
	})
}

// LeaveRoom drops session from the room entirely (distinct from LeaveSeat,
// which keeps them on as a spectator) and hands off the host role if they
// held it.
func (a *Actor) LeaveRoom(session engine.SessionID) error {
	return a.submit(func() error {
		newHost, changed := a.room.TransferHostIfNeeded(session)
		if err := a.room.RemovePlayer(session); err != nil {
			return err
		}
		if changed && newHost != "" {
			a.publishGameEvent(wire.GameEventHostChanged, wire.HostChangedData{NewHost: string(newHost)})
		}
		a.afterMutation()
		return nil
	})
}

func (a *Actor) EnablePrivileged() error {
	return a.submit(func() error {
		a.room.EnablePrivileged()
		a.afterMutation()
		return nil
	})
}

func (a *Actor) DisablePrivileged() error {
	return a.submit(func() error {
		a.room.DisablePrivileged()
		a.afterMutation()
		return nil
	})
}

func (a *Actor) SetRiggedHand(order []card.Card, dealerSeat int) error {
	return a.submit(func() error {
		if err := a.room.SetRiggedHand(order, dealerSeat); err != nil {
			return err
		}
		a.afterMutation()
		return nil
	})
}

// Snapshot returns the current public room state without mutating anything.
func (a *Actor) Snapshot() (engine.RoomSnapshot, error) {
	var snap engine.RoomSnapshot
	err := a.submit(func() error {
		snap = a.room.Snapshot()
		return nil
	})
	return snap, err
}
