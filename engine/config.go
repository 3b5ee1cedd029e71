package engine

// Config holds the per-room parameters that are fixed at room creation and
// do not change hand to hand (blinds can be changed between hands by a
// future extension, but no blind-escalation schedule is in scope here).
type Config struct {
	MaxSeats       int
	SmallBlind     int
	BigBlind       int
	MinBuyInBBs    int // buy-in must be at least this many big blinds
	ReapGraceMS    int64
	AutoAdvanceMS  int64 // display delay between auto-dealt streets
	ShowdownDelayMS int64 // delay before the next hand auto-starts
	RunItTwiceDeadlineMS int64
}

// DefaultConfig matches the reference 8-max table the spec calls out.
func DefaultConfig() Config {
	return Config{
		MaxSeats:             8,
		SmallBlind:           10,
		BigBlind:             20,
		MinBuyInBBs:          10,
		ReapGraceMS:          60_000,
		AutoAdvanceMS:        1500,
		ShowdownDelayMS:      4000,
		RunItTwiceDeadlineMS: 15_000,
	}
}

func (c Config) validate() error {
	if c.MaxSeats < 2 || c.MaxSeats > 10 {
		return invalidState("max seats must be between 2 and 10")
	}
	if c.SmallBlind <= 0 || c.BigBlind <= 0 || c.SmallBlind >= c.BigBlind {
		return invalidState("small blind must be positive and less than big blind")
	}
	if c.MinBuyInBBs <= 0 {
		return invalidState("minimum buy-in multiple must be positive")
	}
	return nil
}
