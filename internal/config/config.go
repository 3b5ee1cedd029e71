// Package config loads server configuration from an HCL file: the listen
// address, logging, the privileged-mode shared secret, and the per-room
// defaults new rooms are created with.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"pokerroom/engine"
)

// ServerConfig is the top-level shape of the HCL configuration file.
type ServerConfig struct {
	Server ServerSettings `hcl:"server,block"`
	Room   RoomSettings   `hcl:"room,block"`
}

// ServerSettings holds process-level settings.
type ServerSettings struct {
	Address          string `hcl:"address,optional"`
	LogLevel         string `hcl:"log_level,optional"`
	PrivilegedSecret string `hcl:"privileged_secret,optional"`
}

// RoomSettings holds the defaults every new room is created with.
type RoomSettings struct {
	MaxSeats             int   `hcl:"max_seats,optional"`
	SmallBlind           int   `hcl:"small_blind,optional"`
	BigBlind             int   `hcl:"big_blind,optional"`
	MinBuyInBBs          int   `hcl:"min_buy_in_bbs,optional"`
	ReapGraceMS          int64 `hcl:"reap_grace_ms,optional"`
	AutoAdvanceMS        int64 `hcl:"auto_advance_ms,optional"`
	ShowdownDelayMS      int64 `hcl:"showdown_delay_ms,optional"`
	RunItTwiceDeadlineMS int64 `hcl:"run_it_twice_deadline_ms,optional"`
}

// Default returns the built-in configuration: port 8080 on all interfaces, info logging,
// privileged mode disabled, and the reference 8-max 10/20 room.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Address:  ":8080",
			LogLevel: "info",
		},
		Room: roomSettingsFromEngine(engine.DefaultConfig()),
	}
}

func roomSettingsFromEngine(c engine.Config) RoomSettings {
	return RoomSettings{
		MaxSeats:             c.MaxSeats,
		SmallBlind:           c.SmallBlind,
		BigBlind:             c.BigBlind,
		MinBuyInBBs:          c.MinBuyInBBs,
		ReapGraceMS:          c.ReapGraceMS,
		AutoAdvanceMS:        c.AutoAdvanceMS,
		ShowdownDelayMS:      c.ShowdownDelayMS,
		RunItTwiceDeadlineMS: c.RunItTwiceDeadlineMS,
	}
}

// Load reads and decodes an HCL configuration file. A missing file is not
// an error: it just means "use the defaults".
func Load(path string) (*ServerConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse %s: %s", path, diags.Error())
	}

	cfg := Default()
	diags = gohcl.DecodeBody(file.Body, nil, cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("decode %s: %s", path, diags.Error())
	}
	return cfg, nil
}

// EngineConfig converts the room defaults into the engine's own Config.
// Validation happens inside engine.NewRoom, the first time it's used.
func (s *ServerConfig) EngineConfig() (engine.Config, error) {
	c := engine.Config{
		MaxSeats:             s.Room.MaxSeats,
		SmallBlind:           s.Room.SmallBlind,
		BigBlind:             s.Room.BigBlind,
		MinBuyInBBs:          s.Room.MinBuyInBBs,
		ReapGraceMS:          s.Room.ReapGraceMS,
		AutoAdvanceMS:        s.Room.AutoAdvanceMS,
		ShowdownDelayMS:      s.Room.ShowdownDelayMS,
		RunItTwiceDeadlineMS: s.Room.RunItTwiceDeadlineMS,
	}
	if c.MaxSeats == 0 {
		c = engine.DefaultConfig()
	}
	return c, nil
}
