package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"pokerroom/engine"
	"pokerroom/internal/clock"
	"pokerroom/internal/config"
	"pokerroom/internal/gateway"
	"pokerroom/internal/registry"
	"pokerroom/internal/session"
	"pokerroom/internal/wire"
)

var cli struct {
	Config   string `short:"c" long:"config" default:"pokerroom.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" long:"addr" help:"Address to bind to (overrides config)"`
	LogLevel string `short:"l" long:"log-level" help:"Log level (overrides config)"`
	Secret   string `short:"s" long:"privileged-secret" help:"Shared secret for privileged mode (overrides config)"`
}

func main() {
	ctx := kong.Parse(&cli)

	cfg, err := config.Load(cli.Config)
	if err != nil {
		fmt.Printf("error loading config: %v\n", err)
		ctx.Exit(1)
	}
	if cli.Addr != "" {
		cfg.Server.Address = cli.Addr
	}
	if cli.LogLevel != "" {
		cfg.Server.LogLevel = cli.LogLevel
	}
	if cli.Secret != "" {
		cfg.Server.PrivilegedSecret = cli.Secret
	}

	logger := log.New(os.Stderr)
	switch cfg.Server.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	roomCfg, err := cfg.EngineConfig()
	if err != nil {
		logger.Error("invalid room configuration", "error", err)
		ctx.Exit(1)
	}

	sessions := session.NewManager()
	clk := clock.New()

	// gw implements roomactor.Broadcaster; the registry needs that interface
	// before gw itself can be constructed (gw needs the registry), so wire
	// them together through a small indirection.
	bus := &lazyBroadcaster{}
	reg := registry.New(clk, bus, roomCfg)
	gw := gateway.New(reg, sessions, logger, cfg.Server.PrivilegedSecret)
	bus.gw = gw

	mux := http.NewServeMux()
	mux.Handle("/ws", gw)

	srv := &http.Server{Addr: cfg.Server.Address, Handler: mux}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		logger.Info("shutting down")
		_ = srv.Close()
	}()

	logger.Info("starting poker room server", "addr", cfg.Server.Address)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "error", err)
		ctx.Exit(1)
	}
}

// lazyBroadcaster forwards to gw once it exists, breaking the gateway/
// registry construction cycle: the registry needs a Broadcaster before the
// gateway (which needs the registry) can be built.
type lazyBroadcaster struct {
	gw *gateway.Gateway
}

func (b *lazyBroadcaster) RoomState(room engine.RoomID, snapshot engine.RoomSnapshot) {
	b.gw.RoomState(room, snapshot)
}

func (b *lazyBroadcaster) PlayerState(room engine.RoomID, session engine.SessionID, view engine.PlayerView) {
	b.gw.PlayerState(room, session, view)
}

func (b *lazyBroadcaster) GameEvent(room engine.RoomID, evt wire.GameEvent) {
	b.gw.GameEvent(room, evt)
}
