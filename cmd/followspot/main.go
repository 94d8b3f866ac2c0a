package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nhaun24/followspot/internal/bootconfig"
	"github.com/nhaun24/followspot/internal/control"
	"github.com/nhaun24/followspot/internal/frame"
	"github.com/nhaun24/followspot/internal/httpapi"
	"github.com/nhaun24/followspot/internal/indicator"
	"github.com/nhaun24/followspot/internal/input"
	"github.com/nhaun24/followspot/internal/logging"
	"github.com/nhaun24/followspot/internal/preset"
	"github.com/nhaun24/followspot/internal/sacn"
	"github.com/nhaun24/followspot/internal/store"
)

func main() {
	fs := flag.NewFlagSet("followspot", flag.ExitOnError)
	applyFlags := bootconfig.Flags(fs)
	configPath := fs.String("config", "config.yaml", "path to config.yaml")
	_ = fs.Parse(os.Args[1:])

	cfg, err := bootconfig.Load(*configPath)
	if err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with defaults")
	}
	applyFlags(&cfg)

	logs := logging.Setup(cfg.LogLevel, cfg.LogRingSize)

	persister := store.NewFilePersister(cfg.ConfigDir)
	st := store.NewStore(persister)
	if snap, err := persister.Load(); err != nil {
		log.Warn().Err(err).Msg("persisted config load failed; starting from defaults")
	} else {
		st.LoadFrom(snap)
	}
	if err := st.EnsureCID(); err != nil {
		log.Warn().Err(err).Msg("cid persistence failed; continuing with in-memory cid")
	}

	hw := input.OpenHardware(cfg.JoystickDevice)
	virt := input.NewVirtual()
	sw := input.NewSwitch(hw, virt, false)

	presets := preset.New(st)
	assembler := frame.New()

	emitter, err := sacn.New(cfg.SacnBindAddresses)
	if err != nil {
		log.Fatal().Err(err).Msg("sacn emitter init failed")
	}

	indicators, fixtureLEDs, err := indicator.New(cfg.GpioPowerPin, cfg.GpioErrorPin, cfg.GpioFixtureLedPins)
	if err != nil {
		log.Warn().Err(err).Msg("gpio indicator init failed; continuing without indicators")
	}

	loop := control.New(st, sw, presets, assembler, emitter, indicators, fixtureLEDs)

	ctx, cancel := context.WithCancel(context.Background())
	restartRequested := make(chan struct{}, 1)
	restart := func() {
		select {
		case restartRequested <- struct{}{}:
		default:
		}
		cancel()
	}

	server := httpapi.NewServer(st, loop, sw, presets, logs, restart)
	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      server.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	statusTicker := time.NewTicker(200 * time.Millisecond)
	defer statusTicker.Stop()
	go func() {
		for range statusTicker.C {
			server.BroadcastStatus()
		}
	}()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		loop.Run(ctx)
	}()

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP server starting")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server crashed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Info().Str("signal", s.String()).Msg("shutting down")
	case <-restartRequested:
		log.Info().Msg("restart requested over HTTP; shutting down for supervisor restart")
	}

	cancel()
	wg.Wait()

	_ = httpServer.Close()
	if indicators != nil {
		_ = indicators.Close()
	}
	_ = sw.Close()
}
