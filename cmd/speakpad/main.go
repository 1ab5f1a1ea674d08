package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/speakpad/speakpad/internal/app"
	"github.com/speakpad/speakpad/internal/audio"
	"github.com/speakpad/speakpad/internal/cli"
	"github.com/speakpad/speakpad/internal/config"
	"github.com/speakpad/speakpad/internal/logging"
	"github.com/speakpad/speakpad/internal/permissions"
	"github.com/speakpad/speakpad/internal/playback"
	"github.com/speakpad/speakpad/internal/session"
	"github.com/speakpad/speakpad/internal/store"
)

func main() {
	// Load config from XDG/Library/AppData
	cfg, err := config.Load()
	if err != nil {
		// Use default logger if config fails to load
		log := logging.New()
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	// Initialize logger with configured level
	log := logging.NewWithLevel(cfg.LogLevel)

	capture, err := audio.NewCapture()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize audio capture")
	}
	defer capture.Close()

	player, err := audio.NewPlayer()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize audio output")
	}
	defer player.Close()

	recordings := store.New(cfg.RecordingsDir, log)

	sess := session.New(session.Config{
		Capture:     capture,
		Gate:        permissions.NewGate(),
		Store:       recordings,
		Logger:      log,
		DeviceID:    cfg.Audio.DeviceID,
		SampleRate:  cfg.Audio.SampleRate,
		MinDuration: time.Duration(cfg.MinRecordingMillis) * time.Millisecond,
	})

	controller := playback.New(player, recordings, log)

	application := app.New(app.Config{
		Session:  sess,
		Playback: controller,
		Store:    recordings,
		Logger:   log,
	})
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := &cli.Dependencies{
		App:      application,
		Playback: controller,
		Capture:  capture,
		Config:   cfg,
		Logger:   log,
	}

	if err := cli.NewRootCmd(deps).ExecuteContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("Command failed")
	}
}
