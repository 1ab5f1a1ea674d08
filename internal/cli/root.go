package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/speakpad/speakpad/internal/app"
	"github.com/speakpad/speakpad/internal/audio"
	"github.com/speakpad/speakpad/internal/config"
	"github.com/speakpad/speakpad/internal/playback"
)

type Dependencies struct {
	App      *app.App
	Playback *playback.Controller
	Capture  audio.Capture
	Config   *config.Config
	Logger   zerolog.Logger
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "speakpad",
		Short: "Record and review speaking practice sessions",
		Long:  "A speaking-practice recorder: capture short practice takes from the microphone, then browse, replay, rename, and prune them from a monthly library.",
	}

	rootCmd.AddCommand(NewPracticeCmd(deps))
	rootCmd.AddCommand(NewListCmd(deps))
	rootCmd.AddCommand(NewPlayCmd(deps))
	rootCmd.AddCommand(NewRenameCmd(deps))
	rootCmd.AddCommand(NewDeleteCmd(deps))
	rootCmd.AddCommand(NewDevicesCmd(deps))

	return rootCmd
}
