package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func NewPlayCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play <id>",
		Short: "Play a recording and wait for it to finish",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			done := make(chan struct{})
			deps.Playback.SetFinishedFunc(func(string) { close(done) })

			if err := deps.App.Play(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Playing %s (ctrl-c to stop)\n", id)

			select {
			case <-done:
			case <-cmd.Context().Done():
				return deps.App.StopPlayback()
			}
			return nil
		},
	}
	return cmd
}
