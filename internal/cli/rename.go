package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func NewRenameCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a recording",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := deps.App.Rename(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Renamed %s to %q\n", args[0], args[1])
			return nil
		},
	}
	return cmd
}
