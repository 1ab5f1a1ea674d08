package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func NewDeleteCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := deps.App.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Deleted %s\n", args[0])
			return nil
		},
	}
	return cmd
}
