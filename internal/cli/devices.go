package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func NewDevicesCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List available input devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			devices, err := deps.Capture.ListDevices()
			if err != nil {
				return err
			}
			for _, d := range devices {
				marker := " "
				if d.Default {
					marker = "*"
				}
				fmt.Fprintf(os.Stdout, "%s %-10s %s\n", marker, d.ID, d.Name)
			}
			return nil
		},
	}
	return cmd
}
