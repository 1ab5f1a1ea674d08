package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/speakpad/speakpad/internal/library"
)

var (
	monthHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	idStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	durationStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func NewListCmd(deps *Dependencies) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recordings grouped by month",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := deps.App.Refresh(); err != nil {
				return err
			}
			deps.App.SetSearch(search)

			snap := deps.App.Snapshot()
			if len(snap.Groups) == 0 {
				if search != "" {
					fmt.Fprintf(os.Stdout, "No recordings match %q\n", search)
				} else {
					fmt.Fprintln(os.Stdout, "No recordings yet. Run `speakpad practice` to make one.")
				}
				return nil
			}

			printGroups(snap.Groups)
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "filter recordings by name")
	return cmd
}

func printGroups(groups []library.Group) {
	for _, g := range groups {
		fmt.Fprintln(os.Stdout, monthHeaderStyle.Render(g.Label))
		for _, r := range g.Recordings {
			fmt.Fprintf(os.Stdout, "  %s  %s  %s\n",
				idStyle.Render(r.ID),
				durationStyle.Render(library.FormatDuration(r.Duration)),
				r.Name,
			)
		}
	}
}
