package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// newInfoCmd creates the info command, which prints a summary of a
// map's model contents.
func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info [file]",
		Short: "Summarize a map's model contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, data, err := readMapFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "%s %s\n", StyleBold.Render("flavor:"), m.Flavor)
			fmt.Fprintf(os.Stdout, "%s %.0f x %.0f\n", StyleBold.Render("canvas:"), m.Layout.Width, m.Layout.Height)
			fmt.Fprintf(os.Stdout, "%s %d bytes\n", StyleBold.Render("source:"), len(data))
			fmt.Fprintln(os.Stdout)

			rows := []struct {
				name  string
				count int
			}{
				{"compartments", len(m.Model.Compartments)},
				{"entity pools", len(m.Model.EntityPools)},
				{"processes", len(m.Model.Processes)},
				{"operators", len(m.Model.Operators)},
				{"modulations", len(m.Model.Modulations)},
				{"activities", len(m.Model.Activities)},
				{"influences", len(m.Model.Influences)},
			}
			for _, r := range rows {
				if r.count == 0 {
					continue
				}
				fmt.Fprintf(os.Stdout, "  %-14s %d\n", r.name, r.count)
			}
			fmt.Fprintf(os.Stdout, "\n%s %d layout elements mapped\n", StyleDim.Render("mapping:"), m.Mapping.Len())
			return nil
		},
	}
	return cmd
}
