package cli

import (
	"github.com/spf13/cobra"

	"github.com/sbgntools/sbgnmap/pkg/tidy"
)

// newTidyCmd creates the tidy command, which runs the layout cleanup
// passes and writes the map back as SBGN-ML.
func newTidyCmd() *cobra.Command {
	var (
		output   string
		clipArcs bool
	)

	cmd := &cobra.Command{
		Use:   "tidy [file]",
		Short: "Clean up a map's layout geometry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			m, _, err := readMapFile(ctx, args[0])
			if err != nil {
				return err
			}

			p := newProgress(logger)
			m, err = tidy.Tidy(m)
			if err != nil {
				return err
			}
			if clipArcs {
				if m, err = tidy.SetArcsToBorders(m); err != nil {
					return err
				}
			}
			p.done("tidied layout")

			doc, err := encodeMap(m)
			if err != nil {
				return err
			}
			if err := writeDoc(doc, output); err != nil {
				return err
			}
			if output != "" && output != "-" {
				printSuccess("wrote %s", output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&clipArcs, "clip-arcs", false, "clip arc endpoints to node borders")
	return cmd
}
