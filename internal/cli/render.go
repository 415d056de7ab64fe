package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sbgntools/sbgnmap/pkg/cache"
	"github.com/sbgntools/sbgnmap/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string  // output file path (or base path for multiple formats)
	formats  []string // output formats: "dot", "svg", "png", "pdf"
	style    string  // TOML style sheet path
	tidy     bool    // run layout cleanup before rendering
	clipArcs bool    // clip arc endpoints to node borders
	scale    float64 // PNG raster scale
	noCache  bool    // disable the artifact cache
	refresh  bool    // bypass cached artifacts
	cacheDir string  // artifact cache directory
}

// newRenderCmd creates the render command for generating diagrams.
func newRenderCmd() *cobra.Command {
	var formatsStr string
	opts := renderOpts{scale: pipeline.DefaultScale}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render an SBGN-ML map to a diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr, opts.output)
			return runRender(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, png, pdf (comma-separated)")
	cmd.Flags().StringVar(&opts.style, "style", "", "TOML style sheet")
	cmd.Flags().BoolVar(&opts.tidy, "tidy", false, "tidy the layout before rendering")
	cmd.Flags().BoolVar(&opts.clipArcs, "clip-arcs", false, "clip arc endpoints to node borders")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG raster scale")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even when cached")
	cmd.Flags().StringVar(&opts.cacheDir, "cache-dir", defaultCacheDir(), "artifact cache directory")

	return cmd
}

// parseFormats parses the --format flag, falling back to the output
// file's extension, then to SVG.
func parseFormats(s, output string) []string {
	if s != "" {
		return strings.Split(s, ",")
	}
	if ext := strings.TrimPrefix(filepath.Ext(output), "."); ext != "" {
		return []string{ext}
	}
	return []string{pipeline.FormatSVG}
}

// defaultCacheDir returns the artifact cache location under the user
// cache directory.
func defaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return ".sbgnmap-cache"
	}
	return filepath.Join(base, "sbgnmap")
}

func runRender(cmd *cobra.Command, path string, opts *renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	input, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	c := cache.NewNullCache()
	if !opts.noCache {
		fc, err := cache.NewFileCache(opts.cacheDir)
		if err != nil {
			logger.Warn("cache disabled", "err", err)
		} else {
			c = fc
		}
	}
	defer c.Close()

	runner := pipeline.NewRunner(c, logger)
	popts := pipeline.Options{
		Input:     input,
		Source:    path,
		Formats:   opts.formats,
		StylePath: opts.style,
		Tidy:      opts.tidy,
		ClipArcs:  opts.clipArcs,
		Scale:     opts.scale,
		Refresh:   opts.refresh,
	}

	spinner := newSpinnerWithContext(ctx, "rendering "+filepath.Base(path))
	spinner.Start()
	result, err := runner.Execute(ctx, popts)
	if err != nil {
		spinner.StopWithError("render failed")
		return err
	}
	spinner.Stop()

	for _, format := range opts.formats {
		out := outputPath(opts.output, path, format, len(opts.formats) > 1)
		if err := writeOutput(result.Artifacts[format], out); err != nil {
			return err
		}
		if out != "" && out != "-" {
			printSuccess("wrote %s", out)
		}
	}
	return nil
}

// outputPath resolves the output file for one format. With several
// formats the base path (or the input name) gains per-format
// extensions; with one, the explicit output wins unchanged.
func outputPath(output, input, format string, multi bool) string {
	if !multi && output != "" {
		return output
	}
	base := output
	if base == "" {
		base = strings.TrimSuffix(input, filepath.Ext(input))
	} else {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return base + "." + format
}
