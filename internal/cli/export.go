package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowcore/pkg/errors"
	"github.com/matzehuels/flowcore/pkg/export"
	"github.com/matzehuels/flowcore/pkg/store"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
)

type exportOptions struct {
	scene    string
	format   string
	output   string
	detailed bool
	scale    float64
}

// exportCommand creates the export command for writing a scene as a diagram.
func (c *CLI) exportCommand() *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a scene as Graphviz DOT or SVG",
		Long: `Export a scene as Graphviz DOT or SVG.

Node positions come from the scene and are pinned, so the output matches the
editor's layout. SVG is rendered in-process with the neato engine.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != formatDOT && opts.format != formatSVG {
				return errors.New(errors.ErrCodeUnsupported, "format %q (want dot or svg)", opts.format)
			}
			return c.runExport(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.scene, "scene", "s", "", "scene file (required)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatSVG, "output format: dot, svg")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include position, size and data in labels")
	cmd.Flags().Float64Var(&opts.scale, "scale", 1, "coordinate scale")
	_ = cmd.MarkFlagRequired("scene")

	return cmd
}

func (c *CLI) runExport(ctx context.Context, stdout io.Writer, opts exportOptions) error {
	logger := loggerFromContext(ctx)
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	sc, err := readScene(opts.scene)
	if err != nil {
		return err
	}
	s, err := sc.open(cfg, store.Handlers[sceneData]{}, nil, logger)
	if err != nil {
		return err
	}
	snap := s.Snapshot()
	s.Close()

	out := []byte(export.ToDOT(snap, export.Options{Detailed: opts.detailed, Scale: opts.scale}))
	if opts.format == formatSVG {
		prog := newProgress(logger)
		if out, err = export.RenderSVG(ctx, string(out)); err != nil {
			return err
		}
		prog.done("Rendered svg")
	}

	if opts.output == "" {
		_, err := stdout.Write(out)
		return err
	}
	if err := os.WriteFile(opts.output, out, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", opts.output)
	}
	printSuccess("Exported %s", opts.scene)
	printFile(opts.output)
	return nil
}
