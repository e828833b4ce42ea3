package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowcore/pkg/errors"
	"github.com/matzehuels/flowcore/pkg/store"
)

type fitOptions struct {
	scene         string
	width, height float64
	padding       float64
	nodes         string
	output        string
}

// fitCommand creates the fit command for computing a fit-view viewport.
func (c *CLI) fitCommand() *cobra.Command {
	var opts fitOptions

	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Compute the viewport that fits a scene",
		Long: `Compute the viewport that fits the measured nodes of a scene (or a subset
given with --nodes) into a viewport of the given size.

With --output the scene is written back with the fitted viewport.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFit(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.scene, "scene", "s", "", "scene file (required)")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "viewport width (default: scene or 800)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "viewport height (default: scene or 600)")
	cmd.Flags().Float64Var(&opts.padding, "padding", -1, "padding fraction (default: config)")
	cmd.Flags().StringVar(&opts.nodes, "nodes", "", "comma-separated node ids to fit")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the fitted scene to this file")
	_ = cmd.MarkFlagRequired("scene")

	return cmd
}

func (c *CLI) runFit(ctx context.Context, opts fitOptions) error {
	logger := loggerFromContext(ctx)
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	sc, err := readScene(opts.scene)
	if err != nil {
		return err
	}
	if opts.width > 0 && opts.height > 0 {
		sc.Width, sc.Height = opts.width, opts.height
	}

	s, err := sc.open(cfg, store.Handlers[sceneData]{}, nil, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	fv := s.DefaultFitView()
	if opts.padding >= 0 {
		fv.Padding = opts.padding
	}
	if opts.nodes != "" {
		fv.Nodes = strings.Split(opts.nodes, ",")
	}
	if !s.FitView(fv) {
		return errors.New(errors.ErrCodeInvalidInput, "scene %s has no measured nodes to fit", opts.scene)
	}

	snap := s.Snapshot()
	vp := snap.Viewport
	bounds, _ := snap.Bounds()
	printSuccess("Fitted %s", opts.scene)
	printTable([]string{"", "x", "y", "zoom"}, [][]string{
		{"viewport", fmtNum(vp.X), fmtNum(vp.Y), fmtNum(vp.Zoom)},
	})
	printKeyValue("bounds", fmtRect(bounds.X, bounds.Y, bounds.Width, bounds.Height))

	if opts.output == "" {
		return nil
	}
	if err := writeJSON(opts.output, sceneOf(snap)); err != nil {
		return err
	}
	printFile(opts.output)
	return nil
}

func fmtRect(x, y, w, h float64) string {
	return fmtNum(x) + ", " + fmtNum(y) + "  " + fmtNum(w) + "x" + fmtNum(h)
}
