package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowcore/pkg/edge"
	"github.com/matzehuels/flowcore/pkg/errors"
	"github.com/matzehuels/flowcore/pkg/geom"
)

// routeCommand creates the route command for routing a single edge.
func (c *CLI) routeCommand() *cobra.Command {
	var (
		edgeType string
		from, to string
	)

	cmd := &cobra.Command{
		Use:   "route",
		Short: "Route one edge between two handle anchors",
		Long: `Route one edge between two handle anchors and print its SVG path data,
corner points and label anchor.

Anchors are written as x,y,position where position is the side of the node
the handle sits on (top, right, bottom, left).

  flowcore route --type step --from 0,0,right --to 100,100,left`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !edge.Known(edgeType) {
				return errors.New(errors.ErrCodeUnsupported, "edge type %q (want one of %s)", edgeType, strings.Join(edge.Types, ", "))
			}
			src, srcPos, err := parseAnchor(from)
			if err != nil {
				return err
			}
			dst, dstPos, err := parseAnchor(to)
			if err != nil {
				return err
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			p := edge.Route(edgeType, edge.Params{
				Source: src, SourcePosition: srcPos,
				Target: dst, TargetPosition: dstPos,
			}, cfg.EdgeOptions())

			printKeyValue("type", edgeType)
			printKeyValue("path", p.D)
			printKeyValue("label", fmtPoint(p.Label))
			printTable([]string{"#", "x", "y"}, pointRows(p.Points))
			return nil
		},
	}

	cmd.Flags().StringVarP(&edgeType, "type", "t", edge.TypeDefault, "edge type: "+strings.Join(edge.Types, ", "))
	cmd.Flags().StringVar(&from, "from", "0,0,bottom", "source anchor x,y,position")
	cmd.Flags().StringVar(&to, "to", "0,100,top", "target anchor x,y,position")

	return cmd
}

// parseAnchor parses "x,y,position".
func parseAnchor(s string) (geom.Point, geom.Position, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return geom.Point{}, 0, errors.New(errors.ErrCodeInvalidInput, "anchor %q: want x,y,position", s)
	}
	x, errX := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errX != nil || errY != nil {
		return geom.Point{}, 0, errors.New(errors.ErrCodeInvalidInput, "anchor %q: bad coordinates", s)
	}
	pos, err := geom.ParsePosition(strings.ToLower(strings.TrimSpace(parts[2])))
	if err != nil {
		return geom.Point{}, 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "anchor %q", s)
	}
	return geom.Point{X: x, Y: y}, pos, nil
}

func fmtPoint(p geom.Point) string {
	return fmt.Sprintf("%s, %s", fmtNum(p.X), fmtNum(p.Y))
}

func fmtNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func pointRows(pts []geom.Point) [][]string {
	rows := make([][]string, len(pts))
	for i, p := range pts {
		rows[i] = []string{strconv.Itoa(i), fmtNum(p.X), fmtNum(p.Y)}
	}
	return rows
}
