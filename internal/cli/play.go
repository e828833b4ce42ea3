package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowcore/pkg/edge"
	"github.com/matzehuels/flowcore/pkg/geom"
	"github.com/matzehuels/flowcore/pkg/input"
)

const (
	frameInterval = time.Second / 30
	fitDuration   = 300 * time.Millisecond
	zoomStep      = 1.2
)

// playCommand creates the play command for editing a scene in the terminal.
func (c *CLI) playCommand() *cobra.Command {
	var (
		scene  string
		output string
	)

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Edit a scene interactively in the terminal",
		Long: `Edit a scene interactively in the terminal.

The terminal mouse drives the store: drag nodes, draw selection boxes on the
pane, drag from a handle to connect, middle-drag or wheel to pan and zoom.
Shift adds to the selection.

Keys: f fit view, +/- zoom, esc cancel, del delete selection, q quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPlay(cmd.Context(), scene, output)
		},
	}

	cmd.Flags().StringVarP(&scene, "scene", "s", "", "scene file (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the edited scene here on quit")
	_ = cmd.MarkFlagRequired("scene")

	return cmd
}

func (c *CLI) runPlay(ctx context.Context, scenePath, output string) error {
	logger := loggerFromContext(ctx)
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	sc, err := readScene(scenePath)
	if err != nil {
		return err
	}
	o, err := newOwner(sc, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer o.close()

	p := tea.NewProgram(newPlayModel(o), tea.WithContext(ctx), tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		return err
	}

	if output == "" {
		return nil
	}
	if err := writeJSON(output, sceneOf(o.s.Snapshot())); err != nil {
		return err
	}
	printFile(output)
	return nil
}

// =============================================================================
// playModel - terminal host for a scene store
// =============================================================================

type frameMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

type playModel struct {
	o          *owner
	cols, rows int
}

func newPlayModel(o *owner) playModel {
	return playModel{o: o}
}

func (m playModel) Init() tea.Cmd {
	return tick()
}

func (m playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.cols, m.rows = msg.Width, msg.Height
		m.o.handle(input.ResizeTo(float64(m.cols)*cellW, float64(max(m.rows-1, 1))*cellH))

	case tea.MouseMsg:
		if ev, ok := mouseEvent(tea.MouseEvent(msg)); ok {
			m.o.handle(ev)
		}

	case tea.KeyMsg:
		s := m.o.s
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.o.handle(input.Key(input.KeyEscape, input.Modifiers{}))
		case "delete":
			m.o.handle(input.Key(input.KeyDelete, input.Modifiers{}))
		case "backspace":
			m.o.handle(input.Key(input.KeyBackspace, input.Modifiers{}))
		case "f":
			fv := s.DefaultFitView()
			fv.Duration = fitDuration
			s.FitView(fv)
		case "+", "=":
			s.ZoomTo(s.Viewport().Zoom*zoomStep, fitDuration)
		case "-":
			s.ZoomTo(s.Viewport().Zoom/zoomStep, fitDuration)
		}

	case frameMsg:
		m.o.advance(time.Time(msg))
		return m, tick()
	}
	return m, nil
}

// mouseEvent translates a terminal mouse event into a store input event.
func mouseEvent(me tea.MouseEvent) (input.Event, bool) {
	p := screenPoint(me.X, me.Y)
	mods := input.Modifiers{Shift: me.Shift, Ctrl: me.Ctrl, Alt: me.Alt}
	ev := input.Event{Point: p, Modifiers: mods}

	switch me.Button {
	case tea.MouseButtonWheelUp:
		return input.WheelAt(p.X, p.Y, -100), true
	case tea.MouseButtonWheelDown:
		return input.WheelAt(p.X, p.Y, 100), true
	case tea.MouseButtonMiddle:
		ev.Button = input.ButtonMiddle
	case tea.MouseButtonRight:
		ev.Button = input.ButtonSecondary
	}

	switch me.Action {
	case tea.MouseActionPress:
		ev.Kind = input.PointerDown
	case tea.MouseActionRelease:
		ev.Kind = input.PointerUp
	case tea.MouseActionMotion:
		ev.Kind = input.PointerMove
	default:
		return input.Event{}, false
	}
	return ev, true
}

func (m playModel) View() string {
	if m.cols == 0 || m.rows < 2 {
		return ""
	}
	return m.draw().String() + "\n" + m.status()
}

// draw paints edges, then nodes in stacking order, then gesture overlays.
func (m playModel) draw() *canvas {
	s := m.o.s
	cv := newCanvas(m.cols, m.rows-1)
	snap := s.Snapshot()

	for _, e := range snap.Edges {
		p, ok := snap.Paths[e.ID]
		if !ok {
			continue
		}
		pts := p.Points
		if isCurve(e.Type, m.o.cfg.Edges.DefaultType) && len(pts) == 4 {
			pts = cubicPoints(pts, 24)
		}
		screen := make([]geom.Point, len(pts))
		for i, pt := range pts {
			screen[i] = s.FlowToScreen(pt)
		}
		kind, r := cellEdge, '·'
		if e.Selected {
			kind, r = cellEdgeSelected, '•'
		}
		cv.polyline(screen, r, kind)
	}

	for _, n := range snap.Nodes {
		if n.Hidden || n.Measured.IsZero() {
			continue
		}
		rect := snap.Placements[n.ID].Rect(n.Measured)
		tl := s.FlowToScreen(rect.TopLeft())
		sr := geom.Rect{X: tl.X, Y: tl.Y, Width: rect.Width * snap.Viewport.Zoom, Height: rect.Height * snap.Viewport.Zoom}
		kind := cellNode
		if n.Selected {
			kind = cellNodeSelected
		}
		x0, y0, x1, y1 := cv.box(sr, kind)
		cv.fill(x0, y0, x1, y1)
		cv.text(x0+1, y0+1, n.ID, x1-x0-1, kind)

		for _, h := range snap.Handles[n.ID] {
			hx, hy := cell(s.FlowToScreen(h.Anchor(rect.TopLeft())))
			cv.set(hx, hy, '●', cellHandle)
		}
	}

	if r, ok := s.SelectionRect(); ok {
		cv.box(r, cellSelectBox)
	}
	if from, pointer, cand, ok := s.ConnectionLine(); ok {
		to := pointer
		if cand != nil {
			to = cand.Handle.Rect.Center()
		}
		cv.segment(from.Rect.Center(), to, '∙', cellConnect)
	}
	return cv
}

func isCurve(edgeType, defaultType string) bool {
	if edgeType == "" {
		edgeType = defaultType
	}
	switch strings.ToLower(edgeType) {
	case "", edge.TypeDefault, edge.TypeBezier, edge.TypeSimpleBezier:
		return true
	}
	return false
}

func (m playModel) status() string {
	s := m.o.s
	vp := s.Viewport()
	parts := []string{
		StyleHighlight.Render(s.Gesture().String()),
		fmt.Sprintf("zoom %.2f", vp.Zoom),
		fmt.Sprintf("%d nodes", len(s.Nodes())),
		fmt.Sprintf("%d edges", len(s.Edges())),
		fmt.Sprintf("%d selected", len(s.SelectedNodes())+len(s.SelectedEdges())),
		"f fit · +/- zoom · esc cancel · del delete · q quit",
	}
	return StyleDim.Render(strings.Join(parts, "  "))
}
