package cli

import (
	"context"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowcore/pkg/feed"
	"github.com/matzehuels/flowcore/pkg/input"
	"github.com/matzehuels/flowcore/pkg/store"
)

// maxDrainFrames bounds the frames run after the last event so a held
// auto-pan cannot spin forever.
const maxDrainFrames = 600

type replayOptions struct {
	scene   string
	events  string
	publish string
	frame   time.Duration
	output  string
}

// replayCommand creates the replay command for feeding recorded input into a scene.
func (c *CLI) replayCommand() *cobra.Command {
	var opts replayOptions

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay recorded input events against a scene",
		Long: `Replay recorded input events against a scene.

Events are a JSON array of normalized input events in screen space:

  [{"kind": "pointerdown", "point": {"x": 10, "y": 10}},
   {"kind": "pointermove", "point": {"x": 60, "y": 10}},
   {"kind": "pointerup", "point": {"x": 60, "y": 10}}]

One animation frame runs after every event. With --publish every change
batch is also published to Redis, e.g. --publish redis://localhost:6379/0.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runReplay(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.scene, "scene", "s", "", "scene file (required)")
	cmd.Flags().StringVarP(&opts.events, "events", "e", "", "events file (required)")
	cmd.Flags().StringVar(&opts.publish, "publish", "", "redis URL to publish change batches to")
	cmd.Flags().DurationVar(&opts.frame, "frame", 16*time.Millisecond, "time between frames")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the resulting scene to this file")
	_ = cmd.MarkFlagRequired("scene")
	_ = cmd.MarkFlagRequired("events")

	return cmd
}

func (c *CLI) runReplay(ctx context.Context, opts replayOptions) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	sc, err := readScene(opts.scene)
	if err != nil {
		return err
	}
	evs, err := readEvents(opts.events)
	if err != nil {
		return err
	}

	var (
		pub  *feed.Publisher
		wrap func(store.Handlers[sceneData]) store.Handlers[sceneData]
	)
	if opts.publish != "" {
		sink, err := feed.NewRedisSinkFromURL(opts.publish)
		if err != nil {
			return err
		}
		if err := sink.Ping(ctx); err != nil {
			_ = sink.Close()
			return err
		}
		pub = feed.NewPublisher(sink, feed.Options{Source: opts.scene, Retries: 2, Logger: logger})
		defer pub.Close()
		wrap = func(h store.Handlers[sceneData]) store.Handlers[sceneData] {
			return feed.Attach(ctx, pub, h)
		}
	}

	o, err := newOwner(sc, cfg, logger, wrap)
	if err != nil {
		return err
	}
	defer o.close()

	stats := replay(ctx, o, evs, opts.frame)
	if err := ctx.Err(); err != nil {
		return err
	}
	prog.done("Replayed " + opts.events)

	snap := o.s.Snapshot()
	printSuccess("Replayed %d events", stats.Events)
	printStats(len(snap.Nodes), len(snap.Edges), len(snap.SelectedNodes)+len(snap.SelectedEdges))
	printTable([]string{"nodes", "edges", "connects", "errors"}, [][]string{{
		strconv.Itoa(stats.NodeBatches), strconv.Itoa(stats.EdgeBatches), strconv.Itoa(stats.Connections), strconv.Itoa(stats.Errors),
	}})
	if pub != nil {
		printDetail("published %d messages", pub.Seq())
		if err := pub.Err(); err != nil {
			printWarning("publish failed: %v", err)
		}
	}

	if opts.output == "" {
		return nil
	}
	if err := writeJSON(opts.output, sceneOf(snap)); err != nil {
		return err
	}
	printFile(opts.output)
	printNextStep("Render it", "flowcore export -s "+opts.output+" -o scene.svg")
	return nil
}

// replay feeds evs to o one frame apart, then runs frames until every
// animation has settled.
func replay(ctx context.Context, o *owner, evs []input.Event, frame time.Duration) ownerStats {
	now := time.Unix(0, 0)
	for _, ev := range evs {
		if ctx.Err() != nil {
			return o.stats
		}
		o.handle(ev)
		now = now.Add(frame)
		o.advance(now)
	}
	for i := 0; i < maxDrainFrames && o.loop.Active() > 0; i++ {
		now = now.Add(frame)
		o.advance(now)
	}
	return o.stats
}
