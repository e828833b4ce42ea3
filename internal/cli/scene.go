package cli

import (
	"encoding/json"
	"os"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowcore/pkg/anim"
	"github.com/matzehuels/flowcore/pkg/config"
	"github.com/matzehuels/flowcore/pkg/errors"
	"github.com/matzehuels/flowcore/pkg/flow"
	"github.com/matzehuels/flowcore/pkg/geom"
	"github.com/matzehuels/flowcore/pkg/input"
	"github.com/matzehuels/flowcore/pkg/store"
)

// Node payloads are carried through untouched.
type (
	sceneData  = json.RawMessage
	sceneNode  = flow.Node[sceneData]
	sceneStore = store.Store[sceneData]
)

// Scene is a JSON fixture standing in for the external state owner: the
// nodes and edges it would hand to the store, plus the measurements a
// renderer would report.
type Scene struct {
	Nodes    []sceneNode              `json:"nodes"`
	Edges    []flow.Edge              `json:"edges"`
	Handles  map[string][]flow.Handle `json:"handles,omitempty"`
	Viewport *geom.Viewport           `json:"viewport,omitempty"`
	Width    float64                  `json:"width,omitempty"`
	Height   float64                  `json:"height,omitempty"`
}

// readScene loads a scene file.
func readScene(path string) (Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Scene{}, errors.Wrap(errors.ErrCodeNotFound, err, "scene %s", path)
		}
		return Scene{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read scene %s", path)
	}
	var sc Scene
	if err := json.Unmarshal(data, &sc); err != nil {
		return Scene{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode scene %s", path)
	}
	return sc, nil
}

// readEvents loads a recorded input session: a JSON array of events.
func readEvents(path string) ([]input.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "events %s", path)
	}
	var evs []input.Event
	if err := json.Unmarshal(data, &evs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode events %s", path)
	}
	return evs, nil
}

// open builds a store from the scene. The scene's handles are registered
// as measurements of the nodes they belong to.
func (sc Scene) open(cfg config.Config, h store.Handlers[sceneData], loop *anim.Loop, logger *log.Logger) (*sceneStore, error) {
	s, err := store.New[sceneData](cfg, h, loop, logger)
	if err != nil {
		return nil, err
	}

	w, ht := sc.Width, sc.Height
	if w <= 0 || ht <= 0 {
		w, ht = defaultWidth, defaultHeight
	}
	s.Resize(w, ht)
	s.SetNodes(sc.Nodes)
	s.SetEdges(sc.Edges)

	var ms []store.Measurement
	for _, n := range sc.Nodes {
		if hs, ok := sc.Handles[n.ID]; ok {
			ms = append(ms, store.Measurement{ID: n.ID, Size: n.Measured, Handles: hs})
		}
	}
	if len(ms) > 0 {
		s.UpdateNodeDimensions(ms)
	}
	if sc.Viewport != nil {
		s.SetViewport(*sc.Viewport, 0)
	}
	return s, nil
}

// sceneOf converts a snapshot back into a scene file.
func sceneOf(snap store.Snapshot[sceneData]) Scene {
	vp := snap.Viewport
	return Scene{
		Nodes:    snap.Nodes,
		Edges:    snap.Edges,
		Handles:  snap.Handles,
		Viewport: &vp,
		Width:    snap.Width,
		Height:   snap.Height,
	}
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode")
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}
