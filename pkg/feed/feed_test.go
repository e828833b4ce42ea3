package feed

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/flowcore/pkg/changes"
	"github.com/matzehuels/flowcore/pkg/config"
	"github.com/matzehuels/flowcore/pkg/errors"
	"github.com/matzehuels/flowcore/pkg/flow"
	"github.com/matzehuels/flowcore/pkg/geom"
	"github.com/matzehuels/flowcore/pkg/observability"
	"github.com/matzehuels/flowcore/pkg/store"
)

func newRedis(t *testing.T) *RedisSink {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	sink := NewRedisSink(RedisOptions{Addr: mr.Addr()})
	t.Cleanup(func() { _ = sink.Close() })
	require.NoError(t, sink.Ping(context.Background()))
	return sink
}

func quiet() *log.Logger { return log.New(io.Discard) }

func receive(t *testing.T, ch <-chan Message) Message {
	t.Helper()
	select {
	case m, ok := <-ch:
		require.True(t, ok, "subscription closed")
		return m
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}
	}
}

func TestPublishOverRedis(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sink := newRedis(t)
	pub := NewPublisher(sink, Options{Source: "editor-1", Logger: quiet()})

	msgs, err := sink.Subscribe(ctx, pub.Channel(KindConnect))
	require.NoError(t, err)

	conn := flow.Connection{Source: "a", SourceHandle: "out", Target: "b"}
	require.NoError(t, pub.Publish(ctx, KindConnect, 1, conn))

	m := receive(t, msgs)
	assert.Equal(t, "editor-1", m.Source)
	assert.Equal(t, KindConnect, m.Kind)
	assert.Equal(t, uint64(1), m.Seq)
	assert.Equal(t, 1, m.Size)

	var got flow.Connection
	require.NoError(t, json.Unmarshal(m.Payload, &got))
	assert.Equal(t, conn, got)
	assert.Equal(t, "flowcore:connect", pub.Channel(KindConnect))
}

func TestAttachPublishesStoreBatches(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sink := newRedis(t)
	pub := NewPublisher(sink, Options{Source: "s", Prefix: "test:", Logger: quiet()})

	msgs, err := sink.Subscribe(ctx, pub.Channel(KindNodes), pub.Channel(KindSelection))
	require.NoError(t, err)

	var local int
	h := Attach(ctx, pub, store.Handlers[string]{
		OnNodesChange: func(c []changes.NodeChange[string]) { local += len(c) },
	})
	s, err := store.New[string](config.Default(), h, nil, quiet())
	require.NoError(t, err)
	defer s.Close()

	s.SetNodes([]flow.Node[string]{{ID: "a", Measured: geom.Size{Width: 10, Height: 10}}})
	s.UpdateNodePositions("a", geom.Point{X: 5, Y: 5}, false)

	var batch []changes.NodeChange[string]
	for len(batch) == 0 || batch[0].Kind != changes.KindPosition {
		m := receive(t, msgs)
		require.Equal(t, KindNodes, m.Kind)
		require.NoError(t, json.Unmarshal(m.Payload, &batch))
	}
	require.Len(t, batch, 1)
	assert.Equal(t, geom.Point{X: 5, Y: 5}, *batch[0].Position)
	assert.Positive(t, local, "existing callback still runs")

	var m Message

	s.AddSelectedNodes([]string{"a"})
	for {
		m = receive(t, msgs)
		if m.Kind == KindSelection {
			break
		}
	}
	var sel SelectionPayload
	require.NoError(t, json.Unmarshal(m.Payload, &sel))
	assert.Equal(t, []string{"a"}, sel.Nodes)
	assert.Empty(t, sel.Edges)
}

type flakySink struct {
	mu    sync.Mutex
	fails int
	err   error
	calls int
	got   [][]byte
}

func (s *flakySink) Publish(_ context.Context, _ string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls <= s.fails {
		return s.err
	}
	s.got = append(s.got, payload)
	return nil
}

func (s *flakySink) Close() error { return nil }

type feedRecorder struct {
	mu   sync.Mutex
	errs []error
}

func (r *feedRecorder) OnPublish(_ context.Context, _ string, _ int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func TestRetry(t *testing.T) {
	rec := &feedRecorder{}
	observability.SetFeedHooks(rec)
	t.Cleanup(observability.Reset)

	transient := Retryable(&net.OpError{Op: "write", Err: io.ErrUnexpectedEOF})
	tests := []struct {
		name      string
		sink      *flakySink
		retries   int
		wantErr   bool
		wantCalls int
	}{
		{"recovers", &flakySink{fails: 2, err: transient}, 2, false, 3},
		{"gives up", &flakySink{fails: 5, err: transient}, 1, true, 2},
		{"permanent", &flakySink{fails: 1, err: io.ErrClosedPipe}, 3, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := NewPublisher(tt.sink, Options{Retries: tt.retries, RetryDelay: time.Millisecond, Logger: quiet()})
			err := pub.Publish(context.Background(), KindEdges, 0, []changes.EdgeChange{})
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, errors.ErrCodeInternal))
				assert.Equal(t, err, pub.Err())
			} else {
				assert.NoError(t, err)
				assert.Nil(t, pub.Err())
			}
			assert.Equal(t, tt.wantCalls, tt.sink.calls)
		})
	}

	require.Len(t, rec.errs, 3)
	assert.Nil(t, rec.errs[0])
	assert.Error(t, rec.errs[1])
}

func TestPublishEncodingError(t *testing.T) {
	pub := NewPublisher(NullSink{}, Options{Logger: quiet()})
	err := pub.Publish(context.Background(), KindNodes, 1, make(chan int))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
	assert.Equal(t, uint64(0), pub.Seq())
}

func TestDecode(t *testing.T) {
	_, err := Decode([]byte("{"))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	m, err := Decode([]byte(`{"source":"x","seq":3,"kind":"edges","size":0,"payload":[]}`))
	require.NoError(t, err)
	assert.Equal(t, uint64(3), m.Seq)
	assert.Equal(t, KindEdges, m.Kind)
}

func TestRedisURL(t *testing.T) {
	_, err := NewRedisSinkFromURL("not a url")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))

	s, err := NewRedisSinkFromURL("redis://localhost:6379/2")
	require.NoError(t, err)
	assert.Equal(t, 2, s.Client().Options().DB)
	_ = s.Close()
}
