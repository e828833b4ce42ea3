package feed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowcore/pkg/errors"
	"github.com/matzehuels/flowcore/pkg/observability"
)

// Message kinds.
const (
	KindNodes     = "nodes"
	KindEdges     = "edges"
	KindConnect   = "connect"
	KindSelection = "selection"
	KindViewport  = "viewport"
)

// DefaultPrefix is prepended to every channel name.
const DefaultPrefix = "flowcore:"

// Sink delivers encoded messages to a channel.
type Sink interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Close() error
}

// Message is the envelope published for every batch.
type Message struct {
	Source  string          `json:"source"`
	Seq     uint64          `json:"seq"`
	Kind    string          `json:"kind"`
	Size    int             `json:"size"`
	Time    time.Time       `json:"time"`
	Payload json.RawMessage `json:"payload"`
}

// Decode parses a published message.
func Decode(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode feed message")
	}
	return m, nil
}

// Options configures a Publisher.
type Options struct {
	// Source identifies the publishing store in every message.
	Source string
	// Prefix is prepended to channel names. Empty means DefaultPrefix.
	Prefix string
	// Retries is the number of extra attempts for retryable sink errors.
	Retries int
	// RetryDelay is the first backoff delay; it doubles per attempt.
	RetryDelay time.Duration
	// Logger receives publish failures. Nil uses log.Default().
	Logger *log.Logger
}

// Publisher encodes change batches and sends them to a sink.
// It is safe for concurrent use.
type Publisher struct {
	sink   Sink
	opts   Options
	logger *log.Logger

	mu      sync.Mutex
	seq     uint64
	lastErr error
}

// NewPublisher creates a publisher writing to sink.
func NewPublisher(sink Sink, opts Options) *Publisher {
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 100 * time.Millisecond
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Publisher{sink: sink, opts: opts, logger: logger}
}

// Channel returns the full channel name for kind.
func (p *Publisher) Channel(kind string) string {
	return p.opts.Prefix + kind
}

// Publish encodes v as the payload of a kind message and sends it. size is
// the number of items in the batch.
func (p *Publisher) Publish(ctx context.Context, kind string, size int, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return p.fail(ctx, kind, size, errors.Wrap(errors.ErrCodeInvalidInput, err, "encode %s batch", kind))
	}

	p.mu.Lock()
	p.seq++
	msg := Message{
		Source:  p.opts.Source,
		Seq:     p.seq,
		Kind:    kind,
		Size:    size,
		Time:    time.Now().UTC(),
		Payload: payload,
	}
	p.mu.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		return p.fail(ctx, kind, size, errors.Wrap(errors.ErrCodeInternal, err, "encode envelope"))
	}

	channel := p.Channel(kind)
	err = retryWithBackoff(ctx, p.opts.Retries, p.opts.RetryDelay, func() error {
		return p.sink.Publish(ctx, channel, data)
	})
	if err != nil {
		return p.fail(ctx, kind, size, errors.Wrap(errors.ErrCodeInternal, err, "publish to %s", channel))
	}
	observability.Feed().OnPublish(ctx, channel, size, nil)
	return nil
}

func (p *Publisher) fail(ctx context.Context, kind string, size int, err error) error {
	p.mu.Lock()
	p.lastErr = err
	p.mu.Unlock()
	p.logger.Warn("feed publish failed", "kind", kind, "size", size, "err", err)
	observability.Feed().OnPublish(ctx, p.Channel(kind), size, err)
	return err
}

// Err returns the most recent publish error, if any.
func (p *Publisher) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Seq returns the sequence number of the last message.
func (p *Publisher) Seq() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seq
}

// Close closes the underlying sink.
func (p *Publisher) Close() error {
	return p.sink.Close()
}
