// Package engine is a local audio transport built on beep. It plays local
// files and http(s) URLs through the system speaker.
package engine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/tazaudio/internal/transport"
)

const resampleQuality = 4

// Options configures the engine.
type Options struct {
	SampleRate  beep.SampleRate // speaker sample rate, default 44100
	HTTPTimeout time.Duration   // download timeout for remote audio, default 30s
}

func (o Options) withDefaults() Options {
	if o.SampleRate <= 0 {
		o.SampleRate = 44100
	}
	if o.HTTPTimeout <= 0 {
		o.HTTPTimeout = 30 * time.Second
	}
	return o
}

// output is where sessions send audio.
type output interface {
	Play(s ...beep.Streamer)
	Lock()
	Unlock()
}

type speakerOutput struct{}

func (speakerOutput) Play(s ...beep.Streamer) { speaker.Play(s...) }
func (speakerOutput) Lock()                   { speaker.Lock() }
func (speakerOutput) Unlock()                 { speaker.Unlock() }

// Connector opens sessions on the shared speaker.
type Connector struct {
	opts   Options
	out    output
	client *http.Client
	log    logrus.FieldLogger

	initOnce sync.Once
	init     func() error
	initErr  error
}

// New creates a connector. The speaker is initialized on the first Connect.
func New(opts Options, log logrus.FieldLogger) *Connector {
	opts = opts.withDefaults()
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	c := &Connector{
		opts:   opts,
		out:    speakerOutput{},
		client: &http.Client{Timeout: opts.HTTPTimeout},
		log:    log.WithField("component", "engine"),
	}
	c.init = func() error {
		return speaker.Init(opts.SampleRate, opts.SampleRate.N(time.Second/10))
	}
	return c
}

// Connect returns a new session.
func (c *Connector) Connect(ctx context.Context) (transport.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.initOnce.Do(func() { c.initErr = c.init() })
	if c.initErr != nil {
		return nil, fmt.Errorf("init speaker: %w", c.initErr)
	}
	return newSession(c), nil
}

// Verify Connector implements transport.Connector at compile time.
var _ transport.Connector = (*Connector)(nil)
