package connectivity

import (
	"context"
	"net/http"
	"time"

	"github.com/MidhulKiruthik/Nova-sub000/pkg/logger"
	"github.com/jonboulle/clockwork"
)

const (
	defaultProbeInterval = 5 * time.Second
	defaultProbeTimeout  = 2 * time.Second
)

// HTTPOption configures an HTTPProbe.
type HTTPOption func(*HTTPProbe)

// WithInterval sets the polling interval.
func WithInterval(d time.Duration) HTTPOption {
	return func(p *HTTPProbe) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithClock sets the clock driving the polling ticker.
func WithClock(c clockwork.Clock) HTTPOption {
	return func(p *HTTPProbe) {
		if c != nil {
			p.clock = c
		}
	}
}

// WithHTTPClient sets the client used for probe requests.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(p *HTTPProbe) {
		if c != nil {
			p.client = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) HTTPOption {
	return func(p *HTTPProbe) {
		p.log = logger.OrNop(l)
	}
}

// HTTPProbe polls a URL and reports offline when the request fails or the
// response is a 5xx.
type HTTPProbe struct {
	state
	url      string
	interval time.Duration
	clock    clockwork.Clock
	client   *http.Client
	log      logger.Logger
}

// NewHTTPProbe creates a probe for url. It starts optimistic (online) until
// the first check says otherwise.
func NewHTTPProbe(url string, opts ...HTTPOption) *HTTPProbe {
	p := &HTTPProbe{
		url:      url,
		interval: defaultProbeInterval,
		clock:    clockwork.NewRealClock(),
		client:   &http.Client{Timeout: defaultProbeTimeout},
		log:      logger.Nop(),
	}
	p.online = true
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Check probes once and returns the observed state.
func (p *HTTPProbe) Check(ctx context.Context) bool {
	online := p.reachable(ctx)
	if p.set(online) {
		p.log.Info(ctx, "connectivity changed", logger.Bool("online", online), logger.String("url", p.url))
	}
	return online
}

func (p *HTTPProbe) reachable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.url, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		p.log.Debug(ctx, "probe request failed", logger.Error(err))
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError
}

// Run checks immediately and then on every tick until ctx is done.
func (p *HTTPProbe) Run(ctx context.Context) {
	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	p.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			p.Check(ctx)
		}
	}
}
