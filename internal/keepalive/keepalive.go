// Package keepalive pings the server's own public /health endpoint on a
// fixed interval so hosting platforms that idle inactive instances keep
// this one awake.
package keepalive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sakif/second-brain/internal/metrics"
)

// DefaultInterval is the ping period, below the 15 minute idle cutoff common
// on free hosting tiers.
const DefaultInterval = 8 * time.Minute

const userAgent = "KeepAlive-Service"

// Pinger periodically GETs <baseURL>/health.
type Pinger struct {
	url      string
	interval time.Duration
	client   *http.Client
	logger   *slog.Logger
	metrics  *metrics.Metrics

	cancel   context.CancelFunc
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a Pinger for the server reachable at baseURL. It returns nil
// when baseURL is empty, and a nil *Pinger is safe to Start and Stop.
// m may be nil.
func New(baseURL string, interval time.Duration, logger *slog.Logger, m *metrics.Metrics) *Pinger {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil
	}
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Pinger{
		url:      baseURL + "/health",
		interval: interval,
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   logger.With(slog.String("component", "keepalive")),
		metrics:  m,
	}
}

// Start pings once immediately, then every interval, until Stop is called
// or ctx is cancelled. It returns without blocking.
func (p *Pinger) Start(ctx context.Context) {
	if p == nil {
		return
	}

	ctx, p.cancel = context.WithCancel(ctx)
	p.logger.Info("keep-alive started",
		slog.String("url", p.url),
		slog.Duration("interval", p.interval),
	)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		p.ping(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.ping(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for an in-flight ping to finish.
// Calling it more than once, or before Start, is fine.
func (p *Pinger) Stop() {
	if p == nil {
		return
	}
	p.stopOnce.Do(func() {
		if p.cancel != nil {
			p.cancel()
		}
		p.wg.Wait()
		p.logger.Info("keep-alive stopped")
	})
}

// ping performs a single request. Failures are logged and counted, never
// returned: a missed ping must not take the server down.
func (p *Pinger) ping(ctx context.Context) {
	start := time.Now()

	outcome, err := p.do(ctx)
	latency := time.Since(start)

	switch outcome {
	case metrics.PingOK:
		p.logger.Info("keep-alive ping ok", slog.Duration("latency", latency))
	case metrics.PingBadStatus:
		p.logger.Warn("keep-alive ping returned non-success status",
			slog.String("error", err.Error()),
			slog.Duration("latency", latency),
		)
	default:
		if ctx.Err() != nil {
			return
		}
		p.logger.Error("keep-alive ping failed", slog.String("error", err.Error()))
	}

	if p.metrics != nil {
		p.metrics.KeepAlivePing.WithLabelValues(outcome).Inc()
	}
}

func (p *Pinger) do(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return metrics.PingError, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return metrics.PingError, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return metrics.PingBadStatus, fmt.Errorf("status %d", resp.StatusCode)
	}
	return metrics.PingOK, nil
}
