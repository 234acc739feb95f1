package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/dd0wney/cluso-topoview/pkg/logging"
	"github.com/dd0wney/cluso-topoview/pkg/metrics"
	"github.com/dd0wney/cluso-topoview/pkg/topology"
)

// Poll retry tuning: bounded exponential backoff with jitter.
const (
	pollMaxRetries  = 3
	pollBackoffBase = 750 * time.Millisecond
	pollBackoffMax  = 5 * time.Second
	pollJitterMax   = 750 * time.Millisecond
)

// maxBodyBytes caps a polled response so a misbehaving endpoint cannot
// exhaust memory.
const maxBodyBytes = 8 << 20

// Poller fetches snapshots from a dashboard endpoint returning a JSON
// topology snapshot, on a fixed interval. A failed poll is retried a few
// times with backoff, then skipped; the engine simply keeps rendering the
// previous topology.
type Poller struct {
	url      string
	interval time.Duration
	client   *http.Client
	log      logging.Logger
	met      *metrics.Registry
	ch       chan topology.Snapshot
}

// NewPoller creates a poller for url on the given interval.
func NewPoller(url string, interval time.Duration, log logging.Logger, met *metrics.Registry) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Poller{
		url:      url,
		interval: interval,
		client:   &http.Client{Timeout: 5 * time.Second},
		log:      log,
		met:      met,
		ch:       make(chan topology.Snapshot, 1),
	}
}

func (p *Poller) Snapshots() <-chan topology.Snapshot {
	return p.ch
}

// Run polls immediately, then on every interval, until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	defer close(p.ch)
	p.log.Info("snapshot poller running", logging.Address(p.url), logging.SourceKind("http"))

	p.poll(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

// poll fetches one snapshot with bounded retries. Every failure path
// logs and returns; polling errors are never fatal to the source.
func (p *Poller) poll(ctx context.Context) {
	var lastErr error
	for attempt := 1; attempt <= pollMaxRetries; attempt++ {
		snap, err := p.fetch(ctx)
		if err == nil {
			if verr := topology.ValidateSnapshot(snap); verr != nil {
				p.recordSnapshot("invalid", 0)
				p.log.Warn("invalid snapshot skipped", logging.Error(verr))
				return
			}
			p.recordSnapshot("ok", len(snap.Devices))
			deliver(ctx, p.ch, *snap)
			return
		}
		lastErr = err
		if ctx.Err() != nil {
			return
		}
		if p.met != nil {
			p.met.PollRetriesTotal.Inc()
		}

		backoff := pollBackoffBase << (attempt - 1)
		if backoff > pollBackoffMax {
			backoff = pollBackoffMax
		}
		backoff += time.Duration(rand.Int63n(int64(pollJitterMax)))
		p.log.Warn("poll attempt failed",
			logging.Int("attempt", attempt),
			logging.Duration("backoff", backoff),
			logging.Error(err),
		)
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
	}
	p.recordSnapshot("error", 0)
	p.log.Error("poll gave up", logging.Error(lastErr))
}

func (p *Poller) fetch(ctx context.Context) (*topology.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	var snap topology.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

func (p *Poller) recordSnapshot(status string, devices int) {
	if p.met != nil {
		p.met.RecordSnapshot("http", status, devices)
	}
}
