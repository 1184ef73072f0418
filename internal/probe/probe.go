package probe

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sourcegraph/conc/iter"
	"golang.org/x/sync/singleflight"

	"github.com/MimeLyc/checkmp/pkg/log"
)

const DefaultTimeout = 10 * time.Second

// Check is one named upstream reachability check.
type Check struct {
	Name string
	Run  func(ctx context.Context) error
}

// Status is the latest outcome of one check.
type Status struct {
	Name      string    `json:"name"`
	OK        bool      `json:"ok"`
	Error     string    `json:"error,omitempty"`
	LatencyMS int64     `json:"latency_ms"`
	CheckedAt time.Time `json:"checked_at"`
}

// Report is what /api/health exposes about upstreams.
type Report struct {
	Upstreams []Status   `json:"upstreams"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	NextRun   *time.Time `json:"next_run,omitempty"`
}

// Prober runs its checks on a cron schedule and keeps the latest results.
type Prober struct {
	checks   []Check
	cron     *cron.Cron
	cronExpr string
	timeout  time.Duration

	group singleflight.Group

	mu      sync.RWMutex
	last    []Status
	lastRun time.Time
	entryID cron.EntryID
}

func New(c *cron.Cron, cronExpr string, checks ...Check) *Prober {
	return &Prober{
		checks:   checks,
		cron:     c,
		cronExpr: cronExpr,
		timeout:  DefaultTimeout,
	}
}

// Schedule registers the probe job and kicks off a first run in the background.
func (p *Prober) Schedule(ctx context.Context) error {
	log.Info("Schedule upstream probe: %s", p.cronExpr)

	id, err := p.cron.AddFunc(p.cronExpr, func() {
		p.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.entryID = id
	p.mu.Unlock()

	go p.RunOnce(ctx)
	return nil
}

// RunOnce runs every check concurrently. Overlapping calls share one run.
func (p *Prober) RunOnce(ctx context.Context) []Status {
	v, _, _ := p.group.Do("probe", func() (any, error) {
		statuses := iter.Map(p.checks, func(c *Check) Status {
			return p.run(ctx, *c)
		})

		p.mu.Lock()
		p.last = statuses
		p.lastRun = time.Now()
		p.mu.Unlock()

		for _, s := range statuses {
			if !s.OK {
				log.Warn("upstream %s unreachable: %s", s.Name, s.Error)
			}
		}
		return statuses, nil
	})
	return v.([]Status)
}

func (p *Prober) run(ctx context.Context, c Check) Status {
	checkCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	err := c.Run(checkCtx)
	status := Status{
		Name:      c.Name,
		OK:        err == nil,
		LatencyMS: time.Since(start).Milliseconds(),
		CheckedAt: start,
	}
	if err != nil {
		status.Error = err.Error()
	}
	return status
}

// Report returns a copy of the latest results and the schedule position.
func (p *Prober) Report() Report {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ret := Report{Upstreams: append([]Status{}, p.last...)}
	if !p.lastRun.IsZero() {
		last := p.lastRun
		ret.LastRun = &last
	}
	if p.entryID != 0 {
		if next := p.cron.Entry(p.entryID).Next; !next.IsZero() {
			ret.NextRun = &next
		}
	}
	return ret
}
