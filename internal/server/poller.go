package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/econet/internal/econet"
	"github.com/muurk/econet/internal/logging"
)

// Controller is the subset of econet.API the exporter drives
type Controller interface {
	FetchData(ctx context.Context) (econet.Params, error)
	SetParam(ctx context.Context, name string, value any) (bool, error)
	GetParamLimits(ctx context.Context, name string) (*econet.Limits, error)
	Identity() econet.Identity
}

// Snapshot is one successful poll of the controller
type Snapshot struct {
	Identity  econet.Identity `json:"identity"`
	Timestamp time.Time       `json:"timestamp"`
	Params    econet.Params   `json:"params"`
}

// Sink receives poll outcomes. Implementations must not block.
type Sink interface {
	OnSnapshot(snap Snapshot)
	OnFailure(err error)
}

// Poller fetches the controller on a fixed interval and fans results out to
// sinks. Every controller request (polls and writes) runs under one mutex so
// the module never sees concurrent sessions from this process.
type Poller struct {
	controller Controller
	interval   time.Duration

	mu sync.Mutex

	sinksMu sync.RWMutex
	sinks   []Sink

	lastMu sync.RWMutex
	last   *Snapshot
}

// NewPoller creates a poller for controller
func NewPoller(controller Controller, interval time.Duration) *Poller {
	return &Poller{
		controller: controller,
		interval:   interval,
	}
}

// AddSink registers a sink for subsequent polls
func (p *Poller) AddSink(s Sink) {
	p.sinksMu.Lock()
	p.sinks = append(p.sinks, s)
	p.sinksMu.Unlock()
}

// Interval returns the polling period
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Run polls immediately and then on every tick until ctx is done
func (p *Poller) Run(ctx context.Context) {
	logging.Info("Poller started", zap.Duration("interval", p.interval))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	_, _ = p.Poll(ctx)
	for {
		select {
		case <-ctx.Done():
			logging.Info("Poller stopped")
			return
		case <-ticker.C:
			_, _ = p.Poll(ctx)
		}
	}
}

// Poll performs a single fetch and notifies sinks of the outcome
func (p *Poller) Poll(ctx context.Context) (Snapshot, error) {
	p.mu.Lock()
	start := time.Now()
	params, err := p.controller.FetchData(ctx)
	p.mu.Unlock()

	if err != nil {
		if ctx.Err() != nil {
			return Snapshot{}, err
		}
		if econet.IsAuthError(err) {
			logging.Error("Poll rejected by controller, check credentials", zap.Error(err))
		} else {
			logging.Warn("Poll failed", zap.Error(err))
		}
		p.notifyFailure(err)
		return Snapshot{}, err
	}

	snap := Snapshot{
		Identity:  p.controller.Identity(),
		Timestamp: time.Now().UTC(),
		Params:    params,
	}

	p.lastMu.Lock()
	p.last = &snap
	p.lastMu.Unlock()

	logging.Debug("Poll complete",
		zap.Int("params", len(params)),
		zap.Duration("elapsed", time.Since(start)),
	)

	p.notifySnapshot(snap)
	return snap, nil
}

// Last returns the most recent successful snapshot
func (p *Poller) Last() (Snapshot, bool) {
	p.lastMu.RLock()
	defer p.lastMu.RUnlock()
	if p.last == nil {
		return Snapshot{}, false
	}
	return *p.last, true
}

// SetParam validates value against the controller's limits and writes it.
// A parameter without published limits is written unchecked.
func (p *Poller) SetParam(ctx context.Context, name string, value any) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	limits, err := p.controller.GetParamLimits(ctx, name)
	if err != nil {
		return false, fmt.Errorf("failed to read limits for %s: %w", name, err)
	}
	if limits != nil {
		if err := limits.Validate(name, value); err != nil {
			return false, err
		}
	}

	ok, err := p.controller.SetParam(ctx, name, value)
	if err != nil {
		return false, err
	}

	logging.Info("Parameter write",
		zap.String("param", name),
		zap.String("value", econet.WireValue(value)),
		zap.Bool("confirmed", ok),
	)
	return ok, nil
}

func (p *Poller) snapshotSinks() []Sink {
	p.sinksMu.RLock()
	defer p.sinksMu.RUnlock()
	return append([]Sink(nil), p.sinks...)
}

func (p *Poller) notifySnapshot(snap Snapshot) {
	for _, s := range p.snapshotSinks() {
		s.OnSnapshot(snap)
	}
}

func (p *Poller) notifyFailure(err error) {
	for _, s := range p.snapshotSinks() {
		s.OnFailure(err)
	}
}
