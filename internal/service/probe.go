package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/SNU-Hackathon/Doany-sub000/internal/offline"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

// StoreProbe turns periodic store pings into reachability observations
// for the flush coordinator.
type StoreProbe struct {
	pinger   Pinger
	interval time.Duration
}

func NewStoreProbe(pinger Pinger, interval time.Duration) *StoreProbe {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &StoreProbe{pinger: pinger, interval: interval}
}

// Check pings once.
func (p *StoreProbe) Check(ctx context.Context) offline.Reachability {
	ctx, cancel := context.WithTimeout(ctx, p.interval)
	defer cancel()

	err := p.pinger.PingContext(ctx)
	if err != nil {
		slog.Debug("store probe failed", "error", err)
		return offline.Reachability{Connected: false}
	}
	return offline.Reachability{Connected: true}
}

// Run emits an observation now and then on every change, until ctx is
// done. It closes out when it returns.
func (p *StoreProbe) Run(ctx context.Context, out chan<- offline.Reachability) {
	defer close(out)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	last := p.Check(ctx)
	if !send(ctx, out, last) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r := p.Check(ctx)
			if r.Online() == last.Online() {
				continue
			}
			last = r
			slog.Info("store reachability changed", "online", r.Online())
			if !send(ctx, out, r) {
				return
			}
		}
	}
}

func send(ctx context.Context, out chan<- offline.Reachability, r offline.Reachability) bool {
	select {
	case out <- r:
		return true
	case <-ctx.Done():
		return false
	}
}
