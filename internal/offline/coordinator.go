package offline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// Reachability is one connectivity observation. InternetReachable is nil
// when the platform has not determined it yet.
type Reachability struct {
	Connected         bool  `json:"connected"`
	InternetReachable *bool `json:"internetReachable,omitempty"`
}

// Online treats an undetermined internet reachability as reachable when
// the link itself is up.
func (r Reachability) Online() bool {
	if !r.Connected {
		return false
	}
	return r.InternetReachable == nil || *r.InternetReachable
}

// SourceStore names observations made by the server's own store probe.
const SourceStore = "store"

// Coordinator flushes a queue on every offline to online edge. Each source
// of observations (the store probe, each reporting device) keeps its own
// state, so one source's edges neither trigger nor mask another's. Every
// source starts out offline, so its first online observation drains
// attempts left over from an earlier run.
type Coordinator struct {
	queue     *Queue
	processor Processor

	// OnFlush, when set, is called after every completed flush.
	OnFlush func(ctx context.Context, queue string, report FlushReport)

	mu     sync.Mutex
	online map[string]bool
}

func NewCoordinator(queue *Queue, processor Processor) *Coordinator {
	return &Coordinator{
		queue:     queue,
		processor: processor,
		online:    make(map[string]bool),
	}
}

// Online reports the last observation recorded for source.
func (c *Coordinator) Online(source string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.online[source]
}

// Observe records r for source and, on that source's offline to online
// edge, runs a flush to completion before returning. The report is nil
// when no flush ran.
func (c *Coordinator) Observe(ctx context.Context, source string, r Reachability) (*FlushReport, error) {
	online := r.Online()

	c.mu.Lock()
	edge := online && !c.online[source]
	if online {
		c.online[source] = true
	} else {
		delete(c.online, source)
	}
	c.mu.Unlock()

	if !edge {
		return nil, nil
	}

	slog.Info("connectivity restored, flushing offline queue", "queue", c.queue.Name(), "source", source)
	report, err := c.Flush(ctx)
	if errors.Is(err, ErrFlushInProgress) {
		slog.Debug("flush already running, skipping", "queue", c.queue.Name())
		return nil, nil
	}
	if err != nil {
		return &report, err
	}
	return &report, nil
}

// Flush runs a manual flush regardless of the current state.
func (c *Coordinator) Flush(ctx context.Context) (FlushReport, error) {
	report, err := c.queue.Flush(ctx, c.processor)
	if err == nil && c.OnFlush != nil {
		c.OnFlush(ctx, c.queue.Name(), report)
	}
	return report, err
}

// Run observes signals from source until ctx is done or the channel
// closes. Flush errors are logged; the next edge retries.
func (c *Coordinator) Run(ctx context.Context, source string, signals <-chan Reachability) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case r, ok := <-signals:
			if !ok {
				return nil
			}
			_, err := c.Observe(ctx, source, r)
			if err != nil {
				slog.Error("offline flush failed", "queue", c.queue.Name(), "source", source, "error", err)
			}
		}
	}
}
