package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SNU-Hackathon/Doany-sub000/internal/model"
	"github.com/SNU-Hackathon/Doany-sub000/internal/offline"
	"github.com/SNU-Hackathon/Doany-sub000/internal/repository"
)

type switchPinger struct {
	down atomic.Bool
}

func (p *switchPinger) PingContext(context.Context) error {
	if p.down.Load() {
		return errors.New("connection refused")
	}
	return nil
}

func receive(t *testing.T, ch <-chan offline.Reachability) offline.Reachability {
	t.Helper()
	select {
	case r, ok := <-ch:
		require.True(t, ok, "channel closed")
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("no reachability observation")
	}
	return offline.Reachability{}
}

func TestStoreProbe_Check(t *testing.T) {
	pinger := &switchPinger{}
	probe := NewStoreProbe(pinger, time.Second)

	assert.True(t, probe.Check(context.Background()).Online())
	pinger.down.Store(true)
	assert.False(t, probe.Check(context.Background()).Online())
}

func TestStoreProbe_RunEmitsChanges(t *testing.T) {
	pinger := &switchPinger{}
	probe := NewStoreProbe(pinger, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan offline.Reachability)
	go probe.Run(ctx, out)

	assert.True(t, receive(t, out).Online())

	pinger.down.Store(true)
	assert.False(t, receive(t, out).Online())

	pinger.down.Store(false)
	assert.True(t, receive(t, out).Online())

	cancel()
	for range out {
	}
}

func TestStoreProbe_DrivesCoordinator(t *testing.T) {
	env := newTestEnv(t)
	probe := NewStoreProbe(env.db, time.Second)

	flushed := false
	queue := offline.NewQueue(repository.NewQueueRepository(env.db), "server", offline.Options{})
	coord := offline.NewCoordinator(queue, offline.ProcessorFunc(func(context.Context, model.QueuedAttempt) error {
		flushed = true
		return nil
	}))

	_, err := queue.Enqueue(context.Background(), map[string]string{"goalId": "g1"})
	require.NoError(t, err)

	report, err := coord.Observe(context.Background(), offline.SourceStore, probe.Check(context.Background()))
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.True(t, flushed)
}
