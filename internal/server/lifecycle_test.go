package server

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// blockingService runs until stopped and records the stop order.
type blockingService struct {
	name    string
	order   *[]string
	mu      *sync.Mutex
	started chan struct{}
	quit    chan struct{}
	once    sync.Once
}

func newBlocking(name string, order *[]string, mu *sync.Mutex) *blockingService {
	return &blockingService{name: name, order: order, mu: mu, started: make(chan struct{}), quit: make(chan struct{})}
}

func (b *blockingService) Start() error {
	close(b.started)
	<-b.quit
	return nil
}

func (b *blockingService) Stop() {
	b.once.Do(func() {
		b.mu.Lock()
		*b.order = append(*b.order, b.name)
		b.mu.Unlock()
		close(b.quit)
	})
}

func TestLifecycle_StopsInReverseOrderOnCancel(t *testing.T) {
	var (
		order []string
		mu    sync.Mutex
	)
	lc := NewLifecycle(zaptest.NewLogger(t))
	first := newBlocking("store", &order, &mu)
	second := newBlocking("telnet", &order, &mu)
	lc.Add(first.name, first)
	lc.Add(second.name, second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()

	for _, s := range []*blockingService{first, second} {
		select {
		case <-s.started:
		case <-time.After(2 * time.Second):
			t.Fatalf("%s did not start", s.name)
		}
	}
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
	}
	assert.Equal(t, []string{"telnet", "store"}, order)
}

func TestLifecycle_ReturnsServiceFailure(t *testing.T) {
	var (
		order []string
		mu    sync.Mutex
	)
	lc := NewLifecycle(zaptest.NewLogger(t))
	healthy := newBlocking("healthy", &order, &mu)
	lc.Add(healthy.name, healthy)
	lc.Add("broken", &FuncService{
		StartFn: func() error { return errors.New("address in use") },
		StopFn:  func() {},
	})

	err := lc.Run(context.Background())
	assert.ErrorContains(t, err, "service broken: address in use")
	assert.Equal(t, []string{"healthy"}, order)
}

func TestFuncService(t *testing.T) {
	started, stopped := false, false
	svc := &FuncService{
		StartFn: func() error { started = true; return nil },
		StopFn:  func() { stopped = true },
	}
	assert.NoError(t, svc.Start())
	svc.Stop()
	assert.True(t, started)
	assert.True(t, stopped)
}
