package srv

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	order []string
}

func (r *recorder) add(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = append(r.order, name)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

type namedService struct {
	name    string
	rec     *recorder
	started chan struct{}
}

func (s *namedService) Start(ctx context.Context) error {
	close(s.started)
	return nil
}

func (s *namedService) Shutdown(ctx context.Context) error {
	s.rec.add(s.name)
	return nil
}

func TestServices_StartAndShutdownInReverse(t *testing.T) {
	rec := &recorder{}
	first := &namedService{name: "db", rec: rec, started: make(chan struct{})}
	second := &namedService{name: "http", rec: rec, started: make(chan struct{})}
	services := []Service{first, second}

	ctx, cancel := context.WithCancel(context.Background())
	StartServices(ctx, services)

	for _, s := range []*namedService{first, second} {
		select {
		case <-s.started:
		case <-time.After(time.Second):
			t.Fatalf("%s did not start", s.name)
		}
	}

	cancel()
	ShutdownServices(ctx, services)

	assert.Equal(t, []string{"http", "db"}, rec.list())
}

func TestNewCleanup(t *testing.T) {
	calls := 0
	svc := NewCleanup(func() error {
		calls++
		return errors.New("close failed")
	})

	require.NoError(t, svc.Start(context.Background()))
	assert.Error(t, svc.Shutdown(context.Background()))
	assert.Equal(t, 1, calls)

	assert.NoError(t, NewCleanup(nil).Shutdown(context.Background()))
}
