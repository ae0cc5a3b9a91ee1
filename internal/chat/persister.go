package chat

import (
	"context"
	"sync"
	"time"

	"github.com/folio/portfolio/backend/go-services/pkg/logger"
	"github.com/folio/portfolio/backend/go-services/pkg/metrics"
)

const (
	persistQueueSize = 64
	persistTimeout   = 10 * time.Second
)

type persistJob struct {
	op string
	fn func(ctx context.Context) error
}

// persister runs store writes on one goroutine, in the order they were queued.
// Failures are logged and counted, never returned to the caller.
type persister struct {
	jobs chan persistJob
	done chan struct{}

	mu     sync.Mutex
	closed bool
}

func newPersister() *persister {
	p := &persister{jobs: make(chan persistJob, persistQueueSize), done: make(chan struct{})}
	go p.run()
	return p
}

func (p *persister) run() {
	defer close(p.done)
	for j := range p.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		err := j.fn(ctx)
		cancel()
		if err != nil {
			logger.Warnf("chat persistence failed: op=%s err=%v", j.op, err)
			metrics.PersistenceFailures.WithLabelValues(j.op).Inc()
		}
	}
}

// enqueue never blocks; a full queue drops the write and counts it as failed.
func (p *persister) enqueue(op string, fn func(ctx context.Context) error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		metrics.PersistenceFailures.WithLabelValues(op).Inc()
		return
	}
	select {
	case p.jobs <- persistJob{op: op, fn: fn}:
	default:
		logger.Warnf("chat persistence queue full: dropping op=%s", op)
		metrics.PersistenceFailures.WithLabelValues(op).Inc()
	}
}

// close stops accepting work and waits for queued writes to finish.
func (p *persister) close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
	p.mu.Unlock()
	<-p.done
}
