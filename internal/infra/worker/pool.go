// File: internal/infra/worker/pool.go
package worker

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/rs/zerolog"

	"writer-ai/internal/infra/logging"
)

var (
	ErrQueueFull   = errors.New("worker queue full")
	ErrPoolStopped = errors.New("worker pool stopped")
)

type Task func(ctx context.Context) error

type entry struct {
	run     Task
	abandon func()
}

// Pool runs submitted tasks on a fixed set of goroutines. The backlog is
// bounded at four tasks per worker; Submit never blocks.
type Pool struct {
	wg   sync.WaitGroup
	jobs chan entry
	quit chan struct{}
	stop sync.Once
	n    int
	log  *zerolog.Logger
}

func NewPool(workers int, log *zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Pool{jobs: make(chan entry, workers*4), quit: make(chan struct{}), n: workers, log: log}
}

func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.n; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case <-p.quit:
					return
				case e := <-p.jobs:
					if err := e.run(ctx); err != nil {
						p.log.Error().Err(err).Int("worker", id).Msg("task error")
					}
				}
			}
		}(i)
	}
}

// Stop waits for running tasks, then drains the backlog and calls the
// abandon hook of every task that never ran.
func (p *Pool) Stop() {
	p.stop.Do(func() { close(p.quit) })
	p.wg.Wait()
	n := 0
	for {
		select {
		case e := <-p.jobs:
			n++
			if e.abandon != nil {
				e.abandon()
			}
		default:
			if n > 0 {
				p.log.Warn().Int("abandoned", n).Msg("pool stopped with queued tasks")
			}
			return
		}
	}
}

// Submit queues task. abandon, which may be nil, runs instead of task when
// the pool stops before task is picked up.
func (p *Pool) Submit(task Task, abandon func()) error {
	if task == nil {
		return errors.New("nil task")
	}
	select {
	case <-p.quit:
		return ErrPoolStopped
	default:
	}
	select {
	case p.jobs <- entry{run: task, abandon: abandon}:
		return nil
	default:
		return ErrQueueFull
	}
}
