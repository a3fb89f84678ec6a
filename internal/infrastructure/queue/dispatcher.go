package queue

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/catalog-console/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 64
	taskTimeout    = 10 * time.Second
)

type job struct {
	key  string
	task ports.Task
}

// Dispatcher runs best-effort tasks on a fixed set of workers, sharded by key so
// that tasks for the same key (e.g. successive tenant activations) keep their
// order. Task failures are logged and otherwise ignored.
type Dispatcher struct {
	workers []chan job
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan job, numWorkers),
		log:     log.With().Str("component", "dispatcher").Logger(),
	}
	for i := range d.workers {
		d.workers[i] = make(chan job, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue hands task to the worker responsible for key. It never blocks: when
// the shard is full the task is dropped.
func (d *Dispatcher) Enqueue(key string, task ports.Task) {
	select {
	case d.workers[d.shardIndex(key)] <- job{key: key, task: task}:
	default:
		d.log.Warn().Str("key", key).Msg("dispatcher shard full, task dropped")
	}
}

// shardIndex maps a key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan job) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-ch:
			d.run(ctx, id, j)
		}
	}
}

func (d *Dispatcher) run(ctx context.Context, id int, j job) {
	taskCtx, cancel := context.WithTimeout(ctx, taskTimeout)
	defer cancel()

	if err := j.task(taskCtx); err != nil {
		d.log.Debug().Err(err).
			Str("key", j.key).
			Int("worker_id", id).
			Msg("best-effort task failed")
	}
}

// Inline runs tasks synchronously on the caller's goroutine. Tests use it to
// observe best-effort calls deterministically.
type Inline struct{}

func (Inline) Enqueue(_ string, task ports.Task) {
	_ = task(context.Background())
}
