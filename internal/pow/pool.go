package pow

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nfrund/powchat/internal/domain"
)

// SolveResult is what a worker hands back for one request.
type SolveResult struct {
	Commitment Commitment
	Err        error
	Duration   time.Duration
	WorkerID   int
}

type solveRequest struct {
	ctx    context.Context
	engine *Engine
	msg    ChatMessage
	result chan SolveResult
}

// PoolStats contains solver pool statistics.
type PoolStats struct {
	Name      string `json:"name"`
	Workers   int    `json:"workers"`
	Active    int64  `json:"active"`
	Completed int64  `json:"completed"`
	Failed    int64  `json:"failed"`
	Pending   int    `json:"pending"`
}

// SolverPool runs proof-of-work searches on a fixed set of goroutines fed
// from a bounded queue, keeping CPU-bound searches away from the goroutines
// that service connections.
type SolverPool struct {
	name    string
	workers int
	engine  *Engine
	tasks   chan *solveRequest
	wg      sync.WaitGroup

	active    int64
	completed int64
	failed    int64

	observe func(time.Duration)

	ctx     context.Context
	cancel  context.CancelFunc
	running bool
	mu      sync.RWMutex
}

// PoolOption configures a SolverPool.
type PoolOption func(*SolverPool)

// WithObserver registers a callback invoked with the duration of every
// successful search.
func WithObserver(fn func(time.Duration)) PoolOption {
	return func(p *SolverPool) {
		p.observe = fn
	}
}

// NewSolverPool starts workers goroutines that solve at the engine's
// difficulty unless a request names its own engine. queue bounds the
// number of requests waiting for a worker.
func NewSolverPool(name string, engine *Engine, workers, queue int, opts ...PoolOption) *SolverPool {
	if workers <= 0 {
		workers = 1
	}
	if queue <= 0 {
		queue = workers
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &SolverPool{
		name:    name,
		workers: workers,
		engine:  engine,
		tasks:   make(chan *solveRequest, queue),
		ctx:     ctx,
		cancel:  cancel,
		running: true,
	}
	for _, opt := range opts {
		opt(p)
	}

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	return p
}

// Engine returns the pool's default engine.
func (p *SolverPool) Engine() *Engine {
	return p.engine
}

// Solve searches for a commitment at the pool's default difficulty.
func (p *SolverPool) Solve(ctx context.Context, msg ChatMessage) (Commitment, error) {
	return p.SolveWith(ctx, p.engine, msg)
}

// SolveWith queues a search using engine and waits for it. It fails fast
// with domain.ErrSolverQueueFull when no queue slot is free, and returns
// ctx.Err() if the caller gives up first; the search is abandoned too.
func (p *SolverPool) SolveWith(ctx context.Context, engine *Engine, msg ChatMessage) (Commitment, error) {
	req := &solveRequest{
		ctx:    ctx,
		engine: engine,
		msg:    msg,
		result: make(chan SolveResult, 1),
	}
	if err := p.submit(req); err != nil {
		return Commitment{}, err
	}

	select {
	case res := <-req.result:
		return res.Commitment, res.Err
	case <-ctx.Done():
		return Commitment{}, ctx.Err()
	}
}

func (p *SolverPool) submit(req *solveRequest) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.running {
		return domain.ErrSolverClosed
	}

	select {
	case p.tasks <- req:
		return nil
	default:
		return domain.ErrSolverQueueFull
	}
}

func (p *SolverPool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case req := <-p.tasks:
			p.process(id, req)
		}
	}
}

func (p *SolverPool) process(workerID int, req *solveRequest) {
	atomic.AddInt64(&p.active, 1)
	defer atomic.AddInt64(&p.active, -1)

	// The search stops on either caller cancellation or pool shutdown.
	ctx, cancel := context.WithCancel(req.ctx)
	defer cancel()
	stop := context.AfterFunc(p.ctx, cancel)
	defer stop()

	start := time.Now()
	c, err := req.engine.SolveContext(ctx, req.msg)
	res := SolveResult{
		Commitment: c,
		Err:        err,
		Duration:   time.Since(start),
		WorkerID:   workerID,
	}

	if err != nil && p.ctx.Err() != nil {
		res.Err = domain.ErrSolverClosed
	}

	if err != nil {
		atomic.AddInt64(&p.failed, 1)
		slog.Debug("Solve abandoned", "pool", p.name, "worker", workerID, "error", err)
	} else {
		atomic.AddInt64(&p.completed, 1)
		if p.observe != nil {
			p.observe(res.Duration)
		}
		slog.Debug("Solve finished", "pool", p.name, "worker", workerID,
			"nonce", c.Nonce, "difficulty", c.Difficulty, "duration", res.Duration)
	}

	req.result <- res
}

// Stats returns current pool statistics.
func (p *SolverPool) Stats() PoolStats {
	return PoolStats{
		Name:      p.name,
		Workers:   p.workers,
		Active:    atomic.LoadInt64(&p.active),
		Completed: atomic.LoadInt64(&p.completed),
		Failed:    atomic.LoadInt64(&p.failed),
		Pending:   len(p.tasks),
	}
}

// Shutdown stops the workers, abandons in-flight searches and fails every
// queued request with domain.ErrSolverClosed. It is safe to call twice.
func (p *SolverPool) Shutdown() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()

	for {
		select {
		case req := <-p.tasks:
			req.result <- SolveResult{Err: domain.ErrSolverClosed}
		default:
			return
		}
	}
}
