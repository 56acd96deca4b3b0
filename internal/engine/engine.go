// Package engine coordinates background collection against the interactive
// loop. Workers perform the blocking OS calls and hand results back over a
// channel; the interactive loop applies them one event at a time, so the
// cache and every table have a single writer and readers never see a
// half-applied refresh.
package engine

import (
	"context"
	"time"

	"sysconsole/internal/snapshot"
	"sysconsole/internal/sysquery"
	"sysconsole/internal/view"
)

const (
	// CoarseInterval drives full process/service/connection re-collection.
	CoarseInterval = 2 * time.Second
	// FineInterval drives the lighter CPU/memory-only process pass.
	FineInterval = time.Second
	// TransitionTimeout bounds how long a service toggle may take to settle.
	TransitionTimeout = 10 * time.Second

	queueDepth = 32
	eventDepth = 64
)

// ProcessSource is the process collection surface the engine depends on.
type ProcessSource interface {
	Collect(ctx context.Context) ([]sysquery.ProcessRecord, error)
	CollectMetrics(ctx context.Context, current []sysquery.ProcessRecord) ([]sysquery.ProcessRecord, error)
}

// ServiceSource enumerates and toggles services.
type ServiceSource interface {
	Collect(ctx context.Context) ([]sysquery.ServiceRecord, error)
	Toggle(ctx context.Context, name string, timeout time.Duration) error
}

// ConnSource enumerates network endpoints, joined against a pid-name table.
type ConnSource interface {
	Collect(ctx context.Context, names map[int32]string) ([]sysquery.ConnectionRecord, error)
}

// LockSource finds lock holders for files and directory trees.
type LockSource interface {
	FindHolders(ctx context.Context, paths []string) ([]sysquery.LockRecord, error)
	ScanDirectory(ctx context.Context, dir string, progress func(scanned, found int)) (sysquery.ScanResult, error)
}

// Journal records executed actions for the audit trail. Implementations must
// tolerate being called from the interactive loop; Record should be cheap.
type Journal interface {
	Record(ctx context.Context, action, target string, err error)
}

// Options wires the engine's collaborators. Zero-value optional fields are
// filled with the real OS-backed implementations by New.
type Options struct {
	Processes ProcessSource
	Services  ServiceSource
	Conns     ConnSource
	Locks     LockSource
	Kill      func(ctx context.Context, pid int32) error
	Elevated  bool
	Journal   Journal
	Clock     func() time.Time
}

// Engine owns the snapshot cache, the per-kind view tables, the lock search
// modal, and the worker queues. All exported methods must be called from the
// interactive loop; the workers only ever touch the cache through events.
type Engine struct {
	opts  Options
	cache *snapshot.Cache

	procs *view.Table[sysquery.ProcessRecord]
	svcs  *view.Table[sysquery.ServiceRecord]
	conns *view.Table[sysquery.ConnectionRecord]
	navs  map[sysquery.Kind]*view.Debouncer

	modal        *LockModal
	lastLockPath string
	scanGen      int

	collectJobs chan func(context.Context)
	actionJobs  chan func(context.Context)
	events      chan Event

	clock func() time.Time
}

func New(opts Options) *Engine {
	if opts.Processes == nil {
		opts.Processes = sysquery.NewProcessCollector()
	}
	if opts.Services == nil {
		opts.Services = sysquery.NewServiceCollector()
	}
	if opts.Conns == nil {
		opts.Conns = sysquery.NewConnectionCollector()
	}
	if opts.Locks == nil {
		opts.Locks = sysquery.NewLockCollector()
	}
	if opts.Kill == nil {
		opts.Kill = sysquery.KillProcess
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Engine{
		opts:  opts,
		cache: snapshot.NewCache(),
		procs: view.ProcessTable(),
		svcs:  view.ServiceTable(),
		conns: view.ConnectionTable(),
		navs: map[sysquery.Kind]*view.Debouncer{
			sysquery.KindProcess:    view.NewDebouncer(),
			sysquery.KindService:    view.NewDebouncer(),
			sysquery.KindConnection: view.NewDebouncer(),
		},
		collectJobs: make(chan func(context.Context), queueDepth),
		actionJobs:  make(chan func(context.Context), queueDepth),
		events:      make(chan Event, eventDepth),
		clock:       opts.Clock,
	}
}

// Start launches the worker goroutines and the refresh scheduler, and
// enqueues the unconditional startup collection so the first render is
// populated without waiting for a tick.
func (e *Engine) Start(ctx context.Context) {
	go e.worker(ctx, e.collectJobs)
	go e.worker(ctx, e.actionJobs)
	e.enqueueCollectAll()
	go e.schedule(ctx)
}

// Events is the channel the interactive loop receives on. Every received
// Event must be handed to Apply from that same loop.
func (e *Engine) Events() <-chan Event { return e.events }

// Cache exposes the published snapshots for read-only consumers.
func (e *Engine) Cache() *snapshot.Cache { return e.cache }

// Processes is the process tab's view table.
func (e *Engine) Processes() *view.Table[sysquery.ProcessRecord] { return e.procs }

// Services is the service tab's view table.
func (e *Engine) Services() *view.Table[sysquery.ServiceRecord] { return e.svcs }

// Connections is the connection tab's view table.
func (e *Engine) Connections() *view.Table[sysquery.ConnectionRecord] { return e.conns }

// Modal returns the lock search modal state, nil while closed.
func (e *Engine) Modal() *LockModal { return e.modal }

// Elevated reports whether mutating actions are available.
func (e *Engine) Elevated() bool { return e.opts.Elevated }

func (e *Engine) worker(ctx context.Context, jobs <-chan func(context.Context)) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-jobs:
			job(ctx)
		}
	}
}

// enqueue drops the job when the queue is full: a backed-up queue means the
// same work is already pending, and ticks must never block the scheduler.
func enqueue(jobs chan<- func(context.Context), job func(context.Context)) {
	select {
	case jobs <- job:
	default:
	}
}

func (e *Engine) emit(ev Event) {
	select {
	case e.events <- ev:
	default:
		// The interactive loop has fallen far behind; drop rather than
		// block a worker. The next tick re-collects anyway.
	}
}

// emitSure delivers ev even when the event channel is momentarily full.
// Terminal events are never dropped: losing a scan or action completion
// would strand the lock modal in its scanning phase with nothing coming to
// move it on. The worker blocks until the interactive loop drains an event
// or the engine shuts down.
func (e *Engine) emitSure(ctx context.Context, ev Event) {
	select {
	case e.events <- ev:
	case <-ctx.Done():
	}
}

func (e *Engine) schedule(ctx context.Context) {
	coarse := time.NewTicker(CoarseInterval)
	fine := time.NewTicker(FineInterval)
	defer coarse.Stop()
	defer fine.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-coarse.C:
			e.enqueueCollectAll()
		case <-fine.C:
			e.enqueueCollectMetrics()
		}
	}
}

func (e *Engine) enqueueCollectAll() {
	e.enqueueCollect(sysquery.KindProcess)
	e.enqueueCollect(sysquery.KindService)
	e.enqueueCollect(sysquery.KindConnection)
}

func (e *Engine) enqueueCollect(kind sysquery.Kind) {
	switch kind {
	case sysquery.KindProcess:
		enqueue(e.collectJobs, func(ctx context.Context) {
			records, err := e.opts.Processes.Collect(ctx)
			e.emit(processesCollected{records: records, err: err, taken: e.clock()})
		})
	case sysquery.KindService:
		enqueue(e.collectJobs, func(ctx context.Context) {
			records, err := e.opts.Services.Collect(ctx)
			e.emit(servicesCollected{records: records, err: err, taken: e.clock()})
		})
	case sysquery.KindConnection:
		enqueue(e.collectJobs, func(ctx context.Context) {
			records, err := e.opts.Conns.Collect(ctx, e.cache.ProcessNames())
			e.emit(connectionsCollected{records: records, err: err, taken: e.clock()})
		})
	}
}

func (e *Engine) enqueueCollectMetrics() {
	enqueue(e.collectJobs, func(ctx context.Context) {
		snap, ok := e.cache.Processes()
		if !ok {
			return
		}
		records, err := e.opts.Processes.CollectMetrics(ctx, snap.Records)
		e.emit(processesCollected{records: records, err: err, taken: e.clock()})
	})
}
