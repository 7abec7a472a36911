package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Pipeline is the ordered, configurable chain of Modules. Modules are
// sorted by priority (lower first) at registration time with a stable
// sort, so modules of equal priority keep registration order.
type Pipeline struct {
	mu             sync.RWMutex
	modules        []Module
	defaultTimeout time.Duration
	timeouts       map[string]time.Duration
	stats          *statsRegistry
}

func New(defaultTimeout time.Duration) *Pipeline {
	return &Pipeline{
		defaultTimeout: defaultTimeout,
		timeouts:       map[string]time.Duration{},
		stats:          newStatsRegistry(),
	}
}

// Register adds a module and re-sorts the chain by priority.
func (p *Pipeline) Register(m Module) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.modules = append(p.modules, m)
	sort.SliceStable(p.modules, func(i, j int) bool {
		return p.modules[i].Priority() < p.modules[j].Priority()
	})
}

// WithModuleTimeout overrides the default per-module timeout for name.
func (p *Pipeline) WithModuleTimeout(name string, timeout time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.timeouts[name] = timeout
}

// Initialize runs each enabled module's Initialize hook with its settings.
func (p *Pipeline) Initialize(settings map[string]map[string]interface{}) error {
	p.mu.RLock()
	modules := append([]Module(nil), p.modules...)
	p.mu.RUnlock()

	for _, m := range modules {
		if !m.Enabled() {
			continue
		}
		if err := m.Initialize(settings[m.Name()]); err != nil {
			return err
		}
	}
	return nil
}

// Shutdown runs every module's Shutdown hook, continuing past individual
// failures and returning the first error encountered, if any.
func (p *Pipeline) Shutdown(ctx context.Context) error {
	p.mu.RLock()
	modules := append([]Module(nil), p.modules...)
	p.mu.RUnlock()

	var first error
	for _, m := range modules {
		if err := m.Shutdown(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Run traverses the modules in priority order for a single request,
// skipping those whose ShouldProcess returns false, running each under its
// per-module timeout, and stopping at the first terminating Result.
func (p *Pipeline) Run(ctx context.Context, pctx *Context) Result {
	p.mu.RLock()
	modules := append([]Module(nil), p.modules...)
	p.mu.RUnlock()

	for _, m := range modules {
		if !m.Enabled() {
			continue
		}
		if !m.ShouldProcess(ctx, pctx) {
			continue
		}

		res, elapsed, timedOut := p.runModule(ctx, m, pctx)
		p.stats.record(m.Name(), elapsed, res, timedOut)

		if !res.IsContinue() {
			return res
		}
	}
	return TerminateErr(ErrNoTerminatingModule)
}

// runModule runs a single module under its configured timeout in an
// errgroup goroutine. If Process returns first, runModule waits on the
// group and returns its Result. If the timeout fires first, runModule
// returns a timeout Result naming the module without waiting: the
// goroutine keeps running until Process returns, and its Result lands in
// the buffered channel and is discarded. Process receives a context that
// is cancelled at the timeout; a module that ignores it can still touch
// pctx after runModule has returned.
func (p *Pipeline) runModule(ctx context.Context, m Module, pctx *Context) (Result, time.Duration, bool) {
	timeout := p.timeoutFor(m.Name())
	moduleCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	g, gctx := errgroup.WithContext(moduleCtx)
	resultCh := make(chan Result, 1)
	g.Go(func() error {
		resultCh <- m.Process(gctx, pctx)
		return nil
	})

	start := time.Now()
	select {
	case res := <-resultCh:
		elapsed := time.Since(start)
		_ = g.Wait()
		return res, elapsed, false
	case <-moduleCtx.Done():
		elapsed := time.Since(start)
		return TerminateErr(fmt.Errorf("%w: %s", ErrModuleTimeout, m.Name())), elapsed, true
	}
}

func (p *Pipeline) timeoutFor(name string) time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if t, ok := p.timeouts[name]; ok {
		return t
	}
	return p.defaultTimeout
}

// Stats returns a snapshot of accumulated per-module statistics.
func (p *Pipeline) Stats() map[string]ModuleStats {
	return p.stats.All()
}
