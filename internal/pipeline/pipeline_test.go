package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeModule struct {
	name      string
	priority  int
	enabled   bool
	shouldRun bool
	process   func(ctx context.Context, pctx *Context) Result
}

func (f *fakeModule) Name() string     { return f.name }
func (f *fakeModule) Priority() int    { return f.priority }
func (f *fakeModule) Enabled() bool    { return f.enabled }
func (f *fakeModule) ShouldProcess(_ context.Context, _ *Context) bool {
	return f.shouldRun
}
func (f *fakeModule) Process(ctx context.Context, pctx *Context) Result {
	return f.process(ctx, pctx)
}
func (f *fakeModule) Initialize(map[string]interface{}) error { return nil }
func (f *fakeModule) Shutdown(context.Context) error           { return nil }

func newFakeModule(name string, priority int, process func(ctx context.Context, pctx *Context) Result) *fakeModule {
	return &fakeModule{name: name, priority: priority, enabled: true, shouldRun: true, process: process}
}

func TestPipelineRunsInPriorityOrder(t *testing.T) {
	var order []string
	p := New(50 * time.Millisecond)
	p.Register(newFakeModule("second", 20, func(_ context.Context, _ *Context) Result {
		order = append(order, "second")
		return Continue()
	}))
	p.Register(newFakeModule("first", 10, func(_ context.Context, _ *Context) Result {
		order = append(order, "first")
		return Terminate("done")
	}))

	res := p.Run(context.Background(), NewContext("req-1", "", nil))
	if !res.IsTerminate() {
		t.Fatalf("expected a terminating result")
	}
	if len(order) != 1 || order[0] != "first" {
		t.Fatalf("expected only the higher-priority module to run, got %v", order)
	}
}

func TestPipelineSkipsDisabledAndShouldProcessFalse(t *testing.T) {
	p := New(50 * time.Millisecond)
	disabled := newFakeModule("disabled", 1, func(_ context.Context, _ *Context) Result {
		t.Fatalf("disabled module must not run")
		return Continue()
	})
	disabled.enabled = false
	p.Register(disabled)

	skipped := newFakeModule("skipped", 2, func(_ context.Context, _ *Context) Result {
		t.Fatalf("skipped module must not run")
		return Continue()
	})
	skipped.shouldRun = false
	p.Register(skipped)

	p.Register(newFakeModule("final", 3, func(_ context.Context, _ *Context) Result {
		return Terminate("ok")
	}))

	res := p.Run(context.Background(), NewContext("req-1", "", nil))
	response, ok := res.Response()
	if !ok || response != "ok" {
		t.Fatalf("expected final module's response, got %+v", res)
	}
}

func TestPipelineNoTerminatingModuleIsAnError(t *testing.T) {
	p := New(50 * time.Millisecond)
	p.Register(newFakeModule("only", 1, func(_ context.Context, _ *Context) Result {
		return Continue()
	}))

	res := p.Run(context.Background(), NewContext("req-1", "", nil))
	err, ok := res.Err()
	if !ok || err != ErrNoTerminatingModule {
		t.Fatalf("expected ErrNoTerminatingModule, got %+v", res)
	}
}

func TestPipelineModuleTimeoutBecomesTerminatingError(t *testing.T) {
	p := New(10 * time.Millisecond)
	p.Register(newFakeModule("slow", 1, func(ctx context.Context, _ *Context) Result {
		select {
		case <-time.After(200 * time.Millisecond):
			return Continue()
		case <-ctx.Done():
			return TerminateErr(ctx.Err())
		}
	}))

	start := time.Now()
	res := p.Run(context.Background(), NewContext("req-1", "", nil))
	if time.Since(start) > 150*time.Millisecond {
		t.Fatalf("expected Run to return promptly at the module's timeout")
	}
	err, ok := res.Err()
	if !ok || !errors.Is(err, ErrModuleTimeout) || !strings.Contains(err.Error(), "slow") {
		t.Fatalf("expected ErrModuleTimeout naming module \"slow\", got %+v", res)
	}
}

func TestPipelineStatsAccumulate(t *testing.T) {
	p := New(50 * time.Millisecond)
	p.Register(newFakeModule("m", 1, func(_ context.Context, _ *Context) Result {
		return Terminate("ok")
	}))

	p.Run(context.Background(), NewContext("req-1", "", nil))
	p.Run(context.Background(), NewContext("req-2", "", nil))

	stats := p.Stats()
	s, ok := stats["m"]
	if !ok || s.Count != 2 {
		t.Fatalf("expected 2 recorded runs, got %+v", s)
	}
	if s.RejectCount != 2 {
		t.Fatalf("expected both runs counted as rejects (terminate-with-response), got %+v", s)
	}
}

func TestPipelineInitializeAndShutdown(t *testing.T) {
	p := New(50 * time.Millisecond)
	var initialized, shutdown bool
	m := &fakeModule{name: "m", priority: 1, enabled: true, shouldRun: true,
		process: func(_ context.Context, _ *Context) Result { return Continue() }}
	p.Register(m)

	p.modules[0] = &trackingModule{fakeModule: m, onInit: func() { initialized = true }, onShutdown: func() { shutdown = true }}

	if err := p.Initialize(nil); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if !initialized || !shutdown {
		t.Fatalf("expected both lifecycle hooks invoked")
	}
}

type trackingModule struct {
	*fakeModule
	onInit     func()
	onShutdown func()
}

func (t *trackingModule) Initialize(settings map[string]interface{}) error {
	t.onInit()
	return nil
}

func (t *trackingModule) Shutdown(ctx context.Context) error {
	t.onShutdown()
	return nil
}
