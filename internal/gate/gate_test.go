// SPDX-License-Identifier: MPL-2.0

package gate

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/pirog/kalabox-cli/internal/engine"
	"github.com/pirog/kalabox-cli/internal/provider"
)

type (
	// fakeProvider scripts check answers and records every query.
	fakeProvider struct {
		mu sync.Mutex

		installed bool
		up        bool
		cfg       engine.Config

		installedErr error
		upErr        error
		cfgErr       error

		// calls records query names in order.
		calls []string

		// blockInstalled, when non-nil, makes IsInstalled wait until the
		// channel is closed. Used to force overlapping first calls.
		blockInstalled chan struct{}
	}

	// fakeInit counts Init calls and records the last config.
	fakeInit struct {
		mu      sync.Mutex
		calls   int
		lastCfg engine.Config
		err     error
	}
)

func (p *fakeProvider) Name() string { return "machine" }

func (p *fakeProvider) record(call string) {
	p.mu.Lock()
	p.calls = append(p.calls, call)
	p.mu.Unlock()
}

func (p *fakeProvider) callCount(call string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (p *fakeProvider) IsInstalled(context.Context) (bool, error) {
	p.record("isInstalled")
	if p.blockInstalled != nil {
		<-p.blockInstalled
	}
	return p.installed, p.installedErr
}

func (p *fakeProvider) IsUp(context.Context) (bool, error) {
	p.record("isUp")
	return p.up, p.upErr
}

func (p *fakeProvider) EngineConfig(context.Context) (engine.Config, error) {
	p.record("engineConfig")
	return p.cfg, p.cfgErr
}

func (i *fakeInit) Init(cfg engine.Config) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.calls++
	i.lastCfg = cfg
	return i.err
}

func (i *fakeInit) callCount() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.calls
}

func readyProvider() *fakeProvider {
	return &fakeProvider{
		installed: true,
		up:        true,
		cfg:       engine.Config{Host: "tcp://192.168.99.100:2376"},
	}
}

func TestVerifyInstalled_QueriesOnce(t *testing.T) {
	t.Parallel()

	p := readyProvider()
	g := New(p)
	ctx := context.Background()

	for range 5 {
		if err := g.VerifyInstalled(ctx); err != nil {
			t.Fatalf("VerifyInstalled failed: %v", err)
		}
	}
	if n := p.callCount("isInstalled"); n != 1 {
		t.Errorf("isInstalled queried %d times, want 1", n)
	}
	if !g.State().Installed() {
		t.Error("installed fact not cached")
	}
}

func TestVerifyInstalled_NegativeCheck(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{installed: false}
	g := New(p)

	err := g.VerifyInstalled(context.Background())
	if !errors.Is(err, provider.ErrNotInstalled) {
		t.Fatalf("error = %v, want ErrNotInstalled", err)
	}
	want := `Provider "machine" is NOT installed!`
	if err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}
	if g.State().Installed() {
		t.Error("negative check must not set the installed fact")
	}
}

func TestVerifyInstalled_QueryErrorNotCached(t *testing.T) {
	t.Parallel()

	queryErr := errors.New("vm control socket timeout")
	p := &fakeProvider{installed: true, installedErr: queryErr}
	g := New(p)
	ctx := context.Background()

	if err := g.VerifyInstalled(ctx); !errors.Is(err, queryErr) {
		t.Fatalf("error = %v, want the provider's own query error", err)
	}
	if g.State().Installed() {
		t.Error("query error must not set the installed fact")
	}

	// Provider recovers: the next call re-queries and succeeds.
	p.installedErr = nil
	if err := g.VerifyInstalled(ctx); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if n := p.callCount("isInstalled"); n != 2 {
		t.Errorf("isInstalled queried %d times across retry, want 2", n)
	}
}

func TestVerifyUp_DoesNotCheckInstalled(t *testing.T) {
	t.Parallel()

	p := readyProvider()
	g := New(p)

	if err := g.VerifyUp(context.Background()); err != nil {
		t.Fatalf("VerifyUp failed: %v", err)
	}
	if n := p.callCount("isInstalled"); n != 0 {
		t.Errorf("VerifyUp triggered %d isInstalled queries, want 0", n)
	}
}

func TestVerifyUp_NotRunningMessage(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{up: false}
	g := New(p)

	err := g.VerifyUp(context.Background())
	if !errors.Is(err, provider.ErrNotRunning) {
		t.Fatalf("error = %v, want ErrNotRunning", err)
	}
	want := `Provider "machine" is NOT up!`
	if err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}
}

func TestVerifyReady_StrictOrdering(t *testing.T) {
	t.Parallel()

	p := readyProvider()
	g := New(p)
	init := &fakeInit{}

	if err := g.VerifyReady(context.Background(), init); err != nil {
		t.Fatalf("VerifyReady failed: %v", err)
	}

	want := []string{"isInstalled", "isUp", "engineConfig"}
	p.mu.Lock()
	got := append([]string(nil), p.calls...)
	p.mu.Unlock()
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("calls = %v, want %v", got, want)
		}
	}
	if init.callCount() != 1 {
		t.Errorf("Init called %d times, want 1", init.callCount())
	}
	if init.lastCfg.Host != "tcp://192.168.99.100:2376" {
		t.Errorf("Init received cfg %+v", init.lastCfg)
	}
}

func TestVerifyReady_FailFastNotInstalled(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{installed: false, up: true}
	g := New(p)

	err := g.VerifyReady(context.Background(), &fakeInit{})
	if !errors.Is(err, provider.ErrNotInstalled) {
		t.Fatalf("error = %v, want ErrNotInstalled", err)
	}
	if n := p.callCount("isUp"); n != 0 {
		t.Errorf("isUp queried %d times after failed install check, want 0", n)
	}
	if n := p.callCount("engineConfig"); n != 0 {
		t.Errorf("engineConfig queried %d times after failed install check, want 0", n)
	}
}

func TestVerifyReady_NotUpNeverFetchesConfig(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{installed: true, up: false}
	g := New(p)

	err := g.VerifyReady(context.Background(), &fakeInit{})
	if !errors.Is(err, provider.ErrNotRunning) {
		t.Fatalf("error = %v, want ErrNotRunning", err)
	}
	if n := p.callCount("engineConfig"); n != 0 {
		t.Errorf("engineConfig queried %d times, want 0", n)
	}
}

func TestVerifyReady_SecondCallFullyCached(t *testing.T) {
	t.Parallel()

	p := readyProvider()
	g := New(p)
	init := &fakeInit{}
	ctx := context.Background()

	if err := g.VerifyReady(ctx, init); err != nil {
		t.Fatalf("first VerifyReady failed: %v", err)
	}
	before := len(p.calls)

	if err := g.VerifyReady(ctx, init); err != nil {
		t.Fatalf("second VerifyReady failed: %v", err)
	}
	p.mu.Lock()
	after := len(p.calls)
	p.mu.Unlock()
	if after != before {
		t.Errorf("second VerifyReady issued %d provider queries, want 0", after-before)
	}
	if init.callCount() != 1 {
		t.Errorf("Init called %d times across two VerifyReady, want 1", init.callCount())
	}
}

func TestVerifyReady_ConfigErrorRetryable(t *testing.T) {
	t.Parallel()

	cfgErr := errors.New("machine env failed")
	p := readyProvider()
	p.cfgErr = cfgErr
	g := New(p)
	init := &fakeInit{}
	ctx := context.Background()

	if err := g.VerifyReady(ctx, init); !errors.Is(err, cfgErr) {
		t.Fatalf("error = %v, want the config fetch error", err)
	}
	if g.State().Initialized() {
		t.Error("initialized fact set despite config failure")
	}
	if init.callCount() != 0 {
		t.Error("Init called despite config failure")
	}

	// installed and up stay cached; only the config step reruns.
	p.cfgErr = nil
	if err := g.VerifyReady(ctx, init); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if n := p.callCount("isInstalled"); n != 1 {
		t.Errorf("isInstalled queried %d times, want 1", n)
	}
	if n := p.callCount("engineConfig"); n != 2 {
		t.Errorf("engineConfig queried %d times, want 2", n)
	}
	if !g.State().Initialized() {
		t.Error("initialized fact not set after successful retry")
	}
}

func TestVerifyReady_InitErrorRetryable(t *testing.T) {
	t.Parallel()

	p := readyProvider()
	g := New(p)
	init := &fakeInit{err: errors.New("engine rejected config")}
	ctx := context.Background()

	if err := g.VerifyReady(ctx, init); err == nil {
		t.Fatal("VerifyReady should surface the Init error")
	}
	if g.State().Initialized() {
		t.Error("initialized fact set despite Init failure")
	}

	init.err = nil
	if err := g.VerifyReady(ctx, init); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if init.callCount() != 2 {
		t.Errorf("Init called %d times, want 2 (failure then success)", init.callCount())
	}
}

func TestMonotonicity_FactsNeverRevert(t *testing.T) {
	t.Parallel()

	p := readyProvider()
	g := New(p)
	ctx := context.Background()

	if err := g.VerifyReady(ctx, &fakeInit{}); err != nil {
		t.Fatalf("VerifyReady failed: %v", err)
	}

	// The provider flipping its answers must not be observable: all facts
	// are cached and no further queries happen.
	p.installed = false
	p.up = false
	for range 3 {
		if err := g.VerifyReady(ctx, &fakeInit{}); err != nil {
			t.Fatalf("cached VerifyReady failed: %v", err)
		}
	}
	s := g.State()
	if !s.Installed() || !s.Up() || !s.Initialized() {
		t.Error("a cached fact reverted to false")
	}
}

func TestVerifyInstalled_ConcurrentFirstCallsCollapse(t *testing.T) {
	t.Parallel()

	p := readyProvider()
	p.blockInstalled = make(chan struct{})
	g := New(p)
	ctx := context.Background()

	const callers = 10
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = g.VerifyInstalled(ctx)
		}()
	}

	// Release the provider once all callers are launched. Callers that
	// entered while the query was in flight share its result; stragglers
	// see the cached fact. Either way there is exactly one query.
	close(p.blockInstalled)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("caller %d failed: %v", i, err)
		}
	}
	if n := p.callCount("isInstalled"); n != 1 {
		t.Errorf("isInstalled queried %d times under concurrency, want 1", n)
	}
}
