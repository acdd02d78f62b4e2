package engine

import (
	"context"
	"testing"
	"time"

	"github.com/nao1215/torbar/internal/artifact"
	"github.com/nao1215/torbar/internal/log"
	"github.com/nao1215/torbar/internal/model"
)

type fakeService struct{ active bool }

func (f fakeService) IsActive(context.Context) bool { return f.active }

type fakeBootstrap struct {
	percent int
	calls   int
}

func (f *fakeBootstrap) Percent(context.Context) int {
	f.calls++
	return f.percent
}

type fakeConnectivity struct {
	isTor bool
	calls int
}

func (f *fakeConnectivity) IsTor(context.Context) bool {
	f.calls++
	return f.isTor
}

type fakeArtifacts struct {
	present           bool
	applied, reverted int
}

func (f *fakeArtifacts) Present() bool { return f.present }

func (f *fakeArtifacts) Apply(context.Context) artifact.Result {
	f.applied++
	f.present = true
	return artifact.Result{}
}

func (f *fakeArtifacts) Revert(context.Context) artifact.Result {
	f.reverted++
	f.present = false
	return artifact.Result{}
}

type memStore struct {
	state model.PersistedState
	saves int
}

func (m *memStore) Load() model.PersistedState { return m.state }

func (m *memStore) Save(st model.PersistedState) {
	m.state = st
	m.saves++
}

type memRecorder struct{ transitions []model.Transition }

func (m *memRecorder) Record(_ context.Context, tr model.Transition) {
	m.transitions = append(m.transitions, tr)
}

type harness struct {
	service      fakeService
	bootstrap    *fakeBootstrap
	connectivity *fakeConnectivity
	artifacts    *fakeArtifacts
	store        *memStore
	recorder     *memRecorder
}

func newHarness(active bool, percent int, isTor, present bool) *harness {
	return &harness{
		service:      fakeService{active: active},
		bootstrap:    &fakeBootstrap{percent: percent},
		connectivity: &fakeConnectivity{isTor: isTor},
		artifacts:    &fakeArtifacts{present: present},
		store:        &memStore{state: model.DefaultPersistedState()},
		recorder:     &memRecorder{},
	}
}

func (h *harness) engine() *Engine {
	clock := func() time.Time { return time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC) }
	return New(h.service, h.bootstrap, h.connectivity, h.artifacts, h.store,
		WithLogger(log.Discard()), WithRecorder(h.recorder), WithClock(clock))
}

func TestRunServiceOff(t *testing.T) {
	t.Parallel()

	h := newHarness(false, 80, true, false)
	rec := h.engine().Run(context.Background())

	want := model.NewStatusRecord(model.StatusOff, 0)
	if rec != want {
		t.Errorf("Run() = %+v, want %+v", rec, want)
	}
	if h.bootstrap.calls != 0 {
		t.Error("bootstrap probe must not run while the service is inactive")
	}
	if h.connectivity.calls != 0 {
		t.Error("connectivity probe must not run while the service is inactive")
	}
	if h.artifacts.applied+h.artifacts.reverted != 0 {
		t.Error("expected no artifact changes")
	}
	if h.store.state != (model.PersistedState{Status: model.StatusOff}) {
		t.Errorf("unexpected saved state %+v", h.store.state)
	}
}

func TestRunBootstrapping(t *testing.T) {
	t.Parallel()

	h := newHarness(true, 45, true, false)
	rec := h.engine().Run(context.Background())

	if rec.Text != model.IconConnecting+" 45%" || rec.Class != model.ClassConnecting || rec.Percentage != 45 {
		t.Errorf("unexpected record %+v", rec)
	}
	if h.connectivity.calls != 0 {
		t.Error("connectivity probe must not run before bootstrap completes")
	}
	if h.artifacts.applied != 0 {
		t.Error("artifacts must not be applied before bootstrap completes")
	}
	if h.store.state.Status != model.StatusConnecting || h.store.state.Bootstrap != 45 {
		t.Errorf("unexpected saved state %+v", h.store.state)
	}
}

func TestRunConnected(t *testing.T) {
	t.Parallel()

	h := newHarness(true, 100, true, false)
	h.store.state = model.PersistedState{Status: model.StatusConnecting, Bootstrap: 90}
	rec := h.engine().Run(context.Background())

	if rec != model.NewStatusRecord(model.StatusConnected, 100) {
		t.Errorf("unexpected record %+v", rec)
	}
	if h.artifacts.applied != 1 {
		t.Errorf("expected one apply, got %d", h.artifacts.applied)
	}
	want := model.PersistedState{Status: model.StatusConnected, Bootstrap: 100, ProxyNotified: true}
	if h.store.state != want {
		t.Errorf("saved state = %+v, want %+v", h.store.state, want)
	}

	if len(h.recorder.transitions) != 1 {
		t.Fatalf("expected one transition, got %d", len(h.recorder.transitions))
	}
	tr := h.recorder.transitions[0]
	if tr.From != model.StatusConnecting || tr.To != model.StatusConnected || tr.Action != model.ActionApply || tr.Bootstrap != 100 {
		t.Errorf("unexpected transition %+v", tr)
	}
}

func TestRunCompleteButUnverified(t *testing.T) {
	t.Parallel()

	h := newHarness(true, 100, false, true)
	rec := h.engine().Run(context.Background())

	if rec.Text != model.IconConnecting+" 100%" {
		t.Errorf("unexpected text %q", rec.Text)
	}
	if h.connectivity.calls != 1 {
		t.Errorf("expected one connectivity check, got %d", h.connectivity.calls)
	}
}

func TestRunSelfHealsStaleArtifacts(t *testing.T) {
	t.Parallel()

	h := newHarness(false, 0, false, true)
	h.store.state = model.PersistedState{Status: model.StatusConnected, Bootstrap: 100}
	e := h.engine()

	e.Run(context.Background())
	if h.artifacts.reverted != 1 {
		t.Fatalf("expected one revert, got %d", h.artifacts.reverted)
	}

	// Nothing left to heal on the next run.
	e.Run(context.Background())
	if h.artifacts.reverted != 1 {
		t.Errorf("expected revert to be idempotent across runs, got %d", h.artifacts.reverted)
	}
	if !h.store.state.ProxyNotified {
		t.Error("expected notified flag to be carried forward")
	}
	if len(h.recorder.transitions) != 1 {
		t.Errorf("expected a single connected -> off transition, got %d", len(h.recorder.transitions))
	}
}

func TestRunWithoutRecorder(t *testing.T) {
	t.Parallel()

	h := newHarness(true, 0, false, false)
	e := New(h.service, h.bootstrap, h.connectivity, h.artifacts, h.store, WithLogger(log.Discard()))

	rec := e.Run(context.Background())
	if rec.Class != model.ClassStarting {
		t.Errorf("unexpected class %q", rec.Class)
	}
	if h.store.saves != 1 {
		t.Errorf("expected state to be saved once, got %d", h.store.saves)
	}
}

func TestObserveClampsBootstrap(t *testing.T) {
	t.Parallel()

	h := newHarness(true, 250, true, false)
	obs := h.engine().Observe(context.Background())
	if obs.Bootstrap != 100 || !obs.Connected {
		t.Errorf("unexpected observation %+v", obs)
	}
}
