package triggers_test

import (
	"context"

	"github.com/arthur-debert/pkgmerge/pkg/spawn"
	"github.com/arthur-debert/pkgmerge/pkg/triggers"
	"github.com/arthur-debert/pkgmerge/pkg/types"
	"github.com/stretchr/testify/mock"
)

type registration struct {
	hook    types.Hook
	trigger triggers.Trigger
	csets   triggers.CsetRequest
}

// fakeEngine records registrations and warnings.
type fakeEngine struct {
	mode     types.Mode
	offset   string
	phase    types.Hook
	final    bool
	blocked  map[types.Hook]bool
	regs     []registration
	warnings []string
}

func newFakeEngine(mode types.Mode, offset string, blocked ...types.Hook) *fakeEngine {
	e := &fakeEngine{mode: mode, offset: offset, blocked: make(map[types.Hook]bool)}
	for _, h := range blocked {
		e.blocked[h] = true
	}
	return e
}

func (e *fakeEngine) Mode() types.Mode             { return e.mode }
func (e *fakeEngine) Offset() string               { return e.offset }
func (e *fakeEngine) Phase() types.Hook            { return e.phase }
func (e *fakeEngine) FinalPhase() bool             { return e.final }
func (e *fakeEngine) Blocked(hook types.Hook) bool { return e.blocked[hook] }
func (e *fakeEngine) Observer() types.Observer {
	return types.ObserverFunc(func(m string) { e.warnings = append(e.warnings, m) })
}

func (e *fakeEngine) AddTrigger(hook types.Hook, t triggers.Trigger, csets triggers.CsetRequest) error {
	e.regs = append(e.regs, registration{hook: hook, trigger: t, csets: csets})
	return nil
}

// fire sets the phase and calls t the way the engine does.
func (e *fakeEngine) fire(t triggers.Trigger, phase types.Hook) error {
	e.phase = phase
	return triggers.Call(context.Background(), e, t, t.RequiredCsets(phase), types.Csets{})
}

type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Run(ctx context.Context, name string, args ...string) (spawn.Result, error) {
	a := m.Called(name, args)
	return a.Get(0).(spawn.Result), a.Error(1)
}

func (m *MockRunner) LookPath(name string) (string, error) {
	a := m.Called(name)
	return a.String(0), a.Error(1)
}
