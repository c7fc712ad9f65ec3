// pkg/triggers/trigger_test.go
// TEST TYPE: Unit Tests
// DEPENDENCIES: fake engine
// PURPOSE: Test trigger descriptors, registration and cset dispatch

package triggers_test

import (
	"context"
	"testing"

	"github.com/arthur-debert/pkgmerge/pkg/contents"
	"github.com/arthur-debert/pkgmerge/pkg/errors"
	"github.com/arthur-debert/pkgmerge/pkg/triggers"
	"github.com/arthur-debert/pkgmerge/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedTrigger struct {
	triggers.Base
	calls []triggers.Args
}

func (t *namedTrigger) Localize(triggers.Engine) triggers.Trigger { return t }

func (t *namedTrigger) Trigger(_ context.Context, _ triggers.Engine, args triggers.Args) error {
	t.calls = append(t.calls, args)
	return nil
}

func newNamed(opts ...triggers.Option) *namedTrigger {
	return &namedTrigger{Base: triggers.NewBase(opts...)}
}

func TestDefaults(t *testing.T) {
	tr := newNamed()
	assert.Equal(t, triggers.DefaultPriority, tr.Priority())
	assert.Nil(t, tr.Hooks())
	assert.Nil(t, tr.EngineTypes())
	assert.Equal(t, triggers.ShapeAll, tr.RequiredCsets(types.HookPreMerge).Shape())
	assert.Equal(t, "", tr.Label())
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "namedTrigger", triggers.LabelOf(newNamed()))
	assert.Equal(t, "foon", triggers.LabelOf(newNamed(triggers.WithLabel("foon"))))
	assert.Equal(t, "Func", triggers.LabelOf(triggers.NewFunc(nil)))
}

func TestPriority(t *testing.T) {
	for _, p := range []int{0, 50, 10000} {
		assert.Equal(t, p, newNamed(triggers.WithPriority(p)).Priority())
	}
}

func TestLocalize(t *testing.T) {
	tr := newNamed()
	assert.Same(t, tr, tr.Localize(nil))
}

func TestRequiredCsetsResolution(t *testing.T) {
	all := newNamed(triggers.WithRequiredCsets(triggers.AllCsets()))
	assert.Equal(t, triggers.ShapeAll, all.RequiredCsets("").Shape())

	perHook := newNamed(
		triggers.WithRequiredCsets(triggers.NamedCsets("fallback")),
		triggers.WithRequiredCsetsFor(types.HookPostMerge, triggers.NamedCsets("dar")),
	)
	assert.Equal(t, []string{"dar"}, perHook.RequiredCsets(types.HookPostMerge).Names())
	assert.Equal(t, []string{"fallback"}, perHook.RequiredCsets(types.HookPreMerge).Names())

	seq := newNamed(triggers.WithRequiredCsets(triggers.NamedCsets("dar", "foo")))
	assert.Equal(t, []string{"dar", "foo"}, seq.RequiredCsets("bar").Names())

	none := newNamed(triggers.WithRequiredCsets(triggers.NamedCsets()))
	assert.Equal(t, triggers.ShapeNone, none.RequiredCsets("").Shape())
}

func TestRegisterRejectsIncompatibleMode(t *testing.T) {
	e := newFakeEngine(types.ModeUninstall, "/")
	tr := newNamed(triggers.WithEngineTypes(types.ModeInstall), triggers.WithHooks(types.HookPreMerge))

	err := triggers.Register(e, tr)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrTypeCompat))
	assert.Empty(t, e.regs)
}

func TestRegisterUnconstrainedHooksRegistersNothing(t *testing.T) {
	e := newFakeEngine(types.ModeInstall, "/")
	require.NoError(t, triggers.Register(e, newNamed()))
	assert.Empty(t, e.regs)
}

func TestRegisterSkipsBlockedHooks(t *testing.T) {
	e := newFakeEngine(types.ModeInstall, "/", "foon", "dar")

	require.NoError(t, triggers.Register(e, newNamed(triggers.WithHooks("foon"))))
	require.NoError(t, triggers.Register(e, newNamed(triggers.WithHooks("foon", "dar"))))
	assert.Empty(t, e.regs)

	tr := newNamed(triggers.WithHooks("foon", "bar"), triggers.WithRequiredCsets(triggers.NamedCsets("3")))
	require.NoError(t, triggers.Register(e, tr))
	require.Len(t, e.regs, 1)
	assert.Equal(t, types.Hook("bar"), e.regs[0].hook)
	assert.Same(t, tr, e.regs[0].trigger)
	assert.Equal(t, []string{"3"}, e.regs[0].csets.Names())
}

func TestRegisterDistinguishesAllFromNone(t *testing.T) {
	e := newFakeEngine(types.ModeInstall, "/")
	require.NoError(t, triggers.Register(e, newNamed(triggers.WithHooks("2"))))
	require.NoError(t, triggers.Register(e, newNamed(triggers.WithHooks("2"), triggers.WithRequiredCsets(triggers.NoCsets()))))

	require.Len(t, e.regs, 2)
	assert.Equal(t, triggers.ShapeAll, e.regs[0].csets.Shape())
	assert.Equal(t, triggers.ShapeNone, e.regs[1].csets.Shape())
}

func TestCallPassesRawMapping(t *testing.T) {
	e := newFakeEngine(types.ModeInstall, "/")
	tr := newNamed()
	raw := types.Csets{"install": contents.New()}

	require.NoError(t, triggers.Call(context.Background(), e, tr, triggers.AllCsets(), raw))
	require.Len(t, tr.calls, 1)
	assert.Equal(t, triggers.ShapeAll, tr.calls[0].Shape)
	assert.Same(t, raw["install"], tr.calls[0].All["install"])
	assert.Nil(t, tr.calls[0].Sets)
}

func TestCallPassesNamedSetsInOrder(t *testing.T) {
	e := newFakeEngine(types.ModeInstall, "/")
	tr := newNamed()
	a, b := contents.New(), contents.New()

	require.NoError(t, triggers.Call(context.Background(), e, tr, triggers.NamedCsets("b", "a"), types.Csets{"a": a, "b": b}))
	require.Len(t, tr.calls, 1)
	require.Len(t, tr.calls[0].Sets, 2)
	assert.Same(t, b, tr.calls[0].Sets[0])
	assert.Same(t, a, tr.calls[0].Sets[1])
	assert.Nil(t, tr.calls[0].All)
}

func TestCallWithNoCsets(t *testing.T) {
	e := newFakeEngine(types.ModeInstall, "/")
	tr := newNamed()
	require.NoError(t, triggers.Call(context.Background(), e, tr, triggers.NoCsets(), types.Csets{"a": contents.New()}))
	assert.Empty(t, tr.calls[0].Sets)
	assert.Nil(t, tr.calls[0].All)
}

func TestCallMissingCset(t *testing.T) {
	e := newFakeEngine(types.ModeInstall, "/")
	tr := newNamed()
	err := triggers.Call(context.Background(), e, tr, triggers.NamedCsets("install"), types.Csets{})
	assert.True(t, errors.IsErrorCode(err, errors.ErrLookup))
	assert.Empty(t, tr.calls)
}

func TestCsetRequestString(t *testing.T) {
	assert.Equal(t, "all", triggers.AllCsets().String())
	assert.Equal(t, "[]", triggers.NoCsets().String())
	assert.Equal(t, "[install, existing]", triggers.NamedCsets("install", "existing").String())
}

func TestFactories(t *testing.T) {
	assert.Equal(t, []string{triggers.InfoRegenName, triggers.LdConfigName}, triggers.Factories().List())

	built, err := triggers.BuildAll([]string{"ldconfig", "info_regen"}, triggers.DefaultSettings(), triggers.Deps{Runner: &MockRunner{}})
	require.NoError(t, err)
	require.Len(t, built, 2)
	assert.Equal(t, "LdConfig", triggers.LabelOf(built[0]))
	assert.Equal(t, 10, built[0].Priority())
	assert.Equal(t, "InfoRegen", triggers.LabelOf(built[1]))

	_, err = triggers.Build("nope", triggers.DefaultSettings(), triggers.Deps{})
	assert.True(t, errors.IsErrorCode(err, errors.ErrLookup))
}
