package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/arthur-debert/pkgmerge/pkg/contents"
	"github.com/arthur-debert/pkgmerge/pkg/errors"
	"github.com/arthur-debert/pkgmerge/pkg/logging"
	"github.com/arthur-debert/pkgmerge/pkg/paths"
	"github.com/arthur-debert/pkgmerge/pkg/triggers"
	"github.com/arthur-debert/pkgmerge/pkg/types"
	"github.com/rs/zerolog"
)

type registration struct {
	trigger triggers.Trigger
	csets   triggers.CsetRequest
	seq     int
}

var _ triggers.Engine = (*Engine)(nil)

// Engine is a single transaction. It is not safe for concurrent use.
type Engine struct {
	mode    types.Mode
	offset  string
	phases  []types.Hook
	phase   types.Hook
	csets   types.Csets
	blocked map[types.Hook]bool

	hooks map[types.Hook][]registration
	seq   int

	observer types.Observer
	warnings []string
	logger   zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithOffset sets the install root. It defaults to /.
func WithOffset(offset string) Option {
	return func(e *Engine) { e.offset = offset }
}

// WithCsets sets the content sets handed to triggers.
func WithCsets(csets types.Csets) Option {
	return func(e *Engine) {
		for k, v := range csets {
			e.csets[k] = v
		}
	}
}

// WithCset adds one named content set.
func WithCset(name string, set *contents.Set) Option {
	return func(e *Engine) { e.csets[name] = set }
}

// WithBlockedHooks makes the engine refuse registrations for hooks.
func WithBlockedHooks(hooks ...types.Hook) Option {
	return func(e *Engine) {
		for _, h := range hooks {
			e.blocked[h] = true
		}
	}
}

// WithObserver forwards trigger warnings to o. By default they are logged.
func WithObserver(o types.Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// New creates an engine for mode.
func New(mode types.Mode, opts ...Option) (*Engine, error) {
	if _, err := types.ParseMode(string(mode)); err != nil {
		return nil, err
	}
	e := &Engine{
		mode:    mode,
		offset:  "/",
		phases:  types.Phases(mode),
		csets:   make(types.Csets),
		blocked: make(map[types.Hook]bool),
		hooks:   make(map[types.Hook][]registration),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.offset = paths.Canonical(e.offset)
	e.logger = logging.ForTransaction("engine", string(mode), e.offset)
	return e, nil
}

func (e *Engine) Mode() types.Mode     { return e.mode }
func (e *Engine) Offset() string       { return e.offset }
func (e *Engine) Phase() types.Hook    { return e.phase }
func (e *Engine) Phases() []types.Hook { return append([]types.Hook(nil), e.phases...) }

// FinalPhase reports whether the current phase is the last phase of the
// transaction.
func (e *Engine) FinalPhase() bool {
	return len(e.phases) > 0 && e.phase == e.phases[len(e.phases)-1]
}

func (e *Engine) Blocked(hook types.Hook) bool { return e.blocked[hook] }

// Csets returns the content sets of the transaction.
func (e *Engine) Csets() types.Csets { return e.csets }

// SetCset adds or replaces a named content set.
func (e *Engine) SetCset(name string, set *contents.Set) { e.csets[name] = set }

// Observer returns the observer triggers report warnings to. Warnings are
// also collected for Warnings.
func (e *Engine) Observer() types.Observer {
	return types.ObserverFunc(e.warn)
}

func (e *Engine) warn(message string) {
	e.warnings = append(e.warnings, message)
	if e.observer != nil {
		e.observer.Warn(message)
		return
	}
	e.logger.Warn().Str("phase", string(e.phase)).Msg(message)
}

// Warnings returns every warning raised so far.
func (e *Engine) Warnings() []string { return append([]string(nil), e.warnings...) }

// AddTrigger records t for hook. Triggers normally arrive here through
// Register, which skips blocked hooks.
func (e *Engine) AddTrigger(hook types.Hook, t triggers.Trigger, csets triggers.CsetRequest) error {
	if e.blocked[hook] {
		return errors.Newf(errors.ErrInvalidInput, "hook %s is blocked on this engine", hook).
			WithDetail("hook", string(hook))
	}
	e.seq++
	e.hooks[hook] = append(e.hooks[hook], registration{trigger: t, csets: csets, seq: e.seq})
	sort.SliceStable(e.hooks[hook], func(i, j int) bool {
		a, b := e.hooks[hook][i], e.hooks[hook][j]
		if a.trigger.Priority() != b.trigger.Priority() {
			return a.trigger.Priority() < b.trigger.Priority()
		}
		return a.seq < b.seq
	})
	e.logger.Debug().
		Str("hook", string(hook)).
		Str("trigger", triggers.LabelOf(t)).
		Int("priority", t.Priority()).
		Str("csets", csets.String()).
		Msg("trigger registered")
	return nil
}

// Register localizes each trigger and registers it.
func (e *Engine) Register(ts ...triggers.Trigger) error {
	for _, t := range ts {
		if err := triggers.Register(e, t.Localize(e)); err != nil {
			return err
		}
	}
	return nil
}

// Triggers returns the triggers registered for hook in firing order.
func (e *Engine) Triggers(hook types.Hook) []triggers.Trigger {
	regs := e.hooks[hook]
	out := make([]triggers.Trigger, len(regs))
	for i, r := range regs {
		out[i] = r.trigger
	}
	return out
}

// Registrations counts registrations across all hooks.
func (e *Engine) Registrations() int {
	n := 0
	for _, regs := range e.hooks {
		n += len(regs)
	}
	return n
}

// Fire moves the engine to hook and runs its triggers in order. A failing
// trigger becomes a warning; only cancellation stops the phase.
func (e *Engine) Fire(ctx context.Context, hook types.Hook) error {
	e.phase = hook
	regs := e.hooks[hook]
	e.logger.Debug().Str("phase", string(hook)).Int("triggers", len(regs)).Bool("final", e.FinalPhase()).Msg("phase started")

	for _, r := range regs {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, errors.ErrState, "transaction cancelled at %s", hook)
		}
		if err := triggers.Call(ctx, e, r.trigger, r.csets, e.csets); err != nil {
			label := triggers.LabelOf(r.trigger)
			e.logger.Error().Err(err).Str("trigger", label).Str("phase", string(hook)).Msg("trigger failed")
			e.warn(fmt.Sprintf("trigger %s failed at %s: %v", label, hook, err))
		}
	}
	return nil
}
