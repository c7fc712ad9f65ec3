package triggers

import (
	"context"
	"reflect"
	"slices"

	"github.com/arthur-debert/pkgmerge/pkg/errors"
	"github.com/arthur-debert/pkgmerge/pkg/logging"
	"github.com/arthur-debert/pkgmerge/pkg/types"
)

// DefaultPriority is used when a trigger does not set one.
const DefaultPriority = 50

// Engine is the view of a running transaction a trigger sees.
type Engine interface {
	Mode() types.Mode
	Offset() string
	Phase() types.Hook
	// FinalPhase reports whether the current phase is the last one of the
	// transaction.
	FinalPhase() bool
	Observer() types.Observer
	// Blocked reports whether the engine refuses registrations for hook.
	Blocked(hook types.Hook) bool
	AddTrigger(hook types.Hook, t Trigger, csets CsetRequest) error
}

// Trigger is a unit of work run at one or more hooks.
type Trigger interface {
	// Label names the trigger. Empty means the type name; use LabelOf.
	Label() string
	Priority() int
	// Hooks returns nil when unconstrained.
	Hooks() []types.Hook
	// EngineTypes returns nil when unconstrained.
	EngineTypes() []types.Mode
	RequiredCsets(hook types.Hook) CsetRequest
	// Localize returns the instance to register with a specific engine.
	Localize(e Engine) Trigger
	Trigger(ctx context.Context, e Engine, args Args) error
}

// Base carries a trigger's descriptor. Concrete triggers embed it and add
// a Trigger method.
type Base struct {
	label       string
	priority    int
	hooks       []types.Hook
	engineTypes []types.Mode
	csets       csetMap
}

// Option configures a Base.
type Option func(*Base)

func WithLabel(label string) Option {
	return func(b *Base) { b.label = label }
}

func WithPriority(priority int) Option {
	return func(b *Base) { b.priority = priority }
}

// WithHooks constrains the trigger to hooks.
func WithHooks(hooks ...types.Hook) Option {
	return func(b *Base) { b.hooks = append([]types.Hook{}, hooks...) }
}

// WithEngineTypes constrains the trigger to engines in the given modes.
func WithEngineTypes(modes ...types.Mode) Option {
	return func(b *Base) { b.engineTypes = append([]types.Mode{}, modes...) }
}

// WithRequiredCsets sets the request used for every hook without a
// per-hook override.
func WithRequiredCsets(req CsetRequest) Option {
	return func(b *Base) { b.csets.fallback = req }
}

// WithRequiredCsetsFor overrides the request for one hook.
func WithRequiredCsetsFor(hook types.Hook, req CsetRequest) Option {
	return func(b *Base) {
		if b.csets.byHook == nil {
			b.csets.byHook = make(map[types.Hook]CsetRequest)
		}
		b.csets.byHook[hook] = req
	}
}

// NewBase returns a descriptor with default priority, unconstrained hooks
// and modes, and a request for all content sets.
func NewBase(opts ...Option) Base {
	b := Base{priority: DefaultPriority}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b *Base) Label() string                             { return b.label }
func (b *Base) Priority() int                             { return b.priority }
func (b *Base) Hooks() []types.Hook                       { return b.hooks }
func (b *Base) EngineTypes() []types.Mode                 { return b.engineTypes }
func (b *Base) RequiredCsets(hook types.Hook) CsetRequest { return b.csets.get(hook) }

// DescribeCsets renders the content set requests for listings.
func (b *Base) DescribeCsets() string { return b.csets.String() }

// LabelOf returns t's label, falling back to its type name.
func LabelOf(t Trigger) string {
	if l := t.Label(); l != "" {
		return l
	}
	rt := reflect.TypeOf(t)
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	return rt.Name()
}

// Register validates t against e and adds one registration per hook. Hooks
// the engine blocks are skipped without error. A trigger without hook
// constraints registers for nothing.
func Register(e Engine, t Trigger) error {
	logger := logging.GetLogger("triggers")
	label := LabelOf(t)

	if modes := t.EngineTypes(); modes != nil && !slices.Contains(modes, e.Mode()) {
		return errors.Newf(errors.ErrTypeCompat, "trigger %s does not support %s engines", label, e.Mode()).
			WithDetail("trigger", label).
			WithDetail("mode", string(e.Mode()))
	}

	hooks := t.Hooks()
	if hooks == nil {
		logger.Debug().Str("trigger", label).Msg("trigger has no hooks, nothing registered")
		return nil
	}
	for _, hook := range hooks {
		if e.Blocked(hook) {
			logger.Trace().Str("trigger", label).Str("hook", string(hook)).Msg("hook blocked by engine, skipped")
			continue
		}
		if err := e.AddTrigger(hook, t, t.RequiredCsets(hook)); err != nil {
			return err
		}
	}
	return nil
}

// Call resolves req against csets and runs t.
func Call(ctx context.Context, e Engine, t Trigger, req CsetRequest, csets types.Csets) error {
	args, err := Resolve(req, csets)
	if err != nil {
		return err
	}
	logger := logging.GetLogger("triggers")
	logger.Debug().
		Str("trigger", LabelOf(t)).
		Str("phase", string(e.Phase())).
		Str("csets", req.String()).
		Msg("firing trigger")
	return t.Trigger(ctx, e, args)
}

// Func adapts a function to a Trigger.
type Func struct {
	Base
	fn func(ctx context.Context, e Engine, args Args) error
}

// NewFunc builds a trigger that calls fn.
func NewFunc(fn func(ctx context.Context, e Engine, args Args) error, opts ...Option) *Func {
	return &Func{Base: NewBase(opts...), fn: fn}
}

func (f *Func) Localize(Engine) Trigger { return f }

func (f *Func) Trigger(ctx context.Context, e Engine, args Args) error {
	return f.fn(ctx, e, args)
}
