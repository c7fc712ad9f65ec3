package engine

import (
	"context"

	"github.com/arthur-debert/pkgmerge/pkg/contents"
	"github.com/arthur-debert/pkgmerge/pkg/errors"
	"github.com/arthur-debert/pkgmerge/pkg/logging"
	"github.com/arthur-debert/pkgmerge/pkg/types"
)

// Merger applies content to the live filesystem. Merge runs between
// pre_merge and post_merge, Unmerge between pre_unmerge and post_unmerge.
type Merger interface {
	Merge(ctx context.Context, e *Engine) error
	Unmerge(ctx context.Context, e *Engine) error
}

// Operation describes the work around the phases.
type Operation struct {
	// Merger is optional; without it only the triggers run.
	Merger Merger
	// Install is flushed once the merge step succeeded.
	Install *contents.Record
	// Uninstall is deleted once the unmerge step succeeded.
	Uninstall *contents.Record
}

// Result summarizes a finished transaction.
type Result struct {
	Mode     types.Mode
	Phases   []types.Hook
	Warnings []string
}

// Run walks every phase of the engine's mode, calling the merger and
// persisting records between the pre and post hooks.
func (e *Engine) Run(ctx context.Context, op Operation) (*Result, error) {
	done := logging.LogOperationStart(e.logger, "transaction")
	defer done()

	res := &Result{Mode: e.mode}
	for _, hook := range e.phases {
		if err := e.Fire(ctx, hook); err != nil {
			res.Warnings = e.Warnings()
			return res, err
		}
		res.Phases = append(res.Phases, hook)

		if err := e.between(ctx, hook, op); err != nil {
			res.Warnings = e.Warnings()
			return res, err
		}
	}
	res.Warnings = e.Warnings()
	return res, nil
}

// between runs the step that follows a pre hook.
func (e *Engine) between(ctx context.Context, hook types.Hook, op Operation) error {
	switch hook {
	case types.HookPreMerge:
		if op.Merger != nil {
			if err := op.Merger.Merge(ctx, e); err != nil {
				return errors.Wrap(err, errors.GetErrorCode(err), "merge failed")
			}
		}
		if op.Install != nil {
			return op.Install.Flush()
		}
	case types.HookPreUnmerge:
		if op.Merger != nil {
			if err := op.Merger.Unmerge(ctx, e); err != nil {
				return errors.Wrap(err, errors.GetErrorCode(err), "unmerge failed")
			}
		}
		if op.Uninstall != nil {
			if sameBacking(op.Install, op.Uninstall) {
				e.logger.Debug().
					Str("record", op.Uninstall.Backing().String()).
					Msg("record rewritten by this transaction, not deleted")
				return nil
			}
			return op.Uninstall.Delete()
		}
	}
	return nil
}

// sameBacking reports whether both records persist to the same place, as
// in a reinstall of the same version.
func sameBacking(a, b *contents.Record) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Backing().String() == b.Backing().String()
}
