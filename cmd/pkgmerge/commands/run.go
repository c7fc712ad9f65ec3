package commands

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/pkgmerge/pkg/contents"
	"github.com/arthur-debert/pkgmerge/pkg/engine"
	"github.com/arthur-debert/pkgmerge/pkg/errors"
	"github.com/arthur-debert/pkgmerge/pkg/logging"
	"github.com/arthur-debert/pkgmerge/pkg/triggers"
	"github.com/arthur-debert/pkgmerge/pkg/types"
	"github.com/spf13/cobra"
)

type runOptions struct {
	install   string
	image     string
	uninstall string
	triggers  []string
	save      bool
}

func newRunCmd(a *app) *cobra.Command {
	var opts runOptions
	modes := make([]string, len(types.Modes))
	for i, m := range types.Modes {
		modes[i] = string(m)
	}

	cmd := &cobra.Command{
		Use:       "run MODE",
		Short:     MsgRunShort,
		Long:      MsgRunLong,
		GroupID:   "core",
		ValidArgs: modes,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := types.ParseMode(args[0])
			if err != nil {
				return err
			}
			return a.run(cmd, mode, opts)
		},
	}
	cmd.Flags().StringVar(&opts.install, "install", "", MsgFlagInstall)
	cmd.Flags().StringVar(&opts.image, "image", "", MsgFlagImage)
	cmd.Flags().StringVar(&opts.uninstall, "uninstall", "", MsgFlagUninst)
	cmd.Flags().StringSliceVarP(&opts.triggers, "trigger", "t", nil, MsgFlagTriggers)
	cmd.Flags().BoolVar(&opts.save, "save", false, MsgFlagSave)
	return cmd
}

func (a *app) run(cmd *cobra.Command, mode types.Mode, opts runOptions) error {
	logger := logging.GetLogger("cmd.run")
	r := a.renderer()

	op, csets, err := a.buildOperation(opts)
	if err != nil {
		return err
	}

	observer := types.ObserverFunc(func(m string) {
		fmt.Fprintln(cmd.ErrOrStderr(), r.RenderWarnings([]string{m}))
	})
	e, err := engine.New(mode,
		engine.WithOffset(a.paths.Root()),
		engine.WithCsets(csets),
		engine.WithObserver(observer))
	if err != nil {
		return err
	}

	names := opts.triggers
	if names == nil {
		names = a.cfg.Triggers.Enabled
	}
	ts, err := triggers.BuildAll(names, a.cfg.TriggerSettings(), triggers.Deps{FS: a.fsys, Runner: a.runner})
	if err != nil {
		return err
	}
	if err := e.Register(ts...); err != nil {
		return err
	}
	logger.Info().Str("mode", string(mode)).Strs("triggers", names).Int("registrations", e.Registrations()).Msg("engine ready")

	res, err := e.Run(cmd.Context(), op)
	if err != nil {
		return err
	}
	phases := make([]string, len(res.Phases))
	for i, p := range res.Phases {
		phases[i] = string(p)
	}
	fmt.Fprintf(cmd.OutOrStdout(), MsgPhasesFormat, res.Mode, strings.Join(phases, " -> "))
	return nil
}

// buildOperation loads the content sets named by the flags. Records are
// only persisted with --save.
func (a *app) buildOperation(opts runOptions) (engine.Operation, types.Csets, error) {
	var op engine.Operation
	csets := types.Csets{}

	if opts.install != "" && opts.image != "" && !opts.save {
		return op, nil, errors.New(errors.ErrInvalidInput, MsgErrBothSets)
	}
	if opts.image != "" && opts.save && opts.install == "" {
		return op, nil, errors.New(errors.ErrInvalidInput, MsgErrNeedImage)
	}

	switch {
	case opts.image != "":
		set, err := contents.Scan(a.fsys, opts.image, a.cfg.ScanOptions(opts.image))
		if err != nil {
			return op, nil, err
		}
		csets[types.CsetInstall] = set
		if opts.save {
			rec := contents.NewRecord(contents.FileBacking(a.fsys, opts.install))
			if err := rec.Update(set.Entries()...); err != nil {
				return op, nil, err
			}
			op.Install = rec
		}
	case opts.install != "":
		rec, err := a.loadRecord(opts.install)
		if err != nil {
			return op, nil, err
		}
		csets[types.CsetInstall] = rec.Set
		if opts.save {
			op.Install = rec
		}
	}

	if opts.uninstall != "" {
		rec, err := a.loadRecord(opts.uninstall)
		if err != nil {
			return op, nil, err
		}
		csets[types.CsetUninstall] = rec.Set
		if opts.save {
			op.Uninstall = rec
		}
	}
	return op, csets, nil
}
