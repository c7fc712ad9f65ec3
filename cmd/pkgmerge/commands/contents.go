package commands

import (
	"fmt"
	"os"

	"github.com/arthur-debert/pkgmerge/pkg/contents"
	"github.com/arthur-debert/pkgmerge/pkg/errors"
	"github.com/arthur-debert/pkgmerge/pkg/filesystem"
	"github.com/arthur-debert/pkgmerge/pkg/logging"
	"github.com/arthur-debert/pkgmerge/pkg/style"
	"github.com/spf13/cobra"
)

// entriesDoc is the top level of structured entry output.
type entriesDoc struct {
	Record  string            `yaml:"record" toml:"record" json:"record"`
	Entries []style.EntryView `yaml:"entries" toml:"entries" json:"entries"`
}

func newContentsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "contents",
		Short:   MsgContentsShort,
		GroupID: "core",
	}
	cmd.AddCommand(newContentsShowCmd(a))
	cmd.AddCommand(newContentsCheckCmd(a))
	cmd.AddCommand(newContentsDiffCmd(a))
	cmd.AddCommand(newContentsScanCmd(a))
	return cmd
}

// recordPath accepts either a record file or a package name such as
// app-misc/hello-1.0, looked up in the package database.
func (a *app) recordPath(arg string) string {
	if filesystem.Exists(a.fsys, arg) {
		return arg
	}
	return a.paths.RecordPath(arg)
}

func (a *app) loadRecord(arg string) (*contents.Record, error) {
	path := a.recordPath(arg)
	if !filesystem.Exists(a.fsys, path) {
		return nil, errors.Newf(errors.ErrNotFound, "no content record at %s", path).WithDetail("record", path)
	}
	return contents.LoadRecord(contents.FileBacking(a.fsys, path),
		contents.Decoder{Lookup: a.fsys, Root: a.paths.Root()})
}

// printEntries renders entries or encodes them when a structured format
// was requested.
func (a *app) printEntries(cmd *cobra.Command, record string, set *contents.Set) error {
	f, err := a.outputFormat()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if f.Structured() {
		data, err := style.Encode(f, entriesDoc{Record: record, Entries: style.Views(set.Entries())})
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}
	fmt.Fprintln(out, a.renderer().RenderEntries(set.Entries()))
	return nil
}

func newContentsShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show RECORD",
		Short: MsgShowShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := a.loadRecord(args[0])
			if err != nil {
				return err
			}
			return a.printEntries(cmd, rec.Backing().String(), rec.Set)
		},
	}
}

func newContentsCheckCmd(a *app) *cobra.Command {
	var mtime bool
	cmd := &cobra.Command{
		Use:   "check RECORD",
		Short: MsgCheckShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cmd.contents.check")
			rec, err := a.loadRecord(args[0])
			if err != nil {
				return err
			}
			problems, err := contents.Verify(cmd.Context(), rec.Set, a.fsys,
				contents.VerifyOptions{Root: a.paths.Root(), Mtime: mtime})
			if err != nil {
				return err
			}
			logger.Info().Str("record", rec.Backing().String()).Int("problems", len(problems)).Msg("record checked")
			fmt.Fprintln(cmd.OutOrStdout(), a.renderer().RenderProblems(problems))
			if len(problems) > 0 {
				return errors.Newf(errors.ErrValidation, MsgErrProblems, len(problems), rec.Backing()).
					WithDetail("problems", len(problems))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&mtime, "mtime", false, MsgFlagMtime)
	return cmd
}

func newContentsDiffCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "diff OLD NEW",
		Short: MsgDiffShort,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := a.loadRecord(args[0])
			if err != nil {
				return err
			}
			to, err := a.loadRecord(args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.renderer().RenderDiff(contents.Compare(from.Set, to.Set)))
			return nil
		},
	}
}

func newContentsScanCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "scan DIR",
		Short: MsgScanShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			if info, err := os.Stat(dir); err != nil || !info.IsDir() {
				return errors.Newf(errors.ErrInvalidInput, "%s is not a directory", dir).WithDetail("path", dir)
			}
			set, err := contents.Scan(a.fsys, dir, a.cfg.ScanOptions(dir))
			if err != nil {
				return err
			}
			if output == "" {
				return a.printEntries(cmd, dir, set)
			}
			rec := contents.NewRecord(contents.FileBacking(a.fsys, output))
			if err := rec.Update(set.Entries()...); err != nil {
				return err
			}
			if err := rec.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgWroteRecord, rec.Len(), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", MsgFlagOutput)
	return cmd
}
