package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arthur-debert/pkgmerge/pkg/triggers"
	"github.com/arthur-debert/pkgmerge/pkg/types"
	"github.com/spf13/cobra"
)

// helperTrigger is implemented by triggers that shell out to a helper.
type helperTrigger interface {
	BinaryPath() string
}

type triggerRow struct {
	Name     string   `yaml:"name" toml:"name" json:"name"`
	Enabled  bool     `yaml:"enabled" toml:"enabled" json:"enabled"`
	Priority int      `yaml:"priority" toml:"priority" json:"priority"`
	Hooks    []string `yaml:"hooks" toml:"hooks" json:"hooks"`
	Csets    string   `yaml:"csets" toml:"csets" json:"csets"`
	Helper   string   `yaml:"helper,omitempty" toml:"helper,omitempty" json:"helper,omitempty"`
}

func newTriggersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "triggers",
		Short:   MsgTriggersShort,
		GroupID: "core",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: MsgListShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := a.triggerRows()
			if err != nil {
				return err
			}
			return a.printTriggerRows(cmd, rows)
		},
	})
	return cmd
}

func (a *app) triggerRows() ([]triggerRow, error) {
	enabled := make(map[string]bool)
	for _, name := range a.cfg.Triggers.Enabled {
		enabled[name] = true
	}
	names := triggers.Factories().List()
	built, err := triggers.BuildAll(names, a.cfg.TriggerSettings(), triggers.Deps{FS: a.fsys, Runner: a.runner})
	if err != nil {
		return nil, err
	}

	rows := make([]triggerRow, len(built))
	for i, t := range built {
		row := triggerRow{
			Name:     names[i],
			Enabled:  enabled[names[i]],
			Priority: t.Priority(),
			Csets:    t.RequiredCsets(types.HookPostMerge).String(),
		}
		for _, h := range t.Hooks() {
			row.Hooks = append(row.Hooks, string(h))
		}
		if h, ok := t.(helperTrigger); ok {
			row.Helper = h.BinaryPath()
			if row.Helper == "" {
				row.Helper = MsgHelperMissing
			}
		}
		rows[i] = row
	}
	return rows, nil
}

func (a *app) printTriggerRows(cmd *cobra.Command, rows []triggerRow) error {
	f, err := a.outputFormat()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if f.Structured() {
		data, err := encodeDoc(f, map[string]interface{}{"triggers": rows})
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}
	table := make([][]string, len(rows))
	for i, r := range rows {
		table[i] = []string{r.Name, strconv.FormatBool(r.Enabled), strconv.Itoa(r.Priority),
			strings.Join(r.Hooks, ","), r.Csets, r.Helper}
	}
	fmt.Fprintln(out, a.renderer().RenderTable(
		[]string{"NAME", "ENABLED", "PRIORITY", "HOOKS", "CSETS", "HELPER"}, table))
	return nil
}
