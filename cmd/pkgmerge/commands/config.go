package commands

import (
	"fmt"

	"github.com/arthur-debert/pkgmerge/pkg/config"
	"github.com/arthur-debert/pkgmerge/pkg/errors"
	"github.com/arthur-debert/pkgmerge/pkg/style"
	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		GroupID: "misc",
	}
	var defaults bool
	show := &cobra.Command{
		Use:   "show",
		Short: MsgConfigShowShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if defaults {
				fmt.Fprint(cmd.OutOrStdout(), config.DefaultsContent())
				return nil
			}
			f, err := a.outputFormat()
			if err != nil {
				return err
			}
			if !f.Structured() {
				f = style.FormatTOML
			}
			data, err := encodeDoc(f, a.cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	show.Flags().BoolVar(&defaults, "defaults", false, MsgFlagDefaults)
	cmd.AddCommand(show)
	return cmd
}

func encodeDoc(f style.Format, v interface{}) ([]byte, error) {
	if !f.Structured() {
		return nil, errors.Newf(errors.ErrInvalidInput, MsgErrNoFormat, f)
	}
	return style.Encode(f, v)
}
