package commands

import (
	"fmt"
	"os"

	"github.com/arthur-debert/pkgmerge/internal/version"
	"github.com/arthur-debert/pkgmerge/pkg/config"
	"github.com/arthur-debert/pkgmerge/pkg/filesystem"
	"github.com/arthur-debert/pkgmerge/pkg/logging"
	"github.com/arthur-debert/pkgmerge/pkg/paths"
	"github.com/arthur-debert/pkgmerge/pkg/spawn"
	"github.com/arthur-debert/pkgmerge/pkg/style"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	verbosity  int
	configFile string
	root       string
	format     string

	cfg    *config.Config
	paths  paths.Paths
	fsys   filesystem.FS
	runner spawn.Runner
}

// outputFormat resolves --format for stdout.
func (a *app) outputFormat() (style.Format, error) {
	f, err := style.ParseFormat(a.format)
	if err != nil {
		return f, err
	}
	return style.Resolve(f, os.Stdout), nil
}

func (a *app) renderer() style.Renderer {
	f, err := a.outputFormat()
	if err != nil || f.Structured() {
		return style.NewPlainRenderer()
	}
	return style.NewRenderer(f)
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{fsys: filesystem.NewOS(), runner: spawn.NewExecRunner()})
}

func newRootCmd(a *app) *cobra.Command {
	initTemplateFormatting()

	rootCmd := &cobra.Command{
		Use:     "pkgmerge",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			p, err := paths.New(a.root)
			if err != nil {
				return err
			}
			cfg, err := config.Load(config.Options{File: a.configFile, Paths: p})
			if err != nil {
				return err
			}
			a.paths, a.cfg = p, cfg
			logging.SetupLogger(a.verbosity + cfg.Logging.Verbosity)
			log.Debug().Str("command", cmd.Name()).Str("root", p.Root()).Msg("Command started")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", MsgFlagConfig)
	rootCmd.PersistentFlags().StringVarP(&a.root, "root", "r", "", MsgFlagRoot)
	rootCmd.PersistentFlags().StringVarP(&a.format, "format", "f", "auto", MsgFlagFormat)

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "Commands:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "Misc:"})
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newContentsCmd(a))
	rootCmd.AddCommand(newTriggersCmd(a))
	rootCmd.AddCommand(newRunCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// PrintError writes err to the command's error stream.
func PrintError(cmd *cobra.Command, err error) {
	r := style.NewRenderer(style.DetectFormat(os.Stderr))
	fmt.Fprintln(cmd.ErrOrStderr(), r.RenderError(err))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:              "version",
		Short:            MsgVersionShort,
		GroupID:          "misc",
		Args:             cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, version.Version, version.Commit, version.Date)
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		PersistentPreRun:      func(cmd *cobra.Command, args []string) {},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}
