package packweaver

import (
	"fmt"
	"os"

	"github.com/arthur-debert/packweaver/internal/version"
	"github.com/arthur-debert/packweaver/pkg/config"
	"github.com/arthur-debert/packweaver/pkg/export"
	"github.com/arthur-debert/packweaver/pkg/filesystem"
	"github.com/arthur-debert/packweaver/pkg/logging"
	"github.com/arthur-debert/packweaver/pkg/style"
	"github.com/arthur-debert/packweaver/pkg/ui"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// app holds what every subcommand shares once flags are parsed
type app struct {
	fs          afero.Fs
	verbosity   int
	configFile  string
	contentRoot string
	output      string

	format ui.Format
}

// settings loads the effective configuration for this invocation
func (a *app) settings() (*config.Settings, error) {
	s, err := config.Load(config.LoadOptions{
		ConfigFile:  a.configFile,
		ContentRoot: a.contentRoot,
		FS:          a.fs,
	})
	if err != nil {
		return nil, fmt.Errorf(MsgErrLoadSettings, err)
	}
	return s, nil
}

// exporter builds an Exporter over the effective configuration
func (a *app) exporter() (*export.Exporter, *config.Settings, error) {
	s, err := a.settings()
	if err != nil {
		return nil, nil, err
	}
	e, err := export.New(export.Options{FS: a.fs, Settings: s})
	if err != nil {
		return nil, nil, err
	}
	return e, s, nil
}

func (a *app) renderer() style.Renderer {
	return style.NewRenderer(a.format)
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(filesystem.NewOS())
}

func newRootCmd(fs afero.Fs) *cobra.Command {
	a := &app{fs: fs}

	rootCmd := &cobra.Command{
		Use:     "packweaver",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.SetupLogger(a.verbosity)
			logging.LogCommand(cmd.CommandPath(), args)

			f, err := ui.ParseFormat(a.output)
			if err != nil {
				return fmt.Errorf(MsgErrOutputFormat, err)
			}
			a.format = ui.Resolve(f, os.Stdout)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf(MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", MsgFlagConfig)
	rootCmd.PersistentFlags().StringVarP(&a.contentRoot, "content-root", "r", "", MsgFlagContentRoot)
	rootCmd.PersistentFlags().StringVarP(&a.output, "output", "o", "auto", MsgFlagOutput)

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "COMMANDS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})

	rootCmd.AddCommand(newExportCmd(a))
	rootCmd.AddCommand(newPlanCmd(a))
	rootCmd.AddCommand(newValidateCmd(a))
	rootCmd.AddCommand(newInspectCmd(a))
	rootCmd.AddCommand(newGenConfigCmd(a))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// RenderError formats err for the terminal the way command output is
// formatted
func RenderError(err error) string {
	return style.NewRenderer(ui.Resolve(ui.FormatAuto, os.Stderr)).RenderError(err)
}
