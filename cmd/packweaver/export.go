package packweaver

import (
	"fmt"
	"io"

	"github.com/arthur-debert/packweaver/pkg/export"
	"github.com/arthur-debert/packweaver/pkg/paths"
	"github.com/arthur-debert/packweaver/pkg/types"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

type selectionFlags struct {
	contentType string
	selection   string
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.contentType, "type", "t", "", MsgFlagType)
	cmd.Flags().StringVarP(&f.selection, "selection", "s", "", MsgFlagSelection)
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("selection")
}

// readSelection reads the selection document from a file or, for "-",
// from the command's input
func readSelection(cmd *cobra.Command, fs afero.Fs, source string) (types.Selection, error) {
	var (
		data []byte
		err  error
	)
	if source == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = afero.ReadFile(fs, source)
	}
	if err != nil {
		return types.Selection{}, fmt.Errorf(MsgErrReadSelection, err)
	}
	return types.ParseSelection(data)
}

func newExportCmd(a *app) *cobra.Command {
	var (
		sel           selectionFlags
		name          string
		engineVersion string
		noArchive     bool
	)

	cmd := &cobra.Command{
		Use:     "export",
		Short:   MsgExportShort,
		Long:    MsgExportLong,
		Example: MsgExportExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			packName := paths.SanitizePackName(name)
			if packName == "" {
				return fmt.Errorf(MsgErrEmptyName, name)
			}
			if packName != name {
				fmt.Fprintf(cmd.ErrOrStderr(), MsgSanitizedName, name, packName)
			}

			selection, err := readSelection(cmd, a.fs, sel.selection)
			if err != nil {
				return err
			}

			exporter, _, err := a.exporter()
			if err != nil {
				return err
			}

			log.Info().
				Str("type", sel.contentType).
				Str("pack", packName).
				Msg("Exporting pack")

			res, err := exporter.Export(cmd.Context(), export.Request{
				ContentType:   sel.contentType,
				PackName:      packName,
				EngineVersion: engineVersion,
				Selection:     selection,
				SkipArchive:   noArchive,
			})
			if err != nil {
				return err
			}

			if a.format.IsStructured() {
				return writeStructured(cmd.OutOrStdout(), a.format, newExportView(res))
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.renderer().RenderExport(res))
			return nil
		},
	}

	sel.register(cmd)
	cmd.Flags().StringVarP(&name, "name", "n", "", MsgFlagName)
	cmd.Flags().StringVar(&engineVersion, "mc-version", "", MsgFlagEngineVersion)
	cmd.Flags().BoolVar(&noArchive, "no-archive", false, MsgFlagNoArchive)
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newPlanCmd(a *app) *cobra.Command {
	var sel selectionFlags

	cmd := &cobra.Command{
		Use:     "plan",
		Short:   MsgPlanShort,
		Long:    MsgPlanLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			selection, err := readSelection(cmd, a.fs, sel.selection)
			if err != nil {
				return err
			}

			exporter, _, err := a.exporter()
			if err != nil {
				return err
			}

			contributions, err := exporter.Plan(export.Request{
				ContentType: sel.contentType,
				Selection:   selection,
			})
			if err != nil {
				return err
			}

			if a.format.IsStructured() {
				if contributions == nil {
					contributions = []types.Contribution{}
				}
				return writeStructured(cmd.OutOrStdout(), a.format, contributions)
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.renderer().RenderPlan(contributions))
			return nil
		},
	}

	sel.register(cmd)
	return cmd
}
