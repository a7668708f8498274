package packweaver

import (
	"fmt"
	"sort"

	"github.com/arthur-debert/packweaver/pkg/bundle"
	"github.com/arthur-debert/packweaver/pkg/errors"
	"github.com/arthur-debert/packweaver/pkg/style"
	"github.com/spf13/cobra"
)

// bundleView is the structured form of a bundle description
type bundleView struct {
	ContentType string             `json:"content_type" yaml:"content_type"`
	Root        string             `json:"root" yaml:"root"`
	Categories  map[string]string  `json:"categories" yaml:"categories"`
	Groups      map[int][][]string `json:"groups" yaml:"groups"`
	Templates   []string           `json:"templates" yaml:"templates"`
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "validate [types...]",
		Short:   MsgValidateShort,
		Long:    MsgValidateLong,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.settings()
			if err != nil {
				return err
			}
			store, err := bundle.NewStore(a.fs, s)
			if err != nil {
				return err
			}

			names := args
			if len(names) == 0 {
				names = s.ContentTypeNames()
			}

			results := make([]style.Validation, 0, len(names))
			failed := 0
			for _, name := range names {
				v := style.Validation{ContentType: name}
				b, err := store.Get(name)
				if err != nil {
					v.Err = err
					failed++
				} else {
					v.Categories = len(b.Categories)
					for _, groups := range b.Compatibility {
						v.Groups += len(groups)
					}
				}
				results = append(results, v)
			}

			fmt.Fprintln(cmd.OutOrStdout(), a.renderer().RenderValidations(results))
			if failed > 0 {
				return errors.Newf(errors.ErrConfigInvalid, MsgErrValidation, failed, len(names))
			}
			return nil
		},
	}
}

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "inspect <type>",
		Short:   MsgInspectShort,
		GroupID: "core",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.settings()
			if err != nil {
				return err
			}
			store, err := bundle.NewStore(a.fs, s)
			if err != nil {
				return err
			}
			b, err := store.Get(args[0])
			if err != nil {
				return err
			}

			if a.format.IsStructured() {
				view := bundleView{
					ContentType: b.ContentType,
					Root:        b.Root,
					Categories:  make(map[string]string, len(b.Categories)),
					Groups:      make(map[int][][]string, len(b.Compatibility)),
				}
				for label, c := range b.Categories {
					view.Categories[label] = c.Location
				}
				for arity, groups := range b.Compatibility {
					for _, g := range groups {
						view.Groups[arity] = append(view.Groups[arity], g.Members)
					}
				}
				for sub := range b.Templates {
					view.Templates = append(view.Templates, sub)
				}
				sort.Strings(view.Templates)
				return writeStructured(cmd.OutOrStdout(), a.format, view)
			}

			fmt.Fprint(cmd.OutOrStdout(), style.RenderMarkdown(bundle.Report(b), a.format, 100))
			return nil
		},
	}
}
