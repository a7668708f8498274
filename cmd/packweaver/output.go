package packweaver

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/arthur-debert/packweaver/pkg/export"
	"github.com/arthur-debert/packweaver/pkg/types"
	"github.com/arthur-debert/packweaver/pkg/ui"
	"gopkg.in/yaml.v3"
)

// exportView is the structured form of an export result
type exportView struct {
	ID            string               `json:"id" yaml:"id"`
	ContentType   string               `json:"content_type" yaml:"content_type"`
	PackName      string               `json:"pack_name" yaml:"pack_name"`
	State         string               `json:"state" yaml:"state"`
	Format        string               `json:"format" yaml:"format"`
	ArchivePath   string               `json:"archive_path,omitempty" yaml:"archive_path,omitempty"`
	TreePath      string               `json:"tree_path,omitempty" yaml:"tree_path,omitempty"`
	ManifestUUIDs []string             `json:"manifest_uuids" yaml:"manifest_uuids"`
	Contributions []types.Contribution `json:"contributions" yaml:"contributions"`
	Stats         statsView            `json:"stats" yaml:"stats"`
}

type statsView struct {
	Copied      int `json:"copied" yaml:"copied"`
	Appended    int `json:"appended" yaml:"appended"`
	Structured  int `json:"structured" yaml:"structured"`
	Manifests   int `json:"manifests" yaml:"manifests"`
	Overwritten int `json:"overwritten" yaml:"overwritten"`
	Skipped     int `json:"skipped" yaml:"skipped"`
}

func newExportView(res *export.Result) exportView {
	view := exportView{
		ID:            res.ID,
		ContentType:   res.ContentType,
		PackName:      res.PackName,
		State:         string(res.State),
		Format:        string(res.Format),
		ArchivePath:   res.ArchivePath,
		TreePath:      res.TreePath,
		ManifestUUIDs: make([]string, 0, len(res.Manifests)),
		Contributions: res.Contributions,
		Stats: statsView{
			Copied:      res.Stats.Copied,
			Appended:    res.Stats.Appended,
			Structured:  res.Stats.Structured,
			Manifests:   res.Stats.Manifests,
			Overwritten: res.Stats.Overwritten,
			Skipped:     res.Stats.Skipped,
		},
	}
	for _, m := range res.Manifests {
		view.ManifestUUIDs = append(view.ManifestUUIDs, m.UUID())
	}
	return view
}

// writeStructured encodes v as JSON or YAML
func writeStructured(w io.Writer, f ui.Format, v interface{}) error {
	switch f {
	case ui.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case ui.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("format %s is not structured", f)
	}
}
