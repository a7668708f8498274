package manifest

import (
	"path"
	"path/filepath"

	"github.com/arthur-debert/packweaver/pkg/config"
	"github.com/arthur-debert/packweaver/pkg/errors"
	"github.com/arthur-debert/packweaver/pkg/filesystem"
	"github.com/arthur-debert/packweaver/pkg/logging"
	"github.com/arthur-debert/packweaver/pkg/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Files written into every sub-tree
const (
	IconFileName      = "pack_icon.png"
	SelectionFileName = "selected_packs.json"
)

// Request carries the caller supplied values a manifest is built from
type Request struct {
	PackName      string
	EngineVersion string
	Selection     types.Selection
}

// Tree is one scaffolded sub-tree
type Tree struct {
	// SubTree is empty for single-tree content types.
	SubTree  string
	Dir      string
	Manifest types.Manifest
}

// Scaffold is the result of scaffolding an export tree
type Scaffold struct {
	Root  string
	Trees []Tree
}

// Dual reports whether the tree has a primary and a companion sub-tree
func (s *Scaffold) Dual() bool {
	return len(s.Trees) == 2
}

// Registered returns the tree-relative paths written by Scaffold that no
// contribution may replace.
func (s *Scaffold) Registered() []string {
	var out []string
	for _, t := range s.Trees {
		out = append(out,
			path.Join(t.SubTree, types.ManifestFileName),
			path.Join(t.SubTree, IconFileName),
			path.Join(t.SubTree, SelectionFileName),
		)
	}
	return out
}

// Assembler builds manifests for export trees
type Assembler struct {
	fs     afero.Fs
	engine config.EngineSettings
	logger zerolog.Logger
	newID  func() string
}

// NewAssembler returns an Assembler writing through fs
func NewAssembler(fs afero.Fs, engine config.EngineSettings) *Assembler {
	return &Assembler{
		fs:     fs,
		engine: engine,
		logger: logging.GetLogger("manifest"),
		newID:  uuid.NewString,
	}
}

// Scaffold writes the manifest, icon and selection of every sub-tree of
// root. subTrees is empty for single-tree content types.
func (a *Assembler) Scaffold(b *types.Bundle, subTrees []string, root string, req Request) (*Scaffold, error) {
	minEngine, ok := ParseEngineVersion(req.EngineVersion, a.engine.DefaultEngineVersion)
	if ok {
		a.logger.Debug().Ints("min_engine_version", minEngine).Msg("Engine version set")
	} else {
		a.logger.Warn().
			Str("version", req.EngineVersion).
			Ints("fallback", minEngine).
			Msg("Invalid engine version, using default")
	}
	description := Describe(req.Selection)

	names := subTrees
	if len(names) == 0 {
		names = []string{""}
	}

	s := &Scaffold{Root: root}
	for _, sub := range names {
		tmpl, ok := b.Templates[sub]
		if !ok {
			return nil, errors.Newf(errors.ErrConfigInvalid, "bundle %s has no manifest template for %q", b.ContentType, sub)
		}

		m := tmpl.Clone()
		header := m.Header()
		if header == nil {
			return nil, errors.Newf(errors.ErrConfigInvalid, "manifest template %q has no header object", sub)
		}
		module := m.FirstModule()
		if module == nil {
			return nil, errors.Newf(errors.ErrConfigInvalid, "manifest template %q has no modules", sub)
		}
		engine := make([]interface{}, len(minEngine))
		for i, v := range minEngine {
			engine[i] = v
		}
		header["name"] = req.PackName
		header["description"] = description
		header["min_engine_version"] = engine
		header["uuid"] = a.newID()
		module["uuid"] = a.newID()

		dir := root
		if sub != "" {
			dir = filepath.Join(root, sub)
		}
		if err := a.persist(b, dir, m, req.Selection); err != nil {
			return nil, err
		}

		a.logger.Info().
			Str("tree", dir).
			Str("uuid", m.UUID()).
			Msg("Manifest scaffolded")
		s.Trees = append(s.Trees, Tree{SubTree: sub, Dir: dir, Manifest: m})
	}
	return s, nil
}

func (a *Assembler) persist(b *types.Bundle, dir string, m types.Manifest, sel types.Selection) error {
	if err := filesystem.MkdirAll(a.fs, dir); err != nil {
		return err
	}
	if err := filesystem.WriteJSON(a.fs, filepath.Join(dir, types.ManifestFileName), m); err != nil {
		return err
	}
	if err := filesystem.CopyFile(a.fs, b.IconPath, filepath.Join(dir, IconFileName)); err != nil {
		return err
	}
	return filesystem.WriteJSON(a.fs, filepath.Join(dir, SelectionFileName), sel)
}

// Finish decides the output format once merging is done. A companion
// sub-tree holding more entries than the configured threshold is kept and
// both manifests are linked to each other; otherwise it is removed.
func (a *Assembler) Finish(s *Scaffold) (types.OutputFormat, error) {
	if !s.Dual() {
		return types.FormatSingle, nil
	}

	primary, companion := s.Trees[0], s.Trees[1]
	count, err := filesystem.CountEntries(a.fs, companion.Dir)
	if err != nil {
		return "", err
	}

	logger := a.logger.With().
		Str("companion", companion.SubTree).
		Int("entries", count).
		Int("threshold", a.engine.CompanionThreshold).
		Logger()

	if count <= a.engine.CompanionThreshold {
		if err := a.fs.RemoveAll(companion.Dir); err != nil {
			return "", errors.Wrapf(err, errors.ErrFileWrite, "cannot remove %s", companion.Dir)
		}
		s.Trees = s.Trees[:1]
		logger.Info().Msg("Companion sub-tree discarded")
		return types.FormatSingle, nil
	}

	if err := a.link(primary, companion); err != nil {
		return "", err
	}
	logger.Info().Msg("Companion sub-tree linked")
	return types.FormatCombined, nil
}

// link adds each manifest's header uuid to the other's dependencies. The
// manifests are reread since merging may have extended them.
func (a *Assembler) link(first, second Tree) error {
	firstPath := filepath.Join(first.Dir, types.ManifestFileName)
	secondPath := filepath.Join(second.Dir, types.ManifestFileName)

	var firstDoc, secondDoc map[string]interface{}
	if err := filesystem.ReadJSON(a.fs, firstPath, &firstDoc); err != nil {
		return err
	}
	if err := filesystem.ReadJSON(a.fs, secondPath, &secondDoc); err != nil {
		return err
	}

	firstID, err := headerUUID(firstDoc, firstPath)
	if err != nil {
		return err
	}
	secondID, err := headerUUID(secondDoc, secondPath)
	if err != nil {
		return err
	}

	if err := a.addDependency(firstDoc, secondID, firstPath); err != nil {
		return err
	}
	if err := a.addDependency(secondDoc, firstID, secondPath); err != nil {
		return err
	}

	if err := filesystem.WriteJSON(a.fs, firstPath, firstDoc); err != nil {
		return err
	}
	return filesystem.WriteJSON(a.fs, secondPath, secondDoc)
}

func (a *Assembler) addDependency(doc map[string]interface{}, id, p string) error {
	var deps []interface{}
	switch v := doc["dependencies"].(type) {
	case nil:
	case []interface{}:
		deps = v
	default:
		return errors.Newf(errors.ErrFileMalformed, "dependencies in %s must be a list", p)
	}

	version := make([]interface{}, len(a.engine.LinkVersion))
	for i, n := range a.engine.LinkVersion {
		version[i] = n
	}
	doc["dependencies"] = append(deps, map[string]interface{}{
		"uuid":    id,
		"version": version,
	})
	return nil
}

func headerUUID(doc map[string]interface{}, p string) (string, error) {
	header, _ := doc["header"].(map[string]interface{})
	id, _ := header["uuid"].(string)
	if id == "" {
		return "", errors.Newf(errors.ErrFileMalformed, "manifest %s has no header uuid", p)
	}
	return id, nil
}
