package config

import (
	"path/filepath"
	"sort"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/packweaver/pkg/errors"
	toml "github.com/pelletier/go-toml/v2"
)

// Settings is the effective packweaver configuration
type Settings struct {
	ContentRoot  string                         `koanf:"content_root" toml:"content_root"`
	WorkDir      string                         `koanf:"work_dir" toml:"work_dir"`
	Engine       EngineSettings                 `koanf:"engine" toml:"engine"`
	ContentTypes map[string]ContentTypeSettings `koanf:"content_types" toml:"content_types"`
}

// EngineSettings tunes manifest assembly and bundle caching
type EngineSettings struct {
	DefaultEngineVersion []int `koanf:"default_engine_version" toml:"default_engine_version"`
	LinkVersion          []int `koanf:"link_version" toml:"link_version"`
	CompanionThreshold   int   `koanf:"companion_threshold" toml:"companion_threshold"`
	BundleCacheSize      int   `koanf:"bundle_cache_size" toml:"bundle_cache_size"`
}

// ContentTypeSettings describes one content family on disk
type ContentTypeSettings struct {
	Root              string   `koanf:"root" toml:"root"`
	SubTrees          []string `koanf:"sub_trees" toml:"sub_trees,omitempty"`
	Extension         string   `koanf:"extension" toml:"extension"`
	CombinedExtension string   `koanf:"combined_extension" toml:"combined_extension,omitempty"`
}

// IsDual reports whether exports of this type have a primary and a
// companion sub-tree
func (c ContentTypeSettings) IsDual() bool {
	return len(c.SubTrees) == 2
}

// ContentType returns the settings for name
func (s *Settings) ContentType(name string) (ContentTypeSettings, error) {
	ct, ok := s.ContentTypes[name]
	if !ok {
		return ContentTypeSettings{}, errors.Newf(errors.ErrContentTypeUnknown, "unknown content type %q", name).
			WithDetail("available", s.ContentTypeNames())
	}
	return ct, nil
}

// ContentTypeNames returns configured content types sorted by name
func (s *Settings) ContentTypeNames() []string {
	names := make([]string, 0, len(s.ContentTypes))
	for name := range s.ContentTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ContentTypeRoot is the absolute directory of a content family
func (s *Settings) ContentTypeRoot(ct ContentTypeSettings) string {
	if filepath.IsAbs(ct.Root) {
		return ct.Root
	}
	return filepath.Join(s.ContentRoot, ct.Root)
}

// GenerateTOML renders the settings as a TOML document
func GenerateTOML(s *Settings) (string, error) {
	data, err := toml.Marshal(s)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to encode settings")
	}
	return string(data), nil
}

func postProcess(s *Settings) error {
	if s.ContentRoot == "" {
		s.ContentRoot = "."
	}
	root, err := filepath.Abs(s.ContentRoot)
	if err != nil {
		return errors.Wrap(err, errors.ErrConfigInvalid, "cannot resolve content root")
	}
	s.ContentRoot = root

	if s.WorkDir == "" {
		s.WorkDir = filepath.Join(xdg.CacheHome, "packweaver", "exports")
	}

	if len(s.Engine.DefaultEngineVersion) != 3 {
		return errors.New(errors.ErrConfigInvalid, "engine.default_engine_version must have 3 components")
	}
	if len(s.Engine.LinkVersion) != 3 {
		return errors.New(errors.ErrConfigInvalid, "engine.link_version must have 3 components")
	}
	if s.Engine.CompanionThreshold < 0 {
		return errors.New(errors.ErrConfigInvalid, "engine.companion_threshold must not be negative")
	}
	if s.Engine.BundleCacheSize <= 0 {
		s.Engine.BundleCacheSize = 1
	}

	for name, ct := range s.ContentTypes {
		if ct.Root == "" {
			return errors.Newf(errors.ErrConfigInvalid, "content type %q has no root", name)
		}
		if len(ct.SubTrees) != 0 && len(ct.SubTrees) != 2 {
			return errors.Newf(errors.ErrConfigInvalid, "content type %q must have zero or two sub_trees", name).
				WithDetail("sub_trees", ct.SubTrees)
		}
		if ct.IsDual() && ct.SubTrees[0] == ct.SubTrees[1] {
			return errors.Newf(errors.ErrConfigInvalid, "content type %q has identical sub_trees", name)
		}
		if ct.Extension == "" {
			ct.Extension = "mcpack"
		}
		if ct.CombinedExtension == "" {
			ct.CombinedExtension = ct.Extension
		}
		s.ContentTypes[name] = ct
	}
	return nil
}
