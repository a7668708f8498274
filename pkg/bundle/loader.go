package bundle

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/arthur-debert/packweaver/pkg/errors"
	"github.com/arthur-debert/packweaver/pkg/filesystem"
	"github.com/arthur-debert/packweaver/pkg/logging"
	"github.com/arthur-debert/packweaver/pkg/types"
	"github.com/spf13/afero"
)

// Paths of the bundle files relative to the content family root
const (
	CategoryMapFile     = "jsons/map/name_to_json.json"
	PriorityFile        = "jsons/map/priority.json"
	CompatibilityFile   = "jsons/map/compatibility.json"
	CompatibilityDefs   = "jsons/packs/compatibilities.json"
	CategoryDir         = "jsons/packs"
	TemplateDir         = "jsons"
	IconFile            = "pack_icons/pack_icon.png"
	maxSimultaneousKey  = "max_simultaneous"
	compatibilitySuffix = "way"
)

type categoryFile struct {
	Topic    string `json:"topic"`
	Location string `json:"location"`
	Packs    []struct {
		PackID string `json:"pack_id"`
	} `json:"packs"`
}

type groupDef struct {
	Location  string `json:"location"`
	Overwrite bool   `json:"overwrite"`
}

// Load reads and validates the bundle of contentType rooted at root.
// subTrees names the sub-trees of a dual-tree content type; nil loads the
// single template.
func Load(fs afero.Fs, contentType, root string, subTrees []string) (*types.Bundle, error) {
	logger := logging.GetLogger("bundle")
	done := logging.LogOperationStart(logger, "load bundle "+contentType)
	defer done()

	b := &types.Bundle{
		ContentType:   contentType,
		Root:          root,
		Categories:    make(map[string]types.CategoryDefinition),
		Compatibility: make(map[int][]types.CompatibilityGroup),
		Templates:     make(map[string]types.Manifest),
		IconPath:      filepath.Join(root, IconFile),
	}

	if err := readConfig(fs, root, PriorityFile, &b.Priorities); err != nil {
		return nil, err
	}
	if b.Priorities == nil {
		b.Priorities = make(map[string]int)
	}

	if err := loadCategories(fs, b); err != nil {
		return nil, err
	}
	if err := loadCompatibility(fs, b); err != nil {
		return nil, err
	}
	if err := loadTemplates(fs, b, subTrees); err != nil {
		return nil, err
	}

	if err := Validate(b); err != nil {
		return nil, err
	}

	logger.Debug().
		Str("contentType", contentType).
		Int("categories", len(b.Categories)).
		Int("identifiers", len(b.Priorities)).
		Msg("Bundle loaded")
	return b, nil
}

func loadCategories(fs afero.Fs, b *types.Bundle) error {
	var files map[string]string
	if err := readConfig(fs, b.Root, CategoryMapFile, &files); err != nil {
		return err
	}

	for label, name := range files {
		var cf categoryFile
		if err := readConfig(fs, b.Root, filepath.Join(CategoryDir, name), &cf); err != nil {
			return err
		}

		location := cf.Location
		if location == "" {
			location = strings.ToLower(cf.Topic)
		}
		if location == "" {
			return errors.Newf(errors.ErrConfigInvalid, "category %q has neither location nor topic", label).
				WithDetail("file", name)
		}

		def := types.CategoryDefinition{Label: label, Location: location}
		if cf.Packs != nil {
			def.Priorities = make(map[string]int, len(cf.Packs))
			for _, p := range cf.Packs {
				w, ok := b.Priorities[p.PackID]
				if !ok {
					return errors.Newf(errors.ErrPriorityNotFound, "identifier %q of category %q has no priority", p.PackID, label)
				}
				def.Priorities[p.PackID] = w
			}
		}
		b.Categories[label] = def
	}
	return nil
}

func loadCompatibility(fs afero.Fs, b *types.Bundle) error {
	var members map[string][][]string
	if err := readConfig(fs, b.Root, CompatibilityFile, &members); err != nil {
		return err
	}

	var rawDefs map[string]interface{}
	if err := readConfig(fs, b.Root, CompatibilityDefs, &rawDefs); err != nil {
		return err
	}

	maxArity := -1
	if v, ok := rawDefs[maxSimultaneousKey]; ok {
		n, err := strconv.Atoi(fmt.Sprint(v))
		if err != nil {
			return errors.Wrapf(err, errors.ErrConfigInvalid, "%s must be an integer", maxSimultaneousKey)
		}
		maxArity = n
	}

	for key, tuples := range members {
		arity, err := parseArity(key)
		if err != nil {
			return err
		}
		if maxArity >= 0 && arity > maxArity {
			logger := logging.GetLogger("bundle")
			logger.Warn().
				Str("contentType", b.ContentType).
				Int("arity", arity).
				Int("max", maxArity).
				Msg("Ignoring compatibility groups above max_simultaneous")
			continue
		}

		var defs []groupDef
		if raw, ok := rawDefs[key]; ok {
			if err := remarshal(raw, &defs); err != nil {
				return errors.Wrapf(err, errors.ErrConfigParse, "compatibility definitions %q", key)
			}
		}
		if len(defs) != len(tuples) {
			return errors.Newf(errors.ErrConfigInvalid, "compatibility %q lists %d groups but defines %d", key, len(tuples), len(defs))
		}

		groups := make([]types.CompatibilityGroup, len(tuples))
		for i, tuple := range tuples {
			groups[i] = types.CompatibilityGroup{
				Arity:     arity,
				Members:   tuple,
				Location:  defs[i].Location,
				Overwrite: defs[i].Overwrite,
			}
		}
		b.Compatibility[arity] = groups
	}
	return nil
}

func loadTemplates(fs afero.Fs, b *types.Bundle, subTrees []string) error {
	if len(subTrees) == 0 {
		var m types.Manifest
		if err := readConfig(fs, b.Root, filepath.Join(TemplateDir, types.ManifestFileName), &m); err != nil {
			return err
		}
		b.Templates[""] = m
		return nil
	}
	for _, sub := range subTrees {
		var m types.Manifest
		if err := readConfig(fs, b.Root, filepath.Join(TemplateDir, sub+types.ManifestFileName), &m); err != nil {
			return err
		}
		b.Templates[sub] = m
	}
	return nil
}

func parseArity(key string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSuffix(key, compatibilitySuffix))
	if err != nil || !strings.HasSuffix(key, compatibilitySuffix) || n < 2 {
		return 0, errors.Newf(errors.ErrConfigInvalid, "invalid compatibility arity key %q", key)
	}
	return n, nil
}

// readConfig reads a bundle file; any failure is a configuration error.
func readConfig(fs afero.Fs, root, rel string, v interface{}) error {
	p := filepath.Join(root, rel)
	if err := filesystem.ReadJSON(fs, p, v); err != nil {
		code := errors.ErrConfigLoad
		if errors.IsErrorCode(err, errors.ErrFileMalformed) {
			code = errors.ErrConfigParse
		}
		return errors.Wrapf(err, code, "bundle file %s", rel)
	}
	return nil
}

// Arities returns the configured arities, largest first
func Arities(b *types.Bundle) []int {
	arities := make([]int, 0, len(b.Compatibility))
	for n := range b.Compatibility {
		arities = append(arities, n)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(arities)))
	return arities
}
