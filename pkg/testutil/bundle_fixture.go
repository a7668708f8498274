package testutil

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/packweaver/pkg/types"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// IconContent is what fixtures write as pack_icon.png
const IconContent = "PNG-ICON"

// CategoryFixture describes one category file
type CategoryFixture struct {
	Location string
	// Topic is used instead of Location when Location is empty.
	Topic string
	// Packs lists member identifiers; nil omits the packs array.
	Packs []string
}

// GroupFixture describes one compatibility group
type GroupFixture struct {
	Members   []string
	Location  string
	Overwrite bool
}

// BundleFixture is a content family written by WriteBundle
type BundleFixture struct {
	Categories      map[string]CategoryFixture
	Priorities      map[string]int
	Groups          map[int][]GroupFixture
	MaxSimultaneous int
	// SubTrees writes one template per sub-tree instead of a single one.
	SubTrees []string
}

// WriteBundle writes fixture under root in the on-disk bundle layout
func WriteBundle(t *testing.T, fs afero.Fs, root string, fixture BundleFixture) {
	t.Helper()

	categoryMap := make(map[string]string)
	for label, c := range fixture.Categories {
		file := fmt.Sprintf("%s.json", label)
		categoryMap[label] = file

		doc := map[string]interface{}{"topic": c.Topic}
		if c.Location != "" {
			doc["location"] = c.Location
		}
		if c.Packs != nil {
			packs := make([]map[string]string, len(c.Packs))
			for i, id := range c.Packs {
				packs[i] = map[string]string{"pack_id": id}
			}
			doc["packs"] = packs
		}
		writeJSON(t, fs, filepath.Join(root, "jsons/packs", file), doc)
	}
	writeJSON(t, fs, filepath.Join(root, "jsons/map/name_to_json.json"), categoryMap)

	priorities := fixture.Priorities
	if priorities == nil {
		priorities = map[string]int{}
	}
	writeJSON(t, fs, filepath.Join(root, "jsons/map/priority.json"), priorities)

	members := make(map[string][][]string)
	defs := map[string]interface{}{}
	maxArity := fixture.MaxSimultaneous
	for arity, groups := range fixture.Groups {
		key := fmt.Sprintf("%dway", arity)
		var tuples [][]string
		var groupDefs []map[string]interface{}
		for _, g := range groups {
			tuples = append(tuples, g.Members)
			groupDefs = append(groupDefs, map[string]interface{}{"location": g.Location, "overwrite": g.Overwrite})
		}
		members[key] = tuples
		defs[key] = groupDefs
		if fixture.MaxSimultaneous == 0 && arity > maxArity {
			maxArity = arity
		}
	}
	defs["max_simultaneous"] = maxArity
	writeJSON(t, fs, filepath.Join(root, "jsons/map/compatibility.json"), members)
	writeJSON(t, fs, filepath.Join(root, "jsons/packs/compatibilities.json"), defs)

	if len(fixture.SubTrees) == 0 {
		writeJSON(t, fs, filepath.Join(root, "jsons", types.ManifestFileName), TemplateManifest("template"))
	} else {
		for _, sub := range fixture.SubTrees {
			writeJSON(t, fs, filepath.Join(root, "jsons", sub+types.ManifestFileName), TemplateManifest(sub))
		}
	}

	WriteFiles(t, fs, root, map[string]string{"pack_icons/pack_icon.png": IconContent})
}

// TemplateManifest is the manifest template written by fixtures
func TemplateManifest(module string) types.Manifest {
	return types.Manifest{
		"format_version": 2,
		"header": map[string]interface{}{
			"name":        "template",
			"description": "template",
			"uuid":        "00000000-0000-0000-0000-000000000000",
			"version":     []interface{}{1, 0, 0},
		},
		"modules": []interface{}{
			map[string]interface{}{"type": module, "uuid": "00000000-0000-0000-0000-000000000001", "version": []interface{}{1, 0, 0}},
		},
		"metadata": map[string]interface{}{"authors": []interface{}{"packweaver"}},
	}
}

// WriteFiles writes each relative path with its content under base
func WriteFiles(t *testing.T, fs afero.Fs, base string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(base, filepath.FromSlash(rel))
		require.NoError(t, fs.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, afero.WriteFile(fs, p, []byte(content), 0644))
	}
}

// ReadFile returns the content of p
func ReadFile(t *testing.T, fs afero.Fs, p string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, p)
	require.NoError(t, err)
	return string(data)
}

// ReadJSON decodes p into a generic document
func ReadJSON(t *testing.T, fs afero.Fs, p string) map[string]interface{} {
	t.Helper()
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(ReadFile(t, fs, p)), &doc))
	return doc
}

func writeJSON(t *testing.T, fs afero.Fs, p string, v interface{}) {
	t.Helper()
	data, err := json.MarshalIndent(v, "", "    ")
	require.NoError(t, err)
	require.NoError(t, fs.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, afero.WriteFile(fs, p, data, 0644))
}
