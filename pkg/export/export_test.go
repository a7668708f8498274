package export

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/arthur-debert/packweaver/pkg/archive"
	"github.com/arthur-debert/packweaver/pkg/config"
	"github.com/arthur-debert/packweaver/pkg/errors"
	"github.com/arthur-debert/packweaver/pkg/testutil"
	"github.com/arthur-debert/packweaver/pkg/types"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	resourceRoot  = "/content/resource-packs"
	behaviourRoot = "/content/behaviour-packs"
)

func testSettings() *config.Settings {
	return &config.Settings{
		ContentRoot: "/content",
		WorkDir:     "/work",
		Engine: config.EngineSettings{
			DefaultEngineVersion: []int{1, 21, 0},
			LinkVersion:          []int{1, 0, 0},
			CompanionThreshold:   3,
			BundleCacheSize:      4,
		},
		ContentTypes: map[string]config.ContentTypeSettings{
			"resource":  {Root: "resource-packs", Extension: "mcpack", CombinedExtension: "mcpack"},
			"behaviour": {
				Root:              "behaviour-packs",
				SubTrees:          []string{"bp", "rp"},
				Extension:         "mcpack",
				CombinedExtension: "mcaddon",
			},
		},
	}
}

func setupContent(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()

	testutil.WriteBundle(t, fs, resourceRoot, testutil.BundleFixture{
		Categories: map[string]testutil.CategoryFixture{
			"Aesthetic": {Topic: "Aesthetic", Packs: []string{"glowing_ores", "clear_glass"}},
			"Terrain":   {Location: "terrain"},
		},
		Priorities: map[string]int{"glowing_ores": 5, "clear_glass": 2, "short_grass": 1},
		Groups: map[int][]testutil.GroupFixture{
			2: {{Members: []string{"glowing_ores", "clear_glass"}, Location: "compatibility/2way/ores_glass", Overwrite: true}},
		},
	})
	testutil.WriteFiles(t, fs, resourceRoot+"/packs", map[string]string{
		"aesthetic/glowing_ores/files/textures/blocks/diamond_ore.png":  "ORE",
		"aesthetic/glowing_ores/files/texts/en_US.lang":                 "ores=1",
		"aesthetic/clear_glass/files/textures/blocks/glass.png":         "GLASS",
		"terrain/short_grass/files/textures/blocks/grass.png":           "GRASS",
		"terrain/short_grass/files/texts/en_US.lang":                    "grass=1",
		"compatibility/2way/ores_glass/textures/blocks/glass.png":       "GLASS+ORE",
		"compatibility/2way/ores_glass/textures/blocks/diamond_ore.png": "ORE+GLASS",
	})

	testutil.WriteBundle(t, fs, behaviourRoot, testutil.BundleFixture{
		Categories: map[string]testutil.CategoryFixture{
			"Gameplay": {Location: "gameplay"},
		},
		Priorities: map[string]int{"more_arrows": 1, "custom_mobs": 2},
		SubTrees:   []string{"bp", "rp"},
	})
	testutil.WriteFiles(t, fs, behaviourRoot+"/packs/gameplay", map[string]string{
		"more_arrows/files/bp/recipes/arrow.json":      `{"result": {"count": 16}}`,
		"custom_mobs/files/bp/entities/mob.json":       `{"entity": "mob"}`,
		"custom_mobs/files/rp/textures/entity/mob.png": "MOB",
		"custom_mobs/files/rp/entity/mob.entity.json":  `{"geometry": "mob"}`,
		"custom_mobs/files/bp/manifest.json":           `{"modules": [], "dependencies": [{"module_name": "@minecraft/server"}]}`,
	})
	return fs
}

func newExporter(t *testing.T, fs afero.Fs) *Exporter {
	t.Helper()
	e, err := New(Options{FS: fs, Settings: testSettings()})
	require.NoError(t, err)
	return e
}

func parseSelection(t *testing.T, payload string) types.Selection {
	t.Helper()
	sel, err := types.ParseSelection([]byte(payload))
	require.NoError(t, err)
	return sel
}

func readArchiveJSON(t *testing.T, fs afero.Fs, archivePath, name string) map[string]interface{} {
	t.Helper()
	data, err := archive.ReadEntry(fs, archivePath, name)
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func TestExport_SingleTree(t *testing.T) {
	fs := setupContent(t)
	e := newExporter(t, fs)

	res, err := e.Export(context.Background(), Request{
		ContentType:   "resource",
		PackName:      "MyPack",
		EngineVersion: "1.21.40",
		Selection: parseSelection(t, `{
			"Aesthetic": ["glowing_ores", "clear_glass"],
			"Terrain":   ["short_grass"],
			"raw":       ["glowing_ores", "clear_glass", "short_grass"]
		}`),
	})
	require.NoError(t, err)

	assert.Equal(t, types.StateFinalized, res.State)
	assert.Equal(t, types.FormatSingle, res.Format)
	assert.Equal(t, "/work/MyPack.mcpack", res.ArchivePath)
	assert.Empty(t, res.TreePath)
	assert.Equal(t, []types.Contribution{
		{Source: resourceRoot + "/packs/compatibility/2way/ores_glass", Priority: types.CompatibilityPriority, Group: []string{"glowing_ores", "clear_glass"}},
		{Source: resourceRoot + "/packs/terrain/short_grass/files", Priority: 1},
	}, res.Contributions)

	names, err := archive.Contents(fs, res.ArchivePath)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"manifest.json",
		"pack_icon.png",
		"selected_packs.json",
		"texts/",
		"texts/en_US.lang",
		"textures/",
		"textures/blocks/",
		"textures/blocks/diamond_ore.png",
		"textures/blocks/glass.png",
		"textures/blocks/grass.png",
	}, names)

	glass, err := archive.ReadEntry(fs, res.ArchivePath, "textures/blocks/glass.png")
	require.NoError(t, err)
	assert.Equal(t, "GLASS+ORE", string(glass))

	lang, err := archive.ReadEntry(fs, res.ArchivePath, "texts/en_US.lang")
	require.NoError(t, err)
	assert.Equal(t, "grass=1", string(lang), "overwrite group suppresses the ores default")

	m := readArchiveJSON(t, fs, res.ArchivePath, "manifest.json")
	header := m["header"].(map[string]interface{})
	assert.Equal(t, "MyPack", header["name"])
	assert.Equal(t, "Aesthetic\n\tglowing_ores\n\tclear_glass\nTerrain\n\tshort_grass", header["description"])
	assert.Equal(t, []interface{}{float64(1), float64(21), float64(40)}, header["min_engine_version"])

	exists, err := afero.DirExists(fs, "/work/MyPack")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestExport_ContributedSelectionFileIsIgnored(t *testing.T) {
	fs := setupContent(t)
	testutil.WriteFiles(t, fs, resourceRoot+"/packs/terrain/short_grass/files", map[string]string{
		"selected_packs.json": `{"Terrain": ["something_else"], "raw": ["something_else"]}`,
	})
	e := newExporter(t, fs)
	sel := parseSelection(t, `{"Terrain": ["short_grass"], "raw": ["short_grass"]}`)

	res, err := e.Export(context.Background(), Request{ContentType: "resource", PackName: "Grass", Selection: sel})
	require.NoError(t, err)

	data, err := archive.ReadEntry(fs, res.ArchivePath, "selected_packs.json")
	require.NoError(t, err)
	persisted, err := types.ParseSelection(data)
	require.NoError(t, err)
	assert.Equal(t, sel, persisted)
}

func TestExport_DualTreeSmallCompanionIsDiscarded(t *testing.T) {
	fs := setupContent(t)
	e := newExporter(t, fs)

	res, err := e.Export(context.Background(), Request{
		ContentType:   "behaviour",
		PackName:      "Arrows",
		EngineVersion: "1.21",
		Selection:     parseSelection(t, `{"Gameplay": ["more_arrows"], "raw": ["more_arrows"]}`),
	})
	require.NoError(t, err)

	assert.Equal(t, types.FormatSingle, res.Format)
	assert.Equal(t, "/work/Arrows.mcpack", res.ArchivePath)
	require.Len(t, res.Manifests, 1)

	names, err := archive.Contents(fs, res.ArchivePath)
	require.NoError(t, err)
	for _, name := range names {
		assert.False(t, strings.HasPrefix(name, "rp/"), name)
	}
	assert.Contains(t, names, "bp/recipes/arrow.json")

	bp := readArchiveJSON(t, fs, res.ArchivePath, "bp/manifest.json")
	assert.NotContains(t, bp, "dependencies")
}

func TestExport_DualTreeCompanionIsLinked(t *testing.T) {
	fs := setupContent(t)
	e := newExporter(t, fs)

	res, err := e.Export(context.Background(), Request{
		ContentType:   "behaviour",
		PackName:      "Mobs",
		EngineVersion: "1.21",
		Selection:     parseSelection(t, `{"Gameplay": ["custom_mobs", "more_arrows"], "raw": ["custom_mobs", "more_arrows"]}`),
	})
	require.NoError(t, err)

	assert.Equal(t, types.FormatCombined, res.Format)
	assert.Equal(t, "/work/Mobs.mcaddon", res.ArchivePath)
	require.Len(t, res.Manifests, 2)

	bp := readArchiveJSON(t, fs, res.ArchivePath, "bp/manifest.json")
	rp := readArchiveJSON(t, fs, res.ArchivePath, "rp/manifest.json")
	bpID := bp["header"].(map[string]interface{})["uuid"]
	rpID := rp["header"].(map[string]interface{})["uuid"]
	assert.Equal(t, res.Manifests[0].UUID(), bpID)

	bpDeps := bp["dependencies"].([]interface{})
	require.Len(t, bpDeps, 2)
	assert.Equal(t, "@minecraft/server", bpDeps[0].(map[string]interface{})["module_name"])
	assert.Equal(t, rpID, bpDeps[1].(map[string]interface{})["uuid"])

	rpDeps := rp["dependencies"].([]interface{})
	require.Len(t, rpDeps, 1)
	assert.Equal(t, bpID, rpDeps[0].(map[string]interface{})["uuid"])
}

func TestExport_SkipArchive(t *testing.T) {
	fs := setupContent(t)
	e := newExporter(t, fs)

	res, err := e.Export(context.Background(), Request{
		ContentType: "resource",
		PackName:    "Tree",
		Selection:   parseSelection(t, `{"Terrain": ["short_grass"], "raw": ["short_grass"]}`),
		SkipArchive: true,
	})
	require.NoError(t, err)

	assert.Equal(t, types.StateFinalized, res.State)
	assert.Equal(t, "/work/Tree", res.TreePath)
	assert.Empty(t, res.ArchivePath)
	assert.Equal(t, "GRASS", testutil.ReadFile(t, fs, "/work/Tree/textures/blocks/grass.png"))
	assert.Equal(t, 2, res.Stats.Copied)
	assert.Equal(t, 3, res.Stats.Directories)
}

func TestExport_StaleTreeIsCleared(t *testing.T) {
	fs := setupContent(t)
	testutil.WriteFiles(t, fs, "/work/Tree", map[string]string{"leftover.png": "OLD"})
	e := newExporter(t, fs)

	_, err := e.Export(context.Background(), Request{
		ContentType: "resource",
		PackName:    "Tree",
		Selection:   parseSelection(t, `{"Terrain": ["short_grass"], "raw": ["short_grass"]}`),
		SkipArchive: true,
	})
	require.NoError(t, err)

	exists, err := afero.Exists(fs, "/work/Tree/leftover.png")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestExport_MalformedSourceAborts(t *testing.T) {
	fs := setupContent(t)
	testutil.WriteFiles(t, fs, behaviourRoot+"/packs/gameplay", map[string]string{
		"more_arrows/files/bp/entities/mob.json": `{"entity": `,
	})
	e := newExporter(t, fs)

	res, err := e.Export(context.Background(), Request{
		ContentType: "behaviour",
		PackName:    "Broken",
		Selection:   parseSelection(t, `{"Gameplay": ["custom_mobs", "more_arrows"], "raw": ["custom_mobs", "more_arrows"]}`),
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileMalformed))
	assert.Equal(t, errors.CategoryIO, errors.CategoryOf(err))
	assert.Equal(t, types.StateAborted, res.State)

	for _, p := range []string{"/work/Broken", "/work/Broken.mcpack", "/work/Broken.mcaddon"} {
		exists, err := afero.Exists(fs, p)
		require.NoError(t, err)
		assert.False(t, exists, p)
	}

	// the service keeps working for the next request
	_, err = e.Export(context.Background(), Request{
		ContentType: "behaviour",
		PackName:    "Broken",
		Selection:   parseSelection(t, `{"Gameplay": ["custom_mobs"], "raw": ["custom_mobs"]}`),
	})
	assert.NoError(t, err)
}

func TestExport_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		code errors.ErrorCode
	}{
		{
			name: "unknown content type",
			req:  Request{ContentType: "skins", PackName: "P", Selection: types.Selection{Raw: []string{}}},
			code: errors.ErrContentTypeUnknown,
		},
		{
			name: "unknown category",
			req: Request{ContentType: "resource", PackName: "P", Selection: types.Selection{
				Categories: []types.CategorySelection{{Label: "Nope", Identifiers: []string{"x"}}},
				Raw:        []string{"x"},
			}},
			code: errors.ErrCategoryNotFound,
		},
		{
			name: "identifier without priority",
			req: Request{ContentType: "resource", PackName: "P", Selection: types.Selection{
				Categories: []types.CategorySelection{{Label: "Terrain", Identifiers: []string{"tall_grass"}}},
				Raw:        []string{"tall_grass"},
			}},
			code: errors.ErrPriorityNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := setupContent(t)
			e := newExporter(t, fs)

			res, err := e.Export(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, tt.code), err.Error())
			assert.True(t, errors.IsFatalConfig(err))
			assert.Equal(t, types.StateAborted, res.State)

			exists, err := afero.DirExists(fs, "/work/P")
			require.NoError(t, err)
			assert.False(t, exists)
		})
	}
}

func TestExport_InvalidPackName(t *testing.T) {
	e := newExporter(t, setupContent(t))

	_, err := e.Export(context.Background(), Request{
		ContentType: "resource",
		PackName:    "../escape",
		Selection:   types.Selection{Raw: []string{}},
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPackNameInvalid))
}

func TestExport_Cancelled(t *testing.T) {
	fs := setupContent(t)
	e := newExporter(t, fs)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := e.Export(ctx, Request{
		ContentType: "resource",
		PackName:    "Cancelled",
		Selection:   parseSelection(t, `{"Terrain": ["short_grass"], "raw": ["short_grass"]}`),
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCancelled))
	assert.Equal(t, types.StateAborted, res.State)
}

func TestExport_ConcurrentSameName(t *testing.T) {
	fs := setupContent(t)
	e := newExporter(t, fs)

	const n = 8
	sel := parseSelection(t, `{"Terrain": ["short_grass"], "raw": ["short_grass"]}`)
	var wg sync.WaitGroup
	errs := make([]error, n)
	results := make([]*Result, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = e.Export(context.Background(), Request{
				ContentType: "resource",
				PackName:    "Shared",
				Selection:   sel,
			})
		}(i)
	}
	wg.Wait()

	ids := make(map[string]bool)
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		ids[results[i].Manifests[0].UUID()] = true
	}
	assert.Len(t, ids, n, "every export gets fresh identifiers")

	names, err := archive.Contents(fs, "/work/Shared.mcpack")
	require.NoError(t, err)
	assert.Contains(t, names, "texts/en_US.lang")

	lang, err := archive.ReadEntry(fs, "/work/Shared.mcpack", "texts/en_US.lang")
	require.NoError(t, err)
	assert.Equal(t, "grass=1", string(lang), "serialized exports never merge into each other")
}

func TestPlan(t *testing.T) {
	fs := setupContent(t)
	e := newExporter(t, fs)

	got, err := e.Plan(Request{
		ContentType: "resource",
		Selection:   parseSelection(t, `{"Aesthetic": ["glowing_ores"], "raw": ["glowing_ores"]}`),
	})
	require.NoError(t, err)
	assert.Equal(t, []types.Contribution{
		{Source: resourceRoot + "/packs/aesthetic/glowing_ores/files", Priority: 5},
	}, got)

	exists, err := afero.DirExists(fs, "/work")
	require.NoError(t, err)
	assert.False(t, exists, "planning writes nothing")
}
