package packweaver

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/arthur-debert/packweaver/pkg/archive"
	"github.com/arthur-debert/packweaver/pkg/errors"
	"github.com/arthur-debert/packweaver/pkg/testutil"
	"github.com/arthur-debert/packweaver/pkg/types"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const (
	contentRoot   = "/content"
	resourceRoot  = "/content/resource-packs"
	selectionPath = "/input/selection.json"
	selection     = `{"Aesthetic": ["glowing_ores"], "Terrain": ["short_grass"], "raw": ["glowing_ores", "short_grass"]}`
)

func setupContent(t *testing.T) afero.Fs {
	t.Helper()
	t.Setenv("PACKWEAVER_WORK_DIR", "/work")
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
		"aesthetic/glowing_ores/files/textures/blocks/diamond_ore.png": "ORE",
		"terrain/short_grass/files/textures/blocks/grass.png":          "GRASS",
	})
	testutil.WriteFiles(t, fs, "/input", map[string]string{"selection.json": selection})
	return fs
}

// run executes the root command over fs and returns stdout and stderr
func run(t *testing.T, fs afero.Fs, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer

	cmd := newRootCmd(fs)
	cmd.SetArgs(append([]string{"--content-root", contentRoot}, args...))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestExportCmd(t *testing.T) {
	fs := setupContent(t)

	out, _, err := run(t, fs, "", "export", "-t", "resource", "-n", "MyPack", "-s", selectionPath, "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Exported MyPack (resource, single)")
	assert.Contains(t, out, "archive: /work/MyPack.mcpack")

	names, err := archive.Contents(fs, "/work/MyPack.mcpack")
	require.NoError(t, err)
	assert.Contains(t, names, "textures/blocks/diamond_ore.png")
	assert.Contains(t, names, "textures/blocks/grass.png")
}

func TestExportCmd_SanitizesNameAndWritesJSON(t *testing.T) {
	fs := setupContent(t)

	out, errOut, err := run(t, fs, selection, "export", "-t", "resource", "-n", "My Pack!", "-s", "-", "--mc-version", "1.20.10", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, errOut, `"My Pack!" sanitized to "My_Pack"`)

	var view map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "My_Pack", view["pack_name"])
	assert.Equal(t, "finalized", view["state"])
	assert.Equal(t, "single", view["format"])
	assert.Equal(t, "/work/My_Pack.mcpack", view["archive_path"])
	assert.Len(t, view["manifest_uuids"], 1)
}

func TestExportCmd_NoArchive(t *testing.T) {
	fs := setupContent(t)

	_, _, err := run(t, fs, "", "export", "-t", "resource", "-n", "Tree", "-s", selectionPath, "--no-archive", "-o", "text")
	require.NoError(t, err)

	exists, err := afero.Exists(fs, "/work/Tree/textures/blocks/grass.png")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = afero.Exists(fs, "/work/Tree.mcpack")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestExportCmd_Errors(t *testing.T) {
	fs := setupContent(t)

	_, _, err := run(t, fs, "", "export", "-t", "resource", "-n", "!!!", "-s", selectionPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no usable characters")

	_, _, err = run(t, fs, "", "export", "-t", "resource", "-n", "P", "-s", "/input/missing.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read selection")

	_, _, err = run(t, fs, `{"Aesthetic": []}`, "export", "-t", "resource", "-n", "P", "-s", "-")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrSelectionInvalid))

	_, _, err = run(t, fs, "", "export", "-t", "skins", "-n", "P", "-s", selectionPath)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrContentTypeUnknown))

	_, _, err = run(t, fs, "", "export", "-t", "resource", "-s", selectionPath)
	require.Error(t, err, "name is required")
}

func TestPlanCmd(t *testing.T) {
	fs := setupContent(t)

	out, _, err := run(t, fs, "", "plan", "-t", "resource", "-s", selectionPath, "-o", "yaml")
	require.NoError(t, err)

	var contributions []types.Contribution
	require.NoError(t, yaml.Unmarshal([]byte(out), &contributions))
	assert.Equal(t, []types.Contribution{
		{Source: resourceRoot + "/packs/aesthetic/glowing_ores/files", Priority: 5},
		{Source: resourceRoot + "/packs/terrain/short_grass/files", Priority: 1},
	}, contributions)

	out, _, err = run(t, fs, "", "plan", "-t", "resource", "-s", selectionPath, "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "1. [5] "+resourceRoot+"/packs/aesthetic/glowing_ores/files (default)")

	exists, err := afero.DirExists(fs, "/work")
	require.NoError(t, err)
	assert.False(t, exists, "plan writes nothing")
}

func TestValidateCmd(t *testing.T) {
	fs := setupContent(t)

	out, _, err := run(t, fs, "", "validate", "resource", "-o", "text")
	require.NoError(t, err)
	assert.Equal(t, "ok   resource: 2 categories, 1 compatibility groups\n", out)

	out, _, err = run(t, fs, "", "validate", "-o", "text")
	require.Error(t, err)
	assert.True(t, errors.IsFatalConfig(err))
	assert.Contains(t, out, "FAIL behaviour")
	assert.Contains(t, out, "FAIL crafting")
	assert.Contains(t, out, "ok   resource")
}

func TestInspectCmd(t *testing.T) {
	fs := setupContent(t)

	out, _, err := run(t, fs, "", "inspect", "resource", "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "# resource")
	assert.Contains(t, out, "| Aesthetic | aesthetic | 2 |")

	out, _, err = run(t, fs, "", "inspect", "resource", "-o", "json")
	require.NoError(t, err)
	var view bundleView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "terrain", view.Categories["Terrain"])
	assert.Equal(t, [][]string{{"glowing_ores", "clear_glass"}}, view.Groups[2])
	assert.Equal(t, []string{""}, view.Templates)
}

func TestGenConfigCmd(t *testing.T) {
	out, _, err := run(t, setupContent(t), "", "genconfig")
	require.NoError(t, err)
	assert.Contains(t, out, "[content_types.resource]")
	assert.Contains(t, out, "/work")

	out, _, err = run(t, afero.NewMemMapFs(), "", "genconfig", "--defaults")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# packweaver defaults."))
	assert.Contains(t, out, "companion_threshold = 3")
}

func TestVersionCmd(t *testing.T) {
	out, _, err := run(t, afero.NewMemMapFs(), "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "packweaver dev"))
}

func TestRootCmd_InvalidOutput(t *testing.T) {
	_, _, err := run(t, afero.NewMemMapFs(), "", "version", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --output value")
}
