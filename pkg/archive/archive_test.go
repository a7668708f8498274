package archive

import (
	"context"
	"os"
	"testing"

	"github.com/arthur-debert/packweaver/pkg/config"
	"github.com/arthur-debert/packweaver/pkg/errors"
	"github.com/arthur-debert/packweaver/pkg/testutil"
	"github.com/arthur-debert/packweaver/pkg/types"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtension(t *testing.T) {
	dual := config.ContentTypeSettings{Extension: "mcpack", CombinedExtension: "mcaddon"}
	single := config.ContentTypeSettings{Extension: "mcpack"}

	assert.Equal(t, "mcpack", Extension(dual, types.FormatSingle))
	assert.Equal(t, "mcaddon", Extension(dual, types.FormatCombined))
	assert.Equal(t, "mcpack", Extension(single, types.FormatCombined))
}

func TestZip_Finalize(t *testing.T) {
	fs := afero.NewMemMapFs()
	testutil.WriteFiles(t, fs, "/work/MyPack", map[string]string{
		"rp/textures/stone.png": "PNG",
		"bp/manifest.json":      `{"a": 1}`,
		"bp/pack_icon.png":      "ICON",
	})

	z := NewZip(fs)
	require.NoError(t, z.Finalize(context.Background(), "/work/MyPack", "/work/MyPack.mcaddon"))

	names, err := Contents(fs, "/work/MyPack.mcaddon")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"bp/",
		"bp/manifest.json",
		"bp/pack_icon.png",
		"rp/",
		"rp/textures/",
		"rp/textures/stone.png",
	}, names)

	data, err := ReadEntry(fs, "/work/MyPack.mcaddon", "bp/manifest.json")
	require.NoError(t, err)
	assert.Equal(t, `{"a": 1}`, string(data))

	exists, err := afero.DirExists(fs, "/work/MyPack")
	require.NoError(t, err)
	assert.False(t, exists, "tree is removed once archived")

	exists, err = afero.Exists(fs, "/work/MyPack.mcaddon.tmp")
	require.NoError(t, err)
	assert.False(t, exists)
}

type stickyFs struct {
	afero.Fs
}

func (stickyFs) RemoveAll(string) error { return os.ErrPermission }

func TestZip_FinalizeKeepsArchiveWhenTreeRemovalFails(t *testing.T) {
	fs := afero.NewMemMapFs()
	testutil.WriteFiles(t, fs, "/work/MyPack", map[string]string{"manifest.json": `{}`})

	z := NewZip(stickyFs{fs})
	require.NoError(t, z.Finalize(context.Background(), "/work/MyPack", "/work/MyPack.mcpack"))

	names, err := Contents(fs, "/work/MyPack.mcpack")
	require.NoError(t, err)
	assert.Equal(t, []string{"manifest.json"}, names)

	exists, err := afero.DirExists(fs, "/work/MyPack")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestZip_FinalizeMissingTree(t *testing.T) {
	fs := afero.NewMemMapFs()

	err := NewZip(fs).Finalize(context.Background(), "/work/missing", "/work/missing.mcpack")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileAccess))

	exists, _ := afero.Exists(fs, "/work/missing.mcpack")
	assert.False(t, exists)
}

func TestZip_FinalizeCancelled(t *testing.T) {
	fs := afero.NewMemMapFs()
	testutil.WriteFiles(t, fs, "/work/MyPack", map[string]string{"manifest.json": "{}"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewZip(fs).Finalize(ctx, "/work/MyPack", "/work/MyPack.mcpack")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCancelled))

	exists, _ := afero.Exists(fs, "/work/MyPack.mcpack")
	assert.False(t, exists)
	exists, _ = afero.DirExists(fs, "/work/MyPack")
	assert.True(t, exists, "tree is kept when archiving fails")
}

func TestReadEntry_Missing(t *testing.T) {
	fs := afero.NewMemMapFs()
	testutil.WriteFiles(t, fs, "/work/p", map[string]string{"a.txt": "a"})
	require.NoError(t, NewZip(fs).Finalize(context.Background(), "/work/p", "/work/p.mcpack"))

	_, err := ReadEntry(fs, "/work/p.mcpack", "b.txt")
	assert.Error(t, err)
}
