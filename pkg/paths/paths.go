package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/packweaver/pkg/config"
	"github.com/arthur-debert/packweaver/pkg/errors"
)

// EnvHome is the standard home directory variable
const EnvHome = "HOME"

// Paths provides centralized path management for exports
type Paths interface {
	ContentRoot() string
	WorkDir() string
	ContentTypeRoot(contentType string) (string, error)
	TreePath(packName string) string
	SubTreePath(packName, subTree string) string
	ArchivePath(packName, extension string) string
	NormalizePath(path string) (string, error)
	IsInWorkDir(path string) (bool, error)
}

type paths struct {
	settings    *config.Settings
	contentRoot string
	workDir     string
}

// New creates a Paths instance from loaded settings
func New(settings *config.Settings) (Paths, error) {
	p := &paths{settings: settings}

	root, err := p.NormalizePath(settings.ContentRoot)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigInvalid, "invalid content root")
	}
	p.contentRoot = root

	workDir, err := p.NormalizePath(settings.WorkDir)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigInvalid, "invalid work directory")
	}
	p.workDir = workDir

	return p, nil
}

// expandHome expands ~ to the home directory
func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}

	// ~user is left alone
	return path
}

func (p *paths) ContentRoot() string {
	return p.contentRoot
}

func (p *paths) WorkDir() string {
	return p.workDir
}

// ContentTypeRoot returns the directory holding the bundle of contentType
func (p *paths) ContentTypeRoot(contentType string) (string, error) {
	ct, err := p.settings.ContentType(contentType)
	if err != nil {
		return "", err
	}
	ct.Root = expandHome(ct.Root)
	return filepath.Clean(p.settings.ContentTypeRoot(ct)), nil
}

// TreePath is the directory an export named packName is assembled in
func (p *paths) TreePath(packName string) string {
	return filepath.Join(p.workDir, packName)
}

// SubTreePath is one sub-tree of a dual-tree export. An empty subTree
// returns the tree itself.
func (p *paths) SubTreePath(packName, subTree string) string {
	if subTree == "" {
		return p.TreePath(packName)
	}
	return filepath.Join(p.TreePath(packName), subTree)
}

// ArchivePath is where the archive of packName is written
func (p *paths) ArchivePath(packName, extension string) string {
	return filepath.Join(p.workDir, packName+"."+strings.TrimPrefix(extension, "."))
}

// NormalizePath expands home, makes path absolute and cleans it
func (p *paths) NormalizePath(path string) (string, error) {
	if path == "" {
		return "", errors.New(errors.ErrConfigInvalid, "empty path")
	}

	abs, err := filepath.Abs(expandHome(path))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path")
	}
	return filepath.Clean(abs), nil
}

// IsInWorkDir checks if a path is within the work directory
func (p *paths) IsInWorkDir(path string) (bool, error) {
	normalized, err := p.NormalizePath(path)
	if err != nil {
		return false, err
	}
	return ContainsPath(p.workDir, normalized), nil
}
