package export

import (
	"context"

	"github.com/arthur-debert/packweaver/pkg/archive"
	"github.com/arthur-debert/packweaver/pkg/bundle"
	"github.com/arthur-debert/packweaver/pkg/config"
	"github.com/arthur-debert/packweaver/pkg/errors"
	"github.com/arthur-debert/packweaver/pkg/logging"
	"github.com/arthur-debert/packweaver/pkg/manifest"
	"github.com/arthur-debert/packweaver/pkg/merge"
	"github.com/arthur-debert/packweaver/pkg/paths"
	"github.com/arthur-debert/packweaver/pkg/resolver"
	"github.com/arthur-debert/packweaver/pkg/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Request is one export
type Request struct {
	ContentType string
	// PackName must already be sanitized; see paths.SanitizePackName.
	PackName      string
	EngineVersion string
	Selection     types.Selection
	// SkipArchive leaves the finished tree in place instead of archiving it.
	SkipArchive bool
}

// Result describes a finished or aborted export
type Result struct {
	ID            string
	ContentType   string
	PackName      string
	State         types.ExportState
	Format        types.OutputFormat
	TreePath      string
	ArchivePath   string
	Contributions []types.Contribution
	Manifests     []types.Manifest
	Stats         merge.Stats
}

// Options wires an Exporter
type Options struct {
	FS       afero.Fs
	Settings *config.Settings
	// Store defaults to a new store over FS.
	Store *bundle.Store
	// Finalizer defaults to a zip finalizer over FS.
	Finalizer archive.Finalizer
}

// Exporter runs exports. It is safe for concurrent use.
type Exporter struct {
	fs        afero.Fs
	settings  *config.Settings
	paths     paths.Paths
	store     *bundle.Store
	assembler *manifest.Assembler
	finalizer archive.Finalizer
	locks     *keyedMutex
	logger    zerolog.Logger
}

// New creates an Exporter
func New(opts Options) (*Exporter, error) {
	if opts.FS == nil || opts.Settings == nil {
		return nil, errors.New(errors.ErrInternal, "exporter needs a filesystem and settings")
	}

	p, err := paths.New(opts.Settings)
	if err != nil {
		return nil, err
	}

	store := opts.Store
	if store == nil {
		store, err = bundle.NewStore(opts.FS, opts.Settings)
		if err != nil {
			return nil, err
		}
	}

	finalizer := opts.Finalizer
	if finalizer == nil {
		finalizer = archive.NewZip(opts.FS)
	}

	return &Exporter{
		fs:        opts.FS,
		settings:  opts.Settings,
		paths:     p,
		store:     store,
		assembler: manifest.NewAssembler(opts.FS, opts.Settings.Engine),
		finalizer: finalizer,
		locks:     newKeyedMutex(),
		logger:    logging.GetLogger("export"),
	}, nil
}

// Paths returns the path layout exports are written to
func (e *Exporter) Paths() paths.Paths {
	return e.paths
}

// Plan resolves req without touching the work directory
func (e *Exporter) Plan(req Request) ([]types.Contribution, error) {
	b, err := e.store.Get(req.ContentType)
	if err != nil {
		return nil, err
	}
	return resolver.Resolve(req.Selection, b)
}

// Export runs req to completion. On error the returned Result is in the
// aborted state and nothing is left in the work directory for it.
func (e *Exporter) Export(ctx context.Context, req Request) (*Result, error) {
	res := &Result{
		ID:          uuid.NewString(),
		ContentType: req.ContentType,
		PackName:    req.PackName,
	}
	logger := logging.WithExport(e.logger, res.ID, req.ContentType, req.PackName)
	sm := newMachine(logger)
	res.State = sm.State()

	done := logging.LogOperationStart(logger, "export")
	defer done()

	if err := paths.ValidatePackName(req.PackName); err != nil {
		return e.abort(res, sm, "", err)
	}
	ct, err := e.settings.ContentType(req.ContentType)
	if err != nil {
		return e.abort(res, sm, "", err)
	}
	b, err := e.store.Get(req.ContentType)
	if err != nil {
		return e.abort(res, sm, "", err)
	}
	contributions, err := resolver.Resolve(req.Selection, b)
	if err != nil {
		return e.abort(res, sm, "", err)
	}
	res.Contributions = contributions

	unlock := e.locks.Lock(req.PackName)
	defer unlock()

	tree := e.paths.TreePath(req.PackName)
	res.TreePath = tree
	if err := ctx.Err(); err != nil {
		return e.abort(res, sm, "", errors.Wrap(err, errors.ErrCancelled, "export cancelled"))
	}

	// A tree left by a crashed process would be merged into otherwise.
	if err := e.fs.RemoveAll(tree); err != nil {
		return e.abort(res, sm, "", errors.Wrapf(err, errors.ErrFileWrite, "cannot clear %s", tree))
	}

	scaffold, err := e.assembler.Scaffold(b, ct.SubTrees, tree, manifest.Request{
		PackName:      req.PackName,
		EngineVersion: req.EngineVersion,
		Selection:     req.Selection,
	})
	if err != nil {
		return e.abort(res, sm, tree, err)
	}
	if err := e.step(res, sm, types.StateManifestScaffolded); err != nil {
		return e.abort(res, sm, tree, err)
	}

	if err := e.step(res, sm, types.StateMerging); err != nil {
		return e.abort(res, sm, tree, err)
	}
	merger := merge.New(e.fs, tree)
	for _, rel := range scaffold.Registered() {
		merger.Register(rel, types.ScaffoldPriority)
	}
	err = merger.ApplyAll(ctx, contributions)
	res.Stats = merger.Stats()
	if err != nil {
		return e.abort(res, sm, tree, err)
	}

	format, err := e.assembler.Finish(scaffold)
	if err != nil {
		return e.abort(res, sm, tree, err)
	}
	res.Format = format
	for _, t := range scaffold.Trees {
		res.Manifests = append(res.Manifests, t.Manifest)
	}
	if err := e.step(res, sm, types.StatePostLinkDecision); err != nil {
		return e.abort(res, sm, tree, err)
	}

	if !req.SkipArchive {
		archivePath := e.paths.ArchivePath(req.PackName, archive.Extension(ct, format))
		if err := e.finalizer.Finalize(ctx, tree, archivePath); err != nil {
			return e.abort(res, sm, tree, err)
		}
		res.ArchivePath = archivePath
		res.TreePath = ""
	}
	if err := e.step(res, sm, types.StateFinalized); err != nil {
		return e.abort(res, sm, tree, err)
	}

	logger.Info().
		Str("format", string(format)).
		Str("archive", res.ArchivePath).
		Int("contributions", len(contributions)).
		Msg("Export finished")
	return res, nil
}

func (e *Exporter) step(res *Result, sm *machine, next types.ExportState) error {
	if err := sm.advance(next); err != nil {
		return err
	}
	res.State = sm.State()
	return nil
}

// abort records err, removes tree when set and returns the aborted result
func (e *Exporter) abort(res *Result, sm *machine, tree string, cause error) (*Result, error) {
	_ = sm.advance(types.StateAborted)
	res.State = sm.State()

	logger := e.logger.With().Str("export", res.ID).Logger()
	logger.Error().
		Err(cause).
		Str("code", string(errors.GetErrorCode(cause))).
		Str("category", string(errors.CategoryOf(cause))).
		Msg("Export aborted")

	if tree != "" {
		if err := e.fs.RemoveAll(tree); err != nil {
			logger.Warn().Err(err).Str("tree", tree).Msg("Failed to remove partial tree")
		}
	}
	res.TreePath = ""
	return res, cause
}
