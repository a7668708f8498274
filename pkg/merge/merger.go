package merge

import (
	"bytes"
	"context"
	"path/filepath"

	"github.com/arthur-debert/packweaver/pkg/errors"
	"github.com/arthur-debert/packweaver/pkg/filesystem"
	"github.com/arthur-debert/packweaver/pkg/logging"
	"github.com/arthur-debert/packweaver/pkg/types"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Stats counts what a merge did, by outcome
type Stats struct {
	Directories int
	Copied      int
	Manifests   int
	Appended    int
	Structured  int
	Overwritten int
	Skipped     int
}

// Merger applies contributions to one destination tree
type Merger struct {
	fs     afero.Fs
	dest   string
	rules  []Rule
	logger zerolog.Logger

	// weights records the priority each known destination file was
	// written with; a path is known once it is registered here.
	weights map[string]int
	stats   Stats
}

// New returns a Merger writing into dest
func New(fs afero.Fs, dest string) *Merger {
	return &Merger{
		fs:      fs,
		dest:    dest,
		rules:   DefaultRules(),
		logger:  logging.GetLogger("merge"),
		weights: make(map[string]int),
	}
}

// Register marks relPath as already present with the given weight
func (m *Merger) Register(relPath string, priority int) {
	m.weights[filepath.ToSlash(relPath)] = priority
}

// Weight returns the recorded weight of relPath
func (m *Merger) Weight(relPath string) (int, bool) {
	w, ok := m.weights[relPath]
	return w, ok
}

// Stats returns the counters accumulated so far
func (m *Merger) Stats() Stats {
	return m.stats
}

// ApplyAll applies contributions in order, stopping at the first error.
// ctx is checked between contributions.
func (m *Merger) ApplyAll(ctx context.Context, contributions []types.Contribution) error {
	for i, c := range contributions {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, errors.ErrCancelled, "merge cancelled before contribution %d", i)
		}
		if err := m.Apply(c); err != nil {
			return errors.Wrapf(err, errors.GetErrorCode(err), "contribution %d (%s)", i, c.Source).
				WithDetail("source", c.Source)
		}
	}
	return nil
}

// Apply merges one contribution into the destination
func (m *Merger) Apply(c types.Contribution) error {
	done := logging.LogOperationStart(m.logger, "merge "+c.Source)
	defer done()

	entries, err := filesystem.List(m.fs, c.Source)
	if err != nil {
		return err
	}

	for _, e := range entries {
		if err := m.applyEntry(c, e); err != nil {
			return err
		}
	}
	return nil
}

func (m *Merger) applyEntry(c types.Contribution, e filesystem.Entry) error {
	src := filepath.Join(c.Source, filepath.FromSlash(e.RelPath))
	dst := filepath.Join(m.dest, filepath.FromSlash(e.RelPath))

	if e.IsDir {
		exists, err := afero.DirExists(m.fs, dst)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", dst)
		}
		if !exists {
			m.stats.Directories++
			return filesystem.MkdirAll(m.fs, dst)
		}
		return nil
	}

	policy := Classify(m.rules, e.RelPath)
	recorded, known := m.weights[e.RelPath]

	m.logger.Trace().
		Str("entry", e.RelPath).
		Str("policy", string(policy)).
		Bool("known", known).
		Int("priority", c.Priority).
		Msg("Merging entry")

	if policy == PolicyManifest {
		exists, err := filesystem.Exists(m.fs, dst)
		if err != nil {
			return err
		}
		if exists {
			m.stats.Manifests++
			return mergeManifest(m.fs, src, dst)
		}
		known = false
	}

	// scaffold files other than manifests are never touched by contributions
	if known && recorded >= types.ScaffoldPriority {
		m.stats.Skipped++
		return nil
	}

	if !known {
		if err := m.ensureParent(dst); err != nil {
			return err
		}
		if err := filesystem.CopyFile(m.fs, src, dst); err != nil {
			return err
		}
		m.weights[e.RelPath] = c.Priority
		m.stats.Copied++
		return nil
	}

	switch policy {
	case PolicyAppend:
		m.stats.Appended++
		return appendText(m.fs, src, dst)
	case PolicyStructured:
		m.stats.Structured++
		return mergeStructured(m.fs, src, dst)
	default:
		if c.Priority > recorded {
			if err := filesystem.CopyFile(m.fs, src, dst); err != nil {
				return err
			}
			m.weights[e.RelPath] = c.Priority
			m.stats.Overwritten++
			return nil
		}
		m.stats.Skipped++
		return nil
	}
}

func (m *Merger) ensureParent(dst string) error {
	return filesystem.MkdirAll(m.fs, filepath.Dir(dst))
}

func appendText(fs afero.Fs, src, dst string) error {
	data, err := afero.ReadFile(fs, src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", src)
	}
	var buf bytes.Buffer
	buf.WriteByte('\n')
	buf.Write(data)
	return filesystem.AppendFile(fs, dst, buf.Bytes())
}
