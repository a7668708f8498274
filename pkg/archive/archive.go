// Package archive turns a finished export tree into a distributable zip
// archive.
package archive

import (
	"context"
	"io"
	"path/filepath"

	"github.com/arthur-debert/packweaver/pkg/config"
	"github.com/arthur-debert/packweaver/pkg/errors"
	"github.com/arthur-debert/packweaver/pkg/filesystem"
	"github.com/arthur-debert/packweaver/pkg/logging"
	"github.com/arthur-debert/packweaver/pkg/types"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Finalizer packages a finished tree into archivePath and removes the tree
type Finalizer interface {
	Finalize(ctx context.Context, tree, archivePath string) error
}

// Extension returns the archive extension for an export of ct
func Extension(ct config.ContentTypeSettings, format types.OutputFormat) string {
	if format == types.FormatCombined && ct.CombinedExtension != "" {
		return ct.CombinedExtension
	}
	return ct.Extension
}

// Zip writes trees as deflate compressed zip archives. Entries are the
// tree's contents, without the tree directory itself, in lexicographic
// order.
type Zip struct {
	fs     afero.Fs
	logger zerolog.Logger
}

// NewZip returns a zip Finalizer writing through fs
func NewZip(fs afero.Fs) *Zip {
	return &Zip{fs: fs, logger: logging.GetLogger("archive")}
}

// Finalize archives tree and removes it. The archive is written next to its
// final path and renamed into place, so a failure never leaves a partial
// archive behind.
func (z *Zip) Finalize(ctx context.Context, tree, archivePath string) error {
	done := logging.LogOperationStart(z.logger, "archive "+tree)
	defer done()

	entries, err := filesystem.List(z.fs, tree)
	if err != nil {
		return err
	}

	if err := filesystem.MkdirAll(z.fs, filepath.Dir(archivePath)); err != nil {
		return err
	}
	tmp := archivePath + ".tmp"
	if err := z.write(ctx, tree, tmp, entries); err != nil {
		_ = z.fs.Remove(tmp)
		return err
	}
	if err := z.fs.Rename(tmp, archivePath); err != nil {
		_ = z.fs.Remove(tmp)
		return errors.Wrapf(err, errors.ErrArchive, "cannot move archive to %s", archivePath)
	}

	// the archive is complete at this point; a leftover tree is cleared by
	// the next export of the same name
	if err := z.fs.RemoveAll(tree); err != nil {
		z.logger.Warn().Err(err).Str("tree", tree).Msg("Cannot remove exported tree")
	}

	z.logger.Info().
		Str("archive", archivePath).
		Int("entries", len(entries)).
		Msg("Archive written")
	return nil
}

func (z *Zip) write(ctx context.Context, tree, target string, entries []filesystem.Entry) (err error) {
	out, err := z.fs.Create(target)
	if err != nil {
		return errors.Wrapf(err, errors.ErrArchive, "cannot create %s", target)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = errors.Wrapf(closeErr, errors.ErrArchive, "cannot close %s", target)
		}
	}()

	zw := zip.NewWriter(out)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.BestCompression)
	})
	defer func() {
		if closeErr := zw.Close(); closeErr != nil && err == nil {
			err = errors.Wrapf(closeErr, errors.ErrArchive, "cannot finish %s", target)
		}
	}()

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, errors.ErrCancelled, "archiving cancelled")
		}
		if err := z.add(zw, tree, e); err != nil {
			return err
		}
	}
	return nil
}

func (z *Zip) add(zw *zip.Writer, tree string, e filesystem.Entry) error {
	src := filepath.Join(tree, filepath.FromSlash(e.RelPath))
	info, err := z.fs.Stat(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", src)
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return errors.Wrapf(err, errors.ErrArchive, "cannot create header for %s", e.RelPath)
	}
	header.Name = e.RelPath

	if e.IsDir {
		header.Name += "/"
		header.Method = zip.Store
		if _, err := zw.CreateHeader(header); err != nil {
			return errors.Wrapf(err, errors.ErrArchive, "cannot add directory %s", e.RelPath)
		}
		return nil
	}

	header.Method = zip.Deflate
	w, err := zw.CreateHeader(header)
	if err != nil {
		return errors.Wrapf(err, errors.ErrArchive, "cannot add %s", e.RelPath)
	}

	in, err := z.fs.Open(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot open %s", src)
	}
	defer func() { _ = in.Close() }()

	if _, err := io.Copy(w, in); err != nil {
		return errors.Wrapf(err, errors.ErrArchive, "cannot write %s", e.RelPath)
	}
	return nil
}

// Contents lists the entry names of the archive at archivePath in archive
// order
func Contents(fs afero.Fs, archivePath string) ([]string, error) {
	f, err := fs.Open(archivePath)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot open %s", archivePath)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", archivePath)
	}
	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrArchive, "cannot read %s", archivePath)
	}

	names := make([]string, len(zr.File))
	for i, file := range zr.File {
		names[i] = file.Name
	}
	return names, nil
}

// ReadEntry returns the content of one archive entry
func ReadEntry(fs afero.Fs, archivePath, name string) ([]byte, error) {
	f, err := fs.Open(archivePath)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot open %s", archivePath)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", archivePath)
	}
	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrArchive, "cannot read %s", archivePath)
	}

	for _, file := range zr.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrArchive, "cannot open entry %s", name)
		}
		defer func() { _ = rc.Close() }()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrArchive, "cannot read entry %s", name)
		}
		return data, nil
	}
	return nil, errors.Newf(errors.ErrFileAccess, "%s has no entry %s", archivePath, name)
}
