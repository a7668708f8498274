package filesystem

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/packweaver/pkg/errors"
	"github.com/spf13/afero"
)

// NewOS returns the real filesystem
func NewOS() afero.Fs {
	return afero.NewOsFs()
}

// NewMemory returns an in-memory filesystem for tests and dry runs
func NewMemory() afero.Fs {
	return afero.NewMemMapFs()
}

// Entry is one item of a recursive listing
type Entry struct {
	// RelPath uses forward slashes and is relative to the listed root.
	RelPath string
	IsDir   bool
}

// List returns every file and directory below root, depth first, with
// siblings in lexicographic order. A directory always precedes its
// contents.
func List(fs afero.Fs, root string) ([]Entry, error) {
	var entries []Entry
	if err := listInto(fs, root, "", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func listInto(fs afero.Fs, root, rel string, out *[]Entry) error {
	dir := filepath.Join(root, filepath.FromSlash(rel))
	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot list %s", dir)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })

	for _, info := range infos {
		childRel := path.Join(rel, info.Name())
		*out = append(*out, Entry{RelPath: childRel, IsDir: info.IsDir()})
		if info.IsDir() {
			if err := listInto(fs, root, childRel, out); err != nil {
				return err
			}
		}
	}
	return nil
}

// CountEntries counts files and directories below root. A missing root
// counts as empty.
func CountEntries(fs afero.Fs, root string) (int, error) {
	exists, err := afero.DirExists(fs, root)
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", root)
	}
	if !exists {
		return 0, nil
	}
	entries, err := List(fs, root)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// Exists reports whether p exists
func Exists(fs afero.Fs, p string) (bool, error) {
	ok, err := afero.Exists(fs, p)
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", p)
	}
	return ok, nil
}

// ReadJSON decodes the JSON file at p into v. Numbers decoded into
// interface values keep their textual form.
func ReadJSON(fs afero.Fs, p string, v interface{}) error {
	data, err := afero.ReadFile(fs, p)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", p)
	}
	return DecodeJSON(data, p, v)
}

// DecodeJSON decodes data read from p into v
func DecodeJSON(data []byte, p string, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return errors.Wrapf(err, errors.ErrFileMalformed, "malformed JSON in %s", p)
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.Newf(errors.ErrFileMalformed, "trailing data in %s", p)
	}
	return nil
}

// WriteJSON writes v to p with four-space indentation
func WriteJSON(fs afero.Fs, p string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot encode %s", p)
	}
	if err := afero.WriteFile(fs, p, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", p)
	}
	return nil
}

// CopyFile copies src to dst, replacing dst
func CopyFile(fs afero.Fs, src, dst string) error {
	in, err := fs.Open(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot open %s", src)
	}
	defer func() { _ = in.Close() }()

	out, err := fs.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot create %s", dst)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot copy %s to %s", src, dst)
	}
	if err := out.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot close %s", dst)
	}
	return nil
}

// AppendFile appends data to p
func AppendFile(fs afero.Fs, p string, data []byte) error {
	f, err := fs.OpenFile(p, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot open %s for append", p)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot append to %s", p)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot close %s", p)
	}
	return nil
}

// MkdirAll creates p and its parents
func MkdirAll(fs afero.Fs, p string) error {
	if err := fs.MkdirAll(p, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", p)
	}
	return nil
}
