package merge

import (
	"reflect"

	"github.com/arthur-debert/packweaver/pkg/errors"
	"github.com/arthur-debert/packweaver/pkg/filesystem"
	"github.com/spf13/afero"
)

// mergeManifest folds a contributed manifest into the destination one.
// Only modules, dependencies and metadata.authors are touched.
func mergeManifest(fs afero.Fs, src, dst string) error {
	var existing, incoming map[string]interface{}
	if err := filesystem.ReadJSON(fs, dst, &existing); err != nil {
		return err
	}
	if err := filesystem.ReadJSON(fs, src, &incoming); err != nil {
		return err
	}
	if existing == nil {
		return errors.Newf(errors.ErrFileMalformed, "manifest %s is not an object", dst)
	}

	if err := MergeManifestDocs(existing, incoming); err != nil {
		return errors.Wrapf(err, errors.ErrFileMalformed, "cannot merge manifest %s", src)
	}
	return filesystem.WriteJSON(fs, dst, existing)
}

// MergeManifestDocs appends incoming modules and dependencies to existing
// and adds incoming authors not yet listed.
func MergeManifestDocs(existing, incoming map[string]interface{}) error {
	if mods, ok := incoming["modules"]; ok {
		list, err := asList(mods, "modules")
		if err != nil {
			return err
		}
		cur, err := asList(existing["modules"], "modules")
		if err != nil {
			return err
		}
		existing["modules"] = append(cur, list...)
	}

	if deps, ok := incoming["dependencies"]; ok {
		list, err := asList(deps, "dependencies")
		if err != nil {
			return err
		}
		cur, err := asList(existing["dependencies"], "dependencies")
		if err != nil {
			return err
		}
		existing["dependencies"] = append(cur, list...)
	}

	incomingAuthors, err := authorsOf(incoming)
	if err != nil || incomingAuthors == nil {
		return err
	}
	meta, _ := existing["metadata"].(map[string]interface{})
	if meta == nil {
		meta = make(map[string]interface{})
		existing["metadata"] = meta
	}
	authors, err := asList(meta["authors"], "metadata.authors")
	if err != nil {
		return err
	}
	for _, a := range incomingAuthors {
		if !containsValue(authors, a) {
			authors = append(authors, a)
		}
	}
	meta["authors"] = authors
	return nil
}

func authorsOf(doc map[string]interface{}) ([]interface{}, error) {
	meta, ok := doc["metadata"].(map[string]interface{})
	if !ok {
		return nil, nil
	}
	if _, ok := meta["authors"]; !ok {
		return nil, nil
	}
	return asList(meta["authors"], "metadata.authors")
}

func asList(v interface{}, field string) ([]interface{}, error) {
	if v == nil {
		return []interface{}{}, nil
	}
	list, ok := v.([]interface{})
	if !ok {
		return nil, errors.Newf(errors.ErrFileMalformed, "%s must be a list", field)
	}
	return list, nil
}

func containsValue(list []interface{}, v interface{}) bool {
	for _, item := range list {
		if reflect.DeepEqual(item, v) {
			return true
		}
	}
	return false
}
