package merge

import (
	"github.com/arthur-debert/packweaver/pkg/filesystem"
	"github.com/spf13/afero"
)

// mergeStructured folds the JSON document at src into the one at dst.
func mergeStructured(fs afero.Fs, src, dst string) error {
	var existing, incoming interface{}
	if err := filesystem.ReadJSON(fs, dst, &existing); err != nil {
		return err
	}
	if err := filesystem.ReadJSON(fs, src, &incoming); err != nil {
		return err
	}
	return filesystem.WriteJSON(fs, dst, MergeValues(existing, incoming))
}

// MergeValues merges incoming into existing. Objects merge key by key,
// recursively; any other incoming value replaces the existing one. Keys
// only present in existing are kept. existing may be modified.
func MergeValues(existing, incoming interface{}) interface{} {
	dstMap, dstOK := existing.(map[string]interface{})
	srcMap, srcOK := incoming.(map[string]interface{})
	if !dstOK || !srcOK {
		return incoming
	}
	for k, v := range srcMap {
		if cur, ok := dstMap[k]; ok {
			dstMap[k] = MergeValues(cur, v)
			continue
		}
		dstMap[k] = v
	}
	return dstMap
}
