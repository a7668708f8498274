package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/arthur-debert/packweaver/pkg/errors"
)

// RawKey is the selection key holding every chosen identifier
const RawKey = "raw"

// CategorySelection is one category label and the identifiers chosen in it,
// in the order the caller listed them.
type CategorySelection struct {
	Label       string
	Identifiers []string
}

// Selection is what a caller asks to export: identifiers grouped by
// category plus the flattened Raw list used for compatibility matching.
//
// The JSON form is an object whose keys are category labels mapping to
// string arrays, with one extra "raw" key. Category order is preserved.
type Selection struct {
	Categories []CategorySelection
	Raw        []string
}

// HasRaw reports whether id was selected in any category
func (s Selection) HasRaw(id string) bool {
	for _, r := range s.Raw {
		if r == id {
			return true
		}
	}
	return false
}

// Category returns the identifiers selected under label
func (s Selection) Category(label string) ([]string, bool) {
	for _, c := range s.Categories {
		if c.Label == label {
			return c.Identifiers, true
		}
	}
	return nil, false
}

// ParseSelection decodes and validates a selection payload
func ParseSelection(data []byte) (Selection, error) {
	var s Selection
	if err := s.UnmarshalJSON(data); err != nil {
		return Selection{}, err
	}
	return s, nil
}

// UnmarshalJSON walks the object token by token so category order survives.
func (s *Selection) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return errors.Wrap(err, errors.ErrSelectionInvalid, "selection is not valid JSON")
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New(errors.ErrSelectionInvalid, "selection must be a JSON object")
	}

	var out Selection
	seen := make(map[string]bool)
	hasRaw := false

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return errors.Wrap(err, errors.ErrSelectionInvalid, "malformed selection key")
		}
		key := keyTok.(string)
		if seen[key] {
			return errors.Newf(errors.ErrSelectionInvalid, "duplicate selection key %q", key)
		}
		seen[key] = true

		var ids []string
		if err := dec.Decode(&ids); err != nil {
			return errors.Wrapf(err, errors.ErrSelectionInvalid, "selection key %q must be a list of strings", key)
		}
		if ids == nil {
			ids = []string{}
		}

		if key == RawKey {
			out.Raw = ids
			hasRaw = true
			continue
		}
		out.Categories = append(out.Categories, CategorySelection{Label: key, Identifiers: ids})
	}

	if _, err := dec.Token(); err != nil {
		return errors.Wrap(err, errors.ErrSelectionInvalid, "unterminated selection object")
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New(errors.ErrSelectionInvalid, "trailing data after selection object")
	}
	if !hasRaw {
		return errors.Newf(errors.ErrSelectionInvalid, "selection is missing the %q list", RawKey)
	}

	*s = out
	return nil
}

// MarshalJSON writes categories in order followed by raw.
func (s Selection) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for _, c := range s.Categories {
		if err := writeEntry(&buf, c.Label, c.Identifiers); err != nil {
			return nil, err
		}
		buf.WriteByte(',')
	}
	if err := writeEntry(&buf, RawKey, s.Raw); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeEntry(buf *bytes.Buffer, key string, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	v, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}
