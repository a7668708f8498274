package types

import "path/filepath"

// Fixed priority weights outside the configurable range. Configured
// identifier weights must stay below CompatibilityPriority.
const (
	CompatibilityPriority = 999
	ScaffoldPriority      = 1000
)

// CategoryDefinition maps a category label to where its identifiers live
// and what weight each carries.
type CategoryDefinition struct {
	Label    string
	Location string
	// Priorities holds the weights of the identifiers listed by the
	// category file. Nil means the category does not list its members and
	// weights come from the bundle-wide table.
	Priorities map[string]int
}

// CompatibilityGroup is a set of identifiers whose joint selection is
// served by one combined source.
type CompatibilityGroup struct {
	Arity     int
	Members   []string
	Location  string
	Overwrite bool
}

// Bundle is the static configuration of one content type.
type Bundle struct {
	ContentType string
	// Root is the content family directory (e.g. <content_root>/resource-packs).
	Root       string
	Categories map[string]CategoryDefinition
	Priorities map[string]int
	// Compatibility groups keyed by arity, in configuration order.
	Compatibility map[int][]CompatibilityGroup
	// Templates holds the manifest template per sub-tree; the single-tree
	// template is stored under "".
	Templates map[string]Manifest
	IconPath  string
}

// PacksDir is where category and compatibility sources live
func (b *Bundle) PacksDir() string {
	return filepath.Join(b.Root, "packs")
}

// DefaultSource is the directory contributing identifier id of a category
func (b *Bundle) DefaultSource(location, id string) string {
	return filepath.Join(b.PacksDir(), location, id, "files")
}

// GroupSource is the directory of a compatibility group
func (b *Bundle) GroupSource(g CompatibilityGroup) string {
	return filepath.Join(b.PacksDir(), g.Location)
}

// PriorityOf returns the weight of id selected under category
func (b *Bundle) PriorityOf(category CategoryDefinition, id string) (int, bool) {
	if category.Priorities != nil {
		w, ok := category.Priorities[id]
		return w, ok
	}
	w, ok := b.Priorities[id]
	return w, ok
}
