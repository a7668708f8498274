package types

// ManifestFileName is the manifest entry name inside a tree
const ManifestFileName = "manifest.json"

// Manifest is a manifest document as read from a template. Only the header
// identity fields and the first module's uuid are ever rewritten; every
// other field, including ones this package knows nothing about, is written
// back unchanged.
type Manifest map[string]interface{}

// Clone returns a deep copy so templates cached in a Bundle are never
// mutated by an export.
func (m Manifest) Clone() Manifest {
	if m == nil {
		return nil
	}
	return Manifest(cloneValue(map[string]interface{}(m)).(map[string]interface{}))
}

// Header returns the header object, or nil when the document has none
func (m Manifest) Header() map[string]interface{} {
	header, _ := m["header"].(map[string]interface{})
	return header
}

// UUID is the header uuid, or "" when unset
func (m Manifest) UUID() string {
	id, _ := m.Header()["uuid"].(string)
	return id
}

// Modules returns the modules list, or nil when it is missing or not a list
func (m Manifest) Modules() []interface{} {
	modules, _ := m["modules"].([]interface{})
	return modules
}

// FirstModule returns the first module object, or nil
func (m Manifest) FirstModule() map[string]interface{} {
	modules := m.Modules()
	if len(modules) == 0 {
		return nil
	}
	module, _ := modules[0].(map[string]interface{})
	return module
}

// FormatVersion returns format_version as written in the template
func (m Manifest) FormatVersion() interface{} {
	return m["format_version"]
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, item := range t {
			out[k] = cloneValue(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
