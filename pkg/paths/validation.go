package paths

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/arthur-debert/packweaver/pkg/errors"
)

// MaxPackNameLength bounds pack names so archive names stay portable
const MaxPackNameLength = 128

var (
	packNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	unsafeRun       = regexp.MustCompile(`[^A-Za-z0-9_-]+`)
)

// ValidatePackName ensures a pack name only holds alphanumerics, hyphens
// and underscores, so it can be joined into a path as a single segment.
func ValidatePackName(name string) error {
	if name == "" {
		return errors.New(errors.ErrPackNameInvalid, "pack name cannot be empty")
	}
	if len(name) > MaxPackNameLength {
		return errors.Newf(errors.ErrPackNameInvalid, "pack name exceeds %d characters", MaxPackNameLength)
	}
	if !packNamePattern.MatchString(name) {
		return errors.Newf(errors.ErrPackNameInvalid,
			"pack name %q may only contain letters, digits, '-' and '_'", name)
	}
	return nil
}

// SanitizePackName replaces every run of disallowed characters with a
// single underscore and trims the result. It returns "" when nothing
// usable remains.
func SanitizePackName(name string) string {
	cleaned := unsafeRun.ReplaceAllString(strings.TrimSpace(name), "_")
	cleaned = strings.Trim(cleaned, "_")
	if len(cleaned) > MaxPackNameLength {
		cleaned = cleaned[:MaxPackNameLength]
	}
	return cleaned
}

// ContainsPath checks if child is contained within parent.
// Both paths are cleaned before comparison.
func ContainsPath(parent, child string) bool {
	rel, err := filepath.Rel(filepath.Clean(expandHome(parent)), filepath.Clean(expandHome(child)))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
