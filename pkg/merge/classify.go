package merge

import (
	"path"
	"sort"
	"strings"

	"github.com/arthur-debert/packweaver/pkg/types"
)

// Policy is how an existing destination entry absorbs a new one
type Policy string

const (
	PolicyManifest   Policy = "manifest"
	PolicyAppend     Policy = "append"
	PolicyStructured Policy = "structured"
	PolicyBinary     Policy = "binary"
)

// Matcher selects files by relative path
type Matcher interface {
	Match(relPath string) bool
	Priority() int
}

// fileNameMatcher matches the exact base name
type fileNameMatcher struct{ name string }

func (m fileNameMatcher) Match(relPath string) bool { return path.Base(relPath) == m.name }
func (m fileNameMatcher) Priority() int             { return 100 }

// extensionMatcher matches any of a set of extensions, case-insensitively
type extensionMatcher struct{ extensions []string }

func (m extensionMatcher) Match(relPath string) bool {
	ext := path.Ext(relPath)
	for _, e := range m.extensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}
func (m extensionMatcher) Priority() int { return 80 }

// catchallMatcher matches everything
type catchallMatcher struct{}

func (catchallMatcher) Match(string) bool { return true }
func (catchallMatcher) Priority() int     { return 0 }

// Rule binds a matcher to a policy
type Rule struct {
	Matcher Matcher
	Policy  Policy
}

// AppendExtensions are the plain-text types concatenated across sources
var AppendExtensions = []string{".lang", ".mcfunction", ".txt", ".js"}

// DefaultRules is the fixed classification used by every export
func DefaultRules() []Rule {
	rules := []Rule{
		{Matcher: fileNameMatcher{name: types.ManifestFileName}, Policy: PolicyManifest},
		{Matcher: extensionMatcher{extensions: AppendExtensions}, Policy: PolicyAppend},
		{Matcher: extensionMatcher{extensions: []string{".json"}}, Policy: PolicyStructured},
		{Matcher: catchallMatcher{}, Policy: PolicyBinary},
	}
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Matcher.Priority() > rules[j].Matcher.Priority()
	})
	return rules
}

// Classify returns the policy of the first matching rule
func Classify(rules []Rule, relPath string) Policy {
	for _, r := range rules {
		if r.Matcher.Match(relPath) {
			return r.Policy
		}
	}
	return PolicyBinary
}
