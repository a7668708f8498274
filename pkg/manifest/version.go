package manifest

import (
	"regexp"
	"strconv"
	"strings"
)

var versionPattern = regexp.MustCompile(`^\d+(\.\d+){0,2}$`)

// ParseEngineVersion turns "1", "1.21" or "1.21.40" into a three component
// triple, zero filling missing components. Anything else yields a copy of
// fallback and false.
func ParseEngineVersion(version string, fallback []int) ([]int, bool) {
	if !versionPattern.MatchString(version) {
		return append([]int(nil), fallback...), false
	}

	out := make([]int, 3)
	for i, part := range strings.Split(version, ".") {
		n, err := strconv.Atoi(part)
		if err != nil {
			return append([]int(nil), fallback...), false
		}
		out[i] = n
	}
	return out, true
}
