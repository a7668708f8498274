package manifest

import (
	"strings"

	"github.com/arthur-debert/packweaver/pkg/types"
)

// Describe lists every non-empty category of sel followed by its
// identifiers, one per line, each indented with a tab.
func Describe(sel types.Selection) string {
	var lines []string
	for _, c := range sel.Categories {
		if len(c.Identifiers) == 0 {
			continue
		}
		lines = append(lines, c.Label)
		for _, id := range c.Identifiers {
			lines = append(lines, "\t"+id)
		}
	}
	return strings.Join(lines, "\n")
}
