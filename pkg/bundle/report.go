package bundle

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arthur-debert/packweaver/pkg/types"
)

// Report describes a bundle as a markdown document
func Report(b *types.Bundle) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", b.ContentType)
	fmt.Fprintf(&sb, "Content root: `%s`\n\n", b.Root)

	sb.WriteString("## Categories\n\n")
	sb.WriteString("| Category | Location | Identifiers |\n")
	sb.WriteString("| --- | --- | --- |\n")
	for _, label := range CategoryLabels(b) {
		c := b.Categories[label]
		members := "all"
		if c.Priorities != nil {
			members = fmt.Sprintf("%d", len(c.Priorities))
		}
		fmt.Fprintf(&sb, "| %s | %s | %s |\n", label, c.Location, members)
	}

	sb.WriteString("\n## Compatibility groups\n\n")
	arities := Arities(b)
	if len(arities) == 0 {
		sb.WriteString("None.\n")
	}
	for _, arity := range arities {
		fmt.Fprintf(&sb, "### %d-way\n\n", arity)
		for _, g := range b.Compatibility[arity] {
			mode := "merge"
			if g.Overwrite {
				mode = "overwrite"
			}
			fmt.Fprintf(&sb, "- %s → `%s` (%s)\n", strings.Join(g.Members, ", "), g.Location, mode)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Manifest templates\n\n")
	subs := make([]string, 0, len(b.Templates))
	for sub := range b.Templates {
		subs = append(subs, sub)
	}
	sort.Strings(subs)
	for _, sub := range subs {
		name := sub
		if name == "" {
			name = "single"
		}
		m := b.Templates[sub]
		fmt.Fprintf(&sb, "- %s: format %v, %d modules\n", name, m.FormatVersion(), len(m.Modules()))
	}

	return sb.String()
}
