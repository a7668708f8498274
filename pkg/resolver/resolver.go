// Package resolver turns a selection into the ordered list of source
// directories the merger applies.
//
// Resolution is pure: it reads the selection and the bundle and returns a
// new slice. It is safe to call concurrently.
package resolver

import (
	"github.com/arthur-debert/packweaver/pkg/bundle"
	"github.com/arthur-debert/packweaver/pkg/errors"
	"github.com/arthur-debert/packweaver/pkg/logging"
	"github.com/arthur-debert/packweaver/pkg/types"
)

// Resolve returns the contributions for sel, in application order.
//
// Compatibility groups come first, largest arity first. A group applies
// when all of its members are in sel.Raw and none was claimed by a group
// already applied. Groups flagged overwrite suppress their members'
// defaults. Then every remaining identifier contributes its default
// source, category by category in selection order.
func Resolve(sel types.Selection, b *types.Bundle) ([]types.Contribution, error) {
	logger := logging.GetLogger("resolver")

	var out []types.Contribution
	claimed := make(map[string]bool)
	suppressed := make(map[string]bool)

	for _, arity := range bundle.Arities(b) {
		for _, g := range b.Compatibility[arity] {
			if !eligible(g, sel, claimed) {
				continue
			}
			for _, m := range g.Members {
				claimed[m] = true
				if g.Overwrite {
					suppressed[m] = true
				}
			}
			out = append(out, types.Contribution{
				Source:   b.GroupSource(g),
				Priority: types.CompatibilityPriority,
				Group:    append([]string(nil), g.Members...),
			})
			logger.Trace().
				Int("arity", arity).
				Strs("members", g.Members).
				Bool("overwrite", g.Overwrite).
				Msg("Compatibility group applies")
		}
	}

	for _, cat := range sel.Categories {
		def, ok := b.Categories[cat.Label]
		if !ok {
			return nil, errors.Newf(errors.ErrCategoryNotFound, "category %q is not defined for %s", cat.Label, b.ContentType).
				WithDetail("category", cat.Label)
		}
		for _, id := range cat.Identifiers {
			if suppressed[id] {
				continue
			}
			weight, ok := b.PriorityOf(def, id)
			if !ok {
				return nil, errors.Newf(errors.ErrPriorityNotFound, "identifier %q has no priority", id).
					WithDetail("category", cat.Label)
			}
			if !sel.HasRaw(id) {
				logger.Warn().Str("identifier", id).Str("category", cat.Label).Msg("Identifier missing from raw selection")
			}
			// An identifier listed under two categories contributes once.
			suppressed[id] = true
			out = append(out, types.Contribution{
				Source:   b.DefaultSource(def.Location, id),
				Priority: weight,
			})
		}
	}

	logger.Debug().Int("contributions", len(out)).Msg("Selection resolved")
	return out, nil
}

func eligible(g types.CompatibilityGroup, sel types.Selection, claimed map[string]bool) bool {
	for _, m := range g.Members {
		if claimed[m] || !sel.HasRaw(m) {
			return false
		}
	}
	return true
}
