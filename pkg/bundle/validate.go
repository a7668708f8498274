package bundle

import (
	"encoding/json"
	"sort"

	"github.com/arthur-debert/packweaver/pkg/errors"
	"github.com/arthur-debert/packweaver/pkg/types"
)

// Validate rejects bundles the resolver could not handle deterministically.
func Validate(b *types.Bundle) error {
	for id, w := range b.Priorities {
		if w >= types.CompatibilityPriority {
			return errors.Newf(errors.ErrConfigInvalid, "priority of %q must be below %d", id, types.CompatibilityPriority).
				WithDetail("priority", w)
		}
	}
	for label, def := range b.Categories {
		if def.Location == "" {
			return errors.Newf(errors.ErrConfigInvalid, "category %q has no location", label)
		}
		for id, w := range def.Priorities {
			if w >= types.CompatibilityPriority {
				return errors.Newf(errors.ErrConfigInvalid, "priority of %q must be below %d", id, types.CompatibilityPriority).
					WithDetail("category", label)
			}
		}
	}

	for _, arity := range Arities(b) {
		claimedBy := make(map[string]int)
		for i, g := range b.Compatibility[arity] {
			if len(g.Members) != arity {
				return errors.Newf(errors.ErrConfigInvalid, "%d-way group %d has %d members", arity, i, len(g.Members)).
					WithDetail("members", g.Members)
			}
			if g.Location == "" {
				return errors.Newf(errors.ErrConfigInvalid, "%d-way group %d has no location", arity, i)
			}
			inGroup := make(map[string]bool, arity)
			for _, m := range g.Members {
				if inGroup[m] {
					return errors.Newf(errors.ErrConfigInvalid, "%d-way group %d repeats %q", arity, i, m)
				}
				inGroup[m] = true

				if _, ok := b.Priorities[m]; !ok {
					return errors.Newf(errors.ErrPriorityNotFound, "%d-way group %d member %q has no priority", arity, i, m).
						WithDetail("location", g.Location)
				}

				if other, ok := claimedBy[m]; ok {
					return errors.Newf(errors.ErrConfigAmbiguous,
						"%d-way groups %d and %d share %q; precedence between them is undefined", arity, other, i, m).
						WithDetail("first", b.Compatibility[arity][other].Location).
						WithDetail("second", g.Location)
				}
				claimedBy[m] = i
			}
		}
	}

	if len(b.Templates) == 0 {
		return errors.New(errors.ErrConfigInvalid, "bundle has no manifest template")
	}
	for sub, m := range b.Templates {
		if m.Header() == nil {
			return errors.Newf(errors.ErrConfigInvalid, "manifest template %q has no header object", sub)
		}
		if m.FirstModule() == nil {
			return errors.Newf(errors.ErrConfigInvalid, "manifest template %q has no modules", sub)
		}
	}
	return nil
}

// CategoryLabels returns the category labels sorted by name
func CategoryLabels(b *types.Bundle) []string {
	labels := make([]string, 0, len(b.Categories))
	for label := range b.Categories {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

func remarshal(in, out interface{}) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
