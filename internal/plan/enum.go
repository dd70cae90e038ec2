package plan

import (
	"fmt"
	"strings"

	"adapter-generator/internal/descriptor"
	"adapter-generator/internal/diagnostic"
	"adapter-generator/internal/directive"
)

// ResolveEnum matches every domain variant to a wire variant by name.
// A nil plan means at least one variant had no wire counterpart.
func (r *Resolver) ResolveEnum(e descriptor.Enum) (*EnumPlan, diagnostic.Diagnostics) {
	var diags diagnostic.Diagnostics

	ann, err := directive.ParseAggregate(e.Annotations)
	if err != nil {
		addDirectiveError(&diags, err, e.Name, "")
		return nil, diags
	}

	ep := &EnumPlan{
		Name:      e.Name,
		WireName:  e.Name,
		Namespace: r.namespace(),
	}

	if ann.WireName != "" {
		ep.WireName = ann.WireName
	}

	if ann.Namespace != "" {
		ep.Namespace = ann.Namespace
	}

	for _, variant := range e.Variants {
		wire, ok := matchVariant(e.Name, variant, e.WireVariants)
		if !ok {
			diags.AddError(
				diagnostic.CodeUnmatchedVariant,
				fmt.Sprintf("domain variant %s has no wire-side counterpart", variant),
				e.Name, variant,
				"rename the variant or extend the wire enumeration",
			)

			continue
		}

		ep.Variants = append(ep.Variants, VariantPair{Name: variant, WireName: wire})
	}

	if diags.HasErrors() {
		return nil, diags
	}

	return ep, diags
}

// matchVariant accepts the bare variant name and the SCREAMING_SNAKE
// form prefixed with the enum name, compared case- and
// underscore-insensitively.
func matchVariant(enumName, variant string, wireVariants []string) (string, bool) {
	bare := normalizeVariant(variant)
	prefixed := normalizeVariant(enumName + variant)

	for _, w := range wireVariants {
		n := normalizeVariant(w)
		if n == bare || n == prefixed {
			return w, true
		}
	}

	return "", false
}

func normalizeVariant(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", ""))
}
