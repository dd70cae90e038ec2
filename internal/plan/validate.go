package plan

import (
	"fmt"

	"adapter-generator/internal/directive"
	"adapter-generator/internal/infer"
	"adapter-generator/internal/shape"
)

// Violation is a structural precondition failure of a resolved
// strategy. The resolver never produces one on its own output; the
// validator exists so hand-built or future plans cannot slip through.
type Violation struct {
	Strategy     Strategy
	Reason       string
	SuggestedFix string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("strategy %s precondition violated: %s", v.Strategy, v.Reason)
}

// Validate checks the structural preconditions of a resolved field
// plan. Pure and total; returns nil when the plan is sound.
func Validate(fp FieldPlan, ann directive.FieldAnnotation) *Violation {
	switch fp.Strategy {
	case StrategyIgnore:
		if !ann.Ignore {
			return &Violation{
				Strategy:     fp.Strategy,
				Reason:       "field is not marked with the ignore directive",
				SuggestedFix: "add the ignore directive or pick a conversion strategy",
			}
		}

	case StrategyCustom:
		if fp.FromWireFn == "" && fp.ToWireFn == "" {
			return &Violation{
				Strategy:     fp.Strategy,
				Reason:       "no conversion function referenced",
				SuggestedFix: `set from_wire_fn = "fn" or to_wire_fn = "fn"`,
			}
		}

	case StrategyTransparent:
		if !ann.Transparent {
			return &Violation{
				Strategy:     fp.Strategy,
				Reason:       "field is not marked with the transparent directive",
				SuggestedFix: "add the transparent directive",
			}
		}

	case StrategyOptionUnwrap, StrategyOptionMap:
		// A default-moded unwrap is legal on any wire shape: the
		// default applies whenever the wire value is absent.
		if fp.ErrorMode == ErrorModeDefault {
			break
		}

		if !fp.Wire.IsOptional() {
			return &Violation{
				Strategy:     fp.Strategy,
				Reason:       "wire field is not optional",
				SuggestedFix: "mark the wire field optional or drop the absence handling",
			}
		}

	case StrategyOptionWrap:
		if fp.Shape.Kind != shape.KindPointer {
			return &Violation{
				Strategy:     fp.Strategy,
				Reason:       "domain field is not nullable",
				SuggestedFix: "declare the field as a pointer or use a direct strategy",
			}
		}

		if fp.Wire.IsOptional() {
			return &Violation{
				Strategy:     fp.Strategy,
				Reason:       "wire field is optional, wrap expects a required wire value",
				SuggestedFix: "use the map strategy for optional-to-optional fields",
			}
		}

	case StrategyCollect, StrategyCollectMapOption, StrategyCollectDirect:
		sequenceShaped := fp.Shape.Kind == shape.KindSlice || fp.Shape.IsPointerToSlice()
		if !sequenceShaped && fp.Wire.Mapping != infer.MappingRepeated {
			return &Violation{
				Strategy:     fp.Strategy,
				Reason:       "neither domain shape nor wire mapping is sequence-like",
				SuggestedFix: "declare the field as a slice or fix the wire mapping",
			}
		}
	}

	return nil
}
