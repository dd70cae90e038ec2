package plan

import (
	"adapter-generator/internal/diagnostic"
	"adapter-generator/internal/infer"
	"adapter-generator/internal/shape"
)

// Strategy describes how one field converts between wire and domain
// form. Exactly one strategy is chosen per field, immutable once chosen.
type Strategy int

const (
	_ Strategy = iota // skip zero value, use it as an invalid Strategy

	// StrategyIgnore - field excluded from conversion by directive.
	StrategyIgnore
	// StrategyCustom - user-provided conversion function(s).
	StrategyCustom
	// StrategyDirectAssign - direct assignment, identical representations.
	StrategyDirectAssign
	// StrategyDirectConvert - explicit conversion between required values.
	StrategyDirectConvert
	// StrategyOptionWrap - required wire value into nullable domain field.
	StrategyOptionWrap
	// StrategyOptionUnwrap - nullable wire value into required domain field.
	StrategyOptionUnwrap
	// StrategyOptionMap - nullable on both sides, convert when present.
	StrategyOptionMap
	// StrategyTransparent - wrapper field interchangeable with its inner value.
	StrategyTransparent
	// StrategyCollect - element-wise sequence conversion.
	StrategyCollect
	// StrategyCollectMapOption - nullable sequence, convert when present.
	StrategyCollectMapOption
	// StrategyCollectDirect - sequence assignment without per-element conversion.
	StrategyCollectDirect
)

const unknownStr = "unknown"

// String returns a human-readable strategy name.
func (s Strategy) String() string {
	switch s {
	case StrategyIgnore:
		return "ignore"
	case StrategyCustom:
		return "custom"
	case StrategyDirectAssign:
		return "direct_assign"
	case StrategyDirectConvert:
		return "direct_convert"
	case StrategyOptionWrap:
		return "option_wrap"
	case StrategyOptionUnwrap:
		return "option_unwrap"
	case StrategyOptionMap:
		return "option_map"
	case StrategyTransparent:
		return "transparent"
	case StrategyCollect:
		return "collect"
	case StrategyCollectMapOption:
		return "collect_map_option"
	case StrategyCollectDirect:
		return "collect_direct"
	default:
		return unknownStr
	}
}

// ErrorMode selects the generated runtime behavior for an absent wire
// value. A choice about the converted program, not the generator.
type ErrorMode int

const (
	// ErrorModeNone - no absence handling needed.
	ErrorModeNone ErrorMode = iota
	// ErrorModePanic - abort with a message naming the field.
	ErrorModePanic
	// ErrorModeError - return a typed error up the caller's chain.
	ErrorModeError
	// ErrorModeDefault - substitute a default value.
	ErrorModeDefault
)

// String returns a human-readable mode name.
func (m ErrorMode) String() string {
	switch m {
	case ErrorModeNone:
		return "none"
	case ErrorModePanic:
		return "panic"
	case ErrorModeError:
		return "error"
	case ErrorModeDefault:
		return "default"
	default:
		return unknownStr
	}
}

// FieldPlan is the fully resolved conversion plan for one field.
type FieldPlan struct {
	// Name is the domain field name.
	Name string
	// WireName is the wire-side field name after rename.
	WireName string
	// TypeText is the declared domain type text.
	TypeText string
	// Shape is the classified domain shape.
	Shape shape.Shape
	// Wire is the inferred or declared wire shape.
	Wire infer.WireShape
	// Strategy is the single chosen conversion method.
	Strategy Strategy
	// ErrorMode applies to strategies that handle absence.
	ErrorMode ErrorMode
	// DefaultFn names the custom default constructor; empty under
	// ErrorModeDefault means the zero value.
	DefaultFn string
	// FromWireFn / ToWireFn are custom per-direction functions. A
	// missing direction falls back to plain conversion.
	FromWireFn string
	ToWireFn   string
	// ErrorFn, if set, constructs the error value for this field
	// instead of the generated error type.
	ErrorFn string
	// ErrorType, if set, is instantiated in place of the generated
	// error type. It must expose a Field string member.
	ErrorType string
	// Explanation describes why this strategy was chosen.
	Explanation string
}

// StructPlan is the per-aggregate conversion plan.
type StructPlan struct {
	// Name is the domain struct name.
	Name string
	// WireName is the wire struct name after any override.
	WireName string
	// Namespace is the wire package alias.
	Namespace string
	// Fields holds one plan per field, in declaration order.
	Fields []FieldPlan
	// NeedsFallibleConversion is true when any field is Error-moded;
	// the wire-to-domain function then returns an error.
	NeedsFallibleConversion bool
	// GeneratedErrorTypeName is the error type to scaffold, empty when
	// an override type suppresses generation or no field needs one.
	GeneratedErrorTypeName string
	// ErrorType is the aggregate-level override error type, if any.
	ErrorType string
	// ErrorFn is the aggregate-level error constructor, if any.
	ErrorFn string
}

// VariantPair maps one domain enum variant to its wire counterpart.
type VariantPair struct {
	// Name is the domain variant name.
	Name string
	// WireName is the matched wire variant name.
	WireName string
}

// EnumPlan is the per-enumeration conversion plan.
type EnumPlan struct {
	// Name is the domain enum type name.
	Name string
	// WireName is the wire enum type name after any override.
	WireName string
	// Namespace is the wire package alias.
	Namespace string
	// Variants are the matched variant pairs, in declaration order.
	Variants []VariantPair
}

// Result bundles resolved plans with the diagnostics of the pass.
type Result struct {
	Structs     []StructPlan
	Enums       []EnumPlan
	Diagnostics diagnostic.Diagnostics
}
