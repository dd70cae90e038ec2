package infer

import (
	"fmt"

	"adapter-generator/internal/diagnostic"
	"adapter-generator/internal/directive"
	"adapter-generator/internal/metadata"
	"adapter-generator/internal/shape"
)

// Mapping describes how a field is represented on the wire.
type Mapping int

const (
	_ Mapping = iota // skip zero value, use it as an invalid Mapping

	// MappingScalar is a plain value with no presence tracking.
	MappingScalar
	// MappingOptional is a nullable wrapper around a scalar.
	MappingOptional
	// MappingRepeated is a growable sequence; absence is emptiness.
	MappingRepeated
	// MappingMessage is a nested wire message, always nullable.
	MappingMessage
	// MappingCustom is derived through user conversion functions.
	MappingCustom
)

const unknownStr = "unknown"

// String returns a human-readable mapping name.
func (m Mapping) String() string {
	switch m {
	case MappingScalar:
		return "scalar"
	case MappingOptional:
		return "optional"
	case MappingRepeated:
		return "repeated"
	case MappingMessage:
		return "message"
	case MappingCustom:
		return "custom"
	default:
		return unknownStr
	}
}

// WireShape is the inferred or declared wire-side form of one field.
// Invariant: a repeated mapping is never optional.
type WireShape struct {
	Mapping  Mapping
	Optional bool
}

// IsOptional reports whether the wire value can be absent. Repeated
// fields communicate absence via emptiness, never nullability.
func (w WireShape) IsOptional() bool {
	return w.Optional && w.Mapping != MappingRepeated
}

// AmbiguityError means no waterfall tier could resolve optionality.
// Never silently defaulted; the author must annotate.
type AmbiguityError struct {
	Aggregate string
	Field     string
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf(
		"cannot infer wire optionality for %s.%s; add an explicit optional or required directive",
		e.Aggregate, e.Field)
}

// Request carries everything one inference needs.
type Request struct {
	// Aggregate and Field name the domain field, for diagnostics.
	Aggregate string
	Field     string
	// WireAggregate and WireField are the names after rename and
	// wire_name overrides; the side channel is keyed by these.
	WireAggregate string
	WireField     string
	// Shape is the classified domain shape.
	Shape shape.Shape
	// Annotation is the parsed directive record.
	Annotation directive.FieldAnnotation
}

// Infer resolves the wire shape via the priority waterfall: explicit
// override, side channel, structural pattern, usage-pattern heuristic.
// The first tier that answers wins. Returns AmbiguityError when nothing
// resolves.
func Infer(req Request, side metadata.Source, diags *diagnostic.Diagnostics) (WireShape, error) {
	// Tier 1: explicit annotation takes absolute precedence.
	if req.Annotation.Optionality != directive.OptionalityUnset {
		optional := req.Annotation.Optionality == directive.OptionalityOptional
		return clamp(WireShape{Mapping: structuralMapping(req), Optional: optional}), nil
	}

	// Tier 2: side channel; "no answer" continues the waterfall.
	if side != nil {
		if optional, ok := side.FieldOptionality(req.WireAggregate, req.WireField); ok {
			return clamp(WireShape{Mapping: structuralMapping(req), Optional: optional}), nil
		}
	}

	// Tiers 3 and 4: structural patterns interleaved with usage
	// indicators. Indicators are consulted before the primitive and
	// enum defaults: a defaulted scalar only makes sense on an
	// absentable wire field.
	if ws, ok := inferFromPatterns(req, diags); ok {
		return clamp(ws), nil
	}

	return WireShape{}, &AmbiguityError{Aggregate: req.Aggregate, Field: req.Field}
}

func inferFromPatterns(req Request, diags *diagnostic.Diagnostics) (WireShape, bool) {
	s := req.Shape

	switch s.Kind {
	case shape.KindPointer:
		return WireShape{Mapping: structuralMapping(req), Optional: true}, true

	case shape.KindSlice:
		return WireShape{Mapping: MappingRepeated}, true
	}

	// Usage-pattern indicators: absence-handling directives only make
	// sense on absentable wire fields.
	if req.Annotation.Expect != directive.ExpectNone || req.Annotation.HasDefault {
		return WireShape{Mapping: structuralMapping(req), Optional: true}, true
	}

	switch s.Kind {
	case shape.KindPrimitive, shape.KindEnum, shape.KindWrapper:
		return WireShape{Mapping: MappingScalar}, true

	case shape.KindStruct:
		// Heuristic, not a structural guarantee; surfaced so authors
		// can pin it down with an explicit directive.
		if diags != nil {
			diags.AddInfo(
				diagnostic.CodeInferredOptionality,
				"wire optionality of aggregate field inferred as optional, not verified",
				req.Aggregate, req.Field,
				"optional", "required",
			)
		}

		return WireShape{Mapping: MappingMessage, Optional: true}, true
	}

	return WireShape{}, false
}

// structuralMapping derives the wire mapping from the domain shape and
// directives alone, independent of optionality.
func structuralMapping(req Request) Mapping {
	if req.Annotation.FromWireFn != "" || req.Annotation.ToWireFn != "" {
		return MappingCustom
	}

	s := req.Shape

	switch s.Kind {
	case shape.KindSlice:
		return MappingRepeated
	case shape.KindStruct:
		return MappingMessage
	case shape.KindPointer:
		inner := s.Elem()
		if inner.Kind == shape.KindSlice {
			return MappingRepeated
		}

		if inner.Kind == shape.KindStruct {
			return MappingMessage
		}

		return MappingOptional
	default:
		return MappingScalar
	}
}

// clamp enforces the repeated-implies-required invariant.
func clamp(w WireShape) WireShape {
	if w.Mapping == MappingRepeated {
		w.Optional = false
	}

	return w
}
