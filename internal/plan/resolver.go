package plan

import (
	"fmt"
	"strings"

	"adapter-generator/internal/descriptor"
	"adapter-generator/internal/diagnostic"
	"adapter-generator/internal/directive"
	"adapter-generator/internal/infer"
	"adapter-generator/internal/metadata"
	"adapter-generator/internal/shape"
)

// DefaultNamespace is the wire package alias used when no aggregate
// override is present.
const DefaultNamespace = "wirepb"

// Resolver combines shape classification, directive parsing, and wire
// inference into one conversion strategy per field. It holds only
// read-only configuration and is safe to reuse across aggregates.
type Resolver struct {
	// Side is the optionality side channel; nil never answers.
	Side metadata.Source
	// Namespace is the default wire package alias.
	Namespace string
	// Primitives overrides the known-primitive table of the classifier.
	Primitives map[string]bool
	// Enums lists domain type names known to be tagged enums.
	Enums map[string]bool
	// Wrappers maps known transparent wrapper names to their inner
	// declared type text.
	Wrappers map[string]string
}

func (r *Resolver) namespace() string {
	if r.Namespace == "" {
		return DefaultNamespace
	}

	return r.Namespace
}

// Resolve runs the full pipeline over a set of aggregates and
// enumerations. Aggregates that fail resolve to no plan at all;
// generation is never partial.
func (r *Resolver) Resolve(aggregates []descriptor.Aggregate, enums []descriptor.Enum) Result {
	var res Result

	for _, agg := range aggregates {
		sp, diags := r.ResolveStruct(agg)
		res.Diagnostics.Merge(diags)

		if sp != nil {
			res.Structs = append(res.Structs, *sp)
		}
	}

	for _, e := range enums {
		ep, diags := r.ResolveEnum(e)
		res.Diagnostics.Merge(diags)

		if ep != nil {
			res.Enums = append(res.Enums, *ep)
		}
	}

	return res
}

// ResolveStruct resolves one aggregate into a StructPlan. A nil plan
// means the diagnostics carry at least one error and the aggregate must
// not be generated.
func (r *Resolver) ResolveStruct(agg descriptor.Aggregate) (*StructPlan, diagnostic.Diagnostics) {
	var diags diagnostic.Diagnostics

	aggAnn, err := directive.ParseAggregate(agg.Annotations)
	if err != nil {
		addDirectiveError(&diags, err, agg.Name, "")
		return nil, diags
	}

	sp := &StructPlan{
		Name:      agg.Name,
		WireName:  agg.Name,
		Namespace: r.namespace(),
		ErrorType: aggAnn.ErrorType,
		ErrorFn:   aggAnn.ErrorFn,
	}

	if aggAnn.WireName != "" {
		sp.WireName = aggAnn.WireName
	}

	if aggAnn.Namespace != "" {
		sp.Namespace = aggAnn.Namespace
	}

	for _, field := range agg.Fields {
		fp, ok := r.resolveField(sp, aggAnn, field, &diags)
		if !ok {
			continue
		}

		sp.Fields = append(sp.Fields, fp)
	}

	if diags.HasErrors() {
		return nil, diags
	}

	finishStructPlan(sp)

	return sp, diags
}

// resolveField runs classification, inference, strategy resolution, and
// validation for a single field.
func (r *Resolver) resolveField(
	sp *StructPlan,
	aggAnn directive.AggregateAnnotation,
	field descriptor.Field,
	diags *diagnostic.Diagnostics,
) (FieldPlan, bool) {
	ann, err := directive.ParseField(field.Annotations)
	if err != nil {
		addDirectiveError(diags, err, sp.Name, field.Name)
		return FieldPlan{}, false
	}

	s := shape.Classify(field.TypeText, shape.Options{
		Primitives:  r.Primitives,
		Enums:       r.Enums,
		Wrappers:    r.Wrappers,
		Transparent: ann.Transparent,
	})

	wireField := wireFieldName(field.Name)
	if ann.Rename != "" {
		wireField = ann.Rename
	}

	ws, err := infer.Infer(infer.Request{
		Aggregate:     sp.Name,
		Field:         field.Name,
		WireAggregate: sp.WireName,
		WireField:     wireField,
		Shape:         s,
		Annotation:    ann,
	}, r.Side, diags)
	if err != nil {
		diags.AddError(
			diagnostic.CodeAmbiguousOptionality, err.Error(), sp.Name, field.Name,
			"optional", "required",
		)

		return FieldPlan{}, false
	}

	strategy, mode, expl := r.resolveStrategy(ann, s, ws, sp.Namespace)

	fp := FieldPlan{
		Name:        field.Name,
		WireName:    wireField,
		TypeText:    field.TypeText,
		Shape:       s,
		Wire:        ws,
		Strategy:    strategy,
		ErrorMode:   mode,
		DefaultFn:   ann.DefaultFn,
		FromWireFn:  ann.FromWireFn,
		ToWireFn:    ann.ToWireFn,
		ErrorFn:     ann.ErrorFn,
		ErrorType:   ann.ErrorType,
		Explanation: expl,
	}

	// Aggregate-level error settings are inherited by fields that do
	// not override them.
	if fp.ErrorFn == "" {
		fp.ErrorFn = aggAnn.ErrorFn
	}

	if fp.ErrorType == "" {
		fp.ErrorType = aggAnn.ErrorType
	}

	if v := Validate(fp, ann); v != nil {
		diags.AddError(
			diagnostic.CodeStrategyPrecondition,
			fmt.Sprintf("strategy %s: %s", v.Strategy, v.Reason),
			sp.Name, field.Name, v.SuggestedFix,
		)

		return FieldPlan{}, false
	}

	return fp, true
}

// resolveStrategy is the decision engine: deterministic,
// first-match-wins over the directive record, domain shape, and wire
// shape.
func (r *Resolver) resolveStrategy(
	ann directive.FieldAnnotation,
	s shape.Shape,
	ws infer.WireShape,
	namespace string,
) (Strategy, ErrorMode, string) {
	switch {
	case ann.Ignore:
		return StrategyIgnore, ErrorModeNone, "field excluded by directive"

	case ann.FromWireFn != "" || ann.ToWireFn != "":
		return StrategyCustom, ErrorModeNone, "custom conversion functions"

	case ann.Transparent:
		// Error mode applies to the wrapped value; a required wire
		// field needs no absence handling at all.
		if !ws.IsOptional() {
			return StrategyTransparent, ErrorModeNone, "transparent wrapper"
		}

		return StrategyTransparent, unwrapErrorMode(ann), "transparent wrapper over optional wire value"

	case isCollection(s, ws):
		return r.collectionStrategy(ann, s, namespace)

	case ann.HasDefault:
		// A default always means "wire may be absent, substitute this
		// value", independent of where optionality actually sits.
		return StrategyOptionUnwrap, ErrorModeDefault, "unwrap with default fallback"
	}

	domainNullable := s.Kind == shape.KindPointer
	wireOptional := ws.IsOptional()

	switch {
	case !domainNullable && !wireOptional:
		if r.identicalRepresentation(s, ws, namespace) {
			return StrategyDirectAssign, ErrorModeNone, "identical representations"
		}

		return StrategyDirectConvert, ErrorModeNone, "required on both sides, conversion needed"

	case !domainNullable && wireOptional:
		return StrategyOptionUnwrap, unwrapErrorMode(ann), "optional wire value into required domain field"

	case domainNullable && !wireOptional:
		return StrategyOptionWrap, ErrorModeNone, "required wire value into nullable domain field"

	default:
		return StrategyOptionMap, ErrorModeNone, "nullable on both sides"
	}
}

func (r *Resolver) collectionStrategy(
	ann directive.FieldAnnotation,
	s shape.Shape,
	namespace string,
) (Strategy, ErrorMode, string) {
	if s.IsPointerToSlice() {
		return StrategyCollectMapOption, ErrorModeNone, "nullable sequence"
	}

	elem := s.Elem()

	// No per-element conversion needed when the element already is the
	// wire element type, or is a plain primitive without absence
	// directives.
	if isWireQualified(elem.Name, namespace) {
		return StrategyCollectDirect, ErrorModeNone, "wire element type, direct sequence assignment"
	}

	if elem.Kind == shape.KindPrimitive && ann.Expect == directive.ExpectNone && !ann.HasDefault {
		return StrategyCollectDirect, ErrorModeNone, "primitive elements, direct sequence assignment"
	}

	return StrategyCollect, collectionErrorMode(ann), "element-wise sequence conversion"
}

// collectionErrorMode is like unwrapErrorMode but without the panic
// fallback: an unannotated empty sequence is simply an empty sequence.
func collectionErrorMode(ann directive.FieldAnnotation) ErrorMode {
	switch {
	case ann.Expect == directive.ExpectPanic:
		return ErrorModePanic
	case ann.Expect == directive.ExpectError:
		return ErrorModeError
	case ann.HasDefault:
		return ErrorModeDefault
	default:
		return ErrorModeNone
	}
}

// identicalRepresentation reports whether domain and wire use the same
// representation for a required value.
func (r *Resolver) identicalRepresentation(s shape.Shape, ws infer.WireShape, namespace string) bool {
	if s.Kind == shape.KindPrimitive && ws.Mapping == infer.MappingScalar {
		return true
	}

	return isWireQualified(s.Name, namespace)
}

// unwrapErrorMode derives the absence-handling mode from directives.
// Unannotated unwraps panic: fail loud rather than silently drop.
func unwrapErrorMode(ann directive.FieldAnnotation) ErrorMode {
	switch {
	case ann.Expect == directive.ExpectPanic:
		return ErrorModePanic
	case ann.Expect == directive.ExpectError:
		return ErrorModeError
	case ann.HasDefault:
		return ErrorModeDefault
	default:
		return ErrorModePanic
	}
}

// wireFieldName derives the default wire field name from the Go field
// name, following the snake_case convention of wire schemas. Runs of
// capitals stay together ("TrackID" -> "track_id").
func wireFieldName(name string) string {
	var b strings.Builder

	prevUpper := false

	for i, r := range name {
		isUpper := r >= 'A' && r <= 'Z'
		if isUpper {
			if i > 0 && !prevUpper {
				b.WriteByte('_')
			}

			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}

		prevUpper = isUpper
	}

	return b.String()
}

func isCollection(s shape.Shape, ws infer.WireShape) bool {
	return s.Kind == shape.KindSlice ||
		ws.Mapping == infer.MappingRepeated ||
		s.IsPointerToSlice()
}

func isWireQualified(name, namespace string) bool {
	return namespace != "" && strings.HasPrefix(name, namespace+".")
}

// finishStructPlan derives the aggregate-level error facts from the
// resolved fields.
func finishStructPlan(sp *StructPlan) {
	needsGenerated := false

	for i := range sp.Fields {
		fp := &sp.Fields[i]

		// Collections never report absence through ErrorModePanic by
		// default; only explicit directives set their mode, and the
		// resolver has already done so.
		if fp.ErrorMode == ErrorModeError {
			sp.NeedsFallibleConversion = true

			if fp.ErrorFn == "" && fp.ErrorType == "" {
				needsGenerated = true
			}
		}
	}

	if needsGenerated {
		sp.GeneratedErrorTypeName = sp.Name + "ConversionError"
	}
}

func addDirectiveError(diags *diagnostic.Diagnostics, err error, aggregate, field string) {
	code := diagnostic.CodeMalformedDirectiveValue
	if de, ok := err.(*directive.Error); ok {
		code = de.Code
	}

	diags.AddError(code, err.Error(), aggregate, field)
}
