package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adapter-generator/internal/descriptor"
	"adapter-generator/internal/diagnostic"
	"adapter-generator/internal/metadata"
)

func field(name, typeText string, annotations ...string) descriptor.Field {
	return descriptor.Field{
		Name:        name,
		TypeText:    typeText,
		Annotations: annotations,
	}
}

func aggregate(fields ...descriptor.Field) descriptor.Aggregate {
	return descriptor.Aggregate{Name: "Track", Fields: fields}
}

func resolveOne(t *testing.T, r *Resolver, f descriptor.Field) FieldPlan {
	t.Helper()

	sp, diags := r.ResolveStruct(aggregate(f))
	require.NotNil(t, sp, "diagnostics: %+v", diags.Errors)
	require.Len(t, sp.Fields, 1)

	return sp.Fields[0]
}

func TestUnannotatedPrimitiveIsDirectAssign(t *testing.T) {
	fp := resolveOne(t, &Resolver{}, field("Duration", "uint64"))

	assert.Equal(t, StrategyDirectAssign, fp.Strategy)
	assert.Equal(t, ErrorModeNone, fp.ErrorMode)
}

func TestDefaultedPrimitiveUnwrapsWithDefault(t *testing.T) {
	// The default marks the wire field absentable even though a bare
	// primitive would resolve as required.
	fp := resolveOne(t, &Resolver{}, field("Count", "uint32", `default = "defaultCount"`))

	assert.Equal(t, StrategyOptionUnwrap, fp.Strategy)
	assert.Equal(t, ErrorModeDefault, fp.ErrorMode)
	assert.Equal(t, "defaultCount", fp.DefaultFn)
	assert.True(t, fp.Wire.IsOptional())
}

func TestNullableAggregateMapsOption(t *testing.T) {
	fp := resolveOne(t, &Resolver{}, field("Album", "*Album"))

	assert.Equal(t, StrategyOptionMap, fp.Strategy)
	assert.Equal(t, ErrorModeNone, fp.ErrorMode)
}

func TestPrimitiveSequenceIsDirectWithoutDirectives(t *testing.T) {
	fp := resolveOne(t, &Resolver{}, field("Tags", "[]string"))

	assert.Equal(t, StrategyCollectDirect, fp.Strategy)
	assert.Equal(t, ErrorModeNone, fp.ErrorMode)
}

func TestPrimitiveSequenceWithExpectCollects(t *testing.T) {
	// The absence directive forces element-wise handling so emptiness
	// can be reported.
	fp := resolveOne(t, &Resolver{}, field("Tags", "[]string", "expect"))

	assert.Equal(t, StrategyCollect, fp.Strategy)
	assert.Equal(t, ErrorModeError, fp.ErrorMode)
}

func TestUnannotatedAggregateUnwrapsWithPanic(t *testing.T) {
	var found bool

	sp, diags := (&Resolver{}).ResolveStruct(aggregate(field("Album", "Album")))
	require.NotNil(t, sp)

	fp := sp.Fields[0]
	assert.Equal(t, StrategyOptionUnwrap, fp.Strategy)
	assert.Equal(t, ErrorModePanic, fp.ErrorMode)

	// The optionality heuristic must be surfaced.
	for _, info := range diags.Infos {
		if info.Code == diagnostic.CodeInferredOptionality {
			found = true
		}
	}

	assert.True(t, found, "expected inferred-optionality info, got %+v", diags.Infos)
}

func TestMessageSequenceCollects(t *testing.T) {
	fp := resolveOne(t, &Resolver{}, field("Tracks", "[]Track"))

	assert.Equal(t, StrategyCollect, fp.Strategy)
	// Collections without directives never panic on emptiness.
	assert.Equal(t, ErrorModeNone, fp.ErrorMode)
}

func TestNullableSequenceMapsOption(t *testing.T) {
	fp := resolveOne(t, &Resolver{}, field("Tags", "*[]string"))

	assert.Equal(t, StrategyCollectMapOption, fp.Strategy)
}

func TestWireQualifiedSequenceIsDirect(t *testing.T) {
	fp := resolveOne(t, &Resolver{}, field("Raw", "[]*wirepb.Item"))

	assert.Equal(t, StrategyCollectDirect, fp.Strategy)
}

func TestIgnoreWinsOverEverything(t *testing.T) {
	fp := resolveOne(t, &Resolver{}, field("Cache", "*Album", "ignore", "expect(panic)"))

	assert.Equal(t, StrategyIgnore, fp.Strategy)
	assert.Equal(t, ErrorModeNone, fp.ErrorMode)
}

func TestCustomFunctionsWinOverShapes(t *testing.T) {
	fp := resolveOne(t, &Resolver{}, field("Span", "Duration",
		`from_wire_fn = "parseSpan"`, `to_wire_fn = "buildSpan"`, "required"))

	assert.Equal(t, StrategyCustom, fp.Strategy)
	assert.Equal(t, "parseSpan", fp.FromWireFn)
	assert.Equal(t, "buildSpan", fp.ToWireFn)
}

func TestTransparentWrapper(t *testing.T) {
	r := &Resolver{Wrappers: map[string]string{"TrackID": "uint64"}}

	fp := resolveOne(t, r, field("Id", "TrackID", "transparent"))
	assert.Equal(t, StrategyTransparent, fp.Strategy)
	assert.Equal(t, ErrorModeNone, fp.ErrorMode)

	// Over an optional wire value the unwrap semantics apply.
	fp = resolveOne(t, r, field("Id", "TrackID", "transparent", "optional", "expect"))
	assert.Equal(t, StrategyTransparent, fp.Strategy)
	assert.Equal(t, ErrorModeError, fp.ErrorMode)
}

func TestExplicitOptionalPrimitiveUnwrapsPanicByDefault(t *testing.T) {
	fp := resolveOne(t, &Resolver{}, field("Title", "string", "optional"))

	assert.Equal(t, StrategyOptionUnwrap, fp.Strategy)
	assert.Equal(t, ErrorModePanic, fp.ErrorMode)

	fp = resolveOne(t, &Resolver{}, field("Title", "string", "optional", "expect"))
	assert.Equal(t, ErrorModeError, fp.ErrorMode)
}

func TestRequiredWireIntoPointerWraps(t *testing.T) {
	side := metadata.Static{metadata.Key("Track", "rating"): false}

	fp := resolveOne(t, &Resolver{Side: side}, field("Rating", "*uint32"))

	assert.Equal(t, StrategyOptionWrap, fp.Strategy)
	assert.Equal(t, ErrorModeNone, fp.ErrorMode)
}

func TestRenameFeedsSideChannelLookup(t *testing.T) {
	// The side channel is keyed by wire names, so the rename must apply
	// before the lookup.
	side := metadata.Static{metadata.Key("Track", "track_title"): true}

	fp := resolveOne(t, &Resolver{Side: side}, field("Title", "string", `rename = "track_title"`))

	assert.Equal(t, "track_title", fp.WireName)
	assert.Equal(t, StrategyOptionUnwrap, fp.Strategy)
}

func TestAggregateOverrides(t *testing.T) {
	agg := descriptor.Aggregate{
		Name:        "Track",
		Annotations: []string{`wire_name = "TrackMsg"`, `namespace = "musicpb"`},
		Fields:      []descriptor.Field{field("Title", "string")},
	}

	sp, _ := (&Resolver{}).ResolveStruct(agg)
	require.NotNil(t, sp)

	assert.Equal(t, "TrackMsg", sp.WireName)
	assert.Equal(t, "musicpb", sp.Namespace)
}

func TestErrorModeErrorMarksFallible(t *testing.T) {
	sp, _ := (&Resolver{}).ResolveStruct(aggregate(
		field("Title", "string", "optional", "expect"),
		field("Duration", "uint64"),
	))
	require.NotNil(t, sp)

	assert.True(t, sp.NeedsFallibleConversion)
	assert.Equal(t, "TrackConversionError", sp.GeneratedErrorTypeName)
}

func TestErrorOverridesSuppressGeneratedType(t *testing.T) {
	sp, _ := (&Resolver{}).ResolveStruct(aggregate(
		field("Title", "string", "optional", "expect", `error_fn = "newFieldError"`),
	))
	require.NotNil(t, sp)

	assert.True(t, sp.NeedsFallibleConversion)
	assert.Empty(t, sp.GeneratedErrorTypeName)
}

func TestAggregateErrorSettingsInherited(t *testing.T) {
	agg := descriptor.Aggregate{
		Name:        "Track",
		Annotations: []string{`error_type = "TrackError"`},
		Fields: []descriptor.Field{
			field("Title", "string", "optional", "expect"),
			field("Album", "*Album", `error_type = "AlbumError"`),
		},
	}

	sp, _ := (&Resolver{}).ResolveStruct(agg)
	require.NotNil(t, sp)

	assert.Equal(t, "TrackError", sp.Fields[0].ErrorType)
	// Field-level overrides beat the inherited setting.
	assert.Equal(t, "AlbumError", sp.Fields[1].ErrorType)
}

func TestConflictingDirectivesFailTheAggregate(t *testing.T) {
	sp, diags := (&Resolver{}).ResolveStruct(aggregate(
		field("Title", "string", "optional", "required"),
		field("Duration", "uint64"),
	))

	// Generation is never partial.
	assert.Nil(t, sp)
	require.True(t, diags.HasErrors())
	assert.Equal(t, diagnostic.CodeConflictingAnnotation, diags.Errors[0].Code)
}

func TestResolveSkipsFailedAggregates(t *testing.T) {
	res := (&Resolver{}).Resolve([]descriptor.Aggregate{
		aggregate(field("Title", "string", "optional", "required")),
		{Name: "Album", Fields: []descriptor.Field{
			{Name: "Name", TypeText: "string"},
		}},
	}, nil)

	require.Len(t, res.Structs, 1)
	assert.Equal(t, "Album", res.Structs[0].Name)
	assert.True(t, res.Diagnostics.HasErrors())
}

func TestDefaultNamespace(t *testing.T) {
	sp, _ := (&Resolver{}).ResolveStruct(aggregate(field("Title", "string")))
	require.NotNil(t, sp)
	assert.Equal(t, DefaultNamespace, sp.Namespace)

	sp, _ = (&Resolver{Namespace: "musicpb"}).ResolveStruct(aggregate(field("Title", "string")))
	require.NotNil(t, sp)
	assert.Equal(t, "musicpb", sp.Namespace)
}

func TestExplanationsAlwaysPresent(t *testing.T) {
	sp, _ := (&Resolver{}).ResolveStruct(aggregate(
		field("Title", "string"),
		field("Album", "*Album"),
		field("Tags", "[]string"),
	))
	require.NotNil(t, sp)

	for _, fp := range sp.Fields {
		assert.NotEmpty(t, fp.Explanation, "field %s", fp.Name)
	}
}
