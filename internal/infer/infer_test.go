package infer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adapter-generator/internal/diagnostic"
	"adapter-generator/internal/directive"
	"adapter-generator/internal/metadata"
	"adapter-generator/internal/shape"
)

func request(typeText string, ann directive.FieldAnnotation) Request {
	return Request{
		Aggregate:     "Track",
		Field:         "Title",
		WireAggregate: "Track",
		WireField:     "title",
		Shape:         shape.Classify(typeText, shape.Options{}),
		Annotation:    ann,
	}
}

func TestExplicitOverrideWinsOverEverything(t *testing.T) {
	// The side channel says required; the explicit directive says
	// optional and must win.
	side := metadata.Static{metadata.Key("Track", "title"): false}

	ws, err := Infer(request("string", directive.FieldAnnotation{
		Optionality: directive.OptionalityOptional,
	}), side, nil)
	require.NoError(t, err)

	assert.True(t, ws.IsOptional())
	assert.Equal(t, MappingScalar, ws.Mapping)
}

func TestSideChannelBeatsStructure(t *testing.T) {
	// A plain string would default to required; the side channel says
	// the wire field is optional.
	side := metadata.Static{metadata.Key("Track", "title"): true}

	ws, err := Infer(request("string", directive.FieldAnnotation{}), side, nil)
	require.NoError(t, err)
	assert.True(t, ws.IsOptional())
}

func TestSideChannelNoAnswerContinues(t *testing.T) {
	side := metadata.Static{metadata.Key("Album", "name"): true}

	ws, err := Infer(request("string", directive.FieldAnnotation{}), side, nil)
	require.NoError(t, err)
	assert.False(t, ws.IsOptional())
}

func TestStructuralPatterns(t *testing.T) {
	tests := []struct {
		typeText string
		mapping  Mapping
		optional bool
	}{
		{"*string", MappingOptional, true},
		{"*Track", MappingMessage, true},
		{"[]string", MappingRepeated, false},
		{"[]Track", MappingRepeated, false},
		{"string", MappingScalar, false},
		{"uint64", MappingScalar, false},
		{"PlaybackStatus", MappingScalar, false},
	}

	for _, tt := range tests {
		t.Run(tt.typeText, func(t *testing.T) {
			ws, err := Infer(request(tt.typeText, directive.FieldAnnotation{}), nil, nil)
			require.NoError(t, err)

			assert.Equal(t, tt.mapping, ws.Mapping)
			assert.Equal(t, tt.optional, ws.IsOptional())
		})
	}
}

func TestUsageIndicatorsImplyOptional(t *testing.T) {
	// A defaulted primitive only makes sense on an absentable wire
	// field, so the indicator beats the primitive required default.
	ws, err := Infer(request("uint32", directive.FieldAnnotation{HasDefault: true}), nil, nil)
	require.NoError(t, err)
	assert.True(t, ws.IsOptional())

	ws, err = Infer(request("string", directive.FieldAnnotation{Expect: directive.ExpectPanic}), nil, nil)
	require.NoError(t, err)
	assert.True(t, ws.IsOptional())
}

func TestRepeatedNeverOptional(t *testing.T) {
	// Even an explicit optional cannot make a repeated field nullable;
	// absence of a sequence is emptiness.
	ws, err := Infer(request("[]string", directive.FieldAnnotation{
		Optionality: directive.OptionalityOptional,
	}), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, MappingRepeated, ws.Mapping)
	assert.False(t, ws.IsOptional())
}

func TestAggregateFieldInfersOptionalWithInfo(t *testing.T) {
	var diags diagnostic.Diagnostics

	ws, err := Infer(request("Album", directive.FieldAnnotation{}), nil, &diags)
	require.NoError(t, err)

	assert.Equal(t, MappingMessage, ws.Mapping)
	assert.True(t, ws.IsOptional())

	// The heuristic is surfaced, not silent.
	require.Len(t, diags.Infos, 1)
	assert.Equal(t, diagnostic.CodeInferredOptionality, diags.Infos[0].Code)
	assert.False(t, diags.HasErrors())
}

func TestCustomFunctionsGiveCustomMapping(t *testing.T) {
	ws, err := Infer(request("Duration", directive.FieldAnnotation{
		FromWireFn:  "parseDuration",
		Optionality: directive.OptionalityRequired,
	}), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, MappingCustom, ws.Mapping)
	assert.False(t, ws.IsOptional())
}

func TestEnvSourceFeedsWaterfall(t *testing.T) {
	t.Setenv("WIRE_FIELD_META_TRACK_TITLE", "optional")

	ws, err := Infer(request("string", directive.FieldAnnotation{}), metadata.EnvSource{}, nil)
	require.NoError(t, err)
	assert.True(t, ws.IsOptional())
}
