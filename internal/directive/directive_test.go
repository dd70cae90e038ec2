package directive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adapter-generator/internal/diagnostic"
)

func TestParseFieldFlags(t *testing.T) {
	ann, err := ParseField([]string{"ignore"})
	require.NoError(t, err)
	assert.True(t, ann.Ignore)

	ann, err = ParseField([]string{"transparent"})
	require.NoError(t, err)
	assert.True(t, ann.Transparent)
}

func TestParseFieldExpect(t *testing.T) {
	// Bare expect means return-an-error, not panic.
	ann, err := ParseField([]string{"expect"})
	require.NoError(t, err)
	assert.Equal(t, ExpectError, ann.Expect)

	ann, err = ParseField([]string{"expect(panic)"})
	require.NoError(t, err)
	assert.Equal(t, ExpectPanic, ann.Expect)

	ann, err = ParseField([]string{"expect(error)"})
	require.NoError(t, err)
	assert.Equal(t, ExpectError, ann.Expect)

	_, err = ParseField([]string{"expect(abort)"})
	require.Error(t, err)

	var de *Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, diagnostic.CodeMalformedDirectiveValue, de.Code)
}

func TestParseFieldDefault(t *testing.T) {
	ann, err := ParseField([]string{"default"})
	require.NoError(t, err)
	assert.True(t, ann.HasDefault)
	assert.Empty(t, ann.DefaultFn)

	ann, err = ParseField([]string{`default = "defaultCount"`})
	require.NoError(t, err)
	assert.True(t, ann.HasDefault)
	assert.Equal(t, "defaultCount", ann.DefaultFn)

	_, err = ParseField([]string{"default", `default = "other"`})
	require.Error(t, err)

	var de *Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, diagnostic.CodeConflictingAnnotation, de.Code)

	// default_fn must carry a value.
	_, err = ParseField([]string{"default_fn"})
	require.Error(t, err)
}

func TestParseFieldOptionality(t *testing.T) {
	ann, err := ParseField([]string{"optional"})
	require.NoError(t, err)
	assert.Equal(t, OptionalityOptional, ann.Optionality)

	ann, err = ParseField([]string{"required"})
	require.NoError(t, err)
	assert.Equal(t, OptionalityRequired, ann.Optionality)

	for _, tokens := range [][]string{
		{"optional", "required"},
		{"required", "optional"},
	} {
		_, err := ParseField(tokens)
		require.Error(t, err, "tokens %v", tokens)

		var de *Error
		require.ErrorAs(t, err, &de)
		assert.Equal(t, diagnostic.CodeConflictingAnnotation, de.Code)
	}
}

func TestParseFieldValues(t *testing.T) {
	ann, err := ParseField([]string{
		`rename = "track_id"`,
		`from_wire_fn = "parseTrack"`,
		`to_wire_fn = "buildTrack"`,
		`error_fn = "newFieldError"`,
		`error_type = "ConvError"`,
	})
	require.NoError(t, err)

	assert.Equal(t, "track_id", ann.Rename)
	assert.Equal(t, "parseTrack", ann.FromWireFn)
	assert.Equal(t, "buildTrack", ann.ToWireFn)
	assert.Equal(t, "newFieldError", ann.ErrorFn)
	assert.Equal(t, "ConvError", ann.ErrorType)
}

func TestParseFieldBareIdentValue(t *testing.T) {
	ann, err := ParseField([]string{"rename = track_id"})
	require.NoError(t, err)
	assert.Equal(t, "track_id", ann.Rename)

	// Qualified identifiers are fine for function references.
	ann, err = ParseField([]string{"from_wire_fn = conv.ParseTrack"})
	require.NoError(t, err)
	assert.Equal(t, "conv.ParseTrack", ann.FromWireFn)
}

func TestParseFieldEmptyFunctionReference(t *testing.T) {
	for _, tok := range []string{
		`from_wire_fn = ""`,
		`to_wire_fn = ""`,
		`error_fn = ""`,
	} {
		_, err := ParseField([]string{tok})
		require.Error(t, err, "token %s", tok)

		var de *Error
		require.ErrorAs(t, err, &de)
		assert.Equal(t, diagnostic.CodeEmptyCustomFunctionReference, de.Code)
	}
}

func TestParseFieldMalformedTokens(t *testing.T) {
	for _, tok := range []string{
		"expect(",
		"expect()",
		"rename",
		`rename = !!`,
	} {
		_, err := ParseField([]string{tok})
		assert.Error(t, err, "token %s", tok)
	}
}

func TestParseFieldUnknownDirectivesSkipped(t *testing.T) {
	ann, err := ParseField([]string{"serde_skip", "ignore"})
	require.NoError(t, err)
	assert.True(t, ann.Ignore)
}

func TestParseAggregate(t *testing.T) {
	ann, err := ParseAggregate([]string{
		`namespace = "musicpb"`,
		`wire_name = "TrackMsg"`,
		`error_type = "TrackError"`,
		`error_fn = "newTrackError"`,
	})
	require.NoError(t, err)

	assert.Equal(t, "musicpb", ann.Namespace)
	assert.Equal(t, "TrackMsg", ann.WireName)
	assert.Equal(t, "TrackError", ann.ErrorType)
	assert.Equal(t, "newTrackError", ann.ErrorFn)
}
