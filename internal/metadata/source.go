package metadata

import (
	"os"
	"strings"
)

// Source answers best-effort wire-optionality questions keyed by
// (aggregate, field). The second return is false when the source has no
// answer, in which case the inference waterfall continues.
type Source interface {
	FieldOptionality(aggregate, field string) (optional bool, ok bool)
}

// Key builds the canonical lookup key for one field.
func Key(aggregate, field string) string {
	return aggregate + "." + field
}

// Static is an in-memory optionality table.
type Static map[string]bool

// FieldOptionality implements Source.
func (s Static) FieldOptionality(aggregate, field string) (bool, bool) {
	v, ok := s[Key(aggregate, field)]
	return v, ok
}

// Merge copies entries of other into s, overwriting duplicates.
func (s Static) Merge(other Static) {
	for k, v := range other {
		s[k] = v
	}
}

// None is a Source that never answers.
type None struct{}

// FieldOptionality implements Source.
func (None) FieldOptionality(string, string) (bool, bool) { return false, false }

// EnvSource reads optionality from process environment variables, the
// way a build script exports scanned wire metadata. Variables take the
// form <PREFIX>_<AGGREGATE>_<FIELD>=optional|required.
type EnvSource struct {
	// Prefix defaults to WIRE_FIELD_META when empty.
	Prefix string
}

const defaultEnvPrefix = "WIRE_FIELD_META"

// FieldOptionality implements Source.
func (e EnvSource) FieldOptionality(aggregate, field string) (bool, bool) {
	prefix := e.Prefix
	if prefix == "" {
		prefix = defaultEnvPrefix
	}

	key := strings.ToUpper(prefix + "_" + aggregate + "_" + field)

	switch os.Getenv(key) {
	case "optional":
		return true, true
	case "required", "repeated":
		return false, true
	default:
		return false, false
	}
}

// Multi consults sources in order and returns the first answer.
type Multi []Source

// FieldOptionality implements Source.
func (m Multi) FieldOptionality(aggregate, field string) (bool, bool) {
	for _, src := range m {
		if src == nil {
			continue
		}

		if v, ok := src.FieldOptionality(aggregate, field); ok {
			return v, true
		}
	}

	return false, false
}
