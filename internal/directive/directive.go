package directive

import (
	"fmt"
	"strings"

	"adapter-generator/internal/diagnostic"
)

// ExpectMode selects the runtime behavior generated for a missing wire
// value on this field.
type ExpectMode int

const (
	// ExpectNone leaves absence handling to the resolver's defaults.
	ExpectNone ExpectMode = iota
	// ExpectPanic aborts conversion with a message naming the field.
	ExpectPanic
	// ExpectError returns a typed error up the caller's chain.
	ExpectError
)

// String returns a human-readable mode name.
func (m ExpectMode) String() string {
	switch m {
	case ExpectNone:
		return "none"
	case ExpectPanic:
		return "panic"
	case ExpectError:
		return "error"
	default:
		return "unknown"
	}
}

// Optionality is an explicit wire-optionality override.
type Optionality int

const (
	// OptionalityUnset means no override was given.
	OptionalityUnset Optionality = iota
	// OptionalityOptional marks the wire field optional.
	OptionalityOptional
	// OptionalityRequired marks the wire field required.
	OptionalityRequired
)

// FieldAnnotation is the typed record produced from a field's raw
// directive tokens. Downstream logic pattern-matches this record and
// never re-parses text.
type FieldAnnotation struct {
	// Ignore excludes the field from conversion entirely.
	Ignore bool
	// Transparent marks the field a transparent wrapper.
	Transparent bool
	// Expect selects panic-or-error handling for absent wire values.
	Expect ExpectMode
	// HasDefault is set by bare `default` and by `default = "fn"`.
	HasDefault bool
	// DefaultFn is the custom default constructor; empty with
	// HasDefault set means the zero value.
	DefaultFn string
	// Rename overrides the wire field name.
	Rename string
	// Optionality is the explicit wire-optionality override, if any.
	Optionality Optionality
	// FromWireFn / ToWireFn are custom per-direction conversion functions.
	FromWireFn string
	ToWireFn   string
	// ErrorFn / ErrorType override the generated error scaffolding.
	ErrorFn   string
	ErrorType string
}

// AggregateAnnotation is the typed record for struct- or enum-level
// directives. Error settings are inherited by fields lacking their own.
type AggregateAnnotation struct {
	// Namespace overrides the wire package alias.
	Namespace string
	// WireName overrides the wire type name.
	WireName string
	// ErrorType / ErrorFn are the aggregate-level error defaults.
	ErrorType string
	ErrorFn   string
}

// Error is a directive parse failure. It is terminal for the aggregate
// being processed.
type Error struct {
	// Code is one of the diagnostic codes.
	Code string
	// Directive is the offending token.
	Directive string
	// Reason describes the failure.
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] directive %q: %s", e.Code, e.Directive, e.Reason)
}

// valueDirectives require a literal or identifier argument.
var valueDirectives = map[string]bool{
	"rename":       true,
	"from_wire_fn": true,
	"to_wire_fn":   true,
	"error_fn":     true,
	"error_type":   true,
	"namespace":    true,
	"wire_name":    true,
}

// ParseField parses raw field directive tokens into a FieldAnnotation.
// Pure; unknown directives are skipped.
func ParseField(tokens []string) (FieldAnnotation, error) {
	var ann FieldAnnotation

	for _, raw := range tokens {
		name, value, hasValue, err := splitToken(raw)
		if err != nil {
			return FieldAnnotation{}, err
		}

		switch name {
		case "ignore":
			ann.Ignore = true

		case "transparent":
			ann.Transparent = true

		case "expect":
			mode := ExpectError

			if hasValue {
				switch value {
				case "panic":
					mode = ExpectPanic
				case "error":
					mode = ExpectError
				default:
					return FieldAnnotation{}, &Error{
						Code:      diagnostic.CodeMalformedDirectiveValue,
						Directive: raw,
						Reason:    "expect accepts only panic or error",
					}
				}
			}

			ann.Expect = mode

		case "default", "default_fn":
			if ann.HasDefault {
				return FieldAnnotation{}, &Error{
					Code:      diagnostic.CodeConflictingAnnotation,
					Directive: raw,
					Reason:    "default specified more than once",
				}
			}

			if name == "default_fn" && !hasValue {
				return FieldAnnotation{}, &Error{
					Code:      diagnostic.CodeMalformedDirectiveValue,
					Directive: raw,
					Reason:    `default_fn requires a value, use default_fn = "function"`,
				}
			}

			ann.HasDefault = true
			ann.DefaultFn = value

		case "optional":
			if ann.Optionality == OptionalityRequired {
				return FieldAnnotation{}, conflictingOptionality(raw)
			}

			ann.Optionality = OptionalityOptional

		case "required":
			if ann.Optionality == OptionalityOptional {
				return FieldAnnotation{}, conflictingOptionality(raw)
			}

			ann.Optionality = OptionalityRequired

		case "rename":
			ann.Rename = value

		case "from_wire_fn", "to_wire_fn", "error_fn":
			if value == "" {
				return FieldAnnotation{}, &Error{
					Code:      diagnostic.CodeEmptyCustomFunctionReference,
					Directive: raw,
					Reason:    "function reference must not be empty",
				}
			}

			switch name {
			case "from_wire_fn":
				ann.FromWireFn = value
			case "to_wire_fn":
				ann.ToWireFn = value
			case "error_fn":
				ann.ErrorFn = value
			}

		case "error_type":
			ann.ErrorType = value

		default:
			// Unknown directives belong to other tools; skip.
		}
	}

	return ann, nil
}

// ParseAggregate parses struct- or enum-level directive tokens.
func ParseAggregate(tokens []string) (AggregateAnnotation, error) {
	var ann AggregateAnnotation

	for _, raw := range tokens {
		name, value, _, err := splitToken(raw)
		if err != nil {
			return AggregateAnnotation{}, err
		}

		switch name {
		case "namespace":
			ann.Namespace = value
		case "wire_name":
			ann.WireName = value
		case "error_type":
			ann.ErrorType = value
		case "error_fn":
			ann.ErrorFn = value
		}
	}

	return ann, nil
}

func conflictingOptionality(raw string) *Error {
	return &Error{
		Code:      diagnostic.CodeConflictingAnnotation,
		Directive: raw,
		Reason:    "cannot specify both optional and required",
	}
}

// splitToken decomposes one raw token into directive name, value, and
// whether a value was present. Accepted forms:
//
//	name
//	name(arg)
//	name = "literal"
//	name = identifier
func splitToken(raw string) (name, value string, hasValue bool, err error) {
	tok := strings.TrimSpace(raw)

	if eq := strings.Index(tok, "="); eq >= 0 {
		name = strings.TrimSpace(tok[:eq])
		value = strings.TrimSpace(tok[eq+1:])

		unquoted, ok := unquoteOrIdent(value)
		if !ok {
			return "", "", false, &Error{
				Code:      diagnostic.CodeMalformedDirectiveValue,
				Directive: raw,
				Reason:    "value must be a string literal or identifier",
			}
		}

		return name, unquoted, true, nil
	}

	if open := strings.Index(tok, "("); open >= 0 {
		if !strings.HasSuffix(tok, ")") {
			return "", "", false, &Error{
				Code:      diagnostic.CodeMalformedDirectiveValue,
				Directive: raw,
				Reason:    "unterminated argument list",
			}
		}

		name = strings.TrimSpace(tok[:open])
		value = strings.TrimSpace(tok[open+1 : len(tok)-1])

		if value == "" {
			return "", "", false, &Error{
				Code:      diagnostic.CodeMalformedDirectiveValue,
				Directive: raw,
				Reason:    "empty argument list",
			}
		}

		return name, value, true, nil
	}

	if valueDirectives[tok] {
		return "", "", false, &Error{
			Code:      diagnostic.CodeMalformedDirectiveValue,
			Directive: raw,
			Reason:    "directive requires a value",
		}
	}

	return tok, "", false, nil
}

// unquoteOrIdent strips surrounding quotes from a string literal or
// validates a bare identifier (dots allowed for qualified names).
func unquoteOrIdent(v string) (string, bool) {
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		return v[1 : len(v)-1], true
	}

	if v == "" {
		return "", false
	}

	for i, r := range v {
		switch {
		case r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '_' || r == '.':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return "", false
		}
	}

	return v, true
}
