package shape

import "strings"

// Kind classifies a domain field's declared type.
type Kind int

const (
	_ Kind = iota // skip zero value, use it as an invalid Kind

	// KindPrimitive is a basic scalar type (string, uint64, bool, ...).
	KindPrimitive
	// KindPointer is a nullable wrapper (*T).
	KindPointer
	// KindSlice is a growable sequence ([]T).
	KindSlice
	// KindWrapper is a single-field transparent wrapper, interchangeable
	// with its inner type at the wire boundary. Only selected when the
	// field carries the transparent directive.
	KindWrapper
	// KindEnum is a closed set of named variants, integer-coded on the wire.
	KindEnum
	// KindStruct is a custom aggregate type.
	KindStruct
)

const unknownStr = "unknown"

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindPointer:
		return "pointer"
	case KindSlice:
		return "slice"
	case KindWrapper:
		return "wrapper"
	case KindEnum:
		return "enum"
	case KindStruct:
		return "struct"
	default:
		return unknownStr
	}
}

// Shape is the classified form of a declared type text.
type Shape struct {
	// Kind of the outermost type.
	Kind Kind
	// Name is the type text at this level, wrappers stripped
	// ("string" for "*string", "Track" for "[]Track").
	Name string
	// Inner is the element shape for pointer and slice kinds.
	Inner *Shape
}

// Elem returns the inner shape, or a zero Shape if there is none.
func (s Shape) Elem() Shape {
	if s.Inner == nil {
		return Shape{}
	}

	return *s.Inner
}

// IsPointerToSlice reports whether the shape is *[]T.
func (s Shape) IsPointerToSlice() bool {
	return s.Kind == KindPointer && s.Inner != nil && s.Inner.Kind == KindSlice
}

// Options control classification. The zero value uses the default
// primitive table and no known enums.
type Options struct {
	// Primitives overrides the known-primitive-name table.
	Primitives map[string]bool
	// Enums lists type names known to be tagged enums.
	Enums map[string]bool
	// Wrappers maps known transparent wrapper names to their inner
	// declared type text ("TrackID" -> "uint64").
	Wrappers map[string]string
	// Transparent marks the field as a transparent wrapper; the bare
	// declared name then classifies as KindWrapper instead of KindStruct.
	Transparent bool
}

// defaultPrimitives is the built-in known-primitive-name table.
var defaultPrimitives = map[string]bool{
	"bool":    true,
	"string":  true,
	"int":     true,
	"int8":    true,
	"int16":   true,
	"int32":   true,
	"int64":   true,
	"uint":    true,
	"uint8":   true,
	"uint16":  true,
	"uint32":  true,
	"uint64":  true,
	"byte":    true,
	"rune":    true,
	"float32": true,
	"float64": true,
}

// WithPrimitives returns the built-in primitive table extended with
// extra type names. Nil when there is nothing to extend, so callers can
// keep the zero Options.
func WithPrimitives(extra ...string) map[string]bool {
	if len(extra) == 0 {
		return nil
	}

	table := make(map[string]bool, len(defaultPrimitives)+len(extra))
	for name := range defaultPrimitives {
		table[name] = true
	}

	for _, name := range extra {
		table[name] = true
	}

	return table
}

// Classify maps a declared-type text to its Shape. It is total: any
// input yields a Shape, defaulting to KindStruct for unrecognized
// single names.
func Classify(typeText string, opts Options) Shape {
	text := strings.TrimSpace(typeText)

	switch {
	case strings.HasPrefix(text, "*"):
		inner := Classify(text[1:], opts)
		return Shape{Kind: KindPointer, Name: strings.TrimSpace(text[1:]), Inner: &inner}

	case strings.HasPrefix(text, "[]"):
		inner := Classify(text[2:], opts)
		return Shape{Kind: KindSlice, Name: strings.TrimSpace(text[2:]), Inner: &inner}
	}

	primitives := opts.Primitives
	if primitives == nil {
		primitives = defaultPrimitives
	}

	if primitives[text] {
		return Shape{Kind: KindPrimitive, Name: text}
	}

	if innerText, ok := opts.Wrappers[text]; ok {
		inner := Classify(innerText, opts)
		return Shape{Kind: KindWrapper, Name: text, Inner: &inner}
	}

	if opts.Transparent {
		return Shape{Kind: KindWrapper, Name: text}
	}

	if opts.Enums[text] || looksLikeEnum(text) {
		return Shape{Kind: KindEnum, Name: text}
	}

	// Anything else, qualified or not, defaults to a custom aggregate.
	return Shape{Kind: KindStruct, Name: text}
}

// looksLikeEnum is the naming heuristic used when no explicit enum
// marker is configured. Unqualified names ending in a conventional
// enum suffix classify as enums.
func looksLikeEnum(name string) bool {
	if strings.Contains(name, ".") {
		return false
	}

	for _, suffix := range []string{"Status", "State", "Kind", "Mode", "Level"} {
		if strings.HasSuffix(name, suffix) && name != suffix {
			return true
		}
	}

	return false
}
