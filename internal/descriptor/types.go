package descriptor

// Field describes one field of a hand-written domain struct, as handed
// over by the source front end. TypeText is the declared type exactly as
// written ("*string", "[]Track", "TrackID", "uint64").
type Field struct {
	// Name is the Go field name.
	Name string `yaml:"name"`
	// TypeText is the declared type text of the field.
	TypeText string `yaml:"type"`
	// Annotations holds the raw directive tokens attached to the field,
	// e.g. `expect(panic)`, `default = "defaultCount"`, `optional`.
	Annotations []string `yaml:"annotations"`
}

// Aggregate describes one domain struct to generate adapters for.
type Aggregate struct {
	// Name is the domain struct name.
	Name string `yaml:"name"`
	// Annotations holds the raw directive tokens attached to the struct,
	// e.g. `namespace = "wirepb"`, `wire_name = "Track"`.
	Annotations []string `yaml:"annotations"`
	// Fields in declaration order. Order affects only diagnostic order.
	Fields []Field `yaml:"fields"`
}

// Enum describes a domain enumeration and its wire counterpart. Wire
// enums carry integer codes; variants are matched by name.
type Enum struct {
	// Name is the domain enum type name.
	Name string `yaml:"name"`
	// Annotations holds raw directive tokens attached to the enum.
	Annotations []string `yaml:"annotations"`
	// Variants are the domain variant names in declaration order.
	Variants []string `yaml:"variants"`
	// WireVariants are the wire-side variant names, typically
	// SCREAMING_SNAKE and possibly prefixed with the enum name.
	WireVariants []string `yaml:"wire_variants"`
}
