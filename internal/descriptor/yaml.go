package descriptor

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Definition is the on-disk description of the domain model fed to the
// resolver: the aggregates and enumerations to generate adapters for,
// plus the type tables the classifier needs.
type Definition struct {
	// Namespace is the default wire package alias.
	Namespace string `yaml:"namespace"`
	// Wrappers maps transparent wrapper type names to their inner
	// declared type text.
	Wrappers map[string]string `yaml:"wrappers"`
	// Primitives lists extra type names treated as primitives.
	Primitives []string `yaml:"primitives"`
	// Aggregates to generate struct adapters for.
	Aggregates []Aggregate `yaml:"aggregates"`
	// Enums to generate enum adapters for.
	Enums []Enum `yaml:"enums"`
}

// ParseDefinition decodes a definition document from r.
func ParseDefinition(r io.Reader) (*Definition, error) {
	var def Definition

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("decoding definition: %w", err)
	}

	if err := def.validate(); err != nil {
		return nil, err
	}

	return &def, nil
}

// LoadDefinition reads a definition document from a file.
func LoadDefinition(path string) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening definition: %w", err)
	}
	defer f.Close()

	def, err := ParseDefinition(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return def, nil
}

// EnumNames returns the set of declared enum type names, for the
// classifier's known-enum table.
func (d *Definition) EnumNames() map[string]bool {
	names := make(map[string]bool, len(d.Enums))
	for _, e := range d.Enums {
		names[e.Name] = true
	}

	return names
}

func (d *Definition) validate() error {
	for _, agg := range d.Aggregates {
		if agg.Name == "" {
			return fmt.Errorf("aggregate with empty name")
		}

		for _, f := range agg.Fields {
			if f.Name == "" || f.TypeText == "" {
				return fmt.Errorf("aggregate %s: field needs both name and type", agg.Name)
			}
		}
	}

	for _, e := range d.Enums {
		if e.Name == "" {
			return fmt.Errorf("enum with empty name")
		}

		if len(e.Variants) == 0 {
			return fmt.Errorf("enum %s: no variants", e.Name)
		}
	}

	return nil
}
