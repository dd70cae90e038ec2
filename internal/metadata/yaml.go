package metadata

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlFile is the on-disk shape of a reviewed optionality table:
//
//	messages:
//	  Track:
//	    name: optional
//	    duration: required
type yamlFile struct {
	Messages map[string]map[string]string `yaml:"messages"`
}

// ParseYAML reads a hand-reviewed optionality table.
func ParseYAML(data []byte) (Static, error) {
	var file yamlFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing optionality table: %w", err)
	}

	table := Static{}

	for message, fields := range file.Messages {
		for field, label := range fields {
			switch label {
			case "optional":
				table[Key(message, field)] = true
			case "required", "repeated":
				table[Key(message, field)] = false
			default:
				return nil, fmt.Errorf(
					"optionality table %s.%s: label %q, want optional or required",
					message, field, label)
			}
		}
	}

	return table, nil
}

// LoadYAML reads and parses an optionality table file.
func LoadYAML(path string) (Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading optionality table: %w", err)
	}

	return ParseYAML(data)
}
