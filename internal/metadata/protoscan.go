package metadata

import (
	"fmt"
	"io"
	"os"

	"github.com/emicklei/proto"
)

// ScanProto parses wire IDL source and records per-field optionality
// into a Static table. Repeated fields register as required since
// sequences communicate absence via emptiness, message-typed fields as
// optional (the wire format wraps every message field), and oneof
// members as optional.
//
// Fields the scan cannot judge are simply absent from the table.
func ScanProto(r io.Reader, filename string) (Static, error) {
	parser := proto.NewParser(r)
	if filename != "" {
		parser.Filename(filename)
	}

	def, err := parser.Parse()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}

	table := Static{}

	proto.Walk(def, proto.WithMessage(func(m *proto.Message) {
		scanMessage(table, m)
	}))

	return table, nil
}

// ScanProtoFiles scans every given .proto file and merges the results.
func ScanProtoFiles(paths ...string) (Static, error) {
	table := Static{}

	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}

		scanned, err := ScanProto(f, path)
		_ = f.Close()

		if err != nil {
			return nil, err
		}

		table.Merge(scanned)
	}

	return table, nil
}

func scanMessage(table Static, m *proto.Message) {
	for _, elem := range m.Elements {
		switch field := elem.(type) {
		case *proto.NormalField:
			switch {
			case field.Repeated:
				table[Key(m.Name, field.Name)] = false
			case field.Optional:
				table[Key(m.Name, field.Name)] = true
			case isScalarProtoType(field.Type):
				// proto3 plain scalars have no presence tracking.
				table[Key(m.Name, field.Name)] = false
			default:
				// Message-typed fields are nullable on the wire.
				table[Key(m.Name, field.Name)] = true
			}

		case *proto.MapField:
			table[Key(m.Name, field.Name)] = false

		case *proto.Oneof:
			for _, o := range field.Elements {
				if of, ok := o.(*proto.OneOfField); ok {
					table[Key(m.Name, of.Name)] = true
				}
			}
		}
	}
}

var scalarProtoTypes = map[string]bool{
	"double": true, "float": true,
	"int32": true, "int64": true,
	"uint32": true, "uint64": true,
	"sint32": true, "sint64": true,
	"fixed32": true, "fixed64": true,
	"sfixed32": true, "sfixed64": true,
	"bool": true, "string": true, "bytes": true,
}

func isScalarProtoType(name string) bool {
	return scalarProtoTypes[name]
}
