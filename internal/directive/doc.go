// Package directive parses raw per-field and per-aggregate annotation
// tokens into typed records. Parsing happens exactly once; everything
// downstream works off the typed form.
package directive
