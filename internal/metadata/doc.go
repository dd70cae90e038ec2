// Package metadata implements the side channel consulted during wire
// shape inference: swappable, best-effort lookups of per-field wire
// optionality gathered outside the generator proper (scanned IDL
// source, a reviewed YAML table, or build-time environment variables).
//
// A source that has no answer is not an error; the caller continues
// down its inference waterfall.
package metadata
