// Package infer determines the wire-side mapping and optionality of a
// domain field through a priority waterfall: explicit directive, side
// channel metadata, structural pattern, usage-pattern heuristic. A
// field no tier can resolve is an error, never a silent default.
package infer
