// Package plan resolves each domain field to exactly one conversion
// strategy. The resolver is a deterministic, first-match-wins decision
// table over the parsed directives, the classified domain shape, and
// the inferred wire shape; the validator re-checks the structural
// preconditions of whatever strategy came out.
package plan
