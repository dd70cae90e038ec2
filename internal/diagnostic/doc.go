// Package diagnostic provides structured errors, warnings, and
// "why this strategy" explanations for the adapter generator.
//
// Key capabilities:
//   - Terminal errors for conflicting or malformed directives
//   - Ambiguous-optionality reports naming the aggregate and field
//   - "inferred, not verified" notes for heuristic decisions
//   - Suggested fixes alongside every precondition violation
package diagnostic
