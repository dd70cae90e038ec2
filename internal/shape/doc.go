// Package shape classifies declared domain type text into a small fixed
// set of structural shapes. Classification is purely syntactic and
// total; it never consults type-checker information.
package shape
