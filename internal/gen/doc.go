// Package gen synthesizes adapter source files from resolved
// conversion plans. One file per aggregate and one per enumeration,
// always gofmt-formatted; running the generator twice over the same
// plans yields byte-identical output.
package gen
