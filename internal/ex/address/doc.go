// Package address resolves parsed Ex line ranges against a buffer.
//
// A Resolver walks each side of an ex.RangeNode left to right, carrying a
// current-line anchor through the tokens, and produces a Region: the first
// and last rows plus the byte span that covers them.
//
//	node, _ := ex.DefaultRegistry().ParseRange(".;/end/")
//	region, err := address.New(buf).Resolve(node, ex.DefaultLine)
//
// The line address 0 resolves to buffer.BeforeFirstLine, which commands
// such as :copy and :move use to target the position above the first line.
package address
