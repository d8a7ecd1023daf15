// Package buffer defines the text buffer capability the key and Ex core
// reads from, and an in-memory implementation of it.
//
// Positions are byte offsets ("points"); rows are 0-indexed lines. A Span
// is the half-open byte range [Start, End). Line spans never include the
// line terminator.
//
// Basic usage:
//
//	buf := buffer.NewMemory("one\ntwo\nthree\n")
//	buf.LineAtRow(1)              // Span{4, 7}
//	buf.FindForward("th", 0)      // Span{8, 10}, true, nil
//	buf.SetSelections(buffer.Span{Start: 4, End: 4})
//
// Memory is not safe for concurrent use; the core is single-threaded and
// each view owns its buffer.
package buffer
