// Package cursor implements the cursor.* motions and select.* text
// objects on an in-memory buffer.
//
// Target and Object compute where a motion lands and what a text object
// covers without moving anything; the operator handlers use them to find
// the text an operator applies to. Handler and SelectHandler move the
// selections:
//
//	router.RegisterNamespace(cursor.NewHandler(buf))
//	router.RegisterNamespace(cursor.NewSelectHandler(buf))
//
// Left and right moves step over grapheme clusters, so a combining
// sequence counts as one character.
package cursor
