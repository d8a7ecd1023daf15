// Package file implements the file.* handlers: writing, editing and reading
// files, shell filters, and switching between the open buffers.
//
// The handlers work on the documents of a Manager. Disk access goes
// through a FileSystem and external commands through a Shell so both can
// be replaced in tests; the defaults use the operating system.
//
// Buffers left for another one stay loaded with their changes, as with
// Vim's 'hidden' option. Only reloading a modified buffer needs a bang.
package file
