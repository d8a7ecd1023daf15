// Package loader reads configuration sources into plain maps: TOML files
// with @include directives, and VIMCORE_ environment variables.
package loader

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrIncludeDepth is returned when @include directives nest too deeply.
var ErrIncludeDepth = errors.New("include depth exceeded")

// FileSystem is the file access the loaders need.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
}

// OSFS is the real filesystem.
type OSFS struct{}

func (OSFS) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// ParseError is a configuration file that could not be decoded. Line
// and Column are 1-based and zero when unknown.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

// Error formats as path:line:col: message, omitting unknown parts.
func (e *ParseError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Path)
	for _, n := range []int{e.Line, e.Column} {
		if n <= 0 {
			break
		}
		fmt.Fprintf(&sb, ":%d", n)
	}
	return sb.String() + ": " + e.Message
}

func (e *ParseError) Unwrap() error { return e.Err }
