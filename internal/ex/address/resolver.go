package address

import (
	"strings"
	"unicode"

	"github.com/dshills/vimcore/internal/engine/buffer"
	"github.com/dshills/vimcore/internal/ex"
)

// Region is a resolved line range. Rows are zero based and inclusive.
type Region struct {
	First int
	Last  int

	// Span covers the lines including the final line terminator, so the
	// whole buffer is [0, Size).
	Span buffer.Span
}

// IsBeforeFirstLine reports whether the region is the line-0 sentinel.
func (r Region) IsBeforeFirstLine() bool {
	return r.First < 0
}

// Lines returns the number of rows in the region.
func (r Region) Lines() int {
	if r.IsBeforeFirstLine() {
		return 0
	}
	return r.Last - r.First + 1
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithIgnoreCase makes searches case-insensitive. With smartcase a pattern
// containing an upper-case letter stays case-sensitive.
func WithIgnoreCase(ignore, smart bool) Option {
	return func(r *Resolver) {
		r.ignoreCase = ignore
		r.smartCase = smart
	}
}

// WithLastSearch sets the pattern an empty search address reuses.
func WithLastSearch(pattern string) Option {
	return func(r *Resolver) {
		r.lastSearch = pattern
	}
}

// WithVisual makes '< and '> name the current selections instead of the
// marks left by the last visual mode.
func WithVisual(active bool) Option {
	return func(r *Resolver) {
		r.visual = active
	}
}

// Resolver computes line regions for a single buffer state.
type Resolver struct {
	buf        buffer.Buffer
	ignoreCase bool
	smartCase  bool
	visual     bool
	lastSearch string
}

// New creates a Resolver for buf.
func New(buf buffer.Buffer, opts ...Option) *Resolver {
	r := &Resolver{buf: buf}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LastSearch returns the most recent search pattern, including one used by
// a search address during resolution.
func (r *Resolver) LastSearch() string {
	return r.lastSearch
}

// Resolve computes the region for node. An empty node resolves by def.
func (r *Resolver) Resolve(node ex.RangeNode, def ex.DefaultRange) (Region, error) {
	if node.IsEmpty() {
		return r.defaultRegion(def), nil
	}
	if hasPercent(node.Start) || hasPercent(node.End) {
		return r.whole(), nil
	}

	cursor := r.cursorRow()
	first, err := r.side(node.Start, cursor)
	if err != nil {
		return Region{}, err
	}
	if node.Separator == ex.NoSeparator {
		return r.region(first, first), nil
	}

	anchor := cursor
	if node.Separator == ex.Semicolon {
		anchor = first
	}
	last, err := r.side(node.End, anchor)
	if err != nil {
		return Region{}, err
	}
	return r.region(first, last), nil
}

// ResolveLine resolves the range of a parsed command line using the
// command's default range. A range-only line resolves as a single line.
func (r *Resolver) ResolveLine(line *ex.ParsedCommandLine) (Region, error) {
	def := ex.DefaultLine
	if line.Command != nil {
		def = line.Command.Default
	}
	return r.Resolve(line.Range, def)
}

// Row resolves a destination address such as the target of :copy. It
// returns -1 for the address 0.
func (r *Resolver) Row(node ex.RangeNode) (int, error) {
	region, err := r.Resolve(node, ex.DefaultLine)
	if err != nil {
		return 0, err
	}
	return region.Last, nil
}

func (r *Resolver) defaultRegion(def ex.DefaultRange) Region {
	switch def {
	case ex.DefaultAll:
		return r.whole()
	case ex.DefaultLast:
		last := r.buf.LineCount() - 1
		return r.region(last, last)
	default:
		cur := r.cursorRow()
		return r.region(cur, cur)
	}
}

func (r *Resolver) whole() Region {
	return Region{
		First: 0,
		Last:  r.buf.LineCount() - 1,
		Span:  buffer.Span{Start: 0, End: r.buf.Size()},
	}
}

// region orders and clamps two resolved rows.
func (r *Resolver) region(first, last int) Region {
	if first > last {
		first, last = last, first
	}
	if last < 0 {
		return Region{First: -1, Last: -1, Span: buffer.BeforeFirstLine}
	}
	first = max(first, 0)
	return Region{
		First: first,
		Last:  last,
		Span:  buffer.Span{Start: r.buf.LineAtRow(first).Start, End: r.lineEnd(last)},
	}
}

func (r *Resolver) lineEnd(row int) int {
	if row+1 < r.buf.LineCount() {
		return r.buf.LineAtRow(row + 1).Start
	}
	return r.buf.Size()
}

// side resolves one side of a range starting from anchor.
func (r *Resolver) side(tokens []ex.Token, anchor int) (int, error) {
	row := anchor
	zero := false
	for _, tok := range tokens {
		switch tok.Kind {
		case ex.TokenDot:
			row = anchor
		case ex.TokenDigits:
			row = tok.Line - 1
			zero = tok.Line == 0
		case ex.TokenDollar:
			row = r.buf.LineCount() - 1
		case ex.TokenMark:
			mr, err := r.mark(tok.Mark)
			if err != nil {
				return 0, err
			}
			row = mr
		case ex.TokenSearchForward:
			sr, err := r.searchForward(tok.Pattern, row)
			if err != nil {
				return 0, err
			}
			row = sr
		case ex.TokenSearchBackward:
			sr, err := r.searchBackward(tok.Pattern, row)
			if err != nil {
				return 0, err
			}
			row = sr
		case ex.TokenOffset:
			row += tok.Sum()
		}
	}
	return r.clamp(row, zero), nil
}

func (r *Resolver) clamp(row int, zero bool) int {
	if row < 0 {
		if zero && row == -1 {
			return -1
		}
		return 0
	}
	return min(row, r.buf.LineCount()-1)
}

func (r *Resolver) cursorRow() int {
	sels := r.buf.CurrentSelections()
	if len(sels) == 0 {
		return 0
	}
	return r.buf.RowOf(sels[0].End)
}

func (r *Resolver) mark(name rune) (int, error) {
	if (name == '<' || name == '>') && r.visual {
		sels := r.buf.CurrentSelections()
		if len(sels) == 0 {
			return 0, &ResolutionError{Mark: name, Err: ErrMarkNotSet}
		}
		all := sels[0].Normalize()
		for _, s := range sels[1:] {
			all = all.Union(s.Normalize())
		}
		if name == '<' {
			return r.buf.RowOf(all.Start), nil
		}
		return r.buf.RowOf(all.End), nil
	}

	target, ok := r.buf.MarkLookup(name)
	if !ok {
		return 0, &ResolutionError{Mark: name, Err: ErrMarkNotSet}
	}
	if target.InOtherFile() {
		return 0, &ResolutionError{Mark: name, Err: ErrMarkInOtherFile}
	}
	return r.buf.RowOf(target.Span.Start), nil
}

func (r *Resolver) searchForward(pattern string, row int) (int, error) {
	pat, err := r.pattern(pattern)
	if err != nil {
		return 0, err
	}
	from := 0
	if row >= 0 {
		from = min(r.lineEnd(row), r.buf.Size())
	}
	found, ok, err := r.buf.FindForward(pat, from)
	return r.searchResult(pattern, found, ok, err)
}

func (r *Resolver) searchBackward(pattern string, row int) (int, error) {
	pat, err := r.pattern(pattern)
	if err != nil {
		return 0, err
	}
	if row < 0 {
		return 0, &ResolutionError{Pattern: pattern, Err: ErrPatternNotFound}
	}
	found, ok, err := r.buf.FindBackward(pat, 0, r.buf.LineAtRow(row).Start)
	return r.searchResult(pattern, found, ok, err)
}

func (r *Resolver) searchResult(pattern string, found buffer.Span, ok bool, err error) (int, error) {
	if pattern == "" {
		pattern = r.lastSearch
	}
	if err != nil {
		return 0, &ResolutionError{Pattern: pattern, Err: err}
	}
	if !ok {
		return 0, &ResolutionError{Pattern: pattern, Err: ErrPatternNotFound}
	}
	return r.buf.RowOf(found.Start), nil
}

// pattern turns a typed search pattern into the regexp the buffer runs,
// applying \c, \C and the case settings. The empty pattern reuses the last
// search.
func (r *Resolver) pattern(typed string) (string, error) {
	if typed == "" {
		if r.lastSearch == "" {
			return "", &ResolutionError{Err: ErrNoPreviousPattern}
		}
		typed = r.lastSearch
	}
	r.lastSearch = typed

	ignore := r.ignoreCase && !(r.smartCase && hasUpper(typed))
	pat := typed
	if strings.Contains(pat, `\c`) {
		ignore = true
		pat = strings.ReplaceAll(pat, `\c`, "")
	}
	if strings.Contains(pat, `\C`) {
		ignore = false
		pat = strings.ReplaceAll(pat, `\C`, "")
	}
	if ignore {
		pat = "(?i)" + pat
	}
	return pat, nil
}

func hasUpper(s string) bool {
	for _, c := range s {
		if unicode.IsUpper(c) {
			return true
		}
	}
	return false
}

func hasPercent(tokens []ex.Token) bool {
	for _, t := range tokens {
		if t.Kind == ex.TokenPercent {
			return true
		}
	}
	return false
}
