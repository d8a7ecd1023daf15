package cursor

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/dshills/vimcore/internal/dispatcher"
	"github.com/dshills/vimcore/internal/engine/buffer"
)

// Errors returned by motions.
var (
	ErrNoTarget    = errors.New("cursor: motion has no target")
	ErrMarkNotSet  = errors.New("cursor: mark not set")
	ErrUnknownMove = errors.New("cursor: unknown motion")
)

// targetFunc computes where a motion starting at from lands.
type targetFunc func(b *buffer.Memory, from int, call dispatcher.Call) (int, error)

var targets = map[string]targetFunc{
	"cursor.left":  func(b *buffer.Memory, from int, c dispatcher.Call) (int, error) { return left(b, from, c.Count()), nil },
	"cursor.right": func(b *buffer.Memory, from int, c dispatcher.Call) (int, error) { return right(b, from, c.Count()), nil },
	"cursor.up":    func(b *buffer.Memory, from int, c dispatcher.Call) (int, error) { return vertical(b, from, -c.Count()), nil },
	"cursor.down":  func(b *buffer.Memory, from int, c dispatcher.Call) (int, error) { return vertical(b, from, c.Count()), nil },
	"cursor.line": func(b *buffer.Memory, from int, c dispatcher.Call) (int, error) {
		return firstNonBlank(b, b.RowOf(from)+c.Count()-1), nil
	},

	"cursor.wordForward":     wordMotion(wordForward, false),
	"cursor.WORDForward":     wordMotion(wordForward, true),
	"cursor.wordBackward":    wordMotion(wordBackward, false),
	"cursor.WORDBackward":    wordMotion(wordBackward, true),
	"cursor.wordEnd":         wordMotion(wordEnd, false),
	"cursor.WORDEnd":         wordMotion(wordEnd, true),
	"cursor.wordEndBackward": wordMotion(wordEndBackward, false),
	"cursor.WORDEndBackward": wordMotion(wordEndBackward, true),

	"cursor.lineStart": func(b *buffer.Memory, from int, _ dispatcher.Call) (int, error) { return b.LineAt(from).Start, nil },
	"cursor.lineEnd": func(b *buffer.Memory, from int, c dispatcher.Call) (int, error) {
		return lastChar(b, b.RowOf(from)+c.Count()-1), nil
	},
	"cursor.firstNonBlank": func(b *buffer.Memory, from int, _ dispatcher.Call) (int, error) {
		return firstNonBlank(b, b.RowOf(from)), nil
	},
	"cursor.lastNonBlank": func(b *buffer.Memory, from int, c dispatcher.Call) (int, error) {
		row := b.RowOf(from) + c.Count() - 1
		line := b.LineAtRow(row)
		text := strings.TrimRightFunc(b.Substr(line), unicode.IsSpace)
		return prevRune(b.Text(), line.Start+len(text), line.Start), nil
	},
	"cursor.gotoColumn": func(b *buffer.Memory, from int, c dispatcher.Call) (int, error) {
		line := b.LineAt(from)
		return right(b, line.Start, c.Count()-1), nil
	},

	"cursor.documentStart": func(b *buffer.Memory, _ int, _ dispatcher.Call) (int, error) { return firstNonBlank(b, 0), nil },
	"cursor.documentEnd": func(b *buffer.Memory, _ int, _ dispatcher.Call) (int, error) {
		return firstNonBlank(b, b.LineCount()-1), nil
	},
	"cursor.gotoLine": func(b *buffer.Memory, _ int, c dispatcher.Call) (int, error) {
		return firstNonBlank(b, c.Count()-1), nil
	},
	"cursor.gotoPercent": func(b *buffer.Memory, _ int, c dispatcher.Call) (int, error) {
		pct := min(c.Count(), 100)
		return firstNonBlank(b, (pct*b.LineCount()+99)/100-1), nil
	},
	"cursor.nextLineStart": func(b *buffer.Memory, from int, c dispatcher.Call) (int, error) {
		return firstNonBlank(b, b.RowOf(from)+c.Count()), nil
	},
	"cursor.prevLineStart": func(b *buffer.Memory, from int, c dispatcher.Call) (int, error) {
		return firstNonBlank(b, b.RowOf(from)-c.Count()), nil
	},

	"cursor.paragraphForward":  paragraph(1),
	"cursor.paragraphBackward": paragraph(-1),
	"cursor.matchPair":         matchPair,

	"cursor.findChar":     charMotion(true, false),
	"cursor.findCharBack": charMotion(false, false),
	"cursor.tillChar":     charMotion(true, true),
	"cursor.tillCharBack": charMotion(false, true),

	"cursor.gotoMark": func(b *buffer.Memory, _ int, c dispatcher.Call) (int, error) {
		return markTarget(b, c)
	},
	"cursor.gotoMarkLine": func(b *buffer.Memory, _ int, c dispatcher.Call) (int, error) {
		p, err := markTarget(b, c)
		if err != nil {
			return 0, err
		}
		return firstNonBlank(b, b.RowOf(p)), nil
	},
}

// Target returns where the cursor.* motion call lands when started at
// from.
func Target(b *buffer.Memory, call dispatcher.Call, from int) (int, error) {
	fn, ok := targets[call.Handler]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownMove, call.Handler)
	}
	return fn(b, from, call)
}

// Handles reports whether Target knows the motion.
func Handles(handler string) bool {
	_, ok := targets[handler]
	return ok
}

// left moves count grapheme clusters left, stopping at the line start.
func left(b *buffer.Memory, from, count int) int {
	text := b.Text()
	start := b.LineAt(from).Start
	for i := 0; i < count; i++ {
		if from <= start {
			break
		}
		from = prevRune(text, from, start)
	}
	return from
}

// right moves count grapheme clusters right, stopping at the line end.
func right(b *buffer.Memory, from, count int) int {
	text := b.Text()
	end := b.LineAt(from).End
	for i := 0; i < count; i++ {
		if from >= end {
			break
		}
		cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(text[from:end], -1)
		from += max(len(cluster), 1)
	}
	return from
}

// prevRune returns the start of the grapheme cluster before p, not going
// below floor.
func prevRune(text string, p, floor int) int {
	if p <= floor {
		return floor
	}
	g := uniseg.NewGraphemes(text[floor:p])
	last := floor
	for g.Next() {
		from, _ := g.Positions()
		last = floor + from
	}
	return last
}

// vertical moves delta rows keeping the byte column where the target line
// is long enough.
func vertical(b *buffer.Memory, from, delta int) int {
	line := b.LineAt(from)
	col := from - line.Start
	target := b.LineAtRow(b.RowOf(from) + delta)
	p := min(target.Start+col, target.End)
	text := b.Text()
	for p > target.Start && p < len(text) && !utf8.RuneStart(text[p]) {
		p--
	}
	return p
}

func firstNonBlank(b *buffer.Memory, row int) int {
	line := b.LineAtRow(row)
	text := b.Substr(line)
	return line.Start + len(text) - len(strings.TrimLeft(text, " \t"))
}

// lastChar is the offset of the last character of row, or its start when
// empty.
func lastChar(b *buffer.Memory, row int) int {
	line := b.LineAtRow(row)
	return prevRune(b.Text(), line.End, line.Start)
}

type class int

const (
	classSpace class = iota
	classPunct
	classWord
)

func classOf(r rune, big bool) class {
	switch {
	case unicode.IsSpace(r):
		return classSpace
	case big, r == '_', unicode.IsLetter(r), unicode.IsDigit(r):
		return classWord
	}
	return classPunct
}

type wordFunc func(text string, from int, big bool) int

func wordMotion(fn wordFunc, big bool) targetFunc {
	return func(b *buffer.Memory, from int, c dispatcher.Call) (int, error) {
		text := b.Text()
		for i, n := 0, c.Count(); i < n; i++ {
			from = fn(text, from, big)
		}
		return from, nil
	}
}

func runeAt(text string, p int) (rune, int) {
	if p >= len(text) {
		return 0, 0
	}
	return utf8.DecodeRuneInString(text[p:])
}

func runeBefore(text string, p int) (rune, int) {
	if p <= 0 {
		return 0, 0
	}
	return utf8.DecodeLastRuneInString(text[:p])
}

// wordForward returns the start of the next word. An empty line counts as
// a word.
func wordForward(text string, p int, big bool) int {
	if p >= len(text) {
		return len(text)
	}
	r, size := runeAt(text, p)
	cls := classOf(r, big)
	if cls != classSpace {
		for p < len(text) {
			r, size = runeAt(text, p)
			if classOf(r, big) != cls {
				break
			}
			p += size
		}
	}
	for p < len(text) {
		r, size = runeAt(text, p)
		if !unicode.IsSpace(r) {
			break
		}
		if r == '\n' && p+1 < len(text) && text[p+1] == '\n' {
			return p + 1
		}
		p += size
	}
	return p
}

func wordBackward(text string, p int, big bool) int {
	for p > 0 {
		r, size := runeBefore(text, p)
		if !unicode.IsSpace(r) {
			break
		}
		p -= size
	}
	if p == 0 {
		return 0
	}
	r, _ := runeBefore(text, p)
	cls := classOf(r, big)
	for p > 0 {
		r, size := runeBefore(text, p)
		if classOf(r, big) != cls {
			break
		}
		p -= size
	}
	return p
}

// wordEnd returns the offset of the last character of the current or next
// word.
func wordEnd(text string, p int, big bool) int {
	_, size := runeAt(text, p)
	p += size
	for p < len(text) {
		r, size := runeAt(text, p)
		if !unicode.IsSpace(r) {
			break
		}
		p += size
	}
	if p >= len(text) {
		return max(len(text)-1, 0)
	}
	r, _ := runeAt(text, p)
	cls := classOf(r, big)
	for {
		_, size := runeAt(text, p)
		next, _ := runeAt(text, p+size)
		if p+size >= len(text) || classOf(next, big) != cls {
			return p
		}
		p += size
	}
}

func wordEndBackward(text string, p int, big bool) int {
	r, _ := runeAt(text, p)
	cls := classOf(r, big)
	for p > 0 {
		prev, size := runeBefore(text, p)
		p -= size
		pc := classOf(prev, big)
		if pc != classSpace && pc != cls {
			return p
		}
		if pc == classSpace {
			cls = classSpace
		}
	}
	return 0
}

func paragraph(dir int) targetFunc {
	return func(b *buffer.Memory, from int, c dispatcher.Call) (int, error) {
		row := b.RowOf(from)
		last := b.LineCount() - 1
		blank := func(r int) bool { return strings.TrimSpace(b.LineText(r)) == "" }
		for i, n := 0, c.Count(); i < n; i++ {
			// Skip the blank lines we are on, then the paragraph.
			for row+dir >= 0 && row+dir <= last && blank(row) {
				row += dir
			}
			for row+dir >= 0 && row+dir <= last && !blank(row) {
				row += dir
			}
		}
		if dir > 0 && row == last && !blank(row) {
			return lastChar(b, row), nil
		}
		return b.LineAtRow(row).Start, nil
	}
}

var pairs = map[rune]struct {
	other rune
	dir   int
}{
	'(': {')', 1}, ')': {'(', -1},
	'[': {']', 1}, ']': {'[', -1},
	'{': {'}', 1}, '}': {'{', -1},
}

// matchPair jumps from the first bracket at or after from on the line to
// its partner.
func matchPair(b *buffer.Memory, from int, _ dispatcher.Call) (int, error) {
	text := b.Text()
	end := b.LineAt(from).End
	p := from
	for p < end {
		r, size := runeAt(text, p)
		if _, ok := pairs[r]; ok {
			break
		}
		p += size
	}
	if p >= end {
		return 0, ErrNoTarget
	}
	open, _ := runeAt(text, p)
	pair := pairs[open]
	depth := 0
	for p >= 0 && p < len(text) {
		r, size := runeAt(text, p)
		switch r {
		case open:
			depth++
		case pair.other:
			depth--
			if depth == 0 {
				return p, nil
			}
		}
		if pair.dir > 0 {
			p += size
		} else {
			_, size = runeBefore(text, p)
			if size == 0 {
				break
			}
			p -= size
		}
	}
	return 0, ErrNoTarget
}

func charMotion(forward, till bool) targetFunc {
	return func(b *buffer.Memory, from int, c dispatcher.Call) (int, error) {
		ch, ok := c.Args.Rune("char")
		if !ok {
			return 0, ErrNoTarget
		}
		text := b.Text()
		line := b.LineAt(from)
		p := from
		// A repeated till starts past the character it stopped before.
		if till && c.Args.Bool("repeat") {
			if forward {
				_, size := runeAt(text, p)
				p += size
			} else {
				_, size := runeBefore(text, p)
				p -= size
			}
		}
		for i, n := 0, c.Count(); i < n; i++ {
			found := false
			for {
				var r rune
				if forward {
					_, cur := runeAt(text, p)
					p += cur
					if p >= line.End {
						break
					}
					r, _ = runeAt(text, p)
				} else {
					if p <= line.Start {
						break
					}
					var size int
					r, size = runeBefore(text, p)
					p -= size
				}
				if r == ch {
					found = true
					break
				}
			}
			if !found {
				return 0, ErrNoTarget
			}
		}
		if till {
			if forward {
				_, size := runeBefore(text, p)
				p -= size
			} else {
				_, size := runeAt(text, p)
				p += size
			}
		}
		return p, nil
	}
}

func markTarget(b *buffer.Memory, c dispatcher.Call) (int, error) {
	name, _ := c.Args.Rune("mark")
	t, ok := b.MarkLookup(name)
	if !ok || t.InOtherFile() {
		return 0, fmt.Errorf("%w: %c", ErrMarkNotSet, name)
	}
	return t.Span.Start, nil
}
