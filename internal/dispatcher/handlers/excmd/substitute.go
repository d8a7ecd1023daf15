package excmd

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/dlclark/regexp2"

	"github.com/dshills/vimcore/internal/dispatcher"
	"github.com/dshills/vimcore/internal/engine/buffer"
	"github.com/dshills/vimcore/internal/ex/address"
)

// report is the number of changed lines above which :substitute says how
// much it did.
const report = 2

type flagSet map[string]bool

func flagsOf(call dispatcher.Call) flagSet {
	fs := flagSet{}
	flags, _ := call.Args["flags"].([]string)
	for _, f := range flags {
		fs[f] = true
	}
	return fs
}

// substitute replaces the first match on every line of the range, or all
// of them with g. The range is edited in one replacement so undo and marks
// see a single change.
func (h *Handler) substitute(_ context.Context, call dispatcher.Call) error {
	flags := flagsOf(call)
	if flags["c"] {
		return ErrConfirm
	}
	first, last := h.rows(call)
	pattern := call.Args.Text("pattern")
	ic := h.ignoreCase(pattern)
	switch {
	case flags["i"]:
		ic = true
	case flags["I"]:
		ic = false
	}
	re, err := h.buf.Compile(pattern, ic)
	if err != nil {
		return &address.ResolutionError{Pattern: pattern, Err: err}
	}

	limit := 1
	if flags["g"] {
		limit = -1
	}
	replacement := call.Args.Text("replacement")

	var out []string
	subs, changed, lastRow, row := 0, 0, -1, first
	for r := first; r <= last; r++ {
		n := 0
		line, err := re.ReplaceFunc(h.buf.LineText(r), func(m regexp2.Match) string {
			n++
			if flags["n"] {
				return m.String()
			}
			return expand(replacement, m)
		}, -1, limit)
		if err != nil {
			return err
		}
		if n > 0 {
			subs += n
			changed++
			lastRow = row + strings.Count(line, "\n")
		}
		row += strings.Count(line, "\n") + 1
		out = append(out, line)
	}

	if subs == 0 {
		if flags["e"] {
			return nil
		}
		return &address.ResolutionError{Pattern: pattern, Err: address.ErrPatternNotFound}
	}
	if flags["n"] {
		h.out.ReportStatus(fmt.Sprintf("%d %s on %d %s", subs, plural(subs, "match", "matches"), changed, plural(changed, "line", "lines")))
		return nil
	}

	s := buffer.Span{Start: h.buf.LineAtRow(first).Start, End: h.buf.LineAtRow(last).End}
	if _, err := h.buf.Replace(s, strings.Join(out, "\n")); err != nil {
		return err
	}
	h.caretTo(lastRow)
	if changed > report {
		h.out.ReportStatus(fmt.Sprintf("%d %s on %d lines", subs, plural(subs, "substitution", "substitutions"), changed))
	}
	if flags["p"] || flags["#"] || flags["l"] {
		h.printRow(lastRow, flags["#"], flags["l"])
	}
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// expand builds the replacement for one match. It understands & and \0
// to \9, \r and \n for a line break, \t, the case modifiers \u \l \U \L
// \E \e, and escaped characters.
func expand(rep string, m regexp2.Match) string {
	var sb strings.Builder
	var once, until func(rune) rune

	write := func(s string) {
		for _, r := range s {
			switch {
			case once != nil:
				r = once(r)
				once = nil
			case until != nil:
				r = until(r)
			}
			sb.WriteRune(r)
		}
	}

	runes := []rune(rep)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if c == '&' {
			write(m.String())
			continue
		}
		if c != '\\' || i+1 == len(runes) {
			write(string(c))
			continue
		}
		i++
		switch c = runes[i]; {
		case c >= '0' && c <= '9':
			if g := m.GroupByNumber(int(c - '0')); g != nil {
				write(g.String())
			}
		case c == 'r' || c == 'n':
			sb.WriteByte('\n')
		case c == 't':
			write("\t")
		case c == 'u':
			once = unicode.ToUpper
		case c == 'l':
			once = unicode.ToLower
		case c == 'U':
			until = unicode.ToUpper
		case c == 'L':
			until = unicode.ToLower
		case c == 'E' || c == 'e':
			until = nil
		default:
			write(string(c))
		}
	}
	return sb.String()
}
