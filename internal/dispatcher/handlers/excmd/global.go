package excmd

import (
	"context"
	"errors"

	"github.com/dshills/vimcore/internal/dispatcher"
	"github.com/dshills/vimcore/internal/engine/buffer"
	"github.com/dshills/vimcore/internal/ex"
	"github.com/dshills/vimcore/internal/ex/address"
)

// global marks the lines of the range that match (or, inverted, do not
// match) the pattern, then runs the sub-command on each marked line that
// still exists. A sub-command that finds no match is not an error.
func (h *Handler) global(ctx context.Context, call dispatcher.Call) error {
	first, last := h.rows(call)
	pattern := call.Args.Text("pattern")
	invert := call.Args.Bool("invert")
	sub, ok := call.Args["subcommand"].(*ex.ParsedCommandLine)
	if !ok || sub == nil {
		return ex.ErrMissingArgument
	}

	re, err := h.buf.Compile(pattern, h.ignoreCase(pattern))
	if err != nil {
		return &address.ResolutionError{Pattern: pattern, Err: err}
	}
	var starts []int
	for row := first; row <= last; row++ {
		match, err := re.MatchString(h.buf.LineText(row))
		if err != nil {
			return err
		}
		if match != invert {
			starts = append(starts, h.buf.LineAtRow(row).Start)
		}
	}
	if len(starts) == 0 {
		if invert {
			h.out.ReportStatus("Pattern found in every line: " + pattern)
			return nil
		}
		return &address.ResolutionError{Pattern: pattern, Err: address.ErrPatternNotFound}
	}

	return h.eachLine(ctx, starts, func() error {
		err := h.run.RunParsed(ctx, sub)
		if errors.Is(err, address.ErrPatternNotFound) {
			return nil
		}
		return err
	})
}

// normal feeds the keys once on every line of the range, starting at the
// line's first column.
func (h *Handler) normal(ctx context.Context, call dispatcher.Call) error {
	first, last := h.rows(call)
	keys := call.Args.Text("keys")
	starts := make([]int, 0, last-first+1)
	for row := first; row <= last; row++ {
		starts = append(starts, h.buf.LineAtRow(row).Start)
	}
	return h.eachLine(ctx, starts, func() error {
		return h.run.Normal(ctx, keys, !call.Args.Bool("forced"))
	})
}

// eachLine puts the caret on each line start in turn and runs fn. Lines
// deleted by an earlier run are skipped.
func (h *Handler) eachLine(ctx context.Context, starts []int, fn func() error) error {
	anchors := h.buf.Track(starts...)
	defer h.buf.Untrack(anchors)
	for i, n := 0, anchors.Len(); i < n; i++ {
		p, live := anchors.At(i)
		if !live {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		h.buf.SetSelections(buffer.Point(p))
		if err := fn(); err != nil {
			return err
		}
	}
	return nil
}
