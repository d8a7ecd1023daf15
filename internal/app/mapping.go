package app

import (
	"context"
	"fmt"
	"slices"

	"github.com/dshills/vimcore/internal/dispatcher"
	"github.com/dshills/vimcore/internal/ex"
	"github.com/dshills/vimcore/internal/input/key"
	"github.com/dshills/vimcore/internal/input/keymap"
	"github.com/dshills/vimcore/internal/input/mode"
)

// mapModes returns the modes a mapping command addresses.
func mapModes(call dispatcher.Call) ([]mode.Mode, error) {
	letter := call.Args.Text("modes")
	modes, ok := mode.ForMapCommand(letter, call.Args.Bool("forced"))
	if !ok {
		return nil, fmt.Errorf("%w: mode %q", ex.ErrInvalidArgument, letter)
	}
	return modes, nil
}

// sequence parses mapping notation after expanding <Leader>.
func (ed *Editor) sequence(notation string) (key.Sequence, error) {
	return key.ParseSequence(key.ExpandLeader(notation, ed.session.Settings.String("mapleader")))
}

// exMap handles the :map and :noremap families. Without an rhs it lists
// the mappings whose lhs starts with the given keys.
func (ed *Editor) exMap(_ context.Context, _ *Window, _ *ex.ParsedCommandLine, call dispatcher.Call) error {
	modes, err := mapModes(call)
	if err != nil {
		return err
	}
	lhsText, rhsText := call.Args.Text("lhs"), call.Args.Text("rhs")
	var lhs key.Sequence
	if lhsText != "" {
		if lhs, err = ed.sequence(lhsText); err != nil {
			return err
		}
	}
	if rhsText == "" {
		ed.listMappings(modes, lhs)
		return nil
	}
	rhs, err := ed.sequence(rhsText)
	if err != nil {
		return err
	}
	attrs, _ := call.Args["attrs"].([]string)
	return ed.session.Mappings.MapModes(modes, keymap.Mapping{
		LHS:     lhs,
		RHS:     rhs,
		Noremap: call.Args.Bool("noremap"),
		Silent:  slices.Contains(attrs, "silent"),
		Nowait:  slices.Contains(attrs, "nowait"),
		Unique:  slices.Contains(attrs, "unique"),
		Source:  "ex",
	})
}

func (ed *Editor) listMappings(modes []mode.Mode, prefix key.Sequence) {
	seen := make(map[string]bool)
	found := false
	for _, md := range modes {
		for _, m := range ed.session.Mappings.Mappings(md) {
			if len(m.LHS) < len(prefix) || !slices.Equal(m.LHS[:len(prefix)], prefix) {
				continue
			}
			line := m.String()
			if seen[line] {
				continue
			}
			seen[line] = true
			found = true
			ed.out.ReportStatus(line)
		}
	}
	if !found {
		ed.out.ReportStatus("No mapping found")
	}
}

// exUnmap removes lhs from every addressed mode. It fails only when no
// mode had the mapping.
func (ed *Editor) exUnmap(_ context.Context, _ *Window, _ *ex.ParsedCommandLine, call dispatcher.Call) error {
	modes, err := mapModes(call)
	if err != nil {
		return err
	}
	lhs, err := ed.sequence(call.Args.Text("lhs"))
	if err != nil {
		return err
	}
	removed := false
	for _, md := range modes {
		if ed.session.Mappings.Unmap(md, lhs) {
			removed = true
		}
	}
	if !removed {
		return fmt.Errorf("%w: %s", ErrNoSuchMapping, call.Args.Text("lhs"))
	}
	return nil
}

func (ed *Editor) exMapclear(_ context.Context, _ *Window, _ *ex.ParsedCommandLine, call dispatcher.Call) error {
	modes, err := mapModes(call)
	if err != nil {
		return err
	}
	for _, md := range modes {
		ed.session.Mappings.Clear(md)
	}
	return nil
}
