package key

import (
	"github.com/gdamore/tcell/v2"
)

// FromTcell converts a tcell key event into an Event.
func FromTcell(ev *tcell.EventKey) Event {
	mods := convertTcellMod(ev.Modifiers())
	k := ev.Key()

	switch k {
	case tcell.KeyRune:
		return NewRuneEvent(ev.Rune(), mods)
	case tcell.KeyEscape:
		return NewSpecialEvent(KeyEscape, mods)
	case tcell.KeyEnter:
		return NewSpecialEvent(KeyEnter, mods)
	case tcell.KeyTab:
		return NewSpecialEvent(KeyTab, mods)
	case tcell.KeyBacktab:
		return NewSpecialEvent(KeyTab, mods.With(ModShift))
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return NewSpecialEvent(KeyBackspace, mods)
	case tcell.KeyDelete:
		return NewSpecialEvent(KeyDelete, mods)
	case tcell.KeyInsert:
		return NewSpecialEvent(KeyInsert, mods)
	case tcell.KeyHome:
		return NewSpecialEvent(KeyHome, mods)
	case tcell.KeyEnd:
		return NewSpecialEvent(KeyEnd, mods)
	case tcell.KeyPgUp:
		return NewSpecialEvent(KeyPageUp, mods)
	case tcell.KeyPgDn:
		return NewSpecialEvent(KeyPageDown, mods)
	case tcell.KeyUp:
		return NewSpecialEvent(KeyUp, mods)
	case tcell.KeyDown:
		return NewSpecialEvent(KeyDown, mods)
	case tcell.KeyLeft:
		return NewSpecialEvent(KeyLeft, mods)
	case tcell.KeyRight:
		return NewSpecialEvent(KeyRight, mods)
	}

	if k >= tcell.KeyF1 && k <= tcell.KeyF12 {
		return NewSpecialEvent(KeyF1+Key(k-tcell.KeyF1), mods)
	}

	// Control letters arrive as their ASCII control code.
	if k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
		return NewRuneEvent('a'+rune(k-tcell.KeyCtrlA), mods.With(ModCtrl))
	}
	if k == tcell.KeyCtrlSpace {
		return NewRuneEvent(' ', mods.With(ModCtrl))
	}

	return Event{}
}

func convertTcellMod(m tcell.ModMask) Modifier {
	var mods Modifier
	if m&tcell.ModShift != 0 {
		mods = mods.With(ModShift)
	}
	if m&tcell.ModCtrl != 0 {
		mods = mods.With(ModCtrl)
	}
	if m&tcell.ModAlt != 0 {
		mods = mods.With(ModAlt)
	}
	if m&tcell.ModMeta != 0 {
		mods = mods.With(ModMeta)
	}
	return mods
}
