package vim

import (
	"github.com/dshills/vimcore/internal/input/key"
	"github.com/dshills/vimcore/internal/input/keymap"
	"github.com/dshills/vimcore/internal/input/mode"
)

// Builtins holds the built-in command table of each mode. A mode without a
// table has no built-in commands.
type Builtins map[mode.Mode]*keymap.Tree[Descriptor]

type binding struct {
	keys string
	cmd  Descriptor
}

// Add binds notation to d in md. Operators learn their own keys here.
func (b Builtins) Add(md mode.Mode, notation string, d Descriptor) {
	seq := key.MustParseSequence(notation)
	if op, ok := d.(Operator); ok {
		op.Keys = seq
		d = op
	}
	t, ok := b[md]
	if !ok {
		t = keymap.NewTree[Descriptor]()
		b[md] = t
	}
	t.Insert(seq, d)
}

func (b Builtins) addAll(md mode.Mode, bindings []binding) {
	for _, bd := range bindings {
		b.Add(md, bd.keys, bd.cmd)
	}
}

// Lookup returns the command bound to seq in md.
func (b Builtins) Lookup(md mode.Mode, seq key.Sequence) (Descriptor, bool) {
	t, ok := b[md]
	if !ok {
		return nil, false
	}
	return t.Get(seq)
}

// HasLonger reports whether a longer built-in starts with seq.
func (b Builtins) HasLonger(md mode.Mode, seq key.Sequence) bool {
	t, ok := b[md]
	return ok && t.HasLonger(seq)
}

// DefaultBuiltins returns the standard command tables.
func DefaultBuiltins() Builtins {
	b := make(Builtins)

	b.addAll(mode.Normal, motions)
	b.addAll(mode.Normal, operators)
	b.addAll(mode.Normal, normalActions)

	b.addAll(mode.OperatorPending, motions)
	b.addAll(mode.OperatorPending, textObjects)

	for _, md := range []mode.Mode{mode.Visual, mode.VisualLine, mode.VisualBlock} {
		b.addAll(md, motions)
		b.addAll(md, textObjects)
		b.addAll(md, operators)
		b.addAll(md, visualActions)
		b.addAll(md, visualToggles(md))
	}

	b.addAll(mode.Insert, insertActions)
	b.addAll(mode.Insert, arrows)
	b.Add(mode.Insert, "<Insert>", Action{Handler: "mode.replace", NextMode: mode.Replace})

	b.addAll(mode.Replace, insertActions)
	b.addAll(mode.Replace, arrows)
	b.Add(mode.Replace, "<BS>", Motion{Handler: "cursor.left"})
	b.Add(mode.Replace, "<Insert>", Action{Handler: "mode.insert", NextMode: mode.Insert})

	b.addAll(mode.Select, arrows)
	b.Add(mode.Select, "<C-g>", Action{Handler: "mode.visual", NextMode: mode.Visual})
	b.Add(mode.Select, "<BS>", Action{Handler: "editor.deleteSelection", NextMode: mode.Normal, Repeatable: true})
	b.Add(mode.Select, "<Del>", Action{Handler: "editor.deleteSelection", NextMode: mode.Normal, Repeatable: true})

	return b
}

var (
	left  = Motion{Handler: "cursor.left"}
	right = Motion{Handler: "cursor.right"}
	down  = Motion{Handler: "cursor.down", Linewise: true}
	up    = Motion{Handler: "cursor.up", Linewise: true}

	// lineMotion covers count lines from the cursor; doubled operators
	// (dd, g~~) use it as their motion.
	lineMotion = Motion{Handler: "cursor.line", Linewise: true}
)

var arrows = []binding{
	{"<Left>", left},
	{"<Right>", right},
	{"<Down>", down},
	{"<Up>", up},
	{"<Home>", Motion{Handler: "cursor.lineStart"}},
	{"<End>", Motion{Handler: "cursor.lineEnd", Inclusive: true}},
}

var motions = append([]binding{
	{"h", left},
	{"<BS>", left},
	{"<C-h>", left},
	{"l", right},
	{"<Space>", right},
	{"j", down},
	{"<C-j>", down},
	{"<C-n>", down},
	{"k", up},
	{"<C-p>", up},
	{"gj", Motion{Handler: "cursor.screenDown"}},
	{"gk", Motion{Handler: "cursor.screenUp"}},

	{"w", Motion{Handler: "cursor.wordForward"}},
	{"W", Motion{Handler: "cursor.WORDForward"}},
	{"b", Motion{Handler: "cursor.wordBackward"}},
	{"B", Motion{Handler: "cursor.WORDBackward"}},
	{"e", Motion{Handler: "cursor.wordEnd", Inclusive: true}},
	{"E", Motion{Handler: "cursor.WORDEnd", Inclusive: true}},
	{"ge", Motion{Handler: "cursor.wordEndBackward", Inclusive: true}},
	{"gE", Motion{Handler: "cursor.WORDEndBackward", Inclusive: true}},

	{"0", Motion{Handler: "cursor.lineStart"}},
	{"^", Motion{Handler: "cursor.firstNonBlank"}},
	{"$", Motion{Handler: "cursor.lineEnd", Inclusive: true}},
	{"g_", Motion{Handler: "cursor.lastNonBlank", Inclusive: true}},
	{"g0", Motion{Handler: "cursor.screenLineStart"}},
	{"g$", Motion{Handler: "cursor.screenLineEnd", Inclusive: true}},
	{"|", Motion{Handler: "cursor.gotoColumn"}},

	{"gg", Motion{Handler: "cursor.documentStart", Counted: "cursor.gotoLine", Linewise: true}},
	{"G", Motion{Handler: "cursor.documentEnd", Counted: "cursor.gotoLine", Linewise: true}},
	{"+", Motion{Handler: "cursor.nextLineStart", Linewise: true}},
	{"<CR>", Motion{Handler: "cursor.nextLineStart", Linewise: true}},
	{"-", Motion{Handler: "cursor.prevLineStart", Linewise: true}},
	{"_", lineMotion},

	{"}", Motion{Handler: "cursor.paragraphForward"}},
	{"{", Motion{Handler: "cursor.paragraphBackward"}},
	{")", Motion{Handler: "cursor.sentenceForward"}},
	{"(", Motion{Handler: "cursor.sentenceBackward"}},
	{"%", Motion{Handler: "cursor.matchPair", Counted: "cursor.gotoPercent", Inclusive: true}},
	{"H", Motion{Handler: "cursor.screenTop", Linewise: true}},
	{"M", Motion{Handler: "cursor.screenMiddle", Linewise: true}},
	{"L", Motion{Handler: "cursor.screenBottom", Linewise: true}},

	{"f", CharSearch{Forward: true}},
	{"F", CharSearch{}},
	{"t", CharSearch{Forward: true, Till: true}},
	{"T", CharSearch{Till: true}},
	{";", RepeatCharSearch{}},
	{",", RepeatCharSearch{Reverse: true}},

	{"'", Motion{Handler: "cursor.gotoMarkLine", Linewise: true, Input: CharInput, Arg: "mark"}},
	{"`", Motion{Handler: "cursor.gotoMark", Input: CharInput, Arg: "mark"}},

	{"/", Search{Forward: true}},
	{"?", Search{}},
	{"n", RepeatSearch{}},
	{"N", RepeatSearch{Reverse: true}},
	{"*", Motion{Handler: "search.wordForward"}},
	{"#", Motion{Handler: "search.wordBackward"}},
}, arrows...)

var textObjects = []binding{
	{"iw", Motion{Handler: "select.innerWord"}},
	{"aw", Motion{Handler: "select.aroundWord"}},
	{"iW", Motion{Handler: "select.innerWORD"}},
	{"aW", Motion{Handler: "select.aroundWORD"}},
	{"is", Motion{Handler: "select.innerSentence"}},
	{"as", Motion{Handler: "select.aroundSentence"}},
	{"ip", Motion{Handler: "select.innerParagraph", Linewise: true}},
	{"ap", Motion{Handler: "select.aroundParagraph", Linewise: true}},
	{"i(", Motion{Handler: "select.innerParen"}},
	{"a(", Motion{Handler: "select.aroundParen"}},
	{"i)", Motion{Handler: "select.innerParen"}},
	{"a)", Motion{Handler: "select.aroundParen"}},
	{"ib", Motion{Handler: "select.innerParen"}},
	{"ab", Motion{Handler: "select.aroundParen"}},
	{"i[", Motion{Handler: "select.innerBracket"}},
	{"a[", Motion{Handler: "select.aroundBracket"}},
	{"i]", Motion{Handler: "select.innerBracket"}},
	{"a]", Motion{Handler: "select.aroundBracket"}},
	{"i{", Motion{Handler: "select.innerBrace"}},
	{"a{", Motion{Handler: "select.aroundBrace"}},
	{"i}", Motion{Handler: "select.innerBrace"}},
	{"a}", Motion{Handler: "select.aroundBrace"}},
	{"iB", Motion{Handler: "select.innerBrace"}},
	{"aB", Motion{Handler: "select.aroundBrace"}},
	{"i<lt>", Motion{Handler: "select.innerAngle"}},
	{"a<lt>", Motion{Handler: "select.aroundAngle"}},
	{"i>", Motion{Handler: "select.innerAngle"}},
	{"a>", Motion{Handler: "select.aroundAngle"}},
	{"it", Motion{Handler: "select.innerTag"}},
	{"at", Motion{Handler: "select.aroundTag"}},
	{`i"`, Motion{Handler: "select.innerDoubleQuote"}},
	{`a"`, Motion{Handler: "select.aroundDoubleQuote"}},
	{"i'", Motion{Handler: "select.innerSingleQuote"}},
	{"a'", Motion{Handler: "select.aroundSingleQuote"}},
	{"i`", Motion{Handler: "select.innerBacktick"}},
	{"a`", Motion{Handler: "select.aroundBacktick"}},
}

var operators = []binding{
	{"d", Operator{Handler: "operator.delete", Repeatable: true}},
	{"c", Operator{Handler: "operator.change", Repeatable: true, Insert: true}},
	{"y", Operator{Handler: "operator.yank"}},
	{">", Operator{Handler: "operator.indent", Repeatable: true}},
	{"<lt>", Operator{Handler: "operator.outdent", Repeatable: true}},
	{"=", Operator{Handler: "operator.autoIndent", Repeatable: true}},
	{"gu", Operator{Handler: "operator.lowercase", Repeatable: true}},
	{"gU", Operator{Handler: "operator.uppercase", Repeatable: true}},
	{"g~", Operator{Handler: "operator.toggleCase", Repeatable: true}},
	{"gq", Operator{Handler: "operator.format", Repeatable: true}},
	{"g?", Operator{Handler: "operator.rot13", Repeatable: true}},
}

var normalActions = []binding{
	{"x", Action{Handler: "editor.deleteChar", Repeatable: true}},
	{"<Del>", Action{Handler: "editor.deleteChar", Repeatable: true}},
	{"X", Action{Handler: "editor.deleteCharBack", Repeatable: true}},
	{"s", Action{Handler: "editor.substituteChar", NextMode: mode.Insert, Repeatable: true}},
	{"S", Action{Handler: "editor.changeLine", NextMode: mode.Insert, Repeatable: true}},
	{"D", Action{Handler: "editor.deleteToEnd", Repeatable: true}},
	{"C", Action{Handler: "editor.changeToEnd", NextMode: mode.Insert, Repeatable: true}},
	{"Y", Action{Handler: "editor.yankLine"}},
	{"p", Action{Handler: "editor.pasteAfter", Repeatable: true}},
	{"P", Action{Handler: "editor.pasteBefore", Repeatable: true}},
	{"J", Action{Handler: "editor.joinLines", Repeatable: true}},
	{"gJ", Action{Handler: "editor.joinLinesNoSpace", Repeatable: true}},
	{"~", Action{Handler: "editor.toggleCaseChar", Repeatable: true}},
	{"r", Action{Handler: "editor.replaceChar", Repeatable: true, Input: CharInput, Arg: "char"}},
	{"<C-a>", Action{Handler: "editor.increment", Repeatable: true}},
	{"<C-x>", Action{Handler: "editor.decrement", Repeatable: true}},
	{"u", Action{Handler: "editor.undo"}},
	{"<C-r>", Action{Handler: "editor.redo"}},
	{"U", Action{Handler: "editor.undoLine"}},

	{"i", Action{Handler: "mode.insert", NextMode: mode.Insert, Repeatable: true}},
	{"<Insert>", Action{Handler: "mode.insert", NextMode: mode.Insert, Repeatable: true}},
	{"a", Action{Handler: "mode.append", NextMode: mode.Insert, Repeatable: true}},
	{"I", Action{Handler: "mode.insertLineStart", NextMode: mode.Insert, Repeatable: true}},
	{"A", Action{Handler: "mode.appendLineEnd", NextMode: mode.Insert, Repeatable: true}},
	{"o", Action{Handler: "mode.openBelow", NextMode: mode.Insert, Repeatable: true}},
	{"O", Action{Handler: "mode.openAbove", NextMode: mode.Insert, Repeatable: true}},
	{"R", Action{Handler: "mode.replace", NextMode: mode.Replace, Repeatable: true}},
	{"v", Action{Handler: "mode.visual", NextMode: mode.Visual}},
	{"V", Action{Handler: "mode.visualLine", NextMode: mode.VisualLine}},
	{"<C-v>", Action{Handler: "mode.visualBlock", NextMode: mode.VisualBlock}},
	{"gv", Action{Handler: "mode.reselect", NextMode: mode.Visual}},
	{"gh", Action{Handler: "mode.select", NextMode: mode.Select}},

	{"m", Action{Handler: "mark.set", Input: CharInput, Arg: "mark"}},
	{"<C-o>", Action{Handler: "cursor.jumpBack"}},
	{"<Tab>", Action{Handler: "cursor.jumpForward"}},

	{"zz", Action{Handler: "view.center"}},
	{"zt", Action{Handler: "view.top"}},
	{"zb", Action{Handler: "view.bottom"}},
	{"<C-e>", Action{Handler: "view.scrollLineDown"}},
	{"<C-y>", Action{Handler: "view.scrollLineUp"}},
	{"<C-d>", Action{Handler: "view.halfPageDown"}},
	{"<C-u>", Action{Handler: "view.halfPageUp"}},
	{"<C-f>", Action{Handler: "view.pageDown"}},
	{"<C-b>", Action{Handler: "view.pageUp"}},
	{"<C-l>", Action{Handler: "view.redraw"}},
	{"<C-g>", Action{Handler: "file.info"}},

	{"<C-w>s", Action{Handler: "window.splitHorizontal"}},
	{"<C-w>v", Action{Handler: "window.splitVertical"}},
	{"<C-w>w", Action{Handler: "window.next"}},
	{"<C-w><C-w>", Action{Handler: "window.next"}},
	{"<C-w>W", Action{Handler: "window.prev"}},
	{"<C-w>q", Action{Handler: "window.close"}},
	{"<C-w>c", Action{Handler: "window.close"}},
	{"<C-w>o", Action{Handler: "window.only"}},
	{"<C-w>h", Action{Handler: "window.focusLeft"}},
	{"<C-w>j", Action{Handler: "window.focusDown"}},
	{"<C-w>k", Action{Handler: "window.focusUp"}},
	{"<C-w>l", Action{Handler: "window.focusRight"}},

	{"q", RecordMacro{}},
	{"@", PlayMacro{}},
	{".", RepeatLast{}},
	{":", CommandLine{}},
	{`"`, RegisterPrefix{}},

	{"&", ExCommand{Line: "s"}},
	{"g&", ExCommand{Line: "%&&"}},
	{"ZZ", ExCommand{Line: "x"}},
	{"ZQ", ExCommand{Line: "q!"}},
	{"gt", ExCommand{Line: "tabnext"}},
	{"gT", ExCommand{Line: "tabprevious"}},
}

var visualActions = []binding{
	{"x", Operator{Handler: "operator.delete", Repeatable: true}},
	{"<Del>", Operator{Handler: "operator.delete", Repeatable: true}},
	{"X", Operator{Handler: "operator.delete", Repeatable: true, Linewise: true}},
	{"D", Operator{Handler: "operator.delete", Repeatable: true, Linewise: true}},
	{"s", Operator{Handler: "operator.change", Repeatable: true, Insert: true}},
	{"C", Operator{Handler: "operator.change", Repeatable: true, Insert: true, Linewise: true}},
	{"S", Operator{Handler: "operator.change", Repeatable: true, Insert: true, Linewise: true}},
	{"R", Operator{Handler: "operator.change", Repeatable: true, Insert: true, Linewise: true}},
	{"Y", Operator{Handler: "operator.yank", Linewise: true}},
	{"u", Operator{Handler: "operator.lowercase", Repeatable: true}},
	{"U", Operator{Handler: "operator.uppercase", Repeatable: true}},
	{"~", Operator{Handler: "operator.toggleCase", Repeatable: true}},

	{"J", Action{Handler: "editor.joinLines", NextMode: mode.Normal, Repeatable: true}},
	{"gJ", Action{Handler: "editor.joinLinesNoSpace", NextMode: mode.Normal, Repeatable: true}},
	{"r", Action{Handler: "editor.replaceChar", NextMode: mode.Normal, Repeatable: true, Input: CharInput, Arg: "char"}},
	{"p", Action{Handler: "editor.pasteAfter", NextMode: mode.Normal, Repeatable: true}},
	{"P", Action{Handler: "editor.pasteBefore", NextMode: mode.Normal, Repeatable: true}},
	{"o", Action{Handler: "selection.swapEnds"}},
	{"O", Action{Handler: "selection.swapCorners"}},
	{"<C-g>", Action{Handler: "mode.select", NextMode: mode.Select}},

	{":", CommandLine{}},
	{`"`, RegisterPrefix{}},
}

func visualToggles(md mode.Mode) []binding {
	toggles := []binding{
		{"v", Action{Handler: "mode.visual", NextMode: mode.Visual}},
		{"V", Action{Handler: "mode.visualLine", NextMode: mode.VisualLine}},
		{"<C-v>", Action{Handler: "mode.visualBlock", NextMode: mode.VisualBlock}},
	}
	// The key of the current visual mode leaves it.
	for i, t := range toggles {
		if t.cmd.(Action).NextMode == md {
			toggles[i].cmd = Action{Handler: "mode.normal", NextMode: mode.Normal}
		}
	}
	return toggles
}

var insertActions = []binding{
	{"<CR>", Action{Handler: "editor.insertNewline"}},
	{"<C-j>", Action{Handler: "editor.insertNewline"}},
	{"<BS>", Action{Handler: "editor.backspace"}},
	{"<C-h>", Action{Handler: "editor.backspace"}},
	{"<Del>", Action{Handler: "editor.deleteChar"}},
	{"<Tab>", Action{Handler: "editor.insertTab"}},
	{"<C-w>", Action{Handler: "editor.deleteWordBack"}},
	{"<C-u>", Action{Handler: "editor.deleteToLineStart"}},
	{"<C-t>", Action{Handler: "editor.indent"}},
	{"<C-d>", Action{Handler: "editor.outdent"}},
	{"<C-r>", Action{Handler: "editor.pasteRegister", Input: CharInput, Arg: "register"}},
}
