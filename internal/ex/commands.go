package ex

import "sync"

// defaultRegistry is set in init: building the table parses addresses,
// which reaches DefaultRegistry again.
var defaultRegistry func() *Registry

func init() {
	defaultRegistry = sync.OnceValue(newDefaultRegistry)
}

// DefaultRegistry returns the process-wide command table. It is built on
// first use and must not be modified afterwards.
func DefaultRegistry() *Registry {
	return defaultRegistry()
}

type routeEntry struct {
	pattern string
	def     *Definition
}

func newDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, e := range defaultRoutes() {
		r.MustRegister(e.pattern, e.def)
	}
	return r
}

// defaultRoutes is the ordered route table. Earlier routes win; every name
// pattern ends in a letter lookahead so "s" cannot swallow "set" or "sp".
// Routes without that guard ("&", "k", the shift operators) rely on order.
func defaultRoutes() []routeEntry {
	substitute := &Definition{Name: "substitute", Addressable: true, Global: true, Default: DefaultLine, Scan: scanSubstitute}
	repeatKeep := &Definition{Name: "&&", Handler: "ex.repeatSubstitute", Addressable: true, Global: true, Default: DefaultLine, Scan: scanRepeatSubstitute}
	repeat := &Definition{Name: "&", Handler: "ex.repeatSubstitute", Addressable: true, Global: true, Default: DefaultLine, Scan: scanRepeatSubstitute}

	del := &Definition{Name: "delete", Addressable: true, Global: true, Default: DefaultLine, Scan: scanRegisterCount}
	yank := &Definition{Name: "yank", Addressable: true, Global: true, Default: DefaultLine, Scan: scanRegisterCount}
	put := &Definition{Name: "put", Addressable: true, Forceable: true, Global: true, Default: DefaultLine, Scan: scanPut}
	cp := &Definition{Name: "copy", Addressable: true, Global: true, Default: DefaultLine, Scan: scanAddress}
	move := &Definition{Name: "move", Addressable: true, Global: true, Default: DefaultLine, Scan: scanAddress}
	join := &Definition{Name: "join", Addressable: true, Forceable: true, Global: true, Default: DefaultLine, Scan: scanCountFlags}
	shiftR := &Definition{Name: ">", Handler: "ex.shiftRight", Addressable: true, Global: true, Default: DefaultLine, Scan: scanShift}
	shiftL := &Definition{Name: "<", Handler: "ex.shiftLeft", Addressable: true, Global: true, Default: DefaultLine, Scan: scanShift}
	global := &Definition{Name: "global", Addressable: true, Forceable: true, Default: DefaultAll, Scan: scanGlobal}
	vglobal := &Definition{Name: "vglobal", Handler: "ex.global", Addressable: true, Default: DefaultAll, Scan: scanGlobal}
	normal := &Definition{Name: "normal", Addressable: true, Forceable: true, Global: true, Scan: scanNormal}
	printLines := &Definition{Name: "print", Addressable: true, Global: true, Default: DefaultLine, Scan: scanCountFlags}
	number := &Definition{Name: "number", Addressable: true, Global: true, Default: DefaultLine, Scan: scanCountFlags}
	list := &Definition{Name: "list", Addressable: true, Global: true, Default: DefaultLine, Scan: scanCountFlags}
	lineNumber := &Definition{Name: "=", Handler: "ex.lineNumber", Addressable: true, Global: true, Default: DefaultLast, Scan: scanFlags}
	mark := &Definition{Name: "mark", Addressable: true, Global: true, Default: DefaultLine, Scan: scanMark}
	marks := &Definition{Name: "marks", Scan: scanOptionalText("names")}
	registers := &Definition{Name: "registers", Scan: scanOptionalText("names")}
	set := &Definition{Name: "set", Scan: scanSet(false)}
	setlocal := &Definition{Name: "setlocal", Handler: "ex.set", Scan: scanSet(true)}
	noh := &Definition{Name: "nohlsearch"}

	write := &Definition{Name: "write", Addressable: true, Forceable: true, Default: DefaultAll, Scan: scanWrite}
	wall := &Definition{Name: "wall", Forceable: true}
	wq := &Definition{Name: "wq", Addressable: true, Forceable: true, Default: DefaultAll, Scan: scanFile}
	wqall := &Definition{Name: "wqall", Forceable: true}
	xit := &Definition{Name: "xit", Addressable: true, Forceable: true, Default: DefaultAll, Scan: scanFile}
	quit := &Definition{Name: "quit", Forceable: true}
	qall := &Definition{Name: "qall", Forceable: true}
	cquit := &Definition{Name: "cquit", Forceable: true}
	edit := &Definition{Name: "edit", Forceable: true, Scan: scanFile}
	enew := &Definition{Name: "enew", Forceable: true}
	newWin := &Definition{Name: "new", Scan: scanFile}
	vnew := &Definition{Name: "vnew", Scan: scanFile}
	split := &Definition{Name: "split", Scan: scanFile}
	vsplit := &Definition{Name: "vsplit", Scan: scanFile}
	only := &Definition{Name: "only", Forceable: true}
	closeWin := &Definition{Name: "close", Forceable: true}
	read := &Definition{Name: "read", Addressable: true, Forceable: true, Default: DefaultLine, Scan: scanRead}
	file := &Definition{Name: "file", Forceable: true, Scan: scanFile}
	cd := &Definition{Name: "cd", Forceable: true, Scan: scanFile}
	pwd := &Definition{Name: "pwd"}
	shell := &Definition{Name: "shell"}
	bang := &Definition{Name: "!", Handler: "ex.filter", Addressable: true, Forceable: true, Scan: scanBang}
	undo := &Definition{Name: "undo", Forceable: true}
	redo := &Definition{Name: "redo"}

	buffer := &Definition{Name: "buffer", Forceable: true, Scan: scanBuffer}
	bnext := &Definition{Name: "bnext", Forceable: true, Scan: scanCount}
	bprev := &Definition{Name: "bprevious", Forceable: true, Scan: scanCount}
	bfirst := &Definition{Name: "bfirst", Forceable: true}
	blast := &Definition{Name: "blast", Forceable: true}
	ls := &Definition{Name: "ls", Forceable: true}
	tabnext := &Definition{Name: "tabnext", Scan: scanCount}
	tabprev := &Definition{Name: "tabprevious", Scan: scanCount}
	tabedit := &Definition{Name: "tabedit", Scan: scanFile}
	tabclose := &Definition{Name: "tabclose", Forceable: true}
	tabonly := &Definition{Name: "tabonly", Forceable: true}
	tabfirst := &Definition{Name: "tabfirst"}
	tablast := &Definition{Name: "tablast"}

	history := &Definition{Name: "history", Scan: scanHistory}
	let := &Definition{Name: "let", Scan: scanLet}
	echo := &Definition{Name: "echo", Scan: scanOptionalText("expr")}

	routes := []routeEntry{
		{`&&`, repeatKeep},
		{`&`, repeat},
		{abbr("s", "ubstitute"), substitute},
		{abbr("se", "t"), set},
		{abbr("setl", "ocal"), setlocal},
		{abbr("sp", "lit"), split},
		{abbr("sh", "ell"), shell},
		{abbr("d", "elete"), del},
		{abbr("di", "splay"), registers},
		{abbr("y", "ank"), yank},
		{abbr("pu", "t"), put},
		{abbr("pw", "d"), pwd},
		{abbr("p", "rint"), printLines},
		{abbr("co", "py"), cp},
		{abbr("t", ""), cp},
		{abbr("marks", ""), marks},
		{abbr("ma", "rk"), mark},
		{abbr("m", "ove"), move},
		{abbr("j", "oin"), join},
		{`>+`, shiftR},
		{`<+`, shiftL},
		{abbr("g", "lobal"), global},
		{abbr("vne", "w"), vnew},
		{abbr("vs", "plit"), vsplit},
		{abbr("v", "global"), vglobal},
		{abbr("norm", "al"), normal},
		{abbr("noh", "lsearch"), noh},
		{abbr("nu", "mber"), number},
		{`#`, number},
		{abbr("new", ""), newWin},
		{abbr("let", ""), let},
		{abbr("ls", ""), ls},
		{abbr("l", "ist"), list},
		{`=`, lineNumber},
		{abbr("reg", "isters"), registers},
		{abbr("red", "o"), redo},
		{abbr("r", "ead"), read},
	}
	routes = append(routes, mapRoutes()...)
	routes = append(routes, []routeEntry{
		{abbr("wqa", "ll"), wqall},
		{abbr("xa", "ll"), wqall},
		{abbr("wq", ""), wq},
		{abbr("wa", "ll"), wall},
		{abbr("w", "rite"), write},
		{abbr("x", "it"), xit},
		{abbr("exi", "t"), xit},
		{abbr("qa", "ll"), qall},
		{abbr("q", "uit"), quit},
		{abbr("cq", "uit"), cquit},
		{abbr("ene", "w"), enew},
		{abbr("ec", "ho"), echo},
		{abbr("e", "dit"), edit},
		{abbr("on", "ly"), only},
		{abbr("clo", "se"), closeWin},
		{abbr("files", ""), ls},
		{abbr("buffers", ""), ls},
		{abbr("f", "ile"), file},
		{abbr("cd", ""), cd},
		{`!`, bang},
		{abbr("u", "ndo"), undo},
		{abbr("bn", "ext"), bnext},
		{abbr("bp", "revious"), bprev},
		{abbr("bN", "ext"), bprev},
		{abbr("bf", "irst"), bfirst},
		{abbr("br", "ewind"), bfirst},
		{abbr("bl", "ast"), blast},
		{abbr("b", "uffer"), buffer},
		{abbr("tabnew", ""), tabedit},
		{abbr("tabn", "ext"), tabnext},
		{abbr("tabp", "revious"), tabprev},
		{abbr("tabN", "ext"), tabprev},
		{abbr("tabe", "dit"), tabedit},
		{abbr("tabc", "lose"), tabclose},
		{abbr("tabo", "nly"), tabonly},
		{abbr("tabfir", "st"), tabfirst},
		{abbr("tabr", "ewind"), tabfirst},
		{abbr("tabl", "ast"), tablast},
		{abbr("his", "tory"), history},
		// "k" takes its mark name without a blank (":ka"), so it has no
		// letter guard and must stay last.
		{`k`, mark},
	}...)
	return routes
}

// mapFamily describes one mapping command family across mode letters.
type mapFamily struct {
	kind  string // map, noremap, unmap, mapclear
	names map[string][2]string
}

// mapRoutes builds the :map, :noremap, :unmap and :mapclear families. The
// value pairs are the required abbreviation and its optional rest.
func mapRoutes() []routeEntry {
	families := []mapFamily{
		{"map", map[string][2]string{
			"n": {"nm", "ap"}, "v": {"vm", "ap"}, "x": {"xm", "ap"}, "": {"map", ""},
			"o": {"om", "ap"}, "s": {"smap", ""}, "i": {"im", "ap"},
		}},
		{"noremap", map[string][2]string{
			"n": {"nn", "oremap"}, "v": {"vn", "oremap"}, "x": {"xn", "oremap"}, "": {"no", "remap"},
			"o": {"ono", "remap"}, "s": {"snor", "emap"}, "i": {"ino", "remap"},
		}},
		{"unmap", map[string][2]string{
			"n": {"nun", "map"}, "v": {"vu", "nmap"}, "x": {"xu", "nmap"}, "": {"unm", "ap"},
			"o": {"ou", "nmap"}, "s": {"sunm", "ap"}, "i": {"iu", "nmap"},
		}},
		{"mapclear", map[string][2]string{
			"n": {"nmapc", "lear"}, "v": {"vmapc", "lear"}, "x": {"xmapc", "lear"}, "": {"mapc", "lear"},
			"o": {"omapc", "lear"}, "s": {"smapc", "lear"}, "i": {"imapc", "lear"},
		}},
	}
	letters := []string{"", "n", "v", "x", "o", "s", "i"}

	var out []routeEntry
	for _, fam := range families {
		for _, l := range letters {
			ab := fam.names[l]
			def := &Definition{
				Name:      ab[0] + ab[1],
				Handler:   "ex." + fam.kind,
				Forceable: l == "",
			}
			switch fam.kind {
			case "map":
				def.Scan = scanMap(l, false)
			case "noremap":
				def.Scan = scanMap(l, true)
			case "unmap":
				def.Scan = scanUnmap(l)
			default:
				def.Scan = scanMapclear(l)
			}
			out = append(out, routeEntry{abbr(ab[0], ab[1]), def})
		}
	}
	return out
}
