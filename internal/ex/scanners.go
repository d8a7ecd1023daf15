package ex

import (
	"strconv"
	"strings"
)

const (
	substituteFlags = "&cegiInp#lr"
	printFlags      = "#lp"

	// writableRegisters may receive deleted or yanked text.
	writableRegisters = `abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"-_*+`

	// readableRegisters may be put.
	readableRegisters = writableRegisters + `0123456789:.%#/`

	markNames = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ'`[]<>"
)

// mapArgs are the special arguments accepted before a mapping's lhs.
var mapArgs = []string{"<buffer>", "<nowait>", "<silent>", "<special>", "<script>", "<expr>", "<unique>"}

// scanSubstitute reads "/pattern/replacement/[flags] [count]". Without a
// delimiter it reads the "[flags] [count]" of a repeat.
func scanSubstitute(r *ArgReader) (Params, error) {
	p := Params{}
	if validDelimiter(r.Peek()) {
		delim := r.Next()
		pat, _ := r.Delimited(delim)
		p["pattern"] = pat
		rep, _ := r.Delimited(delim)
		p["replacement"] = rep
	}
	return scanSubstituteTail(r, p)
}

func scanRepeatSubstitute(r *ArgReader) (Params, error) {
	p := Params{}
	if r.Name == "&&" {
		p["flags"] = []string{"&"}
	}
	return scanSubstituteTail(r, p)
}

func scanSubstituteTail(r *ArgReader, p Params) (Params, error) {
	if flags := r.Flags(substituteFlags); len(flags) > 0 {
		p["flags"] = append(p.Strings("flags"), flags...)
	}
	n, ok, err := r.Count()
	if err != nil {
		return nil, err
	}
	if ok {
		p["count"] = n
	}
	return p, r.End()
}

// scanRegisterCount reads "[x] [count]" for :delete and :yank.
func scanRegisterCount(r *ArgReader) (Params, error) {
	p := Params{}
	r.SkipSpace()
	if c := r.Peek(); c != 0 && (c < '0' || c > '9') {
		if !strings.ContainsRune(writableRegisters, c) {
			return nil, r.Error(ErrInvalidArgument, "invalid register name")
		}
		r.Next()
		p["register"] = string(c)
	}
	n, ok, err := r.Count()
	if err != nil {
		return nil, err
	}
	if ok {
		p["count"] = n
	}
	return p, r.End()
}

// scanPut reads ":put[!] [x]". The bang puts above the line.
func scanPut(r *ArgReader) (Params, error) {
	p := Params{"above": r.Forced}
	r.SkipSpace()
	if c := r.Peek(); c != 0 {
		if !strings.ContainsRune(readableRegisters, c) {
			return nil, r.Error(ErrInvalidArgument, "invalid register name")
		}
		r.Next()
		p["register"] = string(c)
	}
	return p, r.End()
}

// scanAddress reads the destination address of :copy and :move.
func scanAddress(r *ArgReader) (Params, error) {
	r.SkipSpace()
	at := r.offset()
	text := r.Rest()
	if text == "" {
		return nil, r.Error(ErrMissingArgument, "destination address")
	}
	node, err := r.Registry().ParseRange(text)
	if err != nil {
		return nil, r.rebase(err, at)
	}
	return Params{"address": node}, nil
}

// scanCountFlags reads "[count] [flags]" for :join and the print family.
func scanCountFlags(r *ArgReader) (Params, error) {
	p := Params{}
	n, ok, err := r.Count()
	if err != nil {
		return nil, err
	}
	if ok {
		p["count"] = n
	}
	if flags := r.Flags(printFlags); len(flags) > 0 {
		p["flags"] = flags
	}
	return p, r.End()
}

func scanFlags(r *ArgReader) (Params, error) {
	p := Params{}
	if flags := r.Flags(printFlags); len(flags) > 0 {
		p["flags"] = flags
	}
	return p, r.End()
}

// scanShift reads ":>>> [count] [flags]"; the number of operator
// characters is the shift amount.
func scanShift(r *ArgReader) (Params, error) {
	p, err := scanCountFlags(r)
	if err != nil {
		return nil, err
	}
	p["amount"] = len(r.Name)
	return p, nil
}

// scanGlobal reads "/pattern/[command]". The command defaults to :print and
// must cooperate with :global.
func scanGlobal(r *ArgReader) (Params, error) {
	p := Params{"invert": r.Forced || strings.HasPrefix(r.Name, "v")}
	r.SkipSpace()
	delim := r.Peek()
	if delim == 0 {
		return nil, r.Error(ErrMissingArgument, "pattern")
	}
	if !validDelimiter(delim) {
		return nil, r.Error(ErrInvalidArgument, "pattern delimiter")
	}
	r.Next()
	pat, _ := r.Delimited(delim)
	p["pattern"] = pat

	r.SkipSpace()
	at := r.offset()
	sub := r.Rest()
	if sub == "" {
		sub = "p"
	}
	p["command"] = sub

	line, err := r.Registry().Parse(sub)
	if err != nil {
		return nil, r.rebase(err, at)
	}
	if line.Command != nil && !line.Command.Global {
		return nil, newParseError(ErrNotAllowedInGlobal, r.src, at, sub, line.Command.Name)
	}
	p["subcommand"] = line
	return p, nil
}

// scanNormal reads the keys of :normal, keeping trailing blanks.
func scanNormal(r *ArgReader) (Params, error) {
	keys := r.Raw()
	if keys == "" {
		return nil, r.Error(ErrMissingArgument, "keys")
	}
	return Params{"keys": keys}, nil
}

// scanMark reads a single mark name.
func scanMark(r *ArgReader) (Params, error) {
	r.SkipSpace()
	if r.EOF() {
		return nil, r.Error(ErrMissingArgument, "mark name")
	}
	c := r.Peek()
	if !strings.ContainsRune(markNames, c) {
		return nil, r.Error(ErrInvalidArgument, "invalid mark name")
	}
	r.Next()
	return Params{"mark": string(c)}, r.End()
}

func scanOptionalText(key string) ArgScanner {
	return func(r *ArgReader) (Params, error) {
		if s := r.Rest(); s != "" {
			return Params{key: s}, nil
		}
		return Params{}, nil
	}
}

func scanSet(local bool) ArgScanner {
	return func(r *ArgReader) (Params, error) {
		p := Params{}
		if local {
			p["local"] = true
		}
		if words := r.Words(); len(words) > 0 {
			p["options"] = words
		}
		return p, nil
	}
}

// scanMap reads "[<special>...] {lhs} {rhs}". Without an lhs the command
// lists mappings; without an rhs it lists mappings starting with lhs.
func scanMap(letter string, noremap bool) ArgScanner {
	return func(r *ArgReader) (Params, error) {
		p := Params{"modes": letter, "noremap": noremap}
		if attrs := scanMapArgs(r); len(attrs) > 0 {
			p["attrs"] = attrs
		}
		lhs := r.Word()
		if lhs == "" {
			return p, nil
		}
		p["lhs"] = lhs
		if rhs := r.Raw(); rhs != "" {
			p["rhs"] = rhs
		}
		return p, nil
	}
}

func scanUnmap(letter string) ArgScanner {
	return func(r *ArgReader) (Params, error) {
		p := Params{"modes": letter}
		if attrs := scanMapArgs(r); len(attrs) > 0 {
			p["attrs"] = attrs
		}
		lhs := r.Word()
		if lhs == "" {
			return nil, r.Error(ErrMissingArgument, "lhs")
		}
		p["lhs"] = lhs
		return p, r.End()
	}
}

func scanMapclear(letter string) ArgScanner {
	return func(r *ArgReader) (Params, error) {
		p := Params{"modes": letter}
		if attrs := scanMapArgs(r); len(attrs) > 0 {
			p["attrs"] = attrs
		}
		return p, r.End()
	}
}

func scanMapArgs(r *ArgReader) []string {
	var attrs []string
	for {
		r.SkipSpace()
		found := false
		for _, a := range mapArgs {
			if r.Accept(a) {
				attrs = append(attrs, strings.Trim(a, "<>"))
				found = true
				break
			}
		}
		if !found {
			return attrs
		}
	}
}

// scanWrite reads "[>>] [file]" or "!{cmd}".
func scanWrite(r *ArgReader) (Params, error) {
	p := Params{}
	r.SkipSpace()
	if r.Accept("!") {
		cmd := r.Rest()
		if cmd == "" {
			return nil, r.Error(ErrMissingArgument, "shell command")
		}
		p["command"] = cmd
		return p, nil
	}
	if r.Accept(">>") {
		p["append"] = true
	}
	if f := r.Rest(); f != "" {
		p["file"] = f
	}
	return p, nil
}

// scanRead reads "[file]" or "!{cmd}".
func scanRead(r *ArgReader) (Params, error) {
	r.SkipSpace()
	if r.Accept("!") {
		cmd := r.Rest()
		if cmd == "" {
			return nil, r.Error(ErrMissingArgument, "shell command")
		}
		return Params{"command": cmd}, nil
	}
	return scanFile(r)
}

func scanFile(r *ArgReader) (Params, error) {
	if f := r.Rest(); f != "" {
		return Params{"file": f}, nil
	}
	return Params{}, nil
}

func scanBang(r *ArgReader) (Params, error) {
	cmd := r.Rest()
	if cmd == "" && !r.Forced {
		return nil, r.Error(ErrMissingArgument, "shell command")
	}
	return Params{"command": cmd}, nil
}

// scanBuffer reads a buffer number or name.
func scanBuffer(r *ArgReader) (Params, error) {
	r.SkipSpace()
	if c := r.Peek(); c >= '0' && c <= '9' {
		n, _, err := r.Count()
		if err != nil {
			return nil, err
		}
		return Params{"number": n}, r.End()
	}
	if name := r.Rest(); name != "" {
		return Params{"name": name}, nil
	}
	return Params{}, nil
}

func scanCount(r *ArgReader) (Params, error) {
	n, ok, err := r.Count()
	if err != nil {
		return nil, err
	}
	p := Params{}
	if ok {
		p["count"] = n
	}
	return p, r.End()
}

// scanHistory reads "[name] [first][,last]".
func scanHistory(r *ArgReader) (Params, error) {
	p := Params{}
	words := r.Words()
	if len(words) > 2 {
		return nil, r.Error(ErrTrailingCharacters, strings.Join(words[2:], " "))
	}
	for _, w := range words {
		if isDigit(w[0]) || w[0] == '-' || w[0] == ',' {
			p["range"] = w
		} else {
			p["name"] = w
		}
	}
	return p, nil
}

// scanLet reads "{name} = {value}".
func scanLet(r *ArgReader) (Params, error) {
	r.SkipSpace()
	start := r.pos
	for !r.EOF() && !isBlank(r.text[r.pos]) && r.text[r.pos] != '=' {
		r.pos++
	}
	name := r.text[start:r.pos]
	if name == "" {
		return nil, r.Error(ErrMissingArgument, "variable name")
	}
	r.SkipSpace()
	if r.EOF() {
		return nil, r.Error(ErrMissingArgument, "=")
	}
	if !r.Accept("=") {
		return nil, r.Error(ErrInvalidArgument, "expected =")
	}
	value := r.Rest()
	if value == "" {
		return nil, r.Error(ErrMissingArgument, "expression")
	}
	v, err := letValue(value)
	if err != nil {
		return nil, r.Error(ErrInvalidArgument, err.Error())
	}
	return Params{"name": name, "value": v}, nil
}

// letValue converts a literal: quoted strings lose their quotes, integers
// become int, anything else stays text.
func letValue(s string) (any, error) {
	switch {
	case len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'':
		return strings.ReplaceAll(s[1:len(s)-1], "''", "'"), nil
	case len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"':
		return strconv.Unquote(s)
	case s[0] == '\'' || s[0] == '"':
		return nil, errUnterminatedString
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	return s, nil
}
