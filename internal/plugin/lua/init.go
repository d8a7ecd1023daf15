package lua

import (
	"context"
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/vimcore/internal/input/key"
	"github.com/dshills/vimcore/internal/input/keymap"
	"github.com/dshills/vimcore/internal/logging"
	"github.com/dshills/vimcore/internal/session"
)

// Commander runs Ex command lines for vim.cmd.
type Commander interface {
	Execute(ctx context.Context, line string) error
}

// Init is the environment an init script runs against.
type Init struct {
	Session *session.State

	// Commander serves vim.cmd. Nil makes vim.cmd raise ErrNoCommander.
	Commander Commander

	Logger  *logging.Logger
	Options []StateOption
}

// RunInit runs the script at path against st.
func RunInit(ctx context.Context, path string, st *session.State, cmd Commander, log *logging.Logger) error {
	in := Init{Session: st, Commander: cmd, Logger: log}
	return in.Run(ctx, path)
}

// Run runs the script at path. Mappings the script made on an earlier run
// are dropped first.
func (in Init) Run(ctx context.Context, path string) error {
	return in.run(ctx, path, func(s *State) error { return s.DoFile(ctx, path) })
}

// RunString runs code as if it were the script source.
func (in Init) RunString(ctx context.Context, source, code string) error {
	return in.run(ctx, source, func(s *State) error { return s.DoString(ctx, code) })
}

func (in Init) run(ctx context.Context, source string, do func(*State) error) error {
	log := logging.OrNop(in.Logger).WithComponent("lua").WithField("script", source)
	in.Session.Mappings.RemoveSource(source)

	s := NewState(in.Options...)
	defer s.Close()
	s.RegisterModule("vim", in.module(ctx, source, log))
	s.L.SetGlobal("print", s.L.NewFunction(func(L *lua.LState) int {
		parts := make([]string, L.GetTop())
		for i := range parts {
			parts[i] = L.ToStringMeta(L.Get(i + 1)).String()
		}
		log.Info("%s", strings.Join(parts, "\t"))
		return 0
	}))

	if err := do(s); err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}
	log.Debug("init script done")
	return nil
}

func (in Init) module(ctx context.Context, source string, log *logging.Logger) map[string]lua.LGFunction {
	st := in.Session
	log = logging.OrNop(log)
	mapFn := func(noremap bool) lua.LGFunction {
		return func(L *lua.LState) int {
			modes, err := keymap.ParseModes(L.CheckString(1))
			if err != nil {
				L.ArgError(1, err.Error())
				return 0
			}
			lhs, rhs := in.sequence(L, 2), in.sequence(L, 3)
			opts := L.OptTable(4, nil)
			err = st.Mappings.MapModes(modes, keymap.Mapping{
				LHS:     lhs,
				RHS:     rhs,
				Noremap: noremap || optBool(opts, "noremap"),
				Silent:  optBool(opts, "silent"),
				Nowait:  optBool(opts, "nowait"),
				Unique:  optBool(opts, "unique"),
				Source:  source,
			})
			if err != nil {
				L.RaiseError("%v", err)
			}
			return 0
		}
	}

	return map[string]lua.LGFunction{
		"map":     mapFn(false),
		"noremap": mapFn(true),
		"unmap": func(L *lua.LState) int {
			modes, err := keymap.ParseModes(L.CheckString(1))
			if err != nil {
				L.ArgError(1, err.Error())
				return 0
			}
			lhs := in.sequence(L, 2)
			removed := false
			for _, md := range modes {
				if st.Mappings.Unmap(md, lhs) {
					removed = true
				}
			}
			L.Push(lua.LBool(removed))
			return 1
		},
		"set": func(L *lua.LState) int {
			name := L.CheckString(1)
			if err := st.Settings.Set(name, toGo(L.CheckAny(2))); err != nil {
				L.RaiseError("%v", err)
			}
			return 0
		},
		"get": func(L *lua.LState) int {
			v, ok := st.Settings.Get(L.CheckString(1))
			if !ok {
				L.Push(lua.LNil)
				return 1
			}
			L.Push(toLua(L, v))
			return 1
		},
		"cmd": func(L *lua.LState) int {
			line := L.CheckString(1)
			if in.Commander == nil {
				L.RaiseError("%v", ErrNoCommander)
				return 0
			}
			log.Debug("cmd %q", line)
			if err := in.Commander.Execute(ctx, line); err != nil {
				L.RaiseError("%v", err)
			}
			return 0
		},
	}
}

// sequence parses argument n as key notation after expanding <Leader>.
func (in Init) sequence(L *lua.LState, n int) key.Sequence {
	notation := L.CheckString(n)
	seq, err := key.ParseSequence(key.ExpandLeader(notation, in.Session.Settings.String("mapleader")))
	if err != nil {
		L.ArgError(n, err.Error())
	}
	return seq
}
