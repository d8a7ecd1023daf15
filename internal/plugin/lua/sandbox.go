package lua

import (
	lua "github.com/yuin/gopher-lua"
)

// builtinModules are the modules require may return besides preloaded
// ones.
var builtinModules = map[string]bool{
	"string": true,
	"table":  true,
	"math":   true,
}

// installSandbox removes the loaders that reach the file system and
// restricts require to built-in and preloaded modules.
func installSandbox(L *lua.LState) {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}

	pkg, ok := L.GetGlobal("package").(*lua.LTable)
	if !ok {
		return
	}
	L.SetField(pkg, "path", lua.LString(""))
	L.SetField(pkg, "cpath", lua.LString(""))

	require := L.GetGlobal("require")
	L.SetGlobal("require", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		preload, _ := L.GetField(pkg, "preload").(*lua.LTable)
		if !builtinModules[name] && (preload == nil || preload.RawGetString(name) == lua.LNil) {
			L.RaiseError("module %q is not available", name)
			return 0
		}
		L.Push(require)
		L.Push(lua.LString(name))
		L.Call(1, 1)
		return 1
	}))
}
