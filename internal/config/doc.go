// Package config loads vimcore configuration files and applies them to a
// session.
//
// A configuration is a TOML file:
//
//	"@include" = ["base.toml"]
//	keymaps = ["keys.yaml"]
//	init = "init.lua"
//
//	[settings]
//	leader = ","
//	ignorecase = true
//	shiftwidth = 4
//
//	[[mappings]]
//	mode = "n"
//	lhs = "<leader>w"
//	rhs = ":w<CR>"
//
// Included files are merged beneath the including file. VIMCORE_NAME
// environment variables override settings.name. Mappings are tagged with
// the file that defined them, so applying a file again replaces its
// earlier mappings and leaves the others alone.
//
// A Reloader re-applies the configuration when any of its files changes.
package config
