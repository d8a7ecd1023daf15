// Package lua runs Lua init scripts against a vimcore session.
//
// Scripts run in a sandboxed gopher-lua state: the io, os, debug and
// package loaders are not opened, dofile and friends are removed, and
// require only reaches the built-in string, table and math modules.
//
// RunInit exposes a vim module:
//
//	vim.map("n", "<leader>w", ":w<CR>")
//	vim.noremap("n", "Y", "y$", {silent = true})
//	vim.unmap("n", "Q")
//	vim.set("shiftwidth", 4)
//	local ic = vim.get("ignorecase")
//	vim.cmd("set hlsearch")
//
// Mappings are tagged with the script path, so running a script again
// replaces what it mapped before.
package lua
