// Package keymap holds user key mappings.
//
// A Table stores the mappings created by :map, :noremap and the config
// loaders, one prefix tree per mode. The table is process-wide state: one
// Table is shared by every buffer of an editing session, and writers are
// last-writer-wins.
//
// Tree is the generic prefix tree the table is built on; the built-in
// command tables of package vim use it too, so that user mappings and
// built-in commands answer the same two questions: is this sequence a
// complete entry, and is it a strict prefix of a longer one.
//
// Mappings can be read from YAML or TOML files:
//
//	keymaps:
//	  - mode: n
//	    noremap: true
//	    mappings:
//	      "<leader>w": ":w<CR>"
//	      "Y": "y$"
package keymap
