package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/dshills/vimcore/internal/ex"
)

// runParse prints the parse of a command line. Several arguments are
// joined with spaces, so quoting is optional.
func runParse(g globals, args []string) error {
	fs := flag.NewFlagSet("parse", flag.ContinueOnError)
	fs.SetOutput(g.stderr)
	get := fs.String("get", "", "print only the value at this JSON path, e.g. command.name")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("%w: parse needs a command line", errUsage)
	}
	line := strings.TrimLeft(strings.Join(fs.Args(), " "), ": \t")

	parsed, err := ex.Parse(line)
	if err == nil {
		err = parsed.Validate()
	}
	if err != nil {
		return err
	}
	out, err := parsed.JSON()
	if err != nil {
		return err
	}
	if *get != "" {
		res := gjson.GetBytes(out, *get)
		if !res.Exists() {
			return fmt.Errorf("no value at %q", *get)
		}
		fmt.Fprintln(g.stdout, res.String())
		return nil
	}
	fmt.Fprintf(g.stdout, "%s\n", out)
	return nil
}
