// Command vimcore drives the Vim key and Ex core from the command line.
//
//	vimcore parse '1,$s/a/b/g'      print the parsed command line as JSON
//	vimcore keys -file f.txt 'dwjx' feed keys and print every dispatch
//	vimcore inspect f.txt           interactive key inspector
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/vimcore/internal/app"
	"github.com/dshills/vimcore/internal/config"
	"github.com/dshills/vimcore/internal/logging"
	"github.com/dshills/vimcore/internal/plugin/lua"
	"github.com/dshills/vimcore/internal/session"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

// errUsage marks a command line the usage text should follow.
var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// globals are the flags accepted before the command name.
type globals struct {
	configPath string
	logLevel   string
	levelSet   bool
	strict     bool
	stdout     io.Writer
	stderr     io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	g := globals{stdout: stdout, stderr: stderr}
	fs := flag.NewFlagSet("vimcore", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&g.configPath, "config", "", "configuration file (TOML)")
	fs.StringVar(&g.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	fs.BoolVar(&g.strict, "strict", false, "panic on state machine invariant violations")
	showVersion := fs.Bool("version", false, "print the version")
	fs.Usage = func() { usage(stderr, fs) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "log-level" {
			g.levelSet = true
		}
	})
	if *showVersion {
		fmt.Fprintf(stdout, "vimcore %s (%s)\n", version, commit)
		return 0
	}
	if _, ok := logging.ParseLevel(g.logLevel); !ok {
		fmt.Fprintf(stderr, "vimcore: invalid log level %q\n", g.logLevel)
		return 2
	}

	rest := fs.Args()
	if len(rest) == 0 {
		usage(stderr, fs)
		return 2
	}
	var err error
	code := 0
	switch rest[0] {
	case "parse":
		err = runParse(g, rest[1:])
	case "keys":
		code, err = runKeys(ctx, g, rest[1:])
	case "inspect":
		code, err = runInspect(ctx, g, rest[1:])
	default:
		err = fmt.Errorf("%w: unknown command %q", errUsage, rest[0])
	}
	switch {
	case errors.Is(err, errUsage):
		fmt.Fprintf(stderr, "vimcore: %v\n", err)
		usage(stderr, fs)
		return 2
	case err != nil:
		fmt.Fprintf(stderr, "vimcore: %v\n", err)
		return 1
	}
	return code
}

func usage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, "Usage: vimcore [options] <command> [args]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	fmt.Fprintf(w, "  parse <cmdline>            print the parsed Ex command line as JSON\n")
	fmt.Fprintf(w, "  keys [-file f] <notation>  feed keys and print every dispatch\n")
	fmt.Fprintf(w, "  inspect [file]             interactive key inspector\n\n")
	fmt.Fprintf(w, "Options:\n")
	fs.PrintDefaults()
}

func (g globals) logger() *logging.Logger {
	level, _ := logging.ParseLevel(g.logLevel)
	cfg := logging.DefaultConfig()
	cfg.Level = level
	cfg.Output = g.stderr
	return logging.New(cfg)
}

// editor builds an editor over a session configured from -config. The
// Lua init script the configuration names runs once the editor exists,
// and again on every reload.
func (g globals) editor(ctx context.Context, opts app.Options) (*app.Editor, *config.Reloader, error) {
	log := g.logger()
	st := session.New()
	opts.Logger = log
	opts.Session = st
	opts.Strict = opts.Strict || g.strict

	if g.configPath == "" {
		return app.New(opts), nil, nil
	}
	r := &config.Reloader{Path: g.configPath, State: st, Logger: log}
	cfg, err := r.Load()
	if err != nil {
		return nil, nil, err
	}
	if !g.levelSet && cfg.LogLevel != "" {
		if level, ok := logging.ParseLevel(cfg.LogLevel); ok {
			log.SetLevel(level)
		}
	}
	ed := app.New(opts)
	r.OnApply = func(c *config.Config) { runInit(ctx, c, ed, log) }
	runInit(ctx, cfg, ed, log)
	return ed, r, nil
}

func runInit(ctx context.Context, cfg *config.Config, ed *app.Editor, log *logging.Logger) {
	if cfg.Init == "" {
		return
	}
	if _, err := os.Stat(cfg.Init); err != nil {
		log.Debug("no init script: %v", err)
		return
	}
	if err := lua.RunInit(ctx, cfg.Init, ed.Session(), ed, log); err != nil {
		log.Error("init script: %v", err)
	}
}
