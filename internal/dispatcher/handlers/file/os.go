package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// FileSystem reads and writes whole files.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	// WriteFile replaces path with data, or appends data to it.
	WriteFile(path string, data []byte, appendTo bool) error
	Exists(path string) bool
}

// Shell runs external commands.
type Shell interface {
	// Run runs command with stdin as its input and returns what it wrote
	// to stdout and stderr.
	Run(ctx context.Context, command, stdin string) (string, error)
}

// OS is the FileSystem of the operating system.
type OS struct{}

// ReadFile implements FileSystem.
func (OS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile implements FileSystem.
func (OS) WriteFile(path string, data []byte, appendTo bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if appendTo {
		flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Exists implements FileSystem.
func (OS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Sh runs commands with a POSIX shell.
type Sh struct {
	// Path of the shell. Empty uses $SHELL, then /bin/sh.
	Path string
}

// Run implements Shell.
func (s Sh) Run(ctx context.Context, command, stdin string) (string, error) {
	shell := s.Path
	if shell == "" {
		shell = os.Getenv("SHELL")
	}
	if shell == "" {
		shell = "/bin/sh"
	}
	cmd := exec.CommandContext(ctx, shell, "-c", command)
	cmd.Stdin = strings.NewReader(stdin)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		var exit *exec.ExitError
		if errors.As(err, &exit) {
			return out.String(), fmt.Errorf("shell returned %d: %s", exit.ExitCode(), strings.TrimSpace(out.String()))
		}
		return "", err
	}
	return out.String(), nil
}
