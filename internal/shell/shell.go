// Package shell is a line-oriented command interpreter over one storefront
// session. It backs the interactive CLI and the scenario harness.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/roach88/storefront/internal/api"
	"github.com/roach88/storefront/internal/app"
	"github.com/roach88/storefront/internal/session"
)

// ErrQuit is returned by Exec for the quit command.
var ErrQuit = errors.New("quit")

// UsageError reports a malformed command line.
type UsageError struct {
	Command string
	Usage   string
}

func (e *UsageError) Error() string {
	if e.Usage == "" {
		return fmt.Sprintf("unknown command %q (try help)", e.Command)
	}
	return "usage: " + e.Usage
}

type command struct {
	name  string
	usage string
	help  string
	run   func(s *Shell, ctx context.Context, args []string) error
}

// Shell executes commands against an App and writes results to out.
type Shell struct {
	app      *app.App
	out      io.Writer
	prompt   string
	commands map[string]command
}

// Option configures a Shell.
type Option func(*Shell)

// WithPrompt sets the prompt Run prints before each line. Empty disables it.
func WithPrompt(p string) Option {
	return func(s *Shell) { s.prompt = p }
}

// New creates a Shell.
func New(a *app.App, out io.Writer, opts ...Option) *Shell {
	s := &Shell{app: a, out: out, prompt: "> "}
	for _, opt := range opts {
		opt(s)
	}
	s.commands = make(map[string]command, len(commands))
	for _, c := range commands {
		s.commands[c.name] = c
	}
	return s
}

// Exec runs one command line. Blank lines and lines starting with # are
// ignored.
func (s *Shell) Exec(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	name, rest, _ := strings.Cut(line, " ")
	cmd, ok := s.commands[strings.ToLower(name)]
	if !ok {
		return &UsageError{Command: name}
	}
	return cmd.run(s, ctx, strings.Fields(rest))
}

// Run reads commands from in until EOF, quit, or ctx ends. Command errors
// are printed and do not stop the loop.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		if s.prompt != "" {
			fmt.Fprint(s.out, s.prompt)
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		err := s.Exec(ctx, scanner.Text())
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(s.out, "error: %s\n", Describe(err))
		}
	}
}

// Describe renders err the way the storefront shows it to a user.
func Describe(err error) string {
	var ve *session.ValidationError
	if errors.As(err, &ve) {
		keys := make([]string, 0, len(ve.Fields))
		for k := range ve.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, ve.Fields[k])
		}
		return strings.Join(parts, "; ")
	}
	var ue *UsageError
	if errors.As(err, &ue) {
		return ue.Error()
	}
	return api.Message(err)
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}
