package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/shlex"
	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"
)

const shellPrompt = "registryx> "

var errUnterminatedQuote = errors.New("unterminated quote or escape")

// lineReader reads one line of input per prompt.
type lineReader interface {
	Prompt(prompt string) (string, error)
}

// scanReader is the lineReader used when stdin is not a terminal.
type scanReader struct {
	scanner *bufio.Scanner
}

func (r *scanReader) Prompt(string) (string, error) {
	if !r.scanner.Scan() {
		err := r.scanner.Err()
		if err == nil {
			err = io.EOF
		}

		return "", err
	}

	return r.scanner.Text(), nil
}

// ShellCmd returns the shell command.
func ShellCmd(d *deps) *Command {
	return &Command{
		Flags: flag.NewFlagSet("shell", flag.ContinueOnError),
		Usage: "shell",
		Short: "Run commands interactively",
		Long: `Read registry commands line by line, with history and tab completion on a
terminal. Arguments may be quoted. "exit" or Ctrl-D ends the session.`,
		Exec: func(ctx context.Context, io *IO, _ []string) error {
			return execShell(ctx, io, d)
		},
	}
}

func execShell(ctx context.Context, o *IO, d *deps) error {
	reader, done := openLineReader(d)
	defer done()

	for ctx.Err() == nil {
		line, err := reader.Prompt(shellPrompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}

			return fmt.Errorf("reading input: %w", err)
		}

		if h, ok := reader.(interface{ AppendHistory(string) }); ok && strings.TrimSpace(line) != "" {
			h.AppendHistory(line)
		}

		if !runShellLine(ctx, o, d, line) {
			return nil
		}
	}

	return nil
}

// runShellLine executes one line. Returns false when the session should end.
func runShellLine(ctx context.Context, o *IO, d *deps, line string) bool {
	args, err := splitArgs(line)
	if err != nil {
		o.ErrPrintln("error:", err)

		return true
	}

	if len(args) == 0 {
		return true
	}

	switch args[0] {
	case "exit", "quit", "q":
		return false
	case "help", "?":
		o.Println("Commands:")

		for _, cmd := range shellCommands(d) {
			o.Println(cmd.HelpLine())
		}

		o.Println("  exit")

		return true
	}

	cmd := findCommand(shellCommands(d), args[0])
	if cmd == nil {
		o.ErrPrintln("error: unknown command:", args[0], "(type 'help' for commands)")

		return true
	}

	// Warnings belong to the line that raised them.
	cmd.Run(ctx, NewIO(o.out, o.errOut), args[1:])

	return true
}

// shellCommands is the command set minus the ones that take over the process.
func shellCommands(d *deps) []*Command {
	var out []*Command

	for _, cmd := range commandSet(d) {
		switch cmd.Name() {
		case "shell", "serve":
			continue
		}

		out = append(out, cmd)
	}

	return out
}

// openLineReader returns a liner prompt when stdin is the terminal, and a
// plain line scanner otherwise. done saves history and restores the terminal.
func openLineReader(d *deps) (lineReader, func()) {
	if d.stdin == nil {
		return &scanReader{scanner: bufio.NewScanner(strings.NewReader(""))}, func() {}
	}

	f, isFile := d.stdin.(*os.File)
	if !isFile || f != os.Stdin || !liner.TerminalSupported() {
		return &scanReader{scanner: bufio.NewScanner(d.stdin)}, func() {}
	}

	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	state.SetCompleter(func(line string) []string {
		var completions []string

		for _, cmd := range shellCommands(d) {
			if strings.HasPrefix(cmd.Name(), line) {
				completions = append(completions, cmd.Name())
			}
		}

		return completions
	})

	path := historyFile(d.env)
	if path != "" {
		if hf, err := os.Open(path); err == nil {
			_, _ = state.ReadHistory(hf)
			_ = hf.Close()
		}
	}

	return state, func() {
		if path != "" {
			if hf, err := os.Create(path); err == nil {
				_, _ = state.WriteHistory(hf)
				_ = hf.Close()
			}
		}

		_ = state.Close()
	}
}

func historyFile(env map[string]string) string {
	home := env["HOME"]
	if home == "" {
		return ""
	}

	return filepath.Join(home, ".registryx_history")
}

// splitArgs splits a line into words with POSIX-style quoting. A blank
// line gives no words.
func splitArgs(line string) ([]string, error) {
	args, err := shlex.Split(line)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errUnterminatedQuote, err)
	}

	if len(args) == 0 {
		return nil, nil
	}

	return args, nil
}
