package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultPrompt is printed before each line.
const DefaultPrompt = "timekeep> "

// ExecFunc runs one command line, already split into arguments.
type ExecFunc func(args []string) error

// Options configures New.
type Options struct {
	In        io.Reader
	Out       io.Writer
	Prompt    string
	Exec      ExecFunc
	Completer *Completer
	History   *History
}

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input     io.Reader
	output    io.Writer
	prompt    string
	exec      ExecFunc
	completer *Completer
	history   *History
}

// New creates a new REPL instance.
func New(opts Options) *REPL {
	r := &REPL{
		input:     opts.In,
		output:    opts.Out,
		prompt:    opts.Prompt,
		exec:      opts.Exec,
		completer: opts.Completer,
		history:   opts.History,
	}
	if r.input == nil {
		r.input = os.Stdin
	}
	if r.output == nil {
		r.output = os.Stdout
	}
	if r.prompt == "" {
		r.prompt = DefaultPrompt
	}
	if r.completer == nil {
		r.completer = NewCompleter(nil)
	}
	if r.history == nil {
		r.history = NewHistory("", 0)
	}
	return r
}

// Run starts the REPL loop. It returns on exit, quit or end of input.
func (r *REPL) Run() error {
	reader := bufio.NewReader(r.input)

	for {
		fmt.Fprint(r.output, r.prompt)

		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		eof := errors.Is(err, io.EOF)

		line = strings.TrimSpace(line)
		if line == "" {
			if eof {
				fmt.Fprintln(r.output)
				return nil
			}
			continue
		}

		if !sensitive(line) {
			r.history.Add(line)
		}

		if line == "exit" || line == "quit" {
			return nil
		}

		if err := r.execute(line); err != nil {
			fmt.Fprintf(r.output, "Error: %v\n", err)
		}
		if eof {
			return nil
		}
	}
}

func (r *REPL) execute(line string) error {
	args, err := SplitArgs(line)
	if err != nil {
		return err
	}
	if len(args) == 0 || args[0] == "" {
		return nil
	}

	switch args[0] {
	case "help":
		fmt.Fprintln(r.output, "Commands: "+strings.Join(r.completer.Commands(), ", "))
		return nil
	case "history":
		for i, entry := range r.history.Entries() {
			fmt.Fprintf(r.output, "%4d  %s\n", i+1, entry)
		}
		return nil
	}

	if !r.completer.Known(args[0]) {
		msg := fmt.Sprintf("Unknown command %q.", args[0])
		if s := r.completer.Complete(args[0][:1]); len(s) > 0 {
			msg += " Did you mean: " + strings.Join(s, ", ") + "?"
		}
		fmt.Fprintln(r.output, msg)
		return nil
	}

	if r.exec == nil {
		return errors.New("no command runner")
	}
	return r.exec(args)
}

// sensitive reports lines that carry a password; they stay out of history.
// Flags may use one or two dashes, with the value inline after "=" or in
// the next field.
func sensitive(line string) bool {
	for _, f := range strings.Fields(line) {
		if !strings.HasPrefix(f, "-") {
			continue
		}
		name, _, _ := strings.Cut(strings.TrimLeft(f, "-"), "=")
		if name == "p" || name == "password" {
			return true
		}
	}
	return false
}
