package command

import (
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/timekeep-go/internal/cli/config"
	"github.com/yndnr/timekeep-go/internal/cli/repl"
)

// ShellCommand returns the interactive shell command.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:   "shell",
		Usage:  "Run commands interactively",
		Action: shellAction,
	}
}

func shellAction(c *cli.Context) error {
	prefix := globalArgs(c)

	history := repl.NewHistory(filepath.Join(config.Dir(), "history"), 0)
	if err := history.Load(); err != nil {
		fmt.Fprintln(c.App.ErrWriter, "history unavailable:", err)
	}

	r := repl.New(repl.Options{
		In:        c.App.Reader,
		Out:       c.App.Writer,
		Completer: repl.NewCompleter(shellCommands()),
		History:   history,
		Exec: func(args []string) error {
			app := App()
			app.Reader = c.App.Reader
			app.Writer = c.App.Writer
			app.ErrWriter = c.App.ErrWriter
			return app.Run(append(append([]string{Name}, prefix...), args...))
		},
	})
	if err := r.Run(); err != nil {
		return err
	}

	if err := history.Save(); err != nil {
		fmt.Fprintln(c.App.ErrWriter, "history not saved:", err)
	}
	return nil
}

// shellCommands lists the commands reachable from the shell.
func shellCommands() []string {
	var names []string
	for _, cmd := range App().Commands {
		if cmd.Name != "shell" {
			names = append(names, cmd.Name)
		}
	}
	return names
}

// globalArgs rebuilds the global flags set on the shell invocation so
// every line runs with them.
func globalArgs(c *cli.Context) []string {
	var args []string
	for _, name := range []string{"config", "server", "session-file", "output", "ca-file"} {
		if c.IsSet(name) {
			args = append(args, "--"+name, c.String(name))
		}
	}
	if c.IsSet("insecure") {
		args = append(args, fmt.Sprintf("--insecure=%t", c.Bool("insecure")))
	}
	return args
}
