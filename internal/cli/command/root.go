package command

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/timekeep-go/internal/cli/config"
	"github.com/yndnr/timekeep-go/internal/cli/connection"
	"github.com/yndnr/timekeep-go/internal/cli/output"
	"github.com/yndnr/timekeep-go/internal/infra/buildinfo"
)

// Name is the executable name used in hints.
const Name = "timekeep-cli"

// Messages shared by several commands.
const (
	msgNotLoggedIn = "You are not logged in."
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    Name,
		Usage:   "Track work timers on a timekeep server",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			LoginCommand(),
			SignupCommand(),
			LogoutCommand(),
			StartCommand(),
			StopCommand(),
			StatusCommand(),
			HealthCommand(),
			ConfigCommand(),
			ShellCommand(),
		},
	}
}

// globalFlags returns the global CLI flags. Unset flags fall back to the
// config file and TIMEKEEP_CLI_* variables.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "CLI config file (default ~/.timekeep/cli.yaml)",
		},
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "timekeep server URL (e.g., http://127.0.0.1:4000)",
		},
		&cli.StringFlag{
			Name:  "session-file",
			Usage: "File holding the session token",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json",
		},
		&cli.StringFlag{
			Name:  "ca-file",
			Usage: "PEM file with extra CA certificates for https servers",
		},
		&cli.BoolFlag{
			Name:  "insecure",
			Usage: "Skip TLS certificate verification",
		},
	}
}

// runtime is the per-invocation state shared by command actions.
type runtime struct {
	cfg     *config.CLIConfig
	client  *connection.HTTPClient
	session *connection.SessionFile
	out     io.Writer
}

// loadConfig merges the config file and environment with set flags.
func loadConfig(c *cli.Context) (*config.CLIConfig, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("server") {
		cfg.Server = c.String("server")
	}
	if c.IsSet("session-file") {
		cfg.SessionFile = c.String("session-file")
	}
	if c.IsSet("output") {
		cfg.Output = c.String("output")
	}
	if c.IsSet("ca-file") {
		cfg.CAFile = c.String("ca-file")
	}
	if c.IsSet("insecure") {
		cfg.Insecure = c.Bool("insecure")
	}

	if err := config.Verify(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setup builds the runtime and loads the stored session token. Failures
// are printed; ok is false when the command should stop.
func setup(c *cli.Context) (rt *runtime, ok bool) {
	out := c.App.Writer

	cfg, err := loadConfig(c)
	if err != nil {
		fmt.Fprintln(out, output.Error("Invalid configuration: "+err.Error()))
		return nil, false
	}

	client, err := connection.NewHTTPClient(connection.Options{
		Server:   cfg.Server,
		CAFile:   cfg.CAFile,
		Insecure: cfg.Insecure,
	})
	if err != nil {
		fmt.Fprintln(out, output.Error(err.Error()))
		return nil, false
	}

	session := connection.NewSessionFile(cfg.SessionFile)
	token, err := session.Load()
	if err != nil {
		fmt.Fprintln(out, output.Error(err.Error()))
		return nil, false
	}
	client.SetSession(token)

	return &runtime{cfg: cfg, client: client, session: session, out: out}, true
}

func (rt *runtime) loggedIn() bool {
	return rt.client.Session() != ""
}

func (rt *runtime) println(a ...any) {
	fmt.Fprintln(rt.out, a...)
}

func (rt *runtime) printf(format string, a ...any) {
	fmt.Fprintf(rt.out, format, a...)
}

func (rt *runtime) json() bool {
	return rt.cfg.Output == config.OutputJSON
}

// fail prints err the way every command reports request failures.
func (rt *runtime) fail(err error) {
	var apiErr *connection.APIError
	switch {
	case connection.IsTransport(err):
		rt.println(output.Error("Cannot reach the server: " + err.Error()))
	case connection.StatusOf(err) == http.StatusUnauthorized:
		rt.println(msgNotLoggedIn)
	case errors.As(err, &apiErr) && apiErr.Message != "":
		rt.println(output.Error(apiErr.Message))
	default:
		rt.println(output.Error("Error: " + err.Error()))
	}
}
