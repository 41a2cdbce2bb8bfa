package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/timekeep-go/internal/cli/config"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "CLI configuration",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration",
				Action: configShow,
			},
			{
				Name:   "path",
				Usage:  "Print the default config file path",
				Action: configPath,
			},
		},
	}
}

type effectiveConfig struct {
	ConfigFile  string `json:"config_file"`
	Server      string `json:"server"`
	SessionFile string `json:"session_file"`
	Output      string `json:"output"`
	CAFile      string `json:"ca_file,omitempty"`
	Insecure    bool   `json:"insecure"`
	LoggedIn    bool   `json:"logged_in"`
}

func configShow(c *cli.Context) error {
	rt, ok := setup(c)
	if !ok {
		return nil
	}

	file := c.String("config")
	if file == "" {
		file = config.DefaultConfigPath()
	}
	rt.writeJSON(&effectiveConfig{
		ConfigFile:  file,
		Server:      rt.client.BaseURL(),
		SessionFile: rt.session.Path(),
		Output:      rt.cfg.Output,
		CAFile:      rt.cfg.CAFile,
		Insecure:    rt.cfg.Insecure,
		LoggedIn:    rt.loggedIn(),
	})
	return nil
}

func configPath(c *cli.Context) error {
	fmt.Fprintln(c.App.Writer, config.DefaultConfigPath())
	return nil
}
