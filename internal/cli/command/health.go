package command

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/timekeep-go/internal/cli/output"
)

// HealthCommand returns the health command.
func HealthCommand() *cli.Command {
	return &cli.Command{
		Name:   "health",
		Usage:  "Check that the server and its storage are ready",
		Action: healthAction,
	}
}

func healthAction(c *cli.Context) error {
	rt, ok := setup(c)
	if !ok {
		return nil
	}

	status, err := rt.client.Ready(context.Background())
	if err != nil && status == nil {
		rt.fail(err)
		return nil
	}

	if rt.json() {
		rt.writeJSON(status)
		return nil
	}
	if err != nil {
		rt.println(output.Error("Server at " + rt.client.BaseURL() + " is not ready: " + status.Error))
		return nil
	}
	rt.println("Server at " + rt.client.BaseURL() + " is ready.")
	return nil
}
