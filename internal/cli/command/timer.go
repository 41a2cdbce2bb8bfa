package command

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/timekeep-go/internal/cli/connection"
	"github.com/yndnr/timekeep-go/internal/cli/output"
)

// StartCommand returns the start command.
func StartCommand() *cli.Command {
	return &cli.Command{
		Name:      "start",
		Usage:     "Start a timer",
		ArgsUsage: "DESCRIPTION",
		Action:    startAction,
	}
}

// StopCommand returns the stop command.
func StopCommand() *cli.Command {
	return &cli.Command{
		Name:      "stop",
		Usage:     "Stop a timer",
		ArgsUsage: "TIMER_ID",
		Action:    stopAction,
	}
}

// StatusCommand returns the status command.
func StatusCommand() *cli.Command {
	return &cli.Command{
		Name:        "status",
		Usage:       "Show active timers, stopped timers (old) or one timer",
		ArgsUsage:   "[old | TIMER_ID]",
		Description: "status          active timers\nstatus old      stopped timers\nstatus <id>     a single timer",
		Action:      statusAction,
	}
}

func startAction(c *cli.Context) error {
	rt, ok := setup(c)
	if !ok {
		return nil
	}

	// 1. Validate locally before any request
	description := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if description == "" {
		rt.println(output.Hint("To start the timer you must input its name as 3rd argument.",
			fmt.Sprintf(`%s start "Write the report"`, Name)))
		return nil
	}

	// 2. Require a session
	if !rt.loggedIn() {
		rt.println(msgNotLoggedIn)
		return nil
	}

	// 3. Create
	id, err := rt.client.StartTimer(context.Background(), description)
	if err != nil {
		rt.fail(err)
		return nil
	}
	rt.printf("Started timer %q, ID: %s.\n", description, id)
	return nil
}

func stopAction(c *cli.Context) error {
	rt, ok := setup(c)
	if !ok {
		return nil
	}

	id := strings.TrimSpace(c.Args().First())
	if id == "" {
		rt.println(output.Hint("To stop the timer you must input its ID as 3rd argument.",
			fmt.Sprintf("%s stop <timer-id>", Name)))
		return nil
	}

	if !rt.loggedIn() {
		rt.println(msgNotLoggedIn)
		return nil
	}

	err := rt.client.StopTimer(context.Background(), id)
	switch connection.StatusOf(err) {
	case 0:
		if err != nil {
			rt.fail(err)
			return nil
		}
		rt.printf("Timer %s stopped\n", id)
	case http.StatusNotFound:
		rt.printf("Unknown timer ID %s.\n", id)
	case http.StatusBadRequest:
		rt.printf("Timer %s is already stopped.\n", id)
	default:
		rt.fail(err)
	}
	return nil
}

func statusAction(c *cli.Context) error {
	rt, ok := setup(c)
	if !ok {
		return nil
	}

	if !rt.loggedIn() {
		rt.println(msgNotLoggedIn)
		return nil
	}

	ctx := context.Background()
	switch arg := strings.TrimSpace(c.Args().First()); arg {
	case "":
		rt.listTimers(ctx, true, "You have no active timers.")
	case "old":
		rt.listTimers(ctx, false, "You have no old timers.")
	default:
		rt.showTimer(ctx, arg)
	}
	return nil
}

func (rt *runtime) listTimers(ctx context.Context, active bool, empty string) {
	timers, err := rt.client.ListTimers(ctx, active)
	if err != nil {
		rt.fail(err)
		return
	}

	if rt.json() {
		rt.writeJSON(timers)
		return
	}
	if len(timers) == 0 {
		rt.println(empty)
		return
	}

	rows := make([]output.TimerRow, 0, len(timers))
	for i := range timers {
		rows = append(rows, toRow(&timers[i]))
	}
	rt.println(output.RenderTimers(rows, output.RenderOptions{}))
}

func (rt *runtime) showTimer(ctx context.Context, id string) {
	timer, err := rt.client.GetTimer(ctx, id)
	if connection.IsNotFound(err) {
		rt.printf("Unknown timer ID %s.\n", id)
		return
	}
	if err != nil {
		rt.fail(err)
		return
	}

	if rt.json() {
		rt.writeJSON(timer)
		return
	}
	rt.println(output.RenderTimers([]output.TimerRow{toRow(timer)}, output.RenderOptions{MarkStopped: true}))
}

func (rt *runtime) writeJSON(v any) {
	if err := output.WriteJSON(rt.out, v); err != nil {
		rt.fail(err)
	}
}

func toRow(t *connection.Timer) output.TimerRow {
	return output.TimerRow{
		ID:          t.ID,
		Description: t.Description,
		Elapsed:     t.Elapsed(),
		Active:      t.IsActive,
	}
}
