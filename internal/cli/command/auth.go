package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/timekeep-go/internal/cli/connection"
	"github.com/yndnr/timekeep-go/internal/cli/output"
)

// Overridden in tests.
var (
	isInteractive     = stdinIsTerminal
	promptCredentials = huhCredentials
)

func stdinIsTerminal() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

// huhCredentials asks for the missing username and password.
func huhCredentials(title string, username, password *string) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(username).
				Validate(required("username")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(password).
				Validate(required("password")),
		).Title(title),
	).WithShowHelp(false).Run()
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func credentialFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "username",
			Aliases: []string{"u"},
			Usage:   "Username (prompted when omitted)",
		},
		&cli.StringFlag{
			Name:    "password",
			Aliases: []string{"p"},
			Usage:   "Password (prompted when omitted)",
		},
	}
}

// LoginCommand returns the login command.
func LoginCommand() *cli.Command {
	return &cli.Command{
		Name:   "login",
		Usage:  "Log in and store the session token",
		Flags:  credentialFlags(),
		Action: loginAction,
	}
}

// SignupCommand returns the signup command.
func SignupCommand() *cli.Command {
	return &cli.Command{
		Name:   "signup",
		Usage:  "Create an account and log in",
		Flags:  credentialFlags(),
		Action: signupAction,
	}
}

// LogoutCommand returns the logout command.
func LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "End the current session",
		Action: logoutAction,
	}
}

// readCredentials takes the flags and prompts for whatever is missing.
func readCredentials(c *cli.Context, rt *runtime, title string) (username, password string, ok bool) {
	username, password = c.String("username"), c.String("password")
	if username != "" && password != "" {
		return username, password, true
	}

	if !isInteractive() {
		rt.println(output.Hint("Username and password are required.",
			fmt.Sprintf("%s %s --username <name> --password <password>", Name, c.Command.Name)))
		return "", "", false
	}

	if err := promptCredentials(title, &username, &password); err != nil {
		rt.println(output.Error("Error: " + err.Error()))
		return "", "", false
	}
	return strings.TrimSpace(username), password, true
}

func loginAction(c *cli.Context) error {
	rt, ok := setup(c)
	if !ok {
		return nil
	}

	username, password, ok := readCredentials(c, rt, "Log in")
	if !ok {
		return nil
	}

	token, err := rt.client.Login(context.Background(), username, password)
	if errors.Is(err, connection.ErrNoSession) {
		rt.println("Wrong username or password!")
		return nil
	}
	if err != nil {
		rt.fail(err)
		return nil
	}

	if err := rt.session.Save(token); err != nil {
		rt.fail(err)
		return nil
	}
	rt.println("Logged in successfully!")
	return nil
}

func signupAction(c *cli.Context) error {
	rt, ok := setup(c)
	if !ok {
		return nil
	}

	username, password, ok := readCredentials(c, rt, "Sign up")
	if !ok {
		return nil
	}

	token, err := rt.client.Signup(context.Background(), username, password)
	if err != nil {
		rt.fail(err)
		return nil
	}

	if err := rt.session.Save(token); err != nil {
		rt.fail(err)
		return nil
	}
	rt.println("Signed up successfully!")
	return nil
}

func logoutAction(c *cli.Context) error {
	rt, ok := setup(c)
	if !ok {
		return nil
	}

	if !rt.loggedIn() {
		rt.println(msgNotLoggedIn)
		return nil
	}

	if err := rt.client.Logout(context.Background()); err != nil {
		rt.fail(err)
		return nil
	}
	if err := rt.session.Clear(); err != nil {
		rt.fail(err)
		return nil
	}
	rt.println("Logged out successfully!")
	return nil
}
