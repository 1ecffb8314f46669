package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/angelmondragon/buzdealz-backend/pkg/client"
	"github.com/spf13/cobra"
)

type credentialOptions struct {
	password string
	name     string
}

func newLoginCommand(rootOpts *RootOptions) *cobra.Command {
	creds := &credentialOptions{}
	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Sign in and save the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuth(cmd, rootOpts, creds, args[0], false)
		},
	}
	cmd.Flags().StringVarP(&creds.password, "password", "p", "", "password (read from stdin when empty)")
	return cmd
}

func newRegisterCommand(rootOpts *RootOptions) *cobra.Command {
	creds := &credentialOptions{}
	cmd := &cobra.Command{
		Use:   "register <email>",
		Short: "Create an account and save the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuth(cmd, rootOpts, creds, args[0], true)
		},
	}
	cmd.Flags().StringVarP(&creds.password, "password", "p", "", "password (read from stdin when empty)")
	cmd.Flags().StringVar(&creds.name, "name", "", "display name")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func runAuth(cmd *cobra.Command, rootOpts *RootOptions, creds *credentialOptions, email string, register bool) error {
	a, err := openApp(rootOpts, cmd)
	if err != nil {
		return err
	}

	password := creds.password
	if password == "" {
		password, err = readPassword(cmd.InOrStdin())
		if err != nil {
			return WrapExitError(ExitCommandError, "cannot read password", err)
		}
	}

	ctx := cmd.Context()
	var user *client.User
	if register {
		user, err = a.api.Register(ctx, email, creds.name, password)
	} else {
		user, err = a.api.Login(ctx, email, password)
	}
	if err != nil {
		return fromAPI(err)
	}

	a.out.VerboseLog("session saved to %s", rootOpts.SessionPath)
	return a.out.Render(user, func(w io.Writer) {
		verb := "Logged in as"
		if register {
			verb = "Registered"
		}
		fmt.Fprintf(w, "%s %s\n", verb, describeUser(user))
	})
}

func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the token and forget the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			if err := a.api.Logout(cmd.Context()); err != nil {
				// The local session is gone either way.
				a.out.VerboseLog("remote logout failed: %v", err)
			}
			return a.out.Render(map[string]bool{"loggedOut": true}, func(w io.Writer) {
				fmt.Fprintln(w, "Logged out")
			})
		},
	}
}

func newWhoamiCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}
			user, err := a.api.Me(cmd.Context())
			if err != nil {
				return fromAPI(err)
			}
			return a.out.Render(user, func(w io.Writer) {
				fmt.Fprintln(w, describeUser(user))
			})
		},
	}
}

func describeUser(u *client.User) string {
	plan := "free"
	if u.IsSubscriber {
		plan = "subscriber"
	}
	return fmt.Sprintf("%s <%s> (%s)", u.Name, u.Email, plan)
}
