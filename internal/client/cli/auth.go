package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newRegisterCmd() *cobra.Command {
	var email, username, name string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *App, _ []string) error {
			var err error
			if email == "" {
				if email, err = getSimpleText(a.reader, "Email", a.out); err != nil {
					return err
				}
			}
			if username == "" {
				if username, err = getSimpleText(a.reader, "Username", a.out); err != nil {
					return err
				}
			}
			password, err := getPassword("Password", a.out)
			if err != nil {
				return err
			}
			confirm, err := getPassword("Repeat password", a.out)
			if err != nil {
				return err
			}
			if password != confirm {
				return errors.New("passwords do not match")
			}

			res := a.session.SignUp(ctx, email, password, name, username)
			if !res.Success {
				return errors.New(res.Error)
			}
			id, _ := a.session.Identity()
			fmt.Fprintf(a.out, "Welcome, %s!\n", id.Name)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	cmd.Flags().StringVar(&name, "name", "", "display name (defaults to username)")
	return cmd
}

func newLoginCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *App, _ []string) error {
			var err error
			if email == "" {
				if email, err = getSimpleText(a.reader, "Email", a.out); err != nil {
					return err
				}
			}
			password, err := getPassword("Password", a.out)
			if err != nil {
				return err
			}

			res := a.session.SignIn(ctx, email, password)
			if !res.Success {
				return errors.New(res.Error)
			}
			id, _ := a.session.Identity()
			fmt.Fprintf(a.out, "Logged in as %s (%s)\n", id.Name, id.Email)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *App, _ []string) error {
			a.session.SignOut(ctx)
			fmt.Fprintln(a.out, "Logged out.")
			return nil
		}),
	}
}

func newWhoamiCmd() *cobra.Command {
	var remote bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *App, _ []string) error {
			id, ok := a.session.Identity()
			if !ok {
				fmt.Fprintln(a.out, "Not logged in.")
				return nil
			}
			if remote {
				return show(a.out, a.gw.Profile(ctx))
			}
			fmt.Fprintf(a.out, "%s <%s> (id %s, username %s)\n", id.Name, id.Email, id.ID, id.Username)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "fetch the profile from the backend")
	return cmd
}
