package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/notesapp/notes/internal/auth"
	"github.com/notesapp/notes/pkg/domain"
)

type credFlags struct {
	email    string
	password string
	name     string
}

func (f *credFlags) register(cmd *cobra.Command, withName bool) {
	cmd.Flags().StringVar(&f.email, "email", "", "account email")
	cmd.Flags().StringVar(&f.password, "password", "", "account password (prompted when omitted)")
	if withName {
		cmd.Flags().StringVar(&f.name, "name", "", "display name")
	}
}

// resolve fills missing fields by prompting on in.
func (f *credFlags) resolve(in io.Reader, out io.Writer, withName bool) (domain.Credentials, error) {
	r := bufio.NewReader(in)
	ask := func(label, cur string) (string, error) {
		if cur != "" {
			return cur, nil
		}
		fmt.Fprintf(out, "%s: ", label)
		line, err := r.ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	var creds domain.Credentials
	var err error
	if withName {
		if creds.Name, err = ask("Name", f.name); err != nil {
			return creds, err
		}
	}
	if creds.Email, err = ask("Email", f.email); err != nil {
		return creds, err
	}
	if creds.Password, err = ask("Password", f.password); err != nil {
		return creds, err
	}
	creds.Email = strings.TrimSpace(creds.Email)
	creds.Name = strings.TrimSpace(creds.Name)
	if creds.Email == "" || creds.Password == "" {
		return creds, fmt.Errorf("email and password are required")
	}
	return creds, nil
}

func (c *cli) loginCmd() *cobra.Command {
	var f credFlags
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and save the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := f.resolve(cmd.InOrStdin(), cmd.OutOrStdout(), false)
			if err != nil {
				return err
			}
			authSvc, _ := c.services()
			s, err := authSvc.Login(context.Background(), creds)
			if err != nil {
				return err
			}
			return c.persist(cmd, s, "Signed in")
		},
	}
	f.register(cmd, false)
	return cmd
}

func (c *cli) signupCmd() *cobra.Command {
	var f credFlags
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and save the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := f.resolve(cmd.InOrStdin(), cmd.OutOrStdout(), true)
			if err != nil {
				return err
			}
			authSvc, _ := c.services()
			s, err := authSvc.Signup(context.Background(), creds)
			if err != nil {
				return err
			}
			return c.persist(cmd, s, "Account created")
		},
	}
	f.register(cmd, true)
	return cmd
}

func (c *cli) persist(cmd *cobra.Command, s auth.Session, verb string) error {
	if err := c.cfg.SaveToken(s.Token); err != nil {
		return err
	}
	who := "you"
	if s.User != nil && s.User.Email != "" {
		who = s.User.Email
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s as %s.\n", verb, who)
	return nil
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			authSvc, _ := c.services()
			authSvc.Logout()
			had, err := c.cfg.ClearToken()
			if err != nil {
				return err
			}
			if !had {
				fmt.Fprintln(cmd.OutOrStdout(), "Already logged out.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}
