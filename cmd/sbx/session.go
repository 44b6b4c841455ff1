package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mmcdole/sbx/internal/config"
	"github.com/mmcdole/sbx/internal/domain"
	"github.com/mmcdole/sbx/internal/session"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newLoginCmd(e *env) *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := e.services(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			r := e.reader(cmd)

			if username == "" {
				username, err = promptUsername(out, r, e.cfg.Server.Username)
				if err != nil {
					return err
				}
			}
			fmt.Fprint(out, "Password: ")
			password, err := readPassword(cmd, r)
			if err != nil {
				return err
			}

			if err := svc.Session.Login(cmd.Context(), username, password); err != nil {
				if errors.Is(err, domain.ErrAuthFailed) {
					return errors.New("incorrect username or password")
				}
				return nodeError(err)
			}
			if err := config.SaveUsername(username); err != nil {
				e.logger.Warn("failed to remember username", "error", err)
			}

			state := svc.Session.UpdateCurrentUser(cmd.Context())
			if !state.LoggedIn() {
				fmt.Fprintf(out, "Logged in as %s\n", username)
				return nil
			}
			fmt.Fprintf(out, "Logged in as %s\n", describeUser(state))
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "user", "u", "", "username, prompted for when empty")
	return cmd
}

func newLogoutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session on the node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := e.services(cmd)
			if err != nil {
				return err
			}
			if err := svc.Session.Logout(cmd.Context()); err != nil {
				return nodeError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the user owning the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := e.services(cmd)
			if err != nil {
				return err
			}
			state := svc.Session.UpdateCurrentUser(cmd.Context())
			if !state.LoggedIn() {
				if state.Err != nil && !errors.Is(state.Err, domain.ErrAuthFailed) {
					return nodeError(state.Err)
				}
				return errors.New("not logged in, run sbx login")
			}
			fmt.Fprintln(cmd.OutOrStdout(), describeUser(state))
			return nil
		},
	}
}

func describeUser(state session.State) string {
	if state.User.Role == "" {
		return state.User.User
	}
	return fmt.Sprintf("%s (%s)", state.User.User, strings.ToLower(state.User.Role))
}

func promptUsername(out io.Writer, r *bufio.Reader, last string) (string, error) {
	if last != "" {
		fmt.Fprintf(out, "Username [%s]: ", last)
	} else {
		fmt.Fprint(out, "Username: ")
	}
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		if last != "" && errors.Is(err, io.EOF) {
			return last, nil
		}
		return "", fmt.Errorf("failed to read username: %w", err)
	}
	username := strings.TrimSpace(line)
	if username == "" {
		username = last
	}
	if username == "" {
		return "", errors.New("username cannot be empty")
	}
	return username, nil
}

// readPassword reads without echo from a terminal and a plain line otherwise
func readPassword(cmd *cobra.Command, r *bufio.Reader) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(password), nil
	}

	line, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
