package users

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crucial707/product-catalog/cmd/catalog/output"
	"github.com/crucial707/product-catalog/cmd/catalog/root"
	"github.com/crucial707/product-catalog/internal/app"
)

// openApp is replaced in tests.
var openApp = root.OpenApp

func init() {
	root.RootCmd.AddCommand(usersCmd())
}

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(createUserCmd(), listUsersCmd())
	return cmd
}

// ==========================
// CREATE
// ==========================
func createUserCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			var err error
			if username == "" {
				if username, err = prompt(cmd.OutOrStdout(), in, "Username: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = prompt(cmd.OutOrStdout(), in, "Password: "); err != nil {
					return err
				}
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			u, err := a.Service.Signup(cmd.Context(), username, password)
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (id %d)\n", u.Username, u.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when omitted)")
	return cmd
}

func prompt(w io.Writer, r *bufio.Reader, label string) (string, error) {
	fmt.Fprint(w, label)
	line, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ==========================
// LIST
// ==========================
func listUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List user accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()
			return listUsers(cmd, a)
		},
	}
}

func listUsers(cmd *cobra.Command, a *app.App) error {
	if a.Users == nil {
		return errors.New("listing users needs STORE=postgres")
	}
	users, err := a.Users.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	rows := make([][]interface{}, 0, len(users))
	for _, u := range users {
		rows = append(rows, []interface{}{u.ID, u.Username})
	}
	output.RenderTable(cmd.OutOrStdout(), []string{"ID", "Username"}, rows)
	return nil
}
