package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/geocoder89/memberhub/internal/config"
	"github.com/geocoder89/memberhub/internal/db"
	"github.com/geocoder89/memberhub/internal/domain/user"
	"github.com/geocoder89/memberhub/internal/repo/postgres"
	"github.com/geocoder89/memberhub/internal/security"
	"github.com/spf13/cobra"
)

const commandTimeout = 30 * time.Second

type userStore interface {
	db.AdminSeeder
	List(ctx context.Context) ([]user.User, error)
	CountByRole(ctx context.Context, role user.Role) (int, error)
}

// openUsers is a seam so tests can swap in the in-memory repo.
var openUsers = func(ctx context.Context, cfg config.Config) (userStore, func(), error) {
	pool, err := db.NewPool(ctx, cfg.DBURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	return postgres.NewUsersRepo(pool, nil), pool.Close, nil
}

// runMigrations is a seam for tests.
var runMigrations = db.Migrate

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			if err := runMigrations(ctx, cfg.DBURL); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func seedAdminCmd() *cobra.Command {
	var (
		email    string
		name     string
		password string
	)

	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create an admin account, or promote an existing one",
		Long: `Create an admin account with the given email. If an account already
exists under that email it is promoted and keeps its password.

The password is prompted for when --password is omitted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()

			if email == "" {
				email = cfg.AdminEmail
			}
			if email == "" {
				return errors.New("--email is required")
			}

			if password == "" {
				pw, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				password = pw
			}
			if password == "" {
				return errors.New("password must not be empty")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			users, closeFn, err := openUsers(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			res, err := db.EnsureAdminUser(ctx, users, security.NewHasher(security.PasswordCost), name, email, password)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "admin %s: %s\n", email, res)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "admin email (defaults to ADMIN_EMAIL)")
	cmd.Flags().StringVar(&name, "name", "Administrator", "display name for a new account")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")

	return cmd
}

func setRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-role <email> <user|admin>",
		Short: "Change the role of the account registered under email",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := strings.TrimSpace(args[0])

			role, err := user.ParseRole(strings.ToLower(args[1]))
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			users, closeFn, err := openUsers(ctx, config.Load())
			if err != nil {
				return err
			}
			defer closeFn()

			u, err := users.GetByEmail(ctx, email)
			if err != nil {
				return fmt.Errorf("%s: %w", email, err)
			}

			if role == user.RoleUser && u.IsAdmin() {
				n, err := users.CountByRole(ctx, user.RoleAdmin)
				if err != nil {
					return err
				}
				if n <= 1 {
					return user.ErrLastAdmin
				}
			}

			if err := users.SetRole(ctx, u.ID, role); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", email, role)
			return nil
		},
	}
}

func listUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List accounts in creation order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			users, closeFn, err := openUsers(ctx, config.Load())
			if err != nil {
				return err
			}
			defer closeFn()

			all, err := users.List(ctx)
			if err != nil {
				return err
			}

			return printUsers(cmd.OutOrStdout(), all)
		},
	}
}

func printUsers(w io.Writer, users []user.User) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE\tCREATED")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role, u.CreatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}
