package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"clinic-management-api/internal/auth"
	"clinic-management-api/internal/config"
	"clinic-management-api/internal/model"
	"clinic-management-api/internal/service"
	"clinic-management-api/internal/store"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, _ *config.Config, st *store.Store) error {
				n, err := store.NewMigrator(st.Pool()).Up(ctx)
				if err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				fmt.Printf("Applied %d migration(s).\n", n)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, _ *config.Config, st *store.Store) error {
				statuses, err := store.NewMigrator(st.Pool()).Status(ctx)
				if err != nil {
					return fmt.Errorf("failed to get migration status: %w", err)
				}
				fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
				for _, s := range statuses {
					state, at := "pending", "-"
					if s.Applied {
						state = "applied"
						at = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
					fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, state, at)
				}
				return nil
			})
		},
	})

	return cmd
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage staff accounts",
	}

	createAdmin := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			name, _ := cmd.Flags().GetString("name")
			if username == "" || password == "" || name == "" {
				return errors.New("--username, --password and --name are required")
			}

			return withStore(cmd.Context(), func(ctx context.Context, cfg *config.Config, st *store.Store) error {
				svc := service.New(st, auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL))
				u, err := svc.CreateUser(ctx, service.CreateUserInput{
					Username: username,
					Password: password,
					FullName: name,
					Role:     model.RoleAdmin,
				})
				if err != nil {
					return err
				}
				fmt.Printf("Created admin %q (id %d).\n", u.Username, u.ID)
				return nil
			})
		},
	}
	createAdmin.Flags().String("username", "", "login name")
	createAdmin.Flags().String("password", "", "initial password (min 6 characters)")
	createAdmin.Flags().String("name", "", "full name")
	cmd.AddCommand(createAdmin)

	return cmd
}

// withStore loads config, opens the pool and runs fn against a store.
func withStore(ctx context.Context, fn func(context.Context, *config.Config, *store.Store) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	pool, err := store.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return err
	}
	defer pool.Close()
	return fn(ctx, cfg, store.New(pool))
}
