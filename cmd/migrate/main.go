package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"shiftmap-backend/internal/database"
	"shiftmap-backend/internal/models"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dbURL string

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the shiftmap database",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			if dbURL == "" {
				dbURL = os.Getenv("DATABASE_URL")
			}
			if dbURL == "" {
				return fmt.Errorf("DATABASE_URL is not set")
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&dbURL, "database-url", "", "Postgres URL (defaults to $DATABASE_URL)")

	withDB := func(run func(ctx context.Context, db *sqlx.DB) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			db, err := database.Connect(dbURL)
			if err != nil {
				return err
			}
			defer db.Close()
			return run(cmd.Context(), db)
		}
	}

	root.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Create or update the schema",
		RunE: withDB(func(ctx context.Context, db *sqlx.DB) error {
			return database.Migrate(db)
		}),
	})

	var day string
	seed := &cobra.Command{
		Use:   "seed",
		Short: "Seed demo users and a demo day for the live map",
		RunE: withDB(func(ctx context.Context, db *sqlx.DB) error {
			date := time.Now()
			if day != "" {
				parsed, err := time.Parse("2006-01-02", day)
				if err != nil {
					return fmt.Errorf("invalid --date: %w", err)
				}
				date = parsed
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			if err := database.SeedUsers(db); err != nil {
				return err
			}
			return database.SeedDemo(db, date)
		}),
	}
	seed.Flags().StringVar(&day, "date", "", "day to seed as YYYY-MM-DD (default today)")
	root.AddCommand(seed)

	root.AddCommand(newAddUserCmd(withDB))
	return root
}

func newAddUserCmd(withDB func(func(context.Context, *sqlx.DB) error) func(*cobra.Command, []string) error) *cobra.Command {
	var email, password, name, role, agencyID, staffID string

	cmd := &cobra.Command{
		Use:   "add-user",
		Short: "Create a manager, admin or staff login",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return validateUserFlags(role, staffID)
		},
		RunE: withDB(func(ctx context.Context, db *sqlx.DB) error {
			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}

			user := &models.User{
				ID:       uuid.New().String(),
				Email:    email,
				Password: string(hash),
				Name:     name,
				Role:     role,
			}
			if agencyID != "" {
				user.AgencyID = &agencyID
			}
			if staffID != "" {
				user.StaffID = &staffID
			}

			if err := database.CreateUser(ctx, db, user); err != nil {
				return err
			}
			zap.L().Info("created user", zap.String("email", email), zap.String("role", role), zap.String("id", user.ID))
			return nil
		}),
	}

	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "login password")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&role, "role", models.RoleManager, "admin, manager or staff")
	cmd.Flags().StringVar(&agencyID, "agency", "", "agency id (empty sees every agency)")
	cmd.Flags().StringVar(&staffID, "staff-id", "", "staff record linked to a staff login")
	for _, f := range []string{"email", "password", "name"} {
		cmd.MarkFlagRequired(f)
	}
	return cmd
}

func validateUserFlags(role, staffID string) error {
	switch role {
	case models.RoleAdmin, models.RoleManager:
		return nil
	case models.RoleStaff:
		if staffID == "" {
			return fmt.Errorf("--staff-id is required for staff users")
		}
		return nil
	default:
		return fmt.Errorf("--role must be admin, manager or staff")
	}
}
