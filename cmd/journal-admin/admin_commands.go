package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"journal-api/config"
	"journal-api/models"
	"journal-api/repositories"
	"journal-api/services"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ctx.ensureDB()
			if err != nil {
				return err
			}
			if err := config.Migrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema up to date")
			return nil
		},
	}
}

func newCreateAdminCommand(ctx *commandContext) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account or promote and reset an existing one",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ctx.ensureDB()
			if err != nil {
				return err
			}

			if email == "" {
				email = os.Getenv("ADMIN_EMAIL")
			}
			if email == "" {
				email = "admin@journal.com"
			}
			if password == "" {
				password = os.Getenv("ADMIN_PASSWORD")
			}
			if password == "" {
				return errors.New("a password is required (--password or ADMIN_PASSWORD)")
			}
			if err := services.CheckPasswordPolicy(password, name); err != nil {
				return err
			}

			hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}

			users := repositories.NewUserRepository(db)
			email = strings.ToLower(strings.TrimSpace(email))
			user, err := users.GetByEmail(cmd.Context(), email)
			switch {
			case err == nil:
				user.Password = string(hashed)
				user.Role = models.RoleAdmin
				if err := users.Update(cmd.Context(), user); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Admin %s already existed; role and password updated\n", email)
			case errors.Is(err, gorm.ErrRecordNotFound):
				user = &models.User{Name: name, Email: email, Password: string(hashed), Role: models.RoleAdmin}
				if err := users.Create(cmd.Context(), user); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Admin %s created (id %d)\n", email, user.ID)
			default:
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "Admin User", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Admin email (default ADMIN_EMAIL or admin@journal.com)")
	cmd.Flags().StringVar(&password, "password", "", "Admin password (default ADMIN_PASSWORD)")
	return cmd
}
