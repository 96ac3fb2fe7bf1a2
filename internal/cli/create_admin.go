package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/u5732555133-stack/maintenance-app/internal/auth"
	"github.com/u5732555133-stack/maintenance-app/internal/domain"
	"github.com/u5732555133-stack/maintenance-app/internal/postgres"
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	Long: `Create a user account directly in the database.

Without --establishment the account is a global super admin; with it,
an admin bound to that establishment.`,
	RunE: runCreateAdmin,
}

func init() {
	createAdminCmd.Flags().String("email", "", "account email (required)")
	createAdminCmd.Flags().String("password", "", "account password (required)")
	createAdminCmd.Flags().String("name", "", "display name")
	createAdminCmd.Flags().String("establishment", "", "establishment ID; empty creates a super admin")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
}

func runCreateAdmin(cmd *cobra.Command, _ []string) error {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	name, _ := cmd.Flags().GetString("name")
	establishment, _ := cmd.Flags().GetString("establishment")

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, viper.GetString("postgres_dsn"))
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()

	user := &domain.User{
		Email:        strings.TrimSpace(strings.ToLower(email)),
		PasswordHash: hash,
		Name:         name,
		Role:         domain.RoleSuperAdmin,
	}
	if establishment != "" {
		user.Role = domain.RoleAdmin
		user.EstablishmentID = &establishment
	}

	if err := postgres.NewUserRepository(pool).Create(ctx, user); err != nil {
		return fmt.Errorf("create account: %w", err)
	}

	fmt.Printf("created %s account %s (%s)\n", user.Role, user.Email, user.ID)
	return nil
}
