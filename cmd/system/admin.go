package system

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mediqhq/mediq_backend/config"
	"github.com/mediqhq/mediq_backend/internal/model"
	"github.com/mediqhq/mediq_backend/pkg/database"
	"github.com/mediqhq/mediq_backend/pkg/util/password"
)

// NewCreateAdminCommand seeds a back-office account. Admins never register
// through the API, so a fresh deployment runs this once.
func NewCreateAdminCommand() *cobra.Command {
	var (
		username string
		email    string
		pass     string
	)

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a back-office admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || email == "" {
				return fmt.Errorf("--username and --email are required")
			}
			if len(pass) < 8 {
				return fmt.Errorf("--password must be at least 8 characters")
			}

			cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return fmt.Errorf("failed to get config flag: %w", err)
			}
			cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}

			db, err := database.New(cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer database.Close(db)

			hash, err := password.Hash(pass)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}

			admin := model.Admin{
				Username:     strings.TrimSpace(username),
				Email:        strings.ToLower(strings.TrimSpace(email)),
				PasswordHash: hash,
			}
			if err := db.Create(&admin).Error; err != nil {
				return fmt.Errorf("failed to create admin: %w", err)
			}

			fmt.Printf("Admin %q created with id %d.\n", admin.Username, admin.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "admin username")
	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&pass, "password", "", "admin password")

	return cmd
}
