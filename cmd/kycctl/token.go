package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ucardlabs/ucard-admin/internal/auth"
)

func tokenCmd() *cobra.Command {
	var (
		username string
		ttl      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Выпустить токен администратора, подписанный ADMIN_JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.AdminJWTSecret == "" {
				return errors.New("kycctl: ADMIN_JWT_SECRET не задан")
			}
			if username == "" {
				return errors.New("kycctl: --username обязателен")
			}

			token, err := auth.NewAdminTokens(cfg.AdminJWTSecret).Issue(username, ttl)
			if err != nil {
				return fmt.Errorf("kycctl: не удалось выпустить токен: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "имя администратора")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "срок жизни токена")

	return cmd
}
