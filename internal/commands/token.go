package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/spf13/cobra"

	"github.com/carson-networks/bank-server/internal/auth"
	"github.com/carson-networks/bank-server/internal/config"
)

// newTokenCommand mints bearer tokens for local testing and operators.
func newTokenCommand(configPath *string) *cobra.Command {
	var account string
	var admin bool
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a signed bearer token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Auth.Secret == "" {
				return errNoSecret
			}

			accountID := uuid.Nil
			if account != "" {
				accountID, err = uuid.FromString(account)
				if err != nil {
					return fmt.Errorf("--account: %w", err)
				}
			}
			if accountID == uuid.Nil && !admin {
				return errors.New("token: --account is required unless --admin is set")
			}

			token, err := auth.NewJWTResolver(cfg.Auth.Secret).Issue(accountID, admin, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "account id the token acts as")
	cmd.Flags().BoolVar(&admin, "admin", false, "grant the admin role")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime, 0 for no expiry")

	return cmd
}
