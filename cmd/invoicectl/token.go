package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	jwttoken "tradeinvoice/internal/jwt_token"
	"tradeinvoice/internal/platform/config"
	id "tradeinvoice/pkg/domain"
)

func newTokenCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for a caller identity",
		Long:  "Signs an access token with the configured JWT settings. Intended for local runs and operators.",
		RunE: func(cmd *cobra.Command, args []string) error {
			caller := id.ParseIdentity(subject)
			if caller.IsNil() {
				return errors.New("--sub is required")
			}
			cfg, err := config.Resolve()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if ttl <= 0 {
				ttl = cfg.Auth.TokenTTL
			}

			tokens := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience)
			token, err := tokens.GenerateAccessToken(caller, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&subject, "sub", "", "caller identity to embed as the token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime, defaults to JWT_TOKEN_TTL")
	return cmd
}
