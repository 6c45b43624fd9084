package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/folio/internal/api"
	"github.com/kalambet/folio/internal/config"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the bearer token used to save the profile",
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Sign a token with the local signing key and store it",
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")
		printToken, _ := cmd.Flags().GetBool("print")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ttl := cfg.Auth.TokenTTL
		if cmd.Flags().Changed("ttl") {
			ttl, _ = cmd.Flags().GetDuration("ttl")
		}

		secrets := config.NewSecretStore()
		key, err := config.SigningKey(secrets)
		if err != nil {
			return err
		}
		tok, err := api.IssueToken(key, subject, ttl)
		if err != nil {
			return err
		}
		if err := secrets.Set(config.SecretToken, tok); err != nil {
			return fmt.Errorf("storing token: %w", err)
		}

		if printToken {
			fmt.Fprintln(cmd.OutOrStdout(), tok)
		}
		if ttl > 0 {
			printSuccess("Token for %q stored (expires in %s)", subject, ttl)
		} else {
			printSuccess("Token for %q stored (no expiry)", subject)
		}
		return nil
	},
}

var tokenSetCmd = &cobra.Command{
	Use:   "set <token>",
	Short: "Store a bearer token issued elsewhere",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tok := strings.TrimSpace(args[0])
		if tok == "" {
			return fmt.Errorf("token must not be empty")
		}
		if err := config.NewSecretStore().Set(config.SecretToken, tok); err != nil {
			return fmt.Errorf("storing token: %w", err)
		}
		printSuccess("Token stored")
		return nil
	},
}

func init() {
	tokenIssueCmd.Flags().String("subject", "folio", "token subject")
	tokenIssueCmd.Flags().Duration("ttl", 0, "token lifetime (default auth.token_ttl, 0 for no expiry)")
	tokenIssueCmd.Flags().Bool("print", false, "also print the token to stdout")

	tokenCmd.AddCommand(tokenIssueCmd)
	tokenCmd.AddCommand(tokenSetCmd)
}
