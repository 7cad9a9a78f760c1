package main

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/punchaudit/punchaudit-backend/pkg/auth"
)

var (
	tokenSubject string
	tokenTTL     time.Duration
)

// tokenCmd issues a bearer token for the HTTP API
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the audit service",
	Long: `Signs a token with PUNCHAUDIT_AUTH_SECRET. The token is printed as JSON
and can be sent as "Authorization: Bearer <access_token>".`,
	Args: cobra.NoArgs,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "", "Token subject, recorded as requested_by (required)")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "Token lifetime (default: auth.token_ttl)")
	_ = tokenCmd.MarkFlagRequired("subject")
}

func runToken(cmd *cobra.Command, args []string) error {
	if !cfg.Auth.Enabled() {
		return errors.New("auth secret is not configured (set PUNCHAUDIT_AUTH_SECRET)")
	}

	token, err := auth.NewManager(&cfg.Auth).Issue(tokenSubject, tokenTTL)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(token)
}
