package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	authsvc "github.com/papichoolo/shds-admin/internal/api/auth/service"
	"github.com/papichoolo/shds-admin/internal/utility"
)

// NewTokenCommand nhóm lệnh về token
func NewTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Invite token and identity token helpers",
	}
	cmd.AddCommand(newTokenHashCommand())
	cmd.AddCommand(newTokenMintCommand())
	return cmd
}

// token hash <token>: in ra tokenHash đang lưu trong userInvites, dùng khi tra cứu lời mời
func newTokenHashCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash <invite-token>",
		Short: "Print the stored SHA-256 hash of an invite token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), utility.HashToken(args[0]))
			return nil
		},
	}
}

func newTokenMintCommand() *cobra.Command {
	var (
		in     authsvc.MintInput
		secret string
		issuer string
	)
	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Issue an HS256 identity token for AUTH_PROVIDER=jwt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = os.Getenv("JWT_SECRET")
			}
			if secret == "" {
				return errors.New("--secret or JWT_SECRET is required")
			}
			token, err := authsvc.MintToken(secret, issuer, in)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.UID, "uid", "", "subject uid (required)")
	cmd.Flags().StringVar(&in.Email, "email", "", "email claim")
	cmd.Flags().StringSliceVar(&in.Roles, "roles", nil, "roles claim, comma separated")
	cmd.Flags().StringVar(&in.BranchID, "branch", "", "branchId claim")
	cmd.Flags().DurationVar(&in.TTL, "ttl", time.Hour, "token lifetime")
	cmd.Flags().StringVar(&secret, "secret", "", "HS256 secret (defaults to JWT_SECRET)")
	cmd.Flags().StringVar(&issuer, "issuer", "shds-admin", "iss claim")
	_ = cmd.MarkFlagRequired("uid")
	return cmd
}
