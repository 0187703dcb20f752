package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions flag dùng chung cho mọi lệnh
type RootOptions struct {
	Format string // "table" | "yaml" | "json"
}

// ValidFormats các định dạng output hợp lệ
var ValidFormats = []string{"table", "yaml", "json"}

// NewRootCommand tạo lệnh gốc shdsctl
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "shdsctl",
		Short:         "SHDS admin operations tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range ValidFormats {
				if f == opts.Format {
					return nil
				}
			}
			return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "table", "output format (table|yaml|json)")

	cmd.AddCommand(NewCollectionsCommand(opts))
	cmd.AddCommand(NewTokenCommand())
	return cmd
}
