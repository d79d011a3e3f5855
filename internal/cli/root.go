// Package cli implements the signbridge command line.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the signbridge command tree.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "signbridge",
		Short: "Browser-facing gateway for the document signing service",
		Long: `Browser-facing gateway for the document signing service.

Signbridge keeps the signing service credential in an HttpOnly cookie, intercepts
the login, session, document and signature routes, and forwards every other
request under the API prefix to the signing service unchanged.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "path to a configuration file (yaml, json or toml)")
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	})

	rootCmd.AddCommand(newServeCmd(), newConfigCmd(), newVersionCmd(), newManCmd())
	return rootCmd
}

// Execute runs the command line with the process arguments.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the command line under ctx.
func ExecuteContext(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}
